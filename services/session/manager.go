package session

import (
	catalog_constants "Coplay/constants/catalog"
	redis_models "Coplay/models/redis"
	redis_srv "Coplay/services/redis"
	"errors"
	"log"
	"math/rand"
	"strconv"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when no active session has the given code.
var ErrSessionNotFound = errors.New("session not found")

// Member is one roster entry. Position in the roster is significant: the
// aggregation engine attributes ownership by roster index.
type Member struct {
	SteamID  string    `json:"steamID"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Session is the authoritative room entity. The socket layer only keeps
// connection <-> room associations; membership lives here.
type Session struct {
	RoomCode   string
	CreatorID  string
	Members    []Member
	CreatedAt  time.Time
	lastActive time.Time
}

// Manager owns the registry of live sessions. All mutations go through it so
// roster appends can never lose an update. Sessions idle for longer than the
// TTL are evicted by the expiry loop instead of growing forever.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	redis    *redis_srv.RedisClient // optional snapshot mirror, may be nil
	ttl      time.Duration
}

func NewManager(redisClient *redis_srv.RedisClient, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		sessions: make(map[string]*Session),
		redis:    redisClient,
		ttl:      ttl,
	}
}

func randomRoomCode() string {
	span := catalog_constants.RoomCodeMax - catalog_constants.RoomCodeMin + 1
	return strconv.Itoa(rand.Intn(span) + catalog_constants.RoomCodeMin)
}

// CreateSession draws a random 5-digit code, retrying until it does not
// collide with an active session, and registers an empty-roster session.
func (m *Manager) CreateSession(hostID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code := randomRoomCode()
	for _, exists := m.sessions[code]; exists; _, exists = m.sessions[code] {
		code = randomRoomCode()
	}

	now := time.Now()
	m.sessions[code] = &Session{
		RoomCode:   code,
		CreatorID:  hostID,
		CreatedAt:  now,
		lastActive: now,
	}
	m.mirrorLocked(code)
	return code, nil
}

// Join appends a member to the roster of an existing session. Joining twice
// with the same steamID is idempotent: the roster keeps its length and the
// member keeps their original position. Returns the full ordered roster.
func (m *Manager) Join(roomCode string, member Member) ([]Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[roomCode]
	if !ok {
		return nil, ErrSessionNotFound
	}

	found := false
	for _, existing := range sess.Members {
		if existing.SteamID == member.SteamID {
			found = true
			break
		}
	}
	if !found {
		if member.JoinedAt.IsZero() {
			member.JoinedAt = time.Now()
		}
		sess.Members = append(sess.Members, member)
	}
	sess.lastActive = time.Now()
	m.mirrorLocked(roomCode)

	return copyRoster(sess.Members), nil
}

// Roster returns the ordered member list of a session.
func (m *Manager) Roster(roomCode string) ([]Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[roomCode]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copyRoster(sess.Members), nil
}

// Exists reports whether a session with the given code is active.
func (m *Manager) Exists(roomCode string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[roomCode]
	return ok
}

// Creator returns the host id of a session.
func (m *Manager) Creator(roomCode string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[roomCode]
	if !ok {
		return "", ErrSessionNotFound
	}
	return sess.CreatorID, nil
}

// ActiveCount returns the number of live sessions.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ExpireNow evicts every session idle for longer than the TTL and returns
// how many were removed.
func (m *Manager) ExpireNow() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	cutoff := time.Now().Add(-m.ttl)
	for code, sess := range m.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(m.sessions, code)
			evicted++
			if m.redis != nil {
				if err := m.redis.DeleteSession(code); err != nil {
					log.Printf("[SESSION] Failed to delete Redis snapshot for %s: %v", code, err)
				}
			}
		}
	}
	if evicted > 0 {
		log.Printf("[SESSION] Expired %d idle sessions", evicted)
	}
	return evicted
}

// StartExpiry runs the eviction sweep on the given interval until the
// returned stop function is called.
func (m *Manager) StartExpiry(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.ExpireNow()
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}

// mirrorLocked writes the session snapshot to Redis with the session TTL.
// The mirror is best effort: a Redis failure is logged, never propagated.
// Callers must hold m.mu.
func (m *Manager) mirrorLocked(roomCode string) {
	if m.redis == nil {
		return
	}
	sess, ok := m.sessions[roomCode]
	if !ok {
		return
	}
	snapshot := &redis_models.Session{
		RoomCode:  sess.RoomCode,
		CreatorID: sess.CreatorID,
		CreatedAt: sess.CreatedAt,
		Members:   make([]redis_models.RoomMember, 0, len(sess.Members)),
	}
	for _, member := range sess.Members {
		snapshot.Members = append(snapshot.Members, redis_models.RoomMember{
			SteamID:  member.SteamID,
			Username: member.Username,
			Avatar:   member.Avatar,
			JoinedAt: member.JoinedAt,
		})
	}
	if err := m.redis.SaveSession(snapshot, m.ttl); err != nil {
		log.Printf("[SESSION] Failed to mirror session %s to Redis: %v", roomCode, err)
	}
}

func copyRoster(members []Member) []Member {
	roster := make([]Member, len(members))
	copy(roster, members)
	return roster
}
