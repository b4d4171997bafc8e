package catalog

import (
	models "Coplay/models/postgres"
	"Coplay/services/provider"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// memStore is an in-memory Store with the same upsert semantics as the GORM
// implementation: duplicate writes degrade to no-ops.
type memStore struct {
	mu          sync.Mutex
	games       map[string]models.Game
	ownerships  map[string]bool // "steamID|appID"
	gameInserts int
	gameUpdates int
}

func newMemStore() *memStore {
	return &memStore{
		games:      make(map[string]models.Game),
		ownerships: make(map[string]bool),
	}
}

func ownershipKey(steamID, appID string) string { return steamID + "|" + appID }

func (s *memStore) GetGame(appID string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[appID]
	if !ok {
		return nil, nil
	}
	return &game, nil
}

func (s *memStore) UpsertOwnership(steamID, appID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerships[ownershipKey(steamID, appID)] = true
	return nil
}

func (s *memStore) InsertGameWithOwnership(game *models.Game, steamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[game.AppID]; !exists {
		s.games[game.AppID] = *game
		s.gameInserts++
	}
	s.ownerships[ownershipKey(steamID, game.AppID)] = true
	return nil
}

func (s *memStore) UpdateGame(game *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.AppID] = *game
	s.gameUpdates++
	return nil
}

func (s *memStore) OwnedMultiplayer(steamID string) ([]models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var owned []models.Game
	for appID, game := range s.games {
		if game.IsMultiplayer && s.ownerships[ownershipKey(steamID, appID)] {
			owned = append(owned, game)
		}
	}
	return owned, nil
}

type fakeGateway struct {
	mu          sync.Mutex
	owned       map[string][]provider.OwnedGame
	tags        map[string][]string
	details     map[string]provider.AppDetails
	ownedErr    map[string]error
	detailCalls map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		owned:       make(map[string][]provider.OwnedGame),
		tags:        make(map[string][]string),
		details:     make(map[string]provider.AppDetails),
		ownedErr:    make(map[string]error),
		detailCalls: make(map[string]int),
	}
}

func (f *fakeGateway) GetOwnedGames(ctx context.Context, steamID string) ([]provider.OwnedGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ownedErr[steamID]; err != nil {
		return nil, err
	}
	return f.owned[steamID], nil
}

func (f *fakeGateway) GetTags(ctx context.Context, appID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags[appID], nil
}

func (f *fakeGateway) GetGenreAndPrice(ctx context.Context, appID string) (provider.AppDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls[appID]++
	details, ok := f.details[appID]
	if !ok {
		return provider.AppDetails{Success: false}, nil
	}
	return details, nil
}

func (f *fakeGateway) GetPlayerSummary(ctx context.Context, steamID string) (*provider.PlayerSummary, error) {
	return &provider.PlayerSummary{SteamID: steamID}, nil
}

func (f *fakeGateway) detailCallCount(appID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[appID]
}

func ownedGame(appID, name string) provider.OwnedGame {
	return provider.OwnedGame{
		AppID:       appID,
		Name:        name,
		HeaderImage: "https://img.example/" + appID,
		StoreURL:    "https://store.example/" + appID,
	}
}

func TestEnsureOwnedFillsCatalog(t *testing.T) {
	gateway := newFakeGateway()
	gateway.owned["user1"] = []provider.OwnedGame{ownedGame("10", "Coop Game"), ownedGame("20", "Solo Game")}
	gateway.tags["10"] = []string{"Co-op", "Action"}
	gateway.details["10"] = provider.AppDetails{
		Genres: []string{"Multi-player", "Co-op"}, InitialPrice: 1999, FinalPrice: 999, Success: true,
	}
	gateway.details["20"] = provider.AppDetails{Genres: []string{"Single-player"}, Success: true}

	store := newMemStore()
	cache := NewCache(store, gateway, nil)

	assert.NoError(t, cache.EnsureOwned(context.Background(), "user1"))

	coop, err := store.GetGame("10")
	assert.NoError(t, err)
	assert.NotNil(t, coop)
	assert.True(t, coop.IsMultiplayer)
	assert.Equal(t, "Multi-player,Co-op", coop.Genre)
	assert.Equal(t, 999, coop.Price)
	assert.Equal(t, 1999, coop.InitialPrice)
	assert.Equal(t, []string{"Co-op", "Action"}, coop.TagList())

	solo, err := store.GetGame("20")
	assert.NoError(t, err)
	assert.NotNil(t, solo)
	assert.False(t, solo.IsMultiplayer)

	owned, err := cache.OwnedMultiplayer("user1")
	assert.NoError(t, err)
	assert.Len(t, owned, 1)
	assert.Equal(t, "10", owned[0].AppID)
}

func TestConcurrentFirstFillProducesOneEntry(t *testing.T) {
	gateway := newFakeGateway()
	gateway.owned["user1"] = []provider.OwnedGame{ownedGame("10", "Coop Game")}
	gateway.owned["user2"] = []provider.OwnedGame{ownedGame("10", "Coop Game")}
	gateway.details["10"] = provider.AppDetails{Genres: []string{"Multi-player"}, Success: true}

	store := newMemStore()
	cache := NewCache(store, gateway, nil)

	var wg sync.WaitGroup
	for _, user := range []string{"user1", "user2"} {
		wg.Add(1)
		go func(steamID string) {
			defer wg.Done()
			assert.NoError(t, cache.EnsureOwned(context.Background(), steamID))
		}(user)
	}
	wg.Wait()

	assert.Equal(t, 1, store.gameInserts, "exactly one catalog row for the shared app")
	assert.True(t, store.ownerships[ownershipKey("user1", "10")])
	assert.True(t, store.ownerships[ownershipKey("user2", "10")])
	assert.Equal(t, 1, gateway.detailCallCount("10"), "losing racer must reuse the cached entry")
}

func TestProviderFailureDefaults(t *testing.T) {
	gateway := newFakeGateway()
	gateway.owned["user1"] = []provider.OwnedGame{ownedGame("66", "Delisted Game")}
	// no details registered for app 66 -> success=false

	store := newMemStore()
	cache := NewCache(store, gateway, nil)

	assert.NoError(t, cache.EnsureOwned(context.Background(), "user1"))

	game, err := store.GetGame("66")
	assert.NoError(t, err)
	assert.NotNil(t, game)
	assert.Equal(t, "Single-player", game.Genre)
	assert.Equal(t, 0, game.Price)
	assert.Equal(t, 0, game.InitialPrice)
	assert.False(t, game.IsMultiplayer)
}

func TestDefaultStalenessNeverRefetches(t *testing.T) {
	gateway := newFakeGateway()
	gateway.owned["user1"] = []provider.OwnedGame{ownedGame("10", "Coop Game")}
	gateway.details["10"] = provider.AppDetails{Genres: []string{"Multi-player"}, Success: true}

	store := newMemStore()
	cache := NewCache(store, gateway, nil)

	assert.NoError(t, cache.EnsureOwned(context.Background(), "user1"))
	assert.NoError(t, cache.EnsureOwned(context.Background(), "user1"))

	assert.Equal(t, 1, gateway.detailCallCount("10"))
	assert.Equal(t, 0, store.gameUpdates)
}

func TestMaxAgePolicyRefetches(t *testing.T) {
	gateway := newFakeGateway()
	gateway.owned["user1"] = []provider.OwnedGame{ownedGame("10", "Coop Game")}
	gateway.details["10"] = provider.AppDetails{Genres: []string{"Multi-player"}, InitialPrice: 500, FinalPrice: 500, Success: true}

	store := newMemStore()
	stale := models.Game{AppID: "10", Name: "Coop Game", RefreshedAt: time.Now().Add(-48 * time.Hour)}
	store.games["10"] = stale

	cache := NewCache(store, gateway, MaxAge(24*time.Hour))
	assert.NoError(t, cache.EnsureOwned(context.Background(), "user1"))

	assert.Equal(t, 1, store.gameUpdates)
	refreshed, _ := store.GetGame("10")
	assert.Equal(t, 500, refreshed.Price)
	assert.True(t, refreshed.IsMultiplayer)
}

func TestOwnedGamesScanFailurePropagates(t *testing.T) {
	gateway := newFakeGateway()
	gateway.ownedErr["user1"] = fmt.Errorf("%w: rate limited", provider.ErrProviderFailure)

	cache := NewCache(newMemStore(), gateway, nil)

	err := cache.EnsureOwned(context.Background(), "user1")
	assert.ErrorIs(t, err, provider.ErrProviderFailure)
}
