package redis

import (
	redis_models "Coplay/models/redis"
	redis_utils "Coplay/services/redis/utils"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// SaveSession stores a session snapshot in Redis.
// Key format: "session:{roomCode}"
// The TTL matches the session manager's expiry policy, so the snapshot
// disappears together with the in-memory session.
func (rc *RedisClient) SaveSession(session *redis_models.Session, ttl time.Duration) error {
	key := redis_utils.FormatSessionKey(session.RoomCode)
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error marshaling session data: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, ttl).Err()
}

// GetSession retrieves a session snapshot from Redis.
// Key format: "session:{roomCode}"
// Returns: Session struct, nil when the key does not exist, or error.
func (rc *RedisClient) GetSession(roomCode string) (*redis_models.Session, error) {
	key := redis_utils.FormatSessionKey(roomCode)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting session data: %v", err)
	}

	var session redis_models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("error unmarshaling session data: %v", err)
	}
	return &session, nil
}

// DeleteSession removes a session snapshot from Redis.
// Key format: "session:{roomCode}"
func (rc *RedisClient) DeleteSession(roomCode string) error {
	key := redis_utils.FormatSessionKey(roomCode)
	if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting session data: %v", err)
	}
	return nil
}

// CleanupKeys removes the specified keys from Redis
func (rc *RedisClient) CleanupKeys(keys []string) error {
	for _, key := range keys {
		if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}
