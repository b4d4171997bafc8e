package catalog

import (
	catalog_constants "Coplay/constants/catalog"
	models "Coplay/models/postgres"
	"Coplay/services/provider"
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// StalenessPolicy decides whether a cached entry should be re-fetched from
// the provider. The default policy never trips, which matches the observed
// behavior: entries are written once and then served from cache forever.
type StalenessPolicy func(refreshedAt time.Time) bool

// NeverStale is the default policy.
func NeverStale(time.Time) bool { return false }

// MaxAge returns a policy that re-fetches entries older than the threshold.
func MaxAge(threshold time.Duration) StalenessPolicy {
	return func(refreshedAt time.Time) bool {
		return time.Since(refreshedAt) > threshold
	}
}

// Cache mediates all provider access. It deduplicates fetches through the
// Store and serializes fills per app id, so two users first-encountering the
// same uncached title produce exactly one catalog entry.
type Cache struct {
	store    Store
	gateway  provider.Gateway
	stale    StalenessPolicy
	mu       sync.Mutex
	appLocks map[string]*sync.Mutex
}

func NewCache(store Store, gateway provider.Gateway, stale StalenessPolicy) *Cache {
	if stale == nil {
		stale = NeverStale
	}
	return &Cache{
		store:    store,
		gateway:  gateway,
		stale:    stale,
		appLocks: make(map[string]*sync.Mutex),
	}
}

// appLock returns the fill lock for one app id. Independent app ids fill
// concurrently; only same-id fills serialize.
func (c *Cache) appLock(appID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.appLocks[appID]
	if !ok {
		lock = &sync.Mutex{}
		c.appLocks[appID] = lock
	}
	return lock
}

// EnsureOwned drives a refresh cycle for one user: it fetches the full
// owned-games list and guarantees that every title has a catalog entry and an
// ownership row. Per-game provider failures are defaulted, not propagated;
// only the initial owned-games call can fail the cycle.
func (c *Cache) EnsureOwned(ctx context.Context, steamID string) error {
	owned, err := c.gateway.GetOwnedGames(ctx, steamID)
	if err != nil {
		return fmt.Errorf("owned games scan for %s: %w", steamID, err)
	}

	for _, game := range owned {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.ensureGame(ctx, steamID, game); err != nil {
			// Skip this title and keep scanning; shared state stays intact
			// because the fill is atomic.
			log.Printf("[CACHE-ERROR] Skipping app %s for user %s: %v", game.AppID, steamID, err)
		}
	}
	return nil
}

func (c *Cache) ensureGame(ctx context.Context, steamID string, owned provider.OwnedGame) error {
	lock := c.appLock(owned.AppID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := c.store.GetGame(owned.AppID)
	if err != nil {
		return fmt.Errorf("cache lookup: %v", err)
	}

	if existing != nil {
		if err := c.store.UpsertOwnership(steamID, owned.AppID); err != nil {
			return fmt.Errorf("ownership upsert: %v", err)
		}
		if c.stale(existing.RefreshedAt) {
			return c.refreshGame(ctx, existing, owned)
		}
		return nil
	}

	game, err := c.buildGame(ctx, owned)
	if err != nil {
		return err
	}
	if err := c.store.InsertGameWithOwnership(game, steamID); err != nil {
		return fmt.Errorf("cache fill: %v", err)
	}
	return nil
}

// buildGame fetches tags and genre/price data and classifies the title. A
// provider failure on either call falls back to the single-player defaults so
// the entry still gets cached.
func (c *Cache) buildGame(ctx context.Context, owned provider.OwnedGame) (*models.Game, error) {
	tags, err := c.gateway.GetTags(ctx, owned.AppID)
	if err != nil {
		log.Printf("[CACHE] No tags for app %s: %v", owned.AppID, err)
		tags = nil
	}

	details, err := c.gateway.GetGenreAndPrice(ctx, owned.AppID)
	if err != nil {
		log.Printf("[CACHE] No store details for app %s: %v", owned.AppID, err)
		details = provider.AppDetails{Success: false}
	}

	genre := catalog_constants.DefaultGenre
	initialPrice, finalPrice := 0, 0
	if details.Success {
		genre = strings.Join(details.Genres, ",")
		initialPrice = details.InitialPrice
		finalPrice = details.FinalPrice
	}

	game := &models.Game{
		AppID:         owned.AppID,
		Name:          owned.Name,
		Genre:         genre,
		IsMultiplayer: strings.Contains(genre, catalog_constants.MultiplayerMarker),
		Price:         finalPrice,
		InitialPrice:  initialPrice,
		HeaderImage:   owned.HeaderImage,
		StoreURL:      owned.StoreURL,
		RefreshedAt:   time.Now(),
	}
	if err := game.SetTagList(tags); err != nil {
		return nil, fmt.Errorf("encoding tags: %v", err)
	}
	return game, nil
}

func (c *Cache) refreshGame(ctx context.Context, existing *models.Game, owned provider.OwnedGame) error {
	game, err := c.buildGame(ctx, owned)
	if err != nil {
		return err
	}
	if err := c.store.UpdateGame(game); err != nil {
		return fmt.Errorf("cache refresh: %v", err)
	}
	return nil
}

// OwnedMultiplayer exposes the cached multiplayer library of a user to the
// aggregation engine.
func (c *Cache) OwnedMultiplayer(steamID string) ([]models.Game, error) {
	return c.store.OwnedMultiplayer(steamID)
}
