package provider

import (
	"context"
	"errors"
)

// ErrProviderFailure marks transient/remote errors coming from the external
// game data providers. Callers are expected to degrade (skip or default)
// instead of aborting the surrounding scan.
var ErrProviderFailure = errors.New("provider request failed")

// OwnedGame is one title from a user's owned-games scan.
type OwnedGame struct {
	AppID       string
	Name        string
	HeaderImage string
	StoreURL    string
}

// AppDetails is the typed result of a store lookup for one app. Success is
// false for delisted/region-locked titles; in that case the other fields
// must not be trusted.
type AppDetails struct {
	Genres       []string // Steam "categories" text, e.g. "Multi-player"
	InitialPrice int      // cents
	FinalPrice   int      // cents
	Success      bool
}

// PlayerSummary is the public identity of a Steam account.
type PlayerSummary struct {
	SteamID  string
	Username string
	Avatar   string
}

// Gateway wraps the remote, rate-limited data sources (Steam Web API, the
// store front API and SteamSpy). All calls are latency-bearing and must be
// given a context; implementations carry their own request timeouts.
type Gateway interface {
	GetOwnedGames(ctx context.Context, steamID string) ([]OwnedGame, error)
	GetTags(ctx context.Context, appID string) ([]string, error)
	GetGenreAndPrice(ctx context.Context, appID string) (AppDetails, error)
	GetPlayerSummary(ctx context.Context, steamID string) (*PlayerSummary, error)
}
