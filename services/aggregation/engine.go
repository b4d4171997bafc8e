package aggregation

import (
	catalog_constants "Coplay/constants/catalog"
	models "Coplay/models/postgres"
	"Coplay/services/session"
	"context"
	"log"
	"strings"
)

// Library is what the engine needs from the metadata cache: a way to make
// sure a user's scan has happened, and the resulting multiplayer titles.
type Library interface {
	EnsureOwned(ctx context.Context, steamID string) error
	OwnedMultiplayer(steamID string) ([]models.Game, error)
}

// Request carries the filters of one "generate" call.
type Request struct {
	RoomCode    string
	TagFilter   string
	GenreFilter string
	PriceBucket string
}

// SharedGame is one aggregated title with ownership attribution. Owners holds
// roster indices, in the order members were found to own the title.
type SharedGame struct {
	Title        string
	Owners       []int
	HeaderImage  string
	StoreURL     string
	Tags         []string
	Genre        string
	Price        int // final, cents
	InitialPrice int // cents
}

// Result is the shared-games view for one requester. Games preserves
// insertion order: the host's distinct titles first, then each later member's
// newly-introduced titles, in roster order. TagOptions accumulates every tag
// seen, deduplicated in first-seen order, for further filtering.
type Result struct {
	Games      []SharedGame
	TagOptions []string
}

// Engine computes shared-library views. Each Generate call builds its own
// accumulator, so concurrent requests with different filters never share
// mutable state.
type Engine struct {
	library Library
	// key picks the comparable aggregation key for a game. Defaults to the
	// title, which collapses distinct app ids with identical names into one
	// aggregate; swap to AppID keying here without touching the algorithm.
	key func(models.Game) string
}

func NewEngine(library Library) *Engine {
	return &Engine{
		library: library,
		key:     func(g models.Game) string { return g.Name },
	}
}

// NewEngineWithKey builds an engine with a custom aggregation key.
func NewEngineWithKey(library Library, key func(models.Game) string) *Engine {
	e := NewEngine(library)
	if key != nil {
		e.key = key
	}
	return e
}

// Generate walks the roster in order and accumulates every multiplayer title
// that passes the filters. A member whose library cannot be fetched is
// skipped (their contribution is simply missing), the rest of the roster is
// still processed.
func (e *Engine) Generate(ctx context.Context, roster []session.Member, req Request) (*Result, error) {
	result := &Result{}
	positions := make(map[string]int) // aggregation key -> index in result.Games
	seenTags := make(map[string]bool)

	for i, member := range roster {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := e.library.EnsureOwned(ctx, member.SteamID); err != nil {
			log.Printf("[AGGREGATE] Skipping member %d (%s): %v", i, member.SteamID, err)
			continue
		}
		games, err := e.library.OwnedMultiplayer(member.SteamID)
		if err != nil {
			log.Printf("[AGGREGATE] Skipping member %d (%s): %v", i, member.SteamID, err)
			continue
		}

		for _, game := range games {
			if !matchesTag(game, req.TagFilter) ||
				!matchesGenre(game, req.GenreFilter) ||
				!matchesPrice(game, req.PriceBucket) {
				continue
			}

			key := e.key(game)
			if pos, ok := positions[key]; ok {
				result.Games[pos].Owners = append(result.Games[pos].Owners, i)
				continue
			}

			tags := game.TagList()
			positions[key] = len(result.Games)
			result.Games = append(result.Games, SharedGame{
				Title:        game.Name,
				Owners:       []int{i},
				HeaderImage:  game.HeaderImage,
				StoreURL:     game.StoreURL,
				Tags:         tags,
				Genre:        game.Genre,
				Price:        game.Price,
				InitialPrice: game.InitialPrice,
			})
			for _, tag := range tags {
				if !seenTags[tag] {
					seenTags[tag] = true
					result.TagOptions = append(result.TagOptions, tag)
				}
			}
		}
	}
	return result, nil
}

func matchesTag(game models.Game, filter string) bool {
	if filter == "" {
		return true
	}
	needle := strings.ToLower(filter)
	for _, tag := range game.TagList() {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func matchesGenre(game models.Game, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(game.Genre), strings.ToLower(filter))
}

// matchesPrice implements the bucket semantics: FREE and the two caps filter
// on the final price; any other non-empty value is a pass-through, not an
// error.
func matchesPrice(game models.Game, bucket string) bool {
	switch bucket {
	case catalog_constants.PriceBucketFree:
		return game.Price == 0
	case catalog_constants.PriceBucketUnder10:
		return game.Price <= catalog_constants.PriceCapUnder10
	case catalog_constants.PriceBucketUnder40:
		return game.Price <= catalog_constants.PriceCapUnder40
	default:
		return true
	}
}
