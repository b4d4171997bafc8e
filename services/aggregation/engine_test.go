package aggregation

import (
	models "Coplay/models/postgres"
	"Coplay/services/session"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeLibrary struct {
	games   map[string][]models.Game
	failFor map[string]bool
}

func (f *fakeLibrary) EnsureOwned(ctx context.Context, steamID string) error {
	if f.failFor[steamID] {
		return errors.New("owned games scan failed")
	}
	return nil
}

func (f *fakeLibrary) OwnedMultiplayer(steamID string) ([]models.Game, error) {
	if f.failFor[steamID] {
		return nil, errors.New("library unavailable")
	}
	return f.games[steamID], nil
}

func mkGame(appID, name string, price int, genre string, tags ...string) models.Game {
	game := models.Game{
		AppID:         appID,
		Name:          name,
		Genre:         genre,
		IsMultiplayer: true,
		Price:         price,
		InitialPrice:  price,
		HeaderImage:   "https://img.example/" + appID,
		StoreURL:      "https://store.example/" + appID,
	}
	if err := game.SetTagList(tags); err != nil {
		panic(err)
	}
	return game
}

func roster(ids ...string) []session.Member {
	members := make([]session.Member, 0, len(ids))
	for _, id := range ids {
		members = append(members, session.Member{SteamID: id, Username: "user-" + id})
	}
	return members
}

func TestSharedListScenario(t *testing.T) {
	// Room "41234": A owns {X, Y}, B owns {Y, Z}
	lib := &fakeLibrary{games: map[string][]models.Game{
		"A": {mkGame("1", "X", 0, "Multi-player"), mkGame("2", "Y", 999, "Multi-player")},
		"B": {mkGame("2", "Y", 999, "Multi-player"), mkGame("3", "Z", 5000, "Multi-player")},
	}}
	engine := NewEngine(lib)

	result, err := engine.Generate(context.Background(), roster("A", "B"), Request{RoomCode: "41234"})
	assert.NoError(t, err)
	assert.Len(t, result.Games, 3)

	assert.Equal(t, "X", result.Games[0].Title)
	assert.Equal(t, []int{0}, result.Games[0].Owners)
	assert.Equal(t, "Y", result.Games[1].Title)
	assert.Equal(t, []int{0, 1}, result.Games[1].Owners)
	assert.Equal(t, "Z", result.Games[2].Title)
	assert.Equal(t, []int{1}, result.Games[2].Owners)
}

func TestPriceBucketFree(t *testing.T) {
	lib := &fakeLibrary{games: map[string][]models.Game{
		"A": {
			mkGame("1", "Freebie", 0, "Multi-player"),
			mkGame("2", "Cheap", 999, "Multi-player"),
			mkGame("3", "Pricey", 5999, "Multi-player"),
		},
	}}
	engine := NewEngine(lib)

	result, err := engine.Generate(context.Background(), roster("A"), Request{PriceBucket: "FREE"})
	assert.NoError(t, err)
	assert.Len(t, result.Games, 1)
	assert.Equal(t, "Freebie", result.Games[0].Title)
}

func TestPriceBucketCaps(t *testing.T) {
	lib := &fakeLibrary{games: map[string][]models.Game{
		"A": {
			mkGame("1", "Freebie", 0, "Multi-player"),
			mkGame("2", "Cheap", 999, "Multi-player"),
			mkGame("3", "Mid", 3999, "Multi-player"),
			mkGame("4", "Pricey", 5999, "Multi-player"),
		},
	}}
	engine := NewEngine(lib)

	result, err := engine.Generate(context.Background(), roster("A"), Request{PriceBucket: "Under $10"})
	assert.NoError(t, err)
	assert.Len(t, result.Games, 2)

	result, err = engine.Generate(context.Background(), roster("A"), Request{PriceBucket: "Under $40"})
	assert.NoError(t, err)
	assert.Len(t, result.Games, 3)
}

func TestUnrecognizedPriceBucketPassesThrough(t *testing.T) {
	lib := &fakeLibrary{games: map[string][]models.Game{
		"A": {
			mkGame("1", "Freebie", 0, "Multi-player"),
			mkGame("2", "Pricey", 5999, "Multi-player"),
		},
	}}
	engine := NewEngine(lib)

	unfiltered, err := engine.Generate(context.Background(), roster("A"), Request{})
	assert.NoError(t, err)

	passthrough, err := engine.Generate(context.Background(), roster("A"), Request{PriceBucket: "unrecognized-string"})
	assert.NoError(t, err)
	assert.Equal(t, unfiltered.Games, passthrough.Games)
}

func TestTagAndGenreFilters(t *testing.T) {
	lib := &fakeLibrary{games: map[string][]models.Game{
		"A": {
			mkGame("1", "Shooter", 0, "Multi-player,Co-op", "FPS", "Action"),
			mkGame("2", "Farming", 0, "Multi-player", "Relaxing"),
		},
	}}
	engine := NewEngine(lib)

	result, err := engine.Generate(context.Background(), roster("A"), Request{TagFilter: "fps"})
	assert.NoError(t, err)
	assert.Len(t, result.Games, 1)
	assert.Equal(t, "Shooter", result.Games[0].Title)

	result, err = engine.Generate(context.Background(), roster("A"), Request{GenreFilter: "co-op"})
	assert.NoError(t, err)
	assert.Len(t, result.Games, 1)
	assert.Equal(t, "Shooter", result.Games[0].Title)
}

func TestFailedMemberIsSkipped(t *testing.T) {
	lib := &fakeLibrary{
		games: map[string][]models.Game{
			"A": {mkGame("1", "X", 0, "Multi-player")},
			"C": {mkGame("3", "Z", 0, "Multi-player")},
		},
		failFor: map[string]bool{"B": true},
	}
	engine := NewEngine(lib)

	result, err := engine.Generate(context.Background(), roster("A", "B", "C"), Request{})
	assert.NoError(t, err)
	assert.Len(t, result.Games, 2)
	// Indices still follow roster positions, so C stays index 2
	assert.Equal(t, []int{0}, result.Games[0].Owners)
	assert.Equal(t, []int{2}, result.Games[1].Owners)
}

func TestTagOptionsAccumulateInFirstSeenOrder(t *testing.T) {
	lib := &fakeLibrary{games: map[string][]models.Game{
		"A": {mkGame("1", "X", 0, "Multi-player", "Co-op", "Action")},
		"B": {mkGame("2", "Y", 0, "Multi-player", "Action", "PvP")},
	}}
	engine := NewEngine(lib)

	result, err := engine.Generate(context.Background(), roster("A", "B"), Request{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Co-op", "Action", "PvP"}, result.TagOptions)
}

func TestTitleKeyCollapsesDuplicateApps(t *testing.T) {
	// Two distinct app ids with the same title aggregate into one entry
	lib := &fakeLibrary{games: map[string][]models.Game{
		"A": {mkGame("1", "Same Name", 0, "Multi-player")},
		"B": {mkGame("2", "Same Name", 0, "Multi-player")},
	}}

	result, err := NewEngine(lib).Generate(context.Background(), roster("A", "B"), Request{})
	assert.NoError(t, err)
	assert.Len(t, result.Games, 1)
	assert.Equal(t, []int{0, 1}, result.Games[0].Owners)

	// Keying by app id keeps them apart without touching the algorithm
	byAppID := NewEngineWithKey(lib, func(g models.Game) string { return g.AppID })
	result, err = byAppID.Generate(context.Background(), roster("A", "B"), Request{})
	assert.NoError(t, err)
	assert.Len(t, result.Games, 2)
}

func TestGenerateHonorsCancellation(t *testing.T) {
	lib := &fakeLibrary{games: map[string][]models.Game{
		"A": {mkGame("1", "X", 0, "Multi-player")},
	}}
	engine := NewEngine(lib)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Generate(ctx, roster("A"), Request{})
	assert.ErrorIs(t, err, context.Canceled)
}
