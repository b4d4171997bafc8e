package catalog

import (
	models "Coplay/models/postgres"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence boundary of the metadata cache. The cache layer
// above it owns the per-app locking; implementations only need to absorb
// duplicate writes (keyed upsert) so a lost race is a no-op, never an error.
type Store interface {
	// GetGame returns the cached entry for an app id, or nil when absent.
	GetGame(appID string) (*models.Game, error)
	// UpsertOwnership records that steamID owns appID; inserting an existing
	// pair is a no-op.
	UpsertOwnership(steamID, appID string) error
	// InsertGameWithOwnership atomically inserts a new catalog entry together
	// with the ownership row that triggered the fill. Either both rows are
	// written or neither is.
	InsertGameWithOwnership(game *models.Game, steamID string) error
	// UpdateGame overwrites the mutable provider data of an existing entry.
	UpdateGame(game *models.Game) error
	// OwnedMultiplayer lists the multiplayer-flagged entries owned by a user,
	// in a stable order.
	OwnedMultiplayer(steamID string) ([]models.Game, error)
}

// GormStore is the PostgreSQL-backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) GetGame(appID string) (*models.Game, error) {
	var game models.Game
	result := s.DB.Where("app_id = ?", appID).First(&game)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &game, nil
}

func (s *GormStore) UpsertOwnership(steamID, appID string) error {
	ownership := models.GameOwnership{SteamID: steamID, AppID: appID}
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&ownership).Error
}

func (s *GormStore) InsertGameWithOwnership(game *models.Game, steamID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		// OnConflict DoNothing makes the fill idempotent: if another scan won
		// the race for this app id, both inserts degrade to no-ops.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(game).Error; err != nil {
			return err
		}
		ownership := models.GameOwnership{SteamID: steamID, AppID: game.AppID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ownership).Error
	})
}

func (s *GormStore) UpdateGame(game *models.Game) error {
	return s.DB.Model(&models.Game{AppID: game.AppID}).Updates(map[string]interface{}{
		"name":           game.Name,
		"genre":          game.Genre,
		"tags":           game.Tags,
		"is_multiplayer": game.IsMultiplayer,
		"price":          game.Price,
		"initial_price":  game.InitialPrice,
		"header_image":   game.HeaderImage,
		"store_url":      game.StoreURL,
		"refreshed_at":   game.RefreshedAt,
	}).Error
}

func (s *GormStore) OwnedMultiplayer(steamID string) ([]models.Game, error) {
	var games []models.Game
	err := s.DB.
		Joins("JOIN game_ownerships ON game_ownerships.app_id = games.app_id").
		Where("game_ownerships.steam_id = ? AND games.is_multiplayer = ?", steamID, true).
		Order("game_ownerships.created_at, games.app_id").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}
