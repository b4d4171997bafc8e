package postgres

import (
	"time"
)

/*
 * 'GameOwnership' records that a Steam user owns a cataloged game. The pair
 * (SteamID, AppID) is unique; re-scanning a library must never duplicate it.
 */
type GameOwnership struct {
	SteamID   string    `gorm:"primaryKey;size:32;not null;index:idx_ownerships_steam"`
	AppID     string    `gorm:"primaryKey;size:20;not null"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	Game Game `gorm:"foreignKey:AppID"`
}
