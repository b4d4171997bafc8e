package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

/*
 * 'Game' is one cached catalog entry for a Steam title, independent of any user.
 * It is created once per app id, on the first cache miss, and referenced by
 * GameOwnership rows.
 */
type Game struct {
	AppID         string         `gorm:"primaryKey;size:20;not null"`
	Name          string         `gorm:"size:255;not null;index:idx_games_name"`
	Genre         string         `gorm:"size:512"` // joined Steam category text
	Tags          datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	IsMultiplayer bool           `gorm:"default:false;index:idx_games_multiplayer"`
	Price         int            `gorm:"default:0"` // final price, cents
	InitialPrice  int            `gorm:"default:0"` // pre-discount price, cents
	HeaderImage   string         `gorm:"size:512"`
	StoreURL      string         `gorm:"size:512"`
	RefreshedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP"` // when the provider data was fetched

	// Relationship with the users that own this game
	Ownerships []*GameOwnership `gorm:"foreignKey:AppID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TagList decodes the JSONB tag column into a plain slice.
func (g *Game) TagList() []string {
	var tags []string
	if len(g.Tags) == 0 {
		return tags
	}
	if err := json.Unmarshal(g.Tags, &tags); err != nil {
		return nil
	}
	return tags
}

// SetTagList encodes a slice of tags into the JSONB column.
func (g *Game) SetTagList(tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	g.Tags = datatypes.JSON(data)
	return nil
}
