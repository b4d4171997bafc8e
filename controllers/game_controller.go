package controllers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

type GameController struct {
	DB *sql.DB
}

// GetGameInfo gets the cached catalog entry for the provided app id
func (gc *GameController) GetGameInfo(c *gin.Context) {
	appID := c.Param("app_id")

	// Query the catalog row in the database
	var game_psql struct {
		AppID         string `json:"app_id"`
		Name          string `json:"name"`
		Genre         string `json:"genre"`
		IsMultiplayer bool   `json:"is_multiplayer"`
		Price         int    `json:"price"`
		InitialPrice  int    `json:"initial_price"`
		HeaderImage   string `json:"header_image"`
		StoreURL      string `json:"store_url"`
	}

	err := gc.DB.QueryRow(`
		SELECT app_id, name, genre, is_multiplayer, price, initial_price, header_image, store_url
		FROM games
		WHERE app_id = $1
	`, appID).Scan(
		&game_psql.AppID, &game_psql.Name, &game_psql.Genre, &game_psql.IsMultiplayer,
		&game_psql.Price, &game_psql.InitialPrice, &game_psql.HeaderImage, &game_psql.StoreURL,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error querying database: " + err.Error()})
		}
		return
	}

	// Query how many users own the game
	var ownerCount int
	err = gc.DB.QueryRow(`
		SELECT COUNT(*)
		FROM game_ownerships
		WHERE app_id = $1
	`, appID).Scan(&ownerCount)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting owners: " + err.Error()})
		return
	}

	response := gin.H{
		"app_id":         game_psql.AppID,
		"name":           game_psql.Name,
		"genre":          game_psql.Genre,
		"is_multiplayer": game_psql.IsMultiplayer,
		"price":          game_psql.Price,
		"initial_price":  game_psql.InitialPrice,
		"header_image":   game_psql.HeaderImage,
		"store_url":      game_psql.StoreURL,
		"owner_count":    ownerCount,
	}

	c.JSON(http.StatusOK, response)
}
