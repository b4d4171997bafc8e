package controllers

import (
	"Coplay/services/session"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Ping responds to healthchecks
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// CreateRoom draws a unique 5-digit room code for the host and remembers it
// in the cookie session so the empty-room page can pick it up.
func CreateRoom(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieSession := sessions.Default(c)

		hostID, _ := cookieSession.Get("steamID").(string)
		if hostID == "" {
			hostID = c.PostForm("steamID")
		}

		code, err := manager.CreateSession(hostID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create room"})
			return
		}

		cookieSession.Set("roomNumber", code)
		if err := cookieSession.Save(); err != nil {
			// The room exists either way; the client still gets the code.
			log.Printf("[ROOM] Could not persist roomNumber cookie: %v", err)
		}

		c.JSON(http.StatusCreated, gin.H{"roomNumber": code})
	}
}

// GetRoomInfo returns the current state of a room for the join page. An
// unknown code is an explicit 404, never a silent redirect.
func GetRoomInfo(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")

		roster, err := manager.Roster(code)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		creator, _ := manager.Creator(code)

		members := make([]gin.H, 0, len(roster))
		for _, member := range roster {
			members = append(members, gin.H{
				"steamID":  member.SteamID,
				"username": member.Username,
				"avatar":   member.Avatar,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"roomNumber":   code,
			"creator":      creator,
			"player_count": len(roster),
			"members":      members,
		})
	}
}
