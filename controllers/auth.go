package controllers

import (
	"Coplay/services/provider"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AltLogin resolves a raw steamID into a persona (name + avatar) through the
// provider gateway and stores the identity in the cookie session. It backs
// the manual-login page for users who skip the OpenID flow.
func AltLogin(gateway provider.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		steamID := strings.TrimSpace(c.PostForm("steamID"))
		if steamID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "steamID can't be empty"})
			return
		}

		summary, err := gateway.GetPlayerSummary(c.Request.Context(), steamID)
		if err != nil {
			log.Printf("[AUTH] Could not fetch player summary for %s: %v", steamID, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Could not fetch player information"})
			return
		}

		session := sessions.Default(c)
		session.Set("steamID", summary.SteamID)
		session.Set("username", summary.Username)
		session.Set("avatar", summary.Avatar)
		if err := session.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"steamID":  summary.SteamID,
			"username": summary.Username,
			"avatar":   summary.Avatar,
		})
	}
}

// Logout clears the identity and room data from the cookie session
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete("steamID")
	session.Delete("username")
	session.Delete("avatar")
	session.Delete("roomNumber")
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
