package controllers

import (
	"Coplay/services/session"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func roomsRouter(manager *session.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions("coplay_session", cookie.NewStore([]byte("test-key"))))
	router.POST("/rooms", CreateRoom(manager))
	router.GET("/rooms/:code", GetRoomInfo(manager))
	return router
}

func TestCreateRoom(t *testing.T) {
	manager := session.NewManager(nil, time.Hour)
	router := roomsRouter(manager)

	req, _ := http.NewRequest("POST", "/rooms", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	code, _ := response["roomNumber"].(string)
	assert.Regexp(t, regexp.MustCompile(`^\d{5}$`), code)
	assert.True(t, manager.Exists(code))
}

func TestGetRoomInfo(t *testing.T) {
	manager := session.NewManager(nil, time.Hour)
	code, _ := manager.CreateSession("host-1")
	manager.Join(code, session.Member{SteamID: "host-1", Username: "Host"})
	manager.Join(code, session.Member{SteamID: "friend-1", Username: "Friend"})

	router := roomsRouter(manager)

	req, _ := http.NewRequest("GET", "/rooms/"+code, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)

	assert.Equal(t, code, response["roomNumber"])
	assert.Equal(t, "host-1", response["creator"])
	assert.Equal(t, float64(2), response["player_count"])

	members, _ := response["members"].([]interface{})
	assert.Len(t, members, 2)
	first, _ := members[0].(map[string]interface{})
	assert.Equal(t, "Host", first["username"])
}

func TestGetRoomInfoNotFound(t *testing.T) {
	manager := session.NewManager(nil, time.Hour)
	router := roomsRouter(manager)

	req, _ := http.NewRequest("GET", "/rooms/99999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
