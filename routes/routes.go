package routes

import (
	"Coplay/controllers"
	"Coplay/services/provider"
	"Coplay/services/session"
	"Coplay/utils"
	"database/sql"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, sqlDB *sql.DB, sessions *session.Manager, gateway provider.Gateway) {
	// Create controllers
	gameController := &controllers.GameController{DB: sqlDB}

	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	// Manual login with a raw steamID (the OpenID flow lives outside this service)
	api.POST("/alt-login", controllers.AltLogin(gateway))

	api.DELETE("/logout", controllers.Logout)

	rooms := api.Group("/rooms")
	{
		rooms.POST("", controllers.CreateRoom(sessions))

		rooms.GET("/:code", controllers.GetRoomInfo(sessions))
	}

	api.GET("/games/:app_id", gameController.GetGameInfo)
}
