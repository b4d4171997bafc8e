package main

import (
	"Coplay/config"
	"Coplay/middleware"
	"Coplay/routes"
	"Coplay/services/aggregation"
	"Coplay/services/catalog"
	"Coplay/services/provider"
	"Coplay/services/redis"
	"Coplay/services/session"
	"Coplay/services/socket_io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// @title Coplay API
// @version 1.0
// @description Gin-Gonic server for the Coplay shared-library backend
// @BasePath /
func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
			// Continue execution even if migration fails
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	log.Println("Connection to Redis successful")
	defer redis.CloseRedis(redisClient)

	// Core services
	gateway := provider.NewSteamGateway(os.Getenv("STEAM_API_KEY"))
	cache := catalog.NewCache(catalog.NewGormStore(gormDB), gateway, catalog.NeverStale)
	engine := aggregation.NewEngine(cache)

	ttl := 24 * time.Hour
	if hours, err := strconv.Atoi(os.Getenv("SESSION_TTL_HOURS")); err == nil && hours > 0 {
		ttl = time.Duration(hours) * time.Hour
	}
	sessionManager := session.NewManager(redisClient, ttl)
	stopExpiry := sessionManager.StartExpiry(10 * time.Minute)
	defer stopExpiry()

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	routes.SetupRoutes(r, sqlDB, sessionManager, gateway)

	sio := &socket_io.MySocketServer{}
	sio.Start(r, sessionManager, engine)

	// Configure port
	port := os.Getenv("PORT")
	if port == "" && os.Getenv("USE_HTTPS") == "true" {
		port = "443"
	} else if port == "" {
		port = "8080"
	}

	if os.Getenv("USE_HTTPS") == "true" {
		// SSL certification configuration for HTTPS
		certFile := os.Getenv("SSL_CERT_FILE")
		keyFile := os.Getenv("SSL_KEY_FILE")

		// Start server
		if err := r.RunTLS(":"+port, certFile, keyFile); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	} else {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}
}
