package main

import (
	"context"
	"log"
	"time"

	"github.com/hucha-app/hucha-api/config"
	"github.com/hucha-app/hucha-api/handlers"
	"github.com/hucha-app/hucha-api/middleware"
	"github.com/hucha-app/hucha-api/routes"
	"github.com/hucha-app/hucha-api/services"
	"github.com/hucha-app/hucha-api/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	wsHandler := handlers.NewWSHandler()
	local := store.NewLocalStore(cfg.LocalStatePath)

	// Remote mode needs real credentials; anything less starts local.
	var remote services.RemoteDocument
	if cfg.HasRemoteCredentials() {
		db, err := config.InitDB(cfg.DatabaseURL)
		if err != nil {
			log.Printf("⚠️ Remote state database unreachable, will use local state: %v", err)
		} else {
			defer db.Close()
			if err := config.RunMigrations(db); err != nil {
				log.Printf("⚠️ Migrations failed, will use local state: %v", err)
			} else {
				log.Println("✅ State database connected")
				remote = store.NewRemoteStore(db, cfg.DatabaseURL, cfg.StateSlot)
			}
		}
	} else {
		log.Println("ℹ️ No remote state credentials, running on local state")
	}

	session := services.NewSession(remote, local, wsHandler.BroadcastRefresh)
	defer session.Close()

	session.Start(context.Background())

	// Do not serve until the first document (remote snapshot or local
	// seed) is in memory.
	readyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := session.WaitReady(readyCtx); err != nil {
		log.Printf("⚠️ Timed out waiting for initial state, falling back to local: %v", err)
		session.FallbackToLocal("startup timeout")
	}
	log.Printf("✅ Initial state loaded (mode: %s)", session.Mode())

	router := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	router.Use(cors.New(corsConfig))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("📨 %s %s - %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	})

	router.Use(middleware.RateLimiter())

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, session)
		v1.GET("/ws", wsHandler.HandleWS)

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.SetupStateRoutes(protected, session)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "healthy",
			"mode":   session.Mode(),
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	log.Printf("🚀 Server starting on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
