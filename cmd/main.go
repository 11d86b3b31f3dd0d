package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"heartlink/backend/internal/api/handler"
	"heartlink/backend/internal/chat"
	"heartlink/backend/internal/config"
	"heartlink/backend/internal/identity"
	"heartlink/backend/internal/logger"
	"heartlink/backend/internal/match"
	"heartlink/backend/internal/models"
	"heartlink/backend/internal/presence"
	"heartlink/backend/internal/swipe"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(log *logger.Logger) (*gorm.DB, *redis.Client) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		dsn = "host=localhost user=user password=password dbname=heartlink port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("postgres connection failed", "error", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatal("redis connection failed", "error", err)
	}

	// user_profiles is owned upstream; migrating it here keeps local
	// development self-contained and is a no-op against a shared database.
	err = db.AutoMigrate(
		&models.UserProfile{},
		&models.SwipeLog{},
		&models.Match{},
		&models.Message{},
	)
	if err != nil {
		log.Fatal("migrations failed", "error", err)
	}

	log.Info("database and redis connections established, migrations complete")
	return db, rdb
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("warning: no .env file loaded")
	}

	log, err := logger.New(getEnv("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET_KEY is not set")
	}

	db, rdb := setupDependencies(log)
	limits := config.LimitsFromEnv()

	resolver := identity.NewResolver(db, rdb, config.IdentityCacheTTL, log)
	ledger := swipe.NewLedger(db, limits, log)
	engine := match.NewEngine(db, ledger, limits, log)
	store := chat.NewStore(db, engine, log)

	bridge := presence.NewRedisBridge(rdb, log)
	hub := presence.NewHub(store, resolver, bridge, log)
	go hub.Run()
	go bridge.Listen(context.Background(), hub)

	h := handler.NewHandler(ledger, engine, store, resolver, hub, []byte(jwtSecret), log)

	r := gin.Default()
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api", h.AuthRequired())
	{
		api.POST("/swipes/remaining", h.RemainingSwipes)
		api.POST("/swipe", h.ProcessSwipe)
		api.POST("/matches", h.GetMatches)
		api.POST("/chat/send", h.SendMessage)
		api.POST("/chat/history", h.GetHistory)
		api.POST("/chat/recent", h.GetRecent)
		api.DELETE("/chat/message/:id", h.DeleteMessage)
	}

	server := &http.Server{
		Addr:           getEnv("LISTEN_ADDR", ":8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Info("starting heartlink interaction core", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
