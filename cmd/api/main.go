package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/vnxcius/accounts-api/internal/auth"
	"github.com/vnxcius/accounts-api/internal/config"
	"github.com/vnxcius/accounts-api/internal/database/pg"
	"github.com/vnxcius/accounts-api/internal/database/store"
	"github.com/vnxcius/accounts-api/internal/http/handlers"
	"github.com/vnxcius/accounts-api/internal/http/router"
	"github.com/vnxcius/accounts-api/internal/logging"
	"github.com/vnxcius/accounts-api/internal/token"
)

func main() {
	// load environment variables
	cfg := config.GetConfig()
	log.Println("Loaded environment", cfg.Environment)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	logging.SetupLogger(cfg.LogFile)

	switch cfg.Environment {
	case "development":
		gin.SetMode(gin.DebugMode)
	case "production":
		gin.SetMode(gin.ReleaseMode)
	}
	log.Printf("Gin mode set to: %s", gin.Mode())

	// initialize database connection
	db, err := pg.NewConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := pg.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	users := store.NewUsers(db)
	sessions := store.NewSessions(db)
	maker := token.NewJWTMaker(cfg.JWTSecret)

	authenticator, err := auth.NewService(context.Background(), users, sessions, maker, cfg.TokenTTL)
	if err != nil {
		log.Fatal("Failed to build authenticator: ", err)
	}

	h := handlers.NewUserHandler(users, authenticator)
	r := router.New(cfg, h, authenticator)
	router.Run(r, cfg)
}
