package router

import (
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vnxcius/accounts-api/internal/auth"
	"github.com/vnxcius/accounts-api/internal/config"
	"github.com/vnxcius/accounts-api/internal/http/handlers"
	"github.com/vnxcius/accounts-api/internal/http/middleware"
)

func New(cfg *config.Config, h *handlers.UserHandler, authenticator auth.Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(middleware.SlogLogger())
	r.Use(gin.Recovery())

	// the API sits behind a local reverse proxy
	err := r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	if err != nil {
		log.Fatalf("Failed to set trusted proxies: %v", err)
	}

	allowedOrigins := strings.Split(cfg.AllowedOrigins, ",")

	slog.Info("Allowing origins", "origins", allowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	r.GET("/ping", handlers.Ping)

	{
		users := r.Group("/api/users").Use(middleware.RateLimit())
		users.POST("", h.Register)
		users.POST("/login", middleware.LoginRateLimit(), h.Login)
	}

	{
		protected := r.Group("/api/users")
		protected.Use(middleware.RateLimit())
		protected.Use(middleware.TokenAuth(authenticator))

		protected.POST("/logout", h.Logout)
		protected.GET("/:id", h.Show)
		protected.PUT("/actualizar", h.Update)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"message": "Not Found: " + c.Request.URL.Path})
	})

	return r
}

func Run(r *gin.Engine, cfg *config.Config) {
	slog.Info("Starting server on port " + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
