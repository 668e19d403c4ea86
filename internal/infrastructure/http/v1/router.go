// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"apikit/internal/core/i18n"
	"apikit/internal/core/security"
	"apikit/internal/domain/auth"
	"apikit/internal/domain/user"
	"apikit/internal/infrastructure/http/v1/handlers"
	"apikit/internal/infrastructure/http/v1/middleware"
	"apikit/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Mode is the gin mode; empty keeps the current one
	Mode string

	// Logger for request logging
	Logger *logger.Logger

	// AuthService for authentication endpoints and bearer verification
	AuthService *auth.Service

	// UserService for the current-user endpoint
	UserService *user.Service

	// Resolver serves the message catalogs
	Resolver *i18n.Resolver

	// ReadinessChecks are probed by /health/ready
	ReadinessChecks map[string]handlers.Check

	// CORS settings
	CORS middleware.CORSConfig

	// StaticDir holds the SPA build; empty disables static serving
	StaticDir string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!). Recovery runs inside Lifecycle so
	// panics reach the failure path.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.Lifecycle())
	router.Use(middleware.Recovery())

	// Global middleware also runs for unmatched routes.
	router.NoRoute(noRoute(cfg.StaticDir))

	healthHandler := handlers.NewHealthHandler(cfg.ReadinessChecks)
	health := router.Group("/health")
	{
		health.GET("/live", handlers.Handle(healthHandler.Live))
		health.GET("/ready", handlers.Handle(healthHandler.Ready))
	}

	api := router.Group("/api")
	api.GET("/health", handlers.Handle(healthHandler.Live))

	registerAuthRoutes(api, cfg)
	registerUserRoutes(api, cfg)
	registerI18nRoutes(api, cfg)

	return router
}

func registerAuthRoutes(api *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewAuthHandler(cfg.AuthService)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", handlers.Handle(h.Login))
		authGroup.POST("/register", handlers.Handle(h.Register))
	}

	secure := secureGroup(authGroup, cfg.AuthService)
	{
		secure.POST("/logout", handlers.Handle(h.Logout))
	}
}

func registerUserRoutes(api *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewUserHandler(cfg.UserService, security.NewAccessVerifier())

	userSecure := secureGroup(api.Group("/user"), cfg.AuthService)
	{
		userSecure.GET("/info", handlers.Handle(h.Info))
	}

	testSecure := secureGroup(api.Group("/test"), cfg.AuthService)
	{
		testSecure.GET("/admin", handlers.Handle(h.Admin))
		testSecure.GET("/user", middleware.RequireRole(security.RoleUser), handlers.Handle(ok))
	}
}

func registerI18nRoutes(api *gin.RouterGroup, cfg RouterConfig) {
	h := handlers.NewI18nHandler(cfg.Resolver)

	group := api.Group("/i18n")
	{
		group.GET("/messages", handlers.Handle(h.Messages))
		group.POST("/resolve", handlers.Handle(h.Resolve))
	}
}
