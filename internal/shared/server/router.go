package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"augenblick-backend/internal/assist"
	googleauth "augenblick-backend/internal/auth"
	"augenblick-backend/internal/collaborators"
	"augenblick-backend/internal/documents"
	"augenblick-backend/internal/exports"
	"augenblick-backend/internal/presence"
	"augenblick-backend/internal/shared/config"
	"augenblick-backend/internal/shared/metrics"
	"augenblick-backend/internal/shared/server/middleware"
	"augenblick-backend/internal/shared/server/respond"
	"augenblick-backend/internal/sync"
	"augenblick-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config              config.Config
	DocumentHandler     *documents.Handler
	CollaboratorHandler *collaborators.Handler
	PresenceHandler     *presence.Handler
	AssistHandler       *assist.Handler
	SyncHandler         *sync.Handler
	ExportHandler       *exports.Handler
	UserHandler         *users.Handler
	GoogleAuth          *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				// LLM calls are expensive upstream; everything else is cheap.
				"LLM":     {Rate: 0.5, Burst: 5},
				"DEFAULT": {Rate: 50, Burst: 100},
			},
			GroupFor: func(c *gin.Context) string {
				if strings.HasPrefix(c.Request.URL.Path, "/api/v1/assist") {
					return "LLM"
				}
				return "DEFAULT"
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	deps.GoogleAuth.RegisterRoutes(api)
	deps.UserHandler.RegisterRoutes(api)
	deps.DocumentHandler.RegisterRoutes(api)
	deps.CollaboratorHandler.RegisterRoutes(api)
	deps.PresenceHandler.RegisterRoutes(api)
	deps.AssistHandler.RegisterRoutes(api)
	deps.SyncHandler.RegisterRoutes(api)
	deps.ExportHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
