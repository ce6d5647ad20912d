package http

import (
	stdhttp "net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomchat/internal/auth"
	"github.com/vovakirdan/roomchat/internal/config"
	"github.com/vovakirdan/roomchat/internal/core"
	"github.com/vovakirdan/roomchat/internal/service/rooms"
	"github.com/vovakirdan/roomchat/internal/session"
)

// NewServer builds the HTTP server: REST API, health endpoint and the WebSocket endpoint.
func NewServer(
	hub *core.Hub,
	authService *auth.Service,
	roomService *rooms.Service,
	sessions *session.Registry,
	cfg *config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/health", healthHandler(hub, sessions))
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, cfg, logger)))

	api := router.Group("/api")
	apiHandlers := NewAPIHandlers(authService, sessions, logger)
	api.POST("/register", apiHandlers.Register)
	api.POST("/login", apiHandlers.Login)

	roomHandlers := NewRoomHandlers(roomService, logger)
	protected := api.Group("/rooms", AuthMiddleware(authService, logger))
	protected.GET("", roomHandlers.ListRooms)
	protected.POST("", roomHandlers.CreateRoom)
	protected.GET("/:id", roomHandlers.GetRoom)
	protected.POST("/:id/join", roomHandlers.JoinRoom)
	protected.DELETE("/:id", roomHandlers.DeleteRoom)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowWebSockets = true
	c.AddAllowHeaders("Authorization")
	return c
}

// HealthResponse reports liveness and live session counts.
type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Sessions    int    `json:"sessions"`
	Rooms       int    `json:"rooms"`
}

func healthHandler(hub *core.Hub, sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := hub.Stats()
		c.JSON(stdhttp.StatusOK, HealthResponse{
			Status:      "ok",
			Connections: stats.Connections,
			Sessions:    sessions.Count(),
			Rooms:       stats.Rooms,
		})
	}
}
