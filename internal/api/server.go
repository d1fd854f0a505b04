package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mingle/internal/api/httputil"
	"mingle/internal/auth"
	"mingle/internal/blob"
	"mingle/internal/conversation"
	"mingle/internal/discovery"
	"mingle/internal/friendship"
	"mingle/internal/message"
	"mingle/internal/presence"
	"mingle/internal/profile"
	"mingle/internal/realtime"
	"mingle/pkg/jwt"
)

// Handlers bundles every route group the server mounts.
type Handlers struct {
	Auth         *auth.Handler
	Profile      *profile.Handler
	Friendship   *friendship.Handler
	Conversation *conversation.Handler
	Message      *message.Handler
	Discovery    *discovery.Handler
	Presence     *presence.Handler
	Blob         *blob.Handler
}

type Server struct {
	router *gin.Engine
	hub    *realtime.Hub
}

func NewServer(tokens *jwt.JWT, hub *realtime.Hub, blobs *blob.Store, handlers Handlers) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(Logger())
	router.Use(RateLimitMiddleware(50))

	server := &Server{router: router, hub: hub}

	router.GET("/health", server.healthCheck)
	router.Static("/files", blobs.Dir())

	authGroup := router.Group("/auth")
	handlers.Auth.RegisterRoutes(authGroup)

	authed := router.Group("/")
	authed.Use(AuthMiddleware(tokens))
	{
		handlers.Profile.RegisterRoutes(authed)
		handlers.Friendship.RegisterRoutes(authed)
		handlers.Conversation.RegisterRoutes(authed)
		handlers.Message.RegisterRoutes(authed)
		handlers.Discovery.RegisterRoutes(authed)
		handlers.Presence.RegisterRoutes(authed)
		handlers.Blob.RegisterRoutes(authed)
		authed.GET("/ws", server.serveWS)
	}

	return server
}

func (s *Server) Run(addr string) error {
	go s.hub.Run()
	return s.router.Run(addr)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) serveWS(c *gin.Context) {
	realtime.ServeWS(s.hub, c.Writer, c.Request, httputil.UserID(c))
}
