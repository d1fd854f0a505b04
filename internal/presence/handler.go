package presence

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mingle/internal/api/httputil"
	"mingle/internal/conversation"
	"mingle/internal/database"
	"mingle/internal/profile"
)

type Handler struct {
	service       *Service
	conversations *conversation.Service
	profiles      *profile.Service
}

func NewHandler(service *Service, conversations *conversation.Service, profiles *profile.Service) *Handler {
	return &Handler{service: service, conversations: conversations, profiles: profiles}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/conversations/:id/typing", h.setTyping)
	r.GET("/conversations/:id/typing", h.typers)
	r.POST("/presence/heartbeat", h.heartbeat)
	r.POST("/presence/offline", h.offline)
}

func (h *Handler) setTyping(c *gin.Context) {
	userID := httputil.UserID(c)

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var input struct {
		Typing bool `json:"typing"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.conversations.RequireParticipant(conversationID, userID); err != nil {
		httputil.WriteError(c, err, "failed to update typing state")
		return
	}

	if err := h.service.SetTyping(c.Request.Context(), conversationID, userID, input.Typing); err != nil {
		httputil.WriteError(c, err, "failed to update typing state")
		return
	}

	c.JSON(http.StatusOK, gin.H{"typing": input.Typing})
}

func (h *Handler) typers(c *gin.Context) {
	userID := httputil.UserID(c)

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	if err := h.conversations.RequireParticipant(conversationID, userID); err != nil {
		httputil.WriteError(c, err, "failed to load typing state")
		return
	}

	typers, err := h.service.TypersIn(c.Request.Context(), conversationID, userID)
	if err != nil {
		httputil.WriteError(c, err, "failed to load typing state")
		return
	}

	c.JSON(http.StatusOK, gin.H{"typing": typers})
}

func (h *Handler) heartbeat(c *gin.Context) {
	userID := httputil.UserID(c)

	if err := h.service.Heartbeat(c.Request.Context(), userID); err != nil {
		httputil.WriteError(c, err, "failed to record heartbeat")
		return
	}
	if err := h.profiles.SetStatus(userID, database.StatusOnline); err != nil {
		httputil.WriteError(c, err, "failed to record heartbeat")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "online"})
}

func (h *Handler) offline(c *gin.Context) {
	userID := httputil.UserID(c)

	if err := h.service.Offline(c.Request.Context(), userID); err != nil {
		httputil.WriteError(c, err, "failed to go offline")
		return
	}
	if err := h.profiles.SetStatus(userID, database.StatusOffline); err != nil {
		httputil.WriteError(c, err, "failed to go offline")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "offline"})
}
