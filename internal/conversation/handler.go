package conversation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mingle/internal/api/httputil"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/conversations", h.list)
	r.POST("/conversations/direct", h.getOrCreateDirect)
	r.POST("/conversations/group", h.createGroup)
	r.GET("/conversations/:id", h.get)
	r.POST("/conversations/:id/read", h.markRead)
	r.GET("/conversations/:id/settings", h.settings)
	r.PUT("/conversations/:id/settings", h.updateSettings)
}

func (h *Handler) list(c *gin.Context) {
	views, err := h.service.ListForUser(httputil.UserID(c))
	if err != nil {
		httputil.WriteError(c, err, "failed to load conversations")
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) getOrCreateDirect(c *gin.Context) {
	var input struct {
		UserID uuid.UUID `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.service.GetOrCreateDirect(httputil.UserID(c), input.UserID)
	if err != nil {
		httputil.WriteError(c, err, "failed to open conversation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conv.ID})
}

func (h *Handler) createGroup(c *gin.Context) {
	var input struct {
		Name      string      `json:"name" binding:"required"`
		MemberIDs []uuid.UUID `json:"member_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.service.CreateGroup(httputil.UserID(c), input.Name, input.MemberIDs)
	if err != nil {
		httputil.WriteError(c, err, "failed to create group")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"conversation_id": conv.ID})
}

func (h *Handler) get(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	view, err := h.service.Get(conversationID, httputil.UserID(c))
	if err != nil {
		httputil.WriteError(c, err, "failed to load conversation")
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) markRead(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	if err := h.service.MarkRead(conversationID, httputil.UserID(c)); err != nil {
		httputil.WriteError(c, err, "failed to mark as read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (h *Handler) settings(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	settings, err := h.service.Settings(conversationID, httputil.UserID(c))
	if err != nil {
		httputil.WriteError(c, err, "failed to load settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *Handler) updateSettings(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var input struct {
		EphemeralEnabled         bool `json:"ephemeral_enabled"`
		EphemeralDurationMinutes int  `json:"ephemeral_duration_minutes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.UpdateSettings(conversationID, httputil.UserID(c),
		input.EphemeralEnabled, input.EphemeralDurationMinutes)
	if err != nil {
		httputil.WriteError(c, err, "failed to update settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
