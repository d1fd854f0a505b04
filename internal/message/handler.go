package message

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
	r.GET("/conversations/:id/messages", h.list)
	r.POST("/conversations/:id/messages", h.send)
	r.PATCH("/messages/:id", h.edit)
	r.DELETE("/messages/:id", h.delete)
	r.POST("/messages/:id/reactions", h.toggleReaction)
}

func (h *Handler) list(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	views, err := h.service.List(conversationID, httputil.UserID(c))
	if err != nil {
		httputil.WriteError(c, err, "failed to load messages")
		return
	}

	c.JSON(http.StatusOK, views)
}

func (h *Handler) send(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	var input struct {
		Content   string     `json:"content"`
		Type      string     `json:"type"`
		FileURL   string     `json:"file_url"`
		FileName  string     `json:"file_name"`
		FileSize  int64      `json:"file_size"`
		Ephemeral bool       `json:"ephemeral"`
		ReplyToID *uuid.UUID `json:"reply_to_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.service.Send(SendInput{
		ConversationID: conversationID,
		SenderID:       httputil.UserID(c),
		Content:        input.Content,
		Type:           input.Type,
		FileURL:        input.FileURL,
		FileName:       input.FileName,
		FileSize:       input.FileSize,
		Ephemeral:      input.Ephemeral,
		ReplyToID:      input.ReplyToID,
	})
	if err != nil {
		httputil.WriteError(c, err, "failed to send message")
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) edit(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Edit(messageID, httputil.UserID(c), input.Content); err != nil {
		httputil.WriteError(c, err, "failed to edit message")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "edited"})
}

func (h *Handler) delete(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	if err := h.service.Delete(messageID, httputil.UserID(c)); err != nil {
		httputil.WriteError(c, err, "failed to delete message")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) toggleReaction(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var input struct {
		Emoji string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ToggleReaction(messageID, httputil.UserID(c), input.Emoji); err != nil {
		httputil.WriteError(c, err, "failed to toggle reaction")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "toggled"})
}
