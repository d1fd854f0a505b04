package blob

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mingle/internal/api/httputil"
	"mingle/internal/conversation"
)

type Handler struct {
	store         *Store
	conversations *conversation.Service
}

func NewHandler(store *Store, conversations *conversation.Service) *Handler {
	return &Handler{store: store, conversations: conversations}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/conversations/:id/files", h.uploadChatFile)
}

// uploadChatFile stages an attachment; the caller then sends a message row
// referencing the returned URL.
func (h *Handler) uploadChatFile(c *gin.Context) {
	userID := httputil.UserID(c)

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}
	if err := h.conversations.RequireParticipant(conversationID, userID); err != nil {
		httputil.WriteError(c, err, "failed to upload file")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if c.Query("image") == "true" {
		if err := h.store.ValidateImage(file.Size, contentType); err != nil {
			httputil.WriteError(c, err, "failed to upload file")
			return
		}
	} else if err := h.store.Validate(BucketChatFiles, file.Size, contentType); err != nil {
		httputil.WriteError(c, err, "failed to upload file")
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	path := fmt.Sprintf("%s/%d_%s", conversationID, time.Now().UnixNano(), file.Filename)
	stored, err := h.store.Upload(BucketChatFiles, path, data, contentType)
	if err != nil {
		httputil.WriteError(c, err, "failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"url":  h.store.PublicURL(BucketChatFiles, stored),
		"name": file.Filename,
		"size": file.Size,
	})
}
