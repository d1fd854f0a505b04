package profile

import (
	"io"
	"net/http"
	"path/filepath"

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
	r.GET("/profile", h.me)
	r.PATCH("/profile", h.update)
	r.PUT("/profile/avatar", h.updateAvatar)
	r.PUT("/profile/status", h.setStatus)
	r.GET("/profiles/:id", h.get)
}

func (h *Handler) me(c *gin.Context) {
	profile, err := h.service.Get(httputil.UserID(c))
	if err != nil {
		httputil.WriteError(c, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}

	profile, err := h.service.Get(id)
	if err != nil {
		httputil.WriteError(c, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) update(c *gin.Context) {
	var input struct {
		Username    *string `json:"username"`
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
		PrivacyMode *bool   `json:"privacy_mode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.service.Update(httputil.UserID(c), UpdateInput(input))
	if err != nil {
		httputil.WriteError(c, err, "failed to update profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) updateAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file required"})
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

	contentType := file.Header.Get("Content-Type")
	profile, err := h.service.UpdateAvatar(httputil.UserID(c), data, contentType, filepath.Ext(file.Filename))
	if err != nil {
		httputil.WriteError(c, err, "failed to update avatar")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) setStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SetStatus(httputil.UserID(c), input.Status); err != nil {
		httputil.WriteError(c, err, "failed to update status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": input.Status})
}
