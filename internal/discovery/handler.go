package discovery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mingle/internal/api/httputil"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/discovery", h.list)
	r.GET("/discovery/settings", h.settings)
	r.PUT("/discovery/settings", h.updateSettings)
}

func (h *Handler) list(c *gin.Context) {
	results, err := h.service.ListDiscoverable(
		httputil.UserID(c),
		c.Query("q"),
		c.Query("online") == "true",
	)
	if err != nil {
		httputil.WriteError(c, err, "failed to load discovery results")
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) settings(c *gin.Context) {
	setting, err := h.service.Settings(httputil.UserID(c))
	if err != nil {
		httputil.WriteError(c, err, "failed to load settings")
		return
	}
	c.JSON(http.StatusOK, setting)
}

func (h *Handler) updateSettings(c *gin.Context) {
	var input struct {
		Discoverable    bool     `json:"discoverable"`
		LocationSharing bool     `json:"location_sharing"`
		Interests       []string `json:"interests"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setting, err := h.service.UpdateSettings(httputil.UserID(c), SettingsInput(input))
	if err != nil {
		httputil.WriteError(c, err, "failed to update settings")
		return
	}
	c.JSON(http.StatusOK, setting)
}
