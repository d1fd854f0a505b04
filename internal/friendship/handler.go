package friendship

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mingle/infrastructure"
	"mingle/internal/api/httputil"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/friends", h.listFriends)
	r.DELETE("/friends/:id", h.removeFriend)
	r.GET("/friends/requests/incoming", h.listIncoming)
	r.GET("/friends/requests/outgoing", h.listOutgoing)
	r.POST("/friends/requests", h.sendRequest)
	r.POST("/friends/requests/:id/accept", h.acceptRequest)
	r.DELETE("/friends/requests/:id", h.declineRequest)
}

func (h *Handler) sendRequest(c *gin.Context) {
	userID := httputil.UserID(c)

	var input struct {
		FriendID uuid.UUID `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.SendRequest(userID, input.FriendID)
	if err != nil {
		switch {
		case errors.Is(err, infrastructure.ErrSelfFriendship):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot send a request to yourself"})
		case errors.Is(err, infrastructure.ErrAlreadyRequested),
			errors.Is(err, infrastructure.ErrAlreadyFriends),
			errors.Is(err, infrastructure.ErrBlocked):
			c.JSON(http.StatusConflict, gin.H{"error": "already requested"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send friend request"})
		}
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *Handler) acceptRequest(c *gin.Context) {
	userID := httputil.UserID(c)

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	if err := h.service.Accept(requestID, userID); err != nil {
		httputil.WriteError(c, err, "failed to accept friend request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (h *Handler) declineRequest(c *gin.Context) {
	userID := httputil.UserID(c)

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	if err := h.service.Decline(requestID, userID); err != nil {
		httputil.WriteError(c, err, "failed to decline friend request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "declined"})
}

func (h *Handler) removeFriend(c *gin.Context) {
	userID := httputil.UserID(c)

	friendID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	if err := h.service.Remove(userID, friendID); err != nil {
		httputil.WriteError(c, err, "failed to remove friend")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *Handler) listFriends(c *gin.Context) {
	views, err := h.service.ListFriends(httputil.UserID(c))
	if err != nil {
		httputil.WriteError(c, err, "failed to load friends")
		return
	}
	c.JSON(http.StatusOK, toResponses(views))
}

func (h *Handler) listIncoming(c *gin.Context) {
	views, err := h.service.ListIncoming(httputil.UserID(c))
	if err != nil {
		httputil.WriteError(c, err, "failed to load requests")
		return
	}
	c.JSON(http.StatusOK, toResponses(views))
}

func (h *Handler) listOutgoing(c *gin.Context) {
	views, err := h.service.ListOutgoing(httputil.UserID(c))
	if err != nil {
		httputil.WriteError(c, err, "failed to load requests")
		return
	}
	c.JSON(http.StatusOK, toResponses(views))
}

type response struct {
	ID      uuid.UUID   `json:"id"`
	Status  string      `json:"status"`
	Profile interface{} `json:"profile"`
}

func toResponses(views []FriendView) []response {
	out := make([]response, 0, len(views))
	for _, v := range views {
		out = append(out, response{ID: v.Edge.ID, Status: v.Edge.Status, Profile: v.Profile})
	}
	return out
}
