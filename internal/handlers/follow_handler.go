package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mingle/internal/services"
)

type FollowHandler struct {
	follows *services.FollowService
}

func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// @Summary      Send a follow request
// @Tags         Follows
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User to follow"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /follows/{id} [post]
func (h *FollowHandler) Request(c *gin.Context) {
	userID, _ := currentUser(c)
	targetID := c.Param("id")

	if err := h.follows.Request(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Follow request sent"})
}

// @Summary      Accept a follow request
// @Tags         Follows
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Requesting user"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /follows/{id}/accept [post]
func (h *FollowHandler) Accept(c *gin.Context) {
	userID, _ := currentUser(c)
	followerID := c.Param("id")

	if err := h.follows.Accept(c.Request.Context(), followerID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Follow request accepted"})
}

// @Summary      Reject a follow request
// @Tags         Follows
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Requesting user"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /follows/{id}/reject [post]
func (h *FollowHandler) Reject(c *gin.Context) {
	userID, _ := currentUser(c)
	followerID := c.Param("id")

	if err := h.follows.Reject(c.Request.Context(), followerID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Follow request rejected"})
}
