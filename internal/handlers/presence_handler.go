package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mingle/internal/presence"
)

type PresenceHandler struct {
	tracker *presence.Tracker
}

func NewPresenceHandler(tracker *presence.Tracker) *PresenceHandler {
	return &PresenceHandler{tracker: tracker}
}

// @Summary      Check whether a user is online
// @Tags         Presence
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /presence/{id} [get]
func (h *PresenceHandler) Online(c *gin.Context) {
	userID := c.Param("id")

	online, err := h.tracker.Online(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "online": online})
}
