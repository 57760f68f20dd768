package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mingle/internal/services"
)

type ChatHandler struct {
	chats *services.ChatService
}

func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// @Summary      List the caller's chats
// @Description  Returns all chats the authenticated user participates in, most recently active first
// @Tags         Chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Chat
// @Failure      401  {object}  map[string]string
// @Router       /chats [get]
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID, _ := currentUser(c)

	chats, err := h.chats.ListChats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// @Summary      Get or create a chat with another user
// @Description  Returns the existing chat with the given user, creating it when both users follow each other
// @Tags         Chats
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true  "Other user ID"
// @Success      200     {object}  models.Chat
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /chats/{id} [get]
func (h *ChatHandler) GetOrCreateChat(c *gin.Context) {
	userID, _ := currentUser(c)
	otherID := c.Param("id")

	chat, err := h.chats.GetOrCreateChat(c.Request.Context(), userID, otherID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

// @Summary      Get chat messages
// @Description  Returns a page of messages, newest first, and marks the chat as read for the caller
// @Tags         Chats
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "Chat ID"
// @Param        page    query     int     false  "Page number"   default(1)
// @Param        limit   query     int     false  "Page size"     default(20)
// @Success      200     {object}  services.MessagePage
// @Failure      403     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /chats/{id}/messages [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID, _ := currentUser(c)
	chatID := c.Param("id")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	res, err := h.chats.GetMessages(c.Request.Context(), chatID, userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
