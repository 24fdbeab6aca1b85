package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kavak-agent/internal/model"
	"kavak-agent/internal/service"
)

// TurnHandler answers one chat turn for a channel.
type TurnHandler interface {
	Handle(ctx context.Context, channelID, raw string) string
}

// ChatHandler handles the JSON chat API
type ChatHandler struct {
	chat TurnHandler
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat TurnHandler) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	channel := strings.TrimSpace(req.ChannelID)
	if channel == "" {
		channel = service.DefaultChannel
	}

	reply := h.chat.Handle(c.Request.Context(), channel, req.Text)
	c.JSON(http.StatusOK, model.ChatResponse{ChannelID: channel, Reply: reply})
}
