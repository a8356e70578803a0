package handler

import (
	"context"
	"net/http"
	"strings"

	"vlxd/internal/chatbot"
	"vlxd/internal/model"
	"vlxd/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatResponder resolves a customer message
type ChatResponder interface {
	Reply(ctx context.Context, message string) *model.ChatReply
}

var _ ChatResponder = (*service.ChatService)(nil)

// ChatHandler handles chat triage requests
type ChatHandler struct {
	chat ChatResponder
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatResponder) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Triage handles POST /api/v1/chat/triage
func (h *ChatHandler) Triage(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must not be empty"})
		return
	}

	c.JSON(http.StatusOK, h.chat.Reply(c.Request.Context(), req.Message))
}

// StoreInfo handles GET /api/v1/chat/store-info
func (h *ChatHandler) StoreInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"store":    chatbot.StoreInformation(),
		"policies": chatbot.StorePolicies(),
	})
}
