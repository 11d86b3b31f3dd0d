package handler

import (
	"net/http"
	"strconv"

	"heartlink/backend/internal/apperr"
	"heartlink/backend/internal/models"
	"heartlink/backend/internal/presence"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	ReceiverUsername string `json:"receiver_username"`
	Message          string `json:"message"`
}

type historyRequest struct {
	Username string `json:"username"`
}

// SendMessage persists a message to a matched user.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ReceiverUsername == "" || req.Message == "" {
		h.writeError(c, apperr.Validationf("receiver_username and message are required"))
		return
	}

	ctx := c.Request.Context()
	senderID, err := h.Dir.ResolveUsername(ctx, callerUsername(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	receiverID, err := h.Dir.ResolveUsername(ctx, req.ReceiverUsername)
	if err != nil {
		h.writeError(c, err)
		return
	}

	msg, err := h.Chat.SendMessage(ctx, senderID, receiverID, req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// The message is durably stored; push it to anyone watching the chat and
	// notify the receiver. The response reflects storage only, live delivery
	// stays best-effort.
	if h.Hub != nil {
		pair := presence.PairRoom(msg.SenderID, msg.ReceiverID)
		body := models.MessagePayload{
			MessageID:      msg.MessageID,
			SenderID:       msg.SenderID,
			SenderUsername: callerUsername(c),
			ReceiverID:     msg.ReceiverID,
			Message:        msg.MessageText,
			SentAt:         msg.SentAt,
			Room:           pair,
		}
		h.Hub.Publish(ctx, pair, models.ServerEvent{Event: models.EventMessage, Data: body})
		h.Hub.Publish(ctx, presence.UserRoom(msg.ReceiverID), models.ServerEvent{Event: models.EventNotification, Data: body})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message_id": msg.MessageID,
		"sent_at":    msg.SentAt,
	})
}

// GetHistory returns the conversation with another user and marks received
// messages read.
func (h *Handler) GetHistory(c *gin.Context) {
	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		h.writeError(c, apperr.Validationf("username is required"))
		return
	}

	ctx := c.Request.Context()
	userID, err := h.Dir.ResolveUsername(ctx, callerUsername(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	otherID, err := h.Dir.ResolveUsername(ctx, req.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}

	history, err := h.Chat.GetHistory(ctx, userID, otherID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "messages": history})
}

// GetRecent returns the caller's last message per conversation.
func (h *Handler) GetRecent(c *gin.Context) {
	userID, err := h.Dir.ResolveUsername(c.Request.Context(), callerUsername(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	conversations, err := h.Chat.GetRecent(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "conversations": conversations})
}

// DeleteMessage soft-deletes one of the caller's messages.
func (h *Handler) DeleteMessage(c *gin.Context) {
	messageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.writeError(c, apperr.Validationf("message id must be numeric"))
		return
	}

	userID, err := h.Dir.ResolveUsername(c.Request.Context(), callerUsername(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.Chat.DeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
