// Package handler is the external-facing adapter: it translates REST and
// websocket traffic into core operations, and usernames into internal ids.
package handler

import (
	"context"

	"heartlink/backend/internal/chat"
	"heartlink/backend/internal/logger"
	"heartlink/backend/internal/match"
	"heartlink/backend/internal/models"
	"heartlink/backend/internal/presence"
	"heartlink/backend/internal/swipe"
)

// SwipeService is the ledger surface the gateway consumes.
type SwipeService interface {
	RemainingQuota(ctx context.Context, actorID int64) (swipe.Quota, error)
}

// MatchService is the engine surface the gateway consumes.
type MatchService interface {
	EvaluateSwipe(ctx context.Context, actorID, targetID int64, direction string) (match.SwipeResult, error)
	GetMatches(ctx context.Context, userID int64) ([]match.Summary, error)
}

// ChatService is the store surface the gateway consumes.
type ChatService interface {
	SendMessage(ctx context.Context, senderID, receiverID int64, text string) (*models.Message, error)
	GetHistory(ctx context.Context, userID, otherID int64) ([]models.Message, error)
	GetRecent(ctx context.Context, userID int64) ([]chat.Conversation, error)
	DeleteMessage(ctx context.Context, messageID uint64, userID int64) error
}

// Directory resolves external identity; the lookup itself belongs to the
// authentication collaborator upstream.
type Directory interface {
	ResolveUsername(ctx context.Context, username string) (int64, error)
}

// Handler holds the gateway's collaborators.
type Handler struct {
	Swipes    SwipeService
	Matches   MatchService
	Chat      ChatService
	Dir       Directory
	Hub       *presence.Hub
	JWTSecret []byte
	Log       *logger.Logger
}

func NewHandler(swipes SwipeService, matches MatchService, chatSvc ChatService, dir Directory, hub *presence.Hub, jwtSecret []byte, log *logger.Logger) *Handler {
	return &Handler{
		Swipes:    swipes,
		Matches:   matches,
		Chat:      chatSvc,
		Dir:       dir,
		Hub:       hub,
		JWTSecret: jwtSecret,
		Log:       log,
	}
}
