package handler_test

import (
	"context"

	"heartlink/backend/internal/chat"
	"heartlink/backend/internal/match"
	"heartlink/backend/internal/models"
	"heartlink/backend/internal/swipe"

	"github.com/stretchr/testify/mock"
)

type MockSwipeService struct {
	mock.Mock
}

func (m *MockSwipeService) RemainingQuota(ctx context.Context, actorID int64) (swipe.Quota, error) {
	args := m.Called(ctx, actorID)
	return args.Get(0).(swipe.Quota), args.Error(1)
}

type MockMatchService struct {
	mock.Mock
}

func (m *MockMatchService) EvaluateSwipe(ctx context.Context, actorID, targetID int64, direction string) (match.SwipeResult, error) {
	args := m.Called(ctx, actorID, targetID, direction)
	return args.Get(0).(match.SwipeResult), args.Error(1)
}

func (m *MockMatchService) GetMatches(ctx context.Context, userID int64) ([]match.Summary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]match.Summary), args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) SendMessage(ctx context.Context, senderID, receiverID int64, text string) (*models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockChatService) GetHistory(ctx context.Context, userID, otherID int64) ([]models.Message, error) {
	args := m.Called(ctx, userID, otherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockChatService) GetRecent(ctx context.Context, userID int64) ([]chat.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]chat.Conversation), args.Error(1)
}

func (m *MockChatService) DeleteMessage(ctx context.Context, messageID uint64, userID int64) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ResolveUsername(ctx context.Context, username string) (int64, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(int64), args.Error(1)
}
