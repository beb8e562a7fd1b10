package services

import (
	"context"

	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/out"
)

type nopLogger struct{}

func (nopLogger) Debug(event string, fields out.LogFields) {}
func (nopLogger) Info(event string, fields out.LogFields) {}
func (nopLogger) Warn(event string, fields out.LogFields) {}
func (nopLogger) Error(event string, fields out.LogFields) {}
func (l nopLogger) WithFields(fields out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(module string) out.LoggerPort        { return l }

type fakeSessionStore struct {
	contexts map[string]domain.ConversationContext
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{contexts: make(map[string]domain.ConversationContext)}
}

func (s *fakeSessionStore) Save(ctx context.Context, conversation domain.ConversationContext) {
	s.contexts[conversation.UserID] = conversation
}

func (s *fakeSessionStore) Get(ctx context.Context, userID string) (domain.ConversationContext, bool) {
	conversation, exists := s.contexts[userID]
	return conversation, exists
}

func (s *fakeSessionStore) Clear(ctx context.Context, userID string) {
	delete(s.contexts, userID)
}
