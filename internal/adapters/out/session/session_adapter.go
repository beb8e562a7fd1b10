package session

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/out"
)

const shardCount = 16

type sessionShard struct {
	mu       sync.RWMutex
	contexts map[string]domain.ConversationContext
}

// MemoryAdapter - шардированное in-memory хранилище контекстов диалогов
// Шардирование по userId, чтобы горячие пользователи не блокировали остальных
type MemoryAdapter struct {
	shards [shardCount]*sessionShard
	logger out.LoggerPort
}

func NewMemoryAdapter(logger out.LoggerPort) *MemoryAdapter {
	a := &MemoryAdapter{
		logger: logger.WithModule("SessionMemoryAdapter"),
	}
	for i := range a.shards {
		a.shards[i] = &sessionShard{contexts: make(map[string]domain.ConversationContext)}
	}
	return a
}

func (a *MemoryAdapter) shardFor(userID string) *sessionShard {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return a.shards[h.Sum32()%shardCount]
}

func (a *MemoryAdapter) Save(ctx context.Context, conversation domain.ConversationContext) {
	shard := a.shardFor(conversation.UserID)
	shard.mu.Lock()
	shard.contexts[conversation.UserID] = conversation
	shard.mu.Unlock()

	a.logger.Debug("session.saved", out.LogFields{
		"userId": conversation.UserID,
		"step":   conversation.Step,
	})
}

func (a *MemoryAdapter) Get(ctx context.Context, userID string) (domain.ConversationContext, bool) {
	shard := a.shardFor(userID)
	shard.mu.RLock()
	conversation, exists := shard.contexts[userID]
	shard.mu.RUnlock()

	return conversation, exists
}

func (a *MemoryAdapter) Clear(ctx context.Context, userID string) {
	shard := a.shardFor(userID)
	shard.mu.Lock()
	delete(shard.contexts, userID)
	shard.mu.Unlock()

	a.logger.Debug("session.cleared", out.LogFields{
		"userId": userID,
	})
}
