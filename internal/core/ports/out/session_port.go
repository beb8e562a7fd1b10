package out

import (
	"context"

	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
)

// SessionPort - хранилище контекстов диалогов
// Контекст живет до явного Clear или перезаписи, своего TTL у него нет
type SessionPort interface {
	// Save полностью перезаписывает контекст пользователя
	Save(ctx context.Context, conversation domain.ConversationContext)

	// Get возвращает контекст, ok=false если контекста нет
	Get(ctx context.Context, userID string) (domain.ConversationContext, bool)

	Clear(ctx context.Context, userID string)
}
