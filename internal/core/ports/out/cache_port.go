package out

import (
	"context"

	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
)

// SlotCachePort - кэш рассчитанных слотов на дату
// В кэше лежит только статическая раскладка дня, состояние
// предварительных записей туда не попадает
type SlotCachePort interface {
	GetDaySlots(ctx context.Context, day domain.Day) ([]domain.Slot, bool)
	StoreDaySlots(ctx context.Context, day domain.Day, slots []domain.Slot)
	InvalidateDay(ctx context.Context, day domain.Day)
	Purge(ctx context.Context)
}
