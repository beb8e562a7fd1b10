package in

import (
	"context"

	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
)

// ConversationUseCase - единая точка входа для транспорта
// Транспорт гарантирует порядок сообщений в рамках одного пользователя
type ConversationUseCase interface {
	// HandleMessage обрабатывает входящее сообщение и возвращает
	// упорядоченный список ответов, минимум один на каждое сообщение
	HandleMessage(ctx context.Context, userID string, text string) []string
}

// AvailabilityUseCase - расчет слотов для внешних потребителей (веб-портал)
type AvailabilityUseCase interface {
	EnumerateSlots(ctx context.Context, day domain.Day) []domain.Slot
	CheckAvailability(ctx context.Context, day domain.Day, t domain.ClockTime) domain.CheckResult
	IsWorkingDay(day domain.Day) bool
}
