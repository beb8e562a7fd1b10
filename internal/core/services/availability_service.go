package services

import (
	"context"
	"time"

	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/out"
)

// AvailabilityService - чистый расчет доступности по расписанию и датасету
// Входные данные неизменяемы, сервис безопасен для конкурентных вызовов
type AvailabilityService struct {
	schedule domain.BusinessSchedule
	book     *domain.ScheduleBook
	cache    out.SlotCachePort
	logger   out.LoggerPort
	now      func() time.Time
}

func NewAvailabilityService(
	schedule domain.BusinessSchedule,
	book *domain.ScheduleBook,
	cache out.SlotCachePort,
	logger out.LoggerPort,
) *AvailabilityService {
	return &AvailabilityService{
		schedule: schedule,
		book:     book,
		cache:    cache,
		logger:   logger.WithModule("AvailabilityService"),
		now:      time.Now,
	}
}

func (s *AvailabilityService) IsWorkingDay(day domain.Day) bool {
	return !s.schedule.IsNonWorkingDay(day)
}

// EnumerateSlots возвращает все слоты дня в хронологическом порядке
// Для нерабочих дней возвращает пустой список
func (s *AvailabilityService) EnumerateSlots(ctx context.Context, day domain.Day) []domain.Slot {
	if s.schedule.IsNonWorkingDay(day) {
		return []domain.Slot{}
	}

	if s.cache != nil {
		if slots, exists := s.cache.GetDaySlots(ctx, day); exists {
			s.logger.Debug("availability.slots.cache.hit", out.LogFields{
				"day":        day.String(),
				"slotsCount": len(slots),
			})
			return slots
		}
	}

	slots := make([]domain.Slot, 0)
	duration := domain.ClockTime(s.schedule.SlotDuration)

	for start := s.schedule.OpeningTime; start < s.schedule.ClosingTime; start += duration {
		// Слоты внутри обеденного перерыва не генерируем
		if s.schedule.HasBreak && start >= s.schedule.BreakStart && start < s.schedule.BreakEnd {
			continue
		}

		_, occupied := s.book.FindOccupied(day, start)
		slots = append(slots, domain.Slot{
			Start:     start,
			End:       start + duration,
			Available: !occupied,
		})
	}

	if s.cache != nil {
		s.cache.StoreDaySlots(ctx, day, slots)
	}

	return slots
}

// CheckAvailability проверяет конкретное время
// Порядок проверок фиксирован: формат даты дешевле всего и отсекает остальные
func (s *AvailabilityService) CheckAvailability(ctx context.Context, day domain.Day, t domain.ClockTime) domain.CheckResult {
	if !s.isValidDay(day) {
		return domain.CheckResult{Available: false, Reason: domain.ReasonInvalidDate}
	}

	if t < 0 || t >= 24*60 {
		return domain.CheckResult{Available: false, Reason: domain.ReasonInvalidTime}
	}

	if s.schedule.IsNonWorkingDay(day) {
		return domain.CheckResult{Available: false, Reason: domain.ReasonNonWorkingDay}
	}

	if !s.schedule.IsWithinBusinessHours(t) {
		return domain.CheckResult{Available: false, Reason: domain.ReasonOutsideBusinessHours}
	}

	if _, occupied := s.book.FindOccupied(day, t); occupied {
		return domain.CheckResult{Available: false, Reason: domain.ReasonAlreadyBooked}
	}

	return domain.CheckResult{Available: true, Reason: domain.ReasonAvailable}
}

// isValidDay: дата существует и не в прошлом
func (s *AvailabilityService) isValidDay(day domain.Day) bool {
	if day.IsZero() {
		return false
	}
	today := domain.DayOf(s.now())
	return !day.Before(today)
}
