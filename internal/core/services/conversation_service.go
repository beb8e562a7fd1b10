package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jdrojasm/citas-scheduler-bot/internal/config"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/in"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/out"
	"github.com/jdrojasm/citas-scheduler-bot/internal/utils"
)

var (
	datePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)
	timePattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

	greetingKeywords    = []string{"hola", "buenas", "buenos dias", "buenos días", "hey", "saludos"}
	bookingKeywords     = []string{"cita", "agendar", "reservar", "horarios", "agenda"}
	helpKeywords        = []string{"ayuda", "menu", "menú"}
	affirmativeKeywords = []string{"sí", "si", "confirmo", "confirmar", "ok", "vale", "dale", "claro"}
	negativeKeywords    = []string{"no", "cancelar", "cancelo", "anular"}
	changeKeywords      = []string{"cambiar", "cambio", "otra hora", "otro horario"}

	myAppointmentsKeywords = []string{"mis citas", "ver citas", "citas"}
	cancelCommandKeywords  = []string{"cancelar", "cancelar cita", "cancelo", "anular"}
)

const helpMenu = `📋 Puedo ayudarte con:
• Escribe "cita" para agendar una cita
• Escribe una fecha (DD/MM) para ver horarios disponibles
• Escribe "ayuda" para ver este menú`

const myAppointmentsInfo = `📋 Consulta de Mis Citas

Para ver tus citas, necesito tu nombre completo.

💬 ¿Cuál es tu nombre completo?`

const cancelInfo = `❌ Cancelación de Cita

📝 Para cancelar tu cita, necesito:
• Tu nombre completo
• La fecha de la cita
• La hora de la cita

💬 ¿Cuál es tu nombre completo?`

// ConversationService - машина состояний диалога записи на прием
// Дата -> время -> подтверждение, контекст каждого пользователя живет в сессии
// Потокобезопасность в рамках одного пользователя обеспечивает транспорт,
// соблюдая порядок его сообщений
type ConversationService struct {
	cfg          *config.Config
	availability in.AvailabilityUseCase
	registry     *RegistryService
	sessions     out.SessionPort
	responder    *ResponderService
	logger       out.LoggerPort
	now          func() time.Time
}

func NewConversationService(
	cfg *config.Config,
	availability in.AvailabilityUseCase,
	registry *RegistryService,
	sessions out.SessionPort,
	responder *ResponderService,
	logger out.LoggerPort,
) *ConversationService {
	return &ConversationService{
		cfg:          cfg,
		availability: availability,
		registry:     registry,
		sessions:     sessions,
		responder:    responder,
		logger:       logger.WithModule("ConversationService"),
		now:          time.Now,
	}
}

// HandleMessage обрабатывает одно входящее сообщение пользователя
// Всегда возвращает хотя бы один ответ
func (s *ConversationService) HandleMessage(ctx context.Context, userID string, text string) []string {
	normalized := utils.NormalizeText(text)

	conversation, exists := s.sessions.Get(ctx, userID)
	if !exists {
		conversation = domain.ConversationContext{UserID: userID, Step: domain.StepIdle}
	}

	s.logger.Debug("conversation.turn.started", out.LogFields{
		"userId": userID,
		"step":   conversation.Step,
	})

	// Шаг подтверждения перехватывает sí/no/cambiar раньше любых команд,
	// иначе "no, cancelar" улетел бы в общий разбор
	if conversation.Step == domain.StepConfirming {
		if replies, handled := s.handleConfirming(ctx, conversation, normalized); handled {
			return replies
		}
	}

	// Явное намерение записаться сбрасывает предыдущий недособранный выбор
	if utils.MatchesAnyKeyword(normalized, bookingKeywords) {
		return s.startBooking(ctx, conversation)
	}

	if utils.MatchesAnyKeyword(normalized, helpKeywords) {
		return []string{helpMenu}
	}

	if utils.MatchesAnyKeyword(normalized, greetingKeywords) {
		return []string{s.cfg.Messages.Welcome, helpMenu}
	}

	if utils.MatchesAnyKeyword(normalized, myAppointmentsKeywords) {
		return []string{myAppointmentsInfo}
	}

	// Отмена вне шага подтверждения отвечает подсказкой,
	// удерживаемых записей на этих шагах нет
	if utils.MatchesAnyKeyword(normalized, cancelCommandKeywords) {
		return []string{cancelInfo}
	}

	if conversation.Step == domain.StepSelectingTime {
		if conversation.DaySelected {
			if match := timePattern.FindStringSubmatch(normalized); match != nil {
				return s.handleTimeSelection(ctx, conversation, match)
			}
		}
		if match := datePattern.FindStringSubmatch(normalized); match != nil {
			return s.handleDateSelection(ctx, conversation, match)
		}
		if conversation.DaySelected {
			return []string{s.cfg.Messages.InvalidTime}
		}
		return []string{s.cfg.Messages.InvalidDate}
	}

	// Дата без явной команды тоже понимается как намерение записаться
	if match := datePattern.FindStringSubmatch(normalized); match != nil {
		conversation.Step = domain.StepSelectingTime
		return s.handleDateSelection(ctx, conversation, match)
	}

	if response, ok := s.responder.Respond(normalized); ok {
		return []string{response}
	}

	return []string{helpMenu}
}

func (s *ConversationService) startBooking(ctx context.Context, previous domain.ConversationContext) []string {
	s.releasePending(ctx, previous)

	conversation := domain.ConversationContext{
		UserID: previous.UserID,
		Step:   domain.StepSelectingTime,
	}
	s.sessions.Save(ctx, conversation)

	s.logger.Debug("conversation.booking.started", out.LogFields{"userId": previous.UserID})

	return []string{s.cfg.Messages.Welcome, s.cfg.Messages.SelectDate}
}

// releasePending отпускает удерживаемый слот при перезапуске диалога,
// чтобы брошенная предварительная запись не висела до истечения таймера
func (s *ConversationService) releasePending(ctx context.Context, conversation domain.ConversationContext) {
	if conversation.AppointmentID == uuid.Nil {
		return
	}
	// Запись могла уже истечь, это не ошибка
	_ = s.registry.Cancel(ctx, conversation.AppointmentID)
}

// handleDateSelection разбирает дату DD/MM, год подставляется текущий
func (s *ConversationService) handleDateSelection(ctx context.Context, conversation domain.ConversationContext, match []string) []string {
	s.releasePending(ctx, conversation)

	today := domain.DayOf(s.now())

	day, err := domain.ParseUserDay(match[1], match[2], today.Year)
	if err != nil {
		return []string{s.cfg.Messages.InvalidDate}
	}
	if day.Before(today) {
		return []string{s.cfg.Messages.InvalidDate}
	}

	if !s.availability.IsWorkingDay(day) {
		return []string{utils.RenderTemplate(s.cfg.Messages.NonWorkingDay, day.FormatUser(), "")}
	}

	slots := s.availability.EnumerateSlots(ctx, day)
	openStarts := make([]domain.ClockTime, 0, len(slots))
	for _, slot := range slots {
		if slot.Available {
			openStarts = append(openStarts, slot.Start)
		}
	}

	if len(openStarts) == 0 {
		return []string{s.cfg.Messages.NoAvailability}
	}

	conversation.SelectedDay = day
	conversation.DaySelected = true
	conversation.TimeSelected = false
	conversation.AppointmentID = uuid.Nil
	conversation.OpenStarts = openStarts
	s.sessions.Save(ctx, conversation)

	s.logger.Info("conversation.date.selected", out.LogFields{
		"userId":    conversation.UserID,
		"day":       day.String(),
		"openSlots": len(openStarts),
	})

	return []string{s.formatDaySlots(day, slots), s.cfg.Messages.SelectTime}
}

// handleTimeSelection проверяет время по снимку слотов, сделанному при выборе
// даты, и только потом занимает слот в реестре
func (s *ConversationService) handleTimeSelection(ctx context.Context, conversation domain.ConversationContext, match []string) []string {
	clock, err := domain.ParseClockTime(match[1] + ":" + match[2])
	if err != nil {
		return []string{s.cfg.Messages.InvalidTime}
	}

	check := s.availability.CheckAvailability(ctx, conversation.SelectedDay, clock)
	if !check.Available {
		return []string{s.messageForReason(check.Reason, conversation.SelectedDay, clock)}
	}

	// Время вне сетки предложенных слотов, например 10:30 при часовом шаге
	if !conversation.HasOpenStart(clock) {
		return []string{s.cfg.Messages.NoAvailability}
	}

	appointment, err := s.registry.Create(ctx, conversation.SelectedDay, clock, conversation.UserID)
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return []string{s.cfg.Messages.AlreadyBooked}
		}
		s.logger.Error("conversation.appointment.create_failed", out.LogFields{
			"userId": conversation.UserID,
			"error":  err.Error(),
		})
		return []string{s.cfg.Messages.ConfirmFailed}
	}

	conversation.SelectedTime = clock
	conversation.TimeSelected = true
	conversation.AppointmentID = appointment.ID
	conversation.Step = domain.StepConfirming
	s.sessions.Save(ctx, conversation)

	s.logger.Info("conversation.time.selected", out.LogFields{
		"userId":        conversation.UserID,
		"day":           conversation.SelectedDay.String(),
		"time":          clock.String(),
		"appointmentId": appointment.ID,
	})

	confirm := utils.RenderTemplate(s.cfg.Messages.ConfirmAppointment,
		conversation.SelectedDay.FormatUser(), clock.String())
	return []string{confirm, "Responde \"sí\" para confirmar, \"no\" para cancelar o \"cambiar\" para elegir otra hora"}
}

// handleConfirming обрабатывает ответ на шаге подтверждения
// handled=false значит сообщение не похоже на sí/no/cambiar и уходит
// в общий разбор команд
func (s *ConversationService) handleConfirming(ctx context.Context, conversation domain.ConversationContext, normalized string) ([]string, bool) {
	switch {
	case utils.MatchesAnyKeyword(normalized, changeKeywords):
		return s.changeTime(ctx, conversation), true

	// Отказ проверяется раньше согласия, "no, vale" - это отказ
	case utils.MatchesAnyKeyword(normalized, negativeKeywords):
		return s.cancelAppointment(ctx, conversation), true

	case utils.MatchesAnyKeyword(normalized, affirmativeKeywords):
		return s.confirmAppointment(ctx, conversation), true
	}

	return nil, false
}

func (s *ConversationService) confirmAppointment(ctx context.Context, conversation domain.ConversationContext) []string {
	if conversation.AppointmentID == uuid.Nil {
		s.sessions.Clear(ctx, conversation.UserID)
		return []string{s.cfg.Messages.NoPending}
	}

	appointment, err := s.registry.Confirm(ctx, conversation.AppointmentID)
	if err != nil {
		// Запись истекла пока пользователь думал
		s.sessions.Clear(ctx, conversation.UserID)
		return []string{s.cfg.Messages.NoPending}
	}

	s.sessions.Clear(ctx, conversation.UserID)

	s.logger.Info("conversation.appointment.confirmed", out.LogFields{
		"userId":        conversation.UserID,
		"appointmentId": appointment.ID,
		"day":           appointment.Day.String(),
		"time":          appointment.Time.String(),
	})

	return []string{utils.RenderTemplate(s.cfg.Messages.AppointmentConfirmed,
		appointment.Day.FormatUser(), appointment.Time.String())}
}

func (s *ConversationService) cancelAppointment(ctx context.Context, conversation domain.ConversationContext) []string {
	if conversation.AppointmentID != uuid.Nil {
		// Ошибку not_found глотаем - запись могла истечь сама,
		// для пользователя результат тот же
		_ = s.registry.Cancel(ctx, conversation.AppointmentID)
	}
	s.sessions.Clear(ctx, conversation.UserID)

	s.logger.Info("conversation.appointment.cancelled", out.LogFields{
		"userId": conversation.UserID,
	})

	return []string{s.cfg.Messages.AppointmentCancelled}
}

// changeTime возвращает пользователя к выбору времени на той же дате
// Удерживаемый слот освобождается, снимок свободных слотов пересчитывается
func (s *ConversationService) changeTime(ctx context.Context, conversation domain.ConversationContext) []string {
	if conversation.AppointmentID != uuid.Nil {
		_ = s.registry.Cancel(ctx, conversation.AppointmentID)
	}

	slots := s.availability.EnumerateSlots(ctx, conversation.SelectedDay)
	openStarts := make([]domain.ClockTime, 0, len(slots))
	for _, slot := range slots {
		if slot.Available {
			openStarts = append(openStarts, slot.Start)
		}
	}

	if len(openStarts) == 0 {
		s.sessions.Clear(ctx, conversation.UserID)
		return []string{s.cfg.Messages.NoAvailability, s.cfg.Messages.SelectDate}
	}

	conversation.Step = domain.StepSelectingTime
	conversation.TimeSelected = false
	conversation.AppointmentID = uuid.Nil
	conversation.OpenStarts = openStarts
	s.sessions.Save(ctx, conversation)

	s.logger.Debug("conversation.time.change_requested", out.LogFields{
		"userId": conversation.UserID,
		"day":    conversation.SelectedDay.String(),
	})

	return []string{s.formatDaySlots(conversation.SelectedDay, slots), s.cfg.Messages.SelectTime}
}

func (s *ConversationService) messageForReason(reason domain.Reason, day domain.Day, clock domain.ClockTime) string {
	switch reason {
	case domain.ReasonInvalidDate:
		return s.cfg.Messages.InvalidDate
	case domain.ReasonInvalidTime:
		return s.cfg.Messages.InvalidTime
	case domain.ReasonNonWorkingDay:
		return utils.RenderTemplate(s.cfg.Messages.NonWorkingDay, day.FormatUser(), clock.String())
	case domain.ReasonOutsideBusinessHours:
		return s.cfg.Messages.OutsideHours
	case domain.ReasonAlreadyBooked:
		return s.cfg.Messages.AlreadyBooked
	}
	return s.cfg.Messages.NoAvailability
}

// formatDaySlots собирает список слотов дня для ответа пользователю
func (s *ConversationService) formatDaySlots(day domain.Day, slots []domain.Slot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 Horarios para el %s %s:\n",
		utils.SpanishWeekday(day.Weekday()), day.FormatUser())

	for _, slot := range slots {
		if slot.Available {
			fmt.Fprintf(&b, "\n✅ %s", slot.Start.String())
		} else {
			fmt.Fprintf(&b, "\n❌ %s - ocupado", slot.Start.String())
		}
	}

	return b.String()
}
