package domain

import "github.com/google/uuid"

// Step - шаг диалога, закрытое перечисление
type Step string

const (
	StepIdle          Step = "idle"
	StepSelectingTime Step = "selecting_time"
	StepConfirming    Step = "confirming"
)

// ConversationContext - состояние диалога одного пользователя
// Владелец - хранилище сессий, перезаписывается целиком на каждом шаге
type ConversationContext struct {
	UserID string `json:"userId"`
	Step   Step   `json:"step"`

	SelectedDay Day  `json:"selectedDay"`
	DaySelected bool `json:"daySelected"`

	SelectedTime ClockTime `json:"selectedTime"`
	TimeSelected bool      `json:"timeSelected"`

	// uuid.Nil означает что предварительной записи нет
	AppointmentID uuid.UUID `json:"appointmentId"`

	// Снимок свободных слотов на момент выбора даты
	// Переиспользуется при проверке времени, не пересчитывается
	OpenStarts []ClockTime `json:"openStarts"`
}

// HasOpenStart проверяет время по снимку, сделанному при выборе даты
func (c ConversationContext) HasOpenStart(t ClockTime) bool {
	for _, start := range c.OpenStarts {
		if start == t {
			return true
		}
	}
	return false
}
