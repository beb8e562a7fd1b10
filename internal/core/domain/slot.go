package domain

// Reason - причина (не)доступности, закрытое перечисление
type Reason string

const (
	ReasonInvalidDate          Reason = "invalid_date"
	ReasonInvalidTime          Reason = "invalid_time"
	ReasonNonWorkingDay        Reason = "non_working_day"
	ReasonOutsideBusinessHours Reason = "outside_business_hours"
	ReasonAlreadyBooked        Reason = "already_booked"
	ReasonAvailable            Reason = "available"
	ReasonAppointmentNotFound  Reason = "appointment_not_found"
)

// Slot - производное значение, никогда не сохраняется, пересчитывается на каждый запрос
type Slot struct {
	Start     ClockTime `json:"start"`
	End       ClockTime `json:"end"`
	Available bool      `json:"available"`
}

// CheckResult - результат проверки доступности конкретного времени
type CheckResult struct {
	Available bool   `json:"available"`
	Reason    Reason `json:"reason"`
}
