package domain

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusExpired   AppointmentStatus = "expired"
)

// Appointment - предварительная запись, ожидающая подтверждения
// Единственный владелец - реестр, все переходы статуса делаются только там
type Appointment struct {
	ID        uuid.UUID         `json:"id"`
	Day       Day               `json:"date"`
	Time      ClockTime         `json:"time"`
	UserID    string            `json:"userId"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	ExpiresAt time.Time         `json:"expiresAt"`
}
