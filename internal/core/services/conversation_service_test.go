package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jdrojasm/citas-scheduler-bot/internal/config"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
)

// Часы всех сервисов прижаты к январю 2025, где живет тестовый датасет
var testNow = func() time.Time {
	return time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)
}

type conversationFixture struct {
	service  *ConversationService
	registry *RegistryService
	sessions *fakeSessionStore
	cfg      *config.Config
}

func newConversationFixture(t *testing.T, timeout time.Duration) *conversationFixture {
	t.Helper()

	cfg, err := config.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	availability := NewAvailabilityService(cfg.Schedule.Business, testBook(), nil, nopLogger{})
	availability.now = testNow

	registry := NewRegistryService(timeout, nopLogger{})
	sessions := newFakeSessionStore()

	service := NewConversationService(cfg, availability, registry, sessions,
		NewResponderService(nopLogger{}), nopLogger{})
	service.now = testNow

	return &conversationFixture{
		service:  service,
		registry: registry,
		sessions: sessions,
		cfg:      cfg,
	}
}

func (f *conversationFixture) send(text string) []string {
	return f.service.HandleMessage(context.Background(), "user-1", text)
}

func TestConversation_Greeting(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	replies := f.send("hola")
	if len(replies) == 0 {
		t.Fatal("expected at least one reply")
	}
	if replies[0] != f.cfg.Messages.Welcome {
		t.Errorf("expected welcome message, got %q", replies[0])
	}
}

func TestConversation_BookingIntentAsksForDate(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	replies := f.send("quiero una cita")
	if len(replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(replies))
	}
	if replies[1] != f.cfg.Messages.SelectDate {
		t.Errorf("expected date prompt, got %q", replies[1])
	}

	conversation, exists := f.sessions.Get(context.Background(), "user-1")
	if !exists || conversation.Step != domain.StepSelectingTime {
		t.Errorf("expected selecting_time step, got %+v", conversation)
	}
}

func TestConversation_DateSelectionListsSlots(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	replies := f.send("22/01")

	if len(replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(replies))
	}
	if !strings.Contains(replies[0], "22/01/2025") {
		t.Errorf("slot list must mention the date: %q", replies[0])
	}
	if !strings.Contains(replies[0], "✅ 08:00") {
		t.Errorf("slot list must mark free slots: %q", replies[0])
	}
	if !strings.Contains(replies[0], "❌ 09:00") {
		t.Errorf("slot list must mark occupied slots: %q", replies[0])
	}
	if strings.Contains(replies[0], "12:00") {
		t.Errorf("break window must not appear in slot list: %q", replies[0])
	}
	if replies[1] != f.cfg.Messages.SelectTime {
		t.Errorf("expected time prompt, got %q", replies[1])
	}

	conversation, _ := f.sessions.Get(context.Background(), "user-1")
	if !conversation.DaySelected {
		t.Error("expected day stored in session")
	}
	if len(conversation.OpenStarts) == 0 {
		t.Error("expected open slots snapshot in session")
	}
}

func TestConversation_DateWithoutCommandStartsBooking(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	replies := f.send("22/01")
	if len(replies) != 2 || replies[1] != f.cfg.Messages.SelectTime {
		t.Fatalf("expected slot list and time prompt, got %v", replies)
	}
}

func TestConversation_RejectsInvalidAndPastDates(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	if replies := f.send("99/99"); replies[0] != f.cfg.Messages.InvalidDate {
		t.Errorf("expected invalid date message, got %q", replies[0])
	}
	if replies := f.send("05/01"); replies[0] != f.cfg.Messages.InvalidDate {
		t.Errorf("expected invalid date for past day, got %q", replies[0])
	}
}

func TestConversation_RejectsNonWorkingDay(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	replies := f.send("26/01") // воскресенье

	if !strings.Contains(replies[0], "26/01/2025") {
		t.Errorf("expected non-working day message with date, got %q", replies[0])
	}
}

func TestConversation_TimeSelectionCreatesPending(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	f.send("22/01")
	replies := f.send("10:00")

	if !strings.Contains(replies[0], "22/01/2025") || !strings.Contains(replies[0], "10:00") {
		t.Errorf("confirmation prompt must mention date and time: %q", replies[0])
	}
	if f.registry.PendingCount() != 1 {
		t.Errorf("expected 1 pending appointment, got %d", f.registry.PendingCount())
	}

	conversation, _ := f.sessions.Get(context.Background(), "user-1")
	if conversation.Step != domain.StepConfirming {
		t.Errorf("expected confirming step, got %s", conversation.Step)
	}
}

func TestConversation_OccupiedTimeRejected(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	f.send("22/01")
	replies := f.send("09:00")

	if replies[0] != f.cfg.Messages.AlreadyBooked {
		t.Errorf("expected already booked message, got %q", replies[0])
	}
	if f.registry.PendingCount() != 0 {
		t.Error("occupied slot must not create a pending appointment")
	}
}

// Время внутри рабочего дня, но мимо сетки слотов - это не конфликт,
// пользователю не говорим "occupied" про 10:30 при часовом шаге
func TestConversation_MidSlotTimeRejected(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	f.send("22/01")
	replies := f.send("10:30")

	if replies[0] != f.cfg.Messages.NoAvailability {
		t.Errorf("expected no availability message, got %q", replies[0])
	}
	if f.registry.PendingCount() != 0 {
		t.Error("mid-slot time must not create a pending appointment")
	}
}

func TestConversation_ConfirmHappyPath(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	f.send("22/01")
	f.send("10:00")
	replies := f.send("sí")

	if !strings.Contains(replies[0], "22/01/2025") || !strings.Contains(replies[0], "10:00") {
		t.Errorf("confirmation must mention date and time: %q", replies[0])
	}
	if f.registry.PendingCount() != 0 {
		t.Error("confirmed appointment must leave the registry")
	}
	if _, exists := f.sessions.Get(context.Background(), "user-1"); exists {
		t.Error("session must be cleared after confirmation")
	}
}

func TestConversation_CancelReleasesSlot(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	f.send("22/01")
	f.send("10:00")
	replies := f.send("no")

	if replies[0] != f.cfg.Messages.AppointmentCancelled {
		t.Errorf("expected cancelled message, got %q", replies[0])
	}
	if f.registry.PendingCount() != 0 {
		t.Error("cancelled appointment must leave the registry")
	}

	// Слот снова доступен другому пользователю
	other := f.service.HandleMessage(context.Background(), "user-2", "22/01")
	if len(other) != 2 {
		t.Fatalf("expected slot list for second user, got %v", other)
	}
	confirm := f.service.HandleMessage(context.Background(), "user-2", "10:00")
	if !strings.Contains(confirm[0], "10:00") {
		t.Errorf("slot must be bookable after cancel: %q", confirm[0])
	}
}

func TestConversation_SlotConflictBetweenUsers(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	f.send("22/01")
	f.send("10:00")

	f.service.HandleMessage(context.Background(), "user-2", "22/01")
	replies := f.service.HandleMessage(context.Background(), "user-2", "10:00")

	if replies[0] != f.cfg.Messages.AlreadyBooked {
		t.Errorf("expected already booked for second user, got %q", replies[0])
	}
	if f.registry.PendingCount() != 1 {
		t.Errorf("expected single pending appointment, got %d", f.registry.PendingCount())
	}
}

func TestConversation_ChangeTimeKeepsDate(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	f.send("22/01")
	f.send("10:00")
	replies := f.send("cambiar")

	if len(replies) != 2 || replies[1] != f.cfg.Messages.SelectTime {
		t.Fatalf("expected slot list and time prompt, got %v", replies)
	}
	if f.registry.PendingCount() != 0 {
		t.Error("pending appointment must be released on change")
	}

	conversation, _ := f.sessions.Get(context.Background(), "user-1")
	if conversation.Step != domain.StepSelectingTime || !conversation.DaySelected {
		t.Errorf("expected selecting_time with kept date, got %+v", conversation)
	}

	// Освобожденный слот можно выбрать снова
	confirm := f.send("10:00")
	if !strings.Contains(confirm[0], "10:00") {
		t.Errorf("released slot must be selectable again: %q", confirm[0])
	}
}

func TestConversation_ConfirmAfterExpiry(t *testing.T) {
	f := newConversationFixture(t, 20*time.Millisecond)

	f.send("cita")
	f.send("22/01")
	f.send("10:00")

	time.Sleep(100 * time.Millisecond)

	replies := f.send("sí")
	if replies[0] != f.cfg.Messages.NoPending {
		t.Errorf("expected no pending message after expiry, got %q", replies[0])
	}
	if _, exists := f.sessions.Get(context.Background(), "user-1"); exists {
		t.Error("session must be cleared after expired confirmation")
	}
}

func TestConversation_InvalidTimeWhileSelecting(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	f.send("22/01")

	if replies := f.send("1:99"); replies[0] != f.cfg.Messages.InvalidTime {
		t.Errorf("expected invalid time message, got %q", replies[0])
	}
	if replies := f.send("a las siete"); replies[0] != f.cfg.Messages.InvalidTime {
		t.Errorf("expected invalid time message for free text, got %q", replies[0])
	}
}

func TestConversation_OutsideHoursRejected(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	f.send("cita")
	f.send("22/01")
	replies := f.send("07:00")

	if replies[0] != f.cfg.Messages.OutsideHours {
		t.Errorf("expected outside hours message, got %q", replies[0])
	}
}

func TestConversation_MyAppointmentsCommand(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	replies := f.send("mis citas")
	if len(replies) != 1 || replies[0] != myAppointmentsInfo {
		t.Errorf("expected appointments info, got %v", replies)
	}
}

func TestConversation_StandaloneCancelCommand(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	// Вне шага подтверждения "cancelar" отвечает подсказкой, а не меню
	replies := f.send("cancelar")
	if len(replies) != 1 || replies[0] != cancelInfo {
		t.Errorf("expected cancellation info, got %v", replies)
	}

	// На шаге подтверждения то же слово отменяет удерживаемую запись
	f.send("cita")
	f.send("22/01")
	f.send("10:00")
	replies = f.send("cancelar")
	if replies[0] != f.cfg.Messages.AppointmentCancelled {
		t.Errorf("expected cancelled message, got %q", replies[0])
	}
	if f.registry.PendingCount() != 0 {
		t.Error("cancelled appointment must leave the registry")
	}
}

func TestConversation_UnknownTextShowsMenu(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	replies := f.send("qwerty")
	if !strings.Contains(replies[0], "ayuda") {
		t.Errorf("expected help menu, got %q", replies[0])
	}
}

func TestConversation_SlangGetsResponse(t *testing.T) {
	f := newConversationFixture(t, time.Minute)

	replies := f.send("ese tinto estuvo bueno")
	if len(replies) != 1 || replies[0] == helpMenu {
		t.Errorf("expected slang response, got %v", replies)
	}
}
