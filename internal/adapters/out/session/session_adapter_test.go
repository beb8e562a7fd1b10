package session

import (
	"context"
	"testing"

	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/out"
)

type nopLogger struct{}

func (nopLogger) Debug(event string, fields out.LogFields) {}
func (nopLogger) Info(event string, fields out.LogFields) {}
func (nopLogger) Warn(event string, fields out.LogFields) {}
func (nopLogger) Error(event string, fields out.LogFields) {}
func (l nopLogger) WithFields(fields out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(module string) out.LoggerPort        { return l }

func TestMemoryAdapter_RoundTrip(t *testing.T) {
	adapter := NewMemoryAdapter(nopLogger{})
	ctx := context.Background()

	if _, exists := adapter.Get(ctx, "user-1"); exists {
		t.Fatal("expected no context for unknown user")
	}

	adapter.Save(ctx, domain.ConversationContext{
		UserID: "user-1",
		Step:   domain.StepSelectingTime,
	})

	conversation, exists := adapter.Get(ctx, "user-1")
	if !exists {
		t.Fatal("expected saved context")
	}
	if conversation.Step != domain.StepSelectingTime {
		t.Errorf("unexpected step: %s", conversation.Step)
	}
}

func TestMemoryAdapter_SaveOverwrites(t *testing.T) {
	adapter := NewMemoryAdapter(nopLogger{})
	ctx := context.Background()

	adapter.Save(ctx, domain.ConversationContext{UserID: "user-1", Step: domain.StepSelectingTime})
	adapter.Save(ctx, domain.ConversationContext{UserID: "user-1", Step: domain.StepConfirming})

	conversation, _ := adapter.Get(ctx, "user-1")
	if conversation.Step != domain.StepConfirming {
		t.Errorf("expected overwritten step, got %s", conversation.Step)
	}
}

func TestMemoryAdapter_Clear(t *testing.T) {
	adapter := NewMemoryAdapter(nopLogger{})
	ctx := context.Background()

	adapter.Save(ctx, domain.ConversationContext{UserID: "user-1", Step: domain.StepIdle})
	adapter.Clear(ctx, "user-1")

	if _, exists := adapter.Get(ctx, "user-1"); exists {
		t.Error("expected context cleared")
	}

	// Повторная очистка безопасна
	adapter.Clear(ctx, "user-1")
}

func TestMemoryAdapter_UsersAreIsolated(t *testing.T) {
	adapter := NewMemoryAdapter(nopLogger{})
	ctx := context.Background()

	adapter.Save(ctx, domain.ConversationContext{UserID: "user-1", Step: domain.StepConfirming})
	adapter.Save(ctx, domain.ConversationContext{UserID: "user-2", Step: domain.StepIdle})

	adapter.Clear(ctx, "user-1")

	if _, exists := adapter.Get(ctx, "user-2"); !exists {
		t.Error("clearing one user must not affect another")
	}
}
