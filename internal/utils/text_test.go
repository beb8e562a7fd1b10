package utils

import (
	"testing"
	"time"
)

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("  Hola MUNDO  "); got != "hola mundo" {
		t.Errorf("unexpected normalization: %q", got)
	}
}

func TestMatchesAnyKeyword_ShortWordsMatchWholeTokensOnly(t *testing.T) {
	// "si" внутри "necesito" не должно считаться согласием
	if MatchesAnyKeyword("necesito ayuda", []string{"si"}) {
		t.Error("si must not match inside necesito")
	}
	if !MatchesAnyKeyword("si claro", []string{"si"}) {
		t.Error("expected match for standalone si")
	}
	if !MatchesAnyKeyword("¡sí!", []string{"sí"}) {
		t.Error("expected match for sí with punctuation")
	}
	if MatchesAnyKeyword("nosotros vamos", []string{"no"}) {
		t.Error("no must not match inside nosotros")
	}
}

func TestMatchesAnyKeyword_PhrasesMatchAsSubstring(t *testing.T) {
	if !MatchesAnyKeyword("buenos días parce", []string{"buenos días"}) {
		t.Error("expected phrase match")
	}
	if MatchesAnyKeyword("buenos amigos", []string{"buenos días"}) {
		t.Error("partial phrase must not match")
	}
}

func TestSpanishWeekday(t *testing.T) {
	if got := SpanishWeekday(time.Wednesday); got != "Miércoles" {
		t.Errorf("expected Miércoles, got %s", got)
	}
	if got := SpanishWeekday(time.Sunday); got != "Domingo" {
		t.Errorf("expected Domingo, got %s", got)
	}
}

func TestRenderTemplate(t *testing.T) {
	got := RenderTemplate("Cita el {date} a las {time}", "22/01/2025", "10:00")
	if got != "Cita el 22/01/2025 a las 10:00" {
		t.Errorf("unexpected render: %q", got)
	}
}
