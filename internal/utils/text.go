package utils

import (
	"strings"
	"time"
)

// NormalizeText приводит сообщение пользователя к виду для поиска ключевых слов
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// MatchesAnyKeyword сравнивает по словам для коротких ключей ("si", "no"),
// чтобы не ловить их внутри других слов, и по подстроке для фраз с пробелом
func MatchesAnyKeyword(text string, keywords []string) bool {
	var fields []string
	for _, keyword := range keywords {
		if strings.Contains(keyword, " ") {
			if strings.Contains(text, keyword) {
				return true
			}
			continue
		}
		if fields == nil {
			fields = strings.Fields(text)
		}
		for _, field := range fields {
			if strings.Trim(field, ".,!?¡¿") == keyword {
				return true
			}
		}
	}
	return false
}

var spanishWeekdays = map[time.Weekday]string{
	time.Sunday:    "Domingo",
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
}

// SpanishWeekday - название дня недели для ответов пользователю
func SpanishWeekday(weekday time.Weekday) string {
	return spanishWeekdays[weekday]
}

// RenderTemplate подставляет плейсхолдеры {date} и {time} в шаблон сообщения
func RenderTemplate(template, date, clock string) string {
	rendered := strings.ReplaceAll(template, "{date}", date)
	return strings.ReplaceAll(rendered, "{time}", clock)
}
