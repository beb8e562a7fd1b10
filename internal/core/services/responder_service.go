package services

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/out"
	"github.com/jdrojasm/citas-scheduler-bot/internal/utils"
)

// ResponderWord - группа ключевых слов с готовыми ответами
type ResponderWord struct {
	Key       string
	Keywords  []string
	Responses []string
	Category  string
}

// ResponderMatch - найденное в тексте слово с позицией вхождения
type ResponderMatch struct {
	Key      string
	Keyword  string
	Category string
	Position int
}

// ResponderService отвечает на разговорные словечки готовыми фразами
// Не имеет отношения к расписанию, работает поверх тех же входящих сообщений
type ResponderService struct {
	words  []ResponderWord
	rand   *rand.Rand
	logger out.LoggerPort
}

func NewResponderService(logger out.LoggerPort) *ResponderService {
	return &ResponderService{
		words:  colombianWords,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.WithModule("ResponderService"),
	}
}

// Match ищет все словечки в тексте, отсортированные по позиции вхождения
func (s *ResponderService) Match(text string) []ResponderMatch {
	normalized := utils.NormalizeText(text)
	matches := make([]ResponderMatch, 0)

	for _, word := range s.words {
		for _, keyword := range word.Keywords {
			position := strings.Index(normalized, keyword)
			if position < 0 {
				continue
			}
			matches = append(matches, ResponderMatch{
				Key:      word.Key,
				Keyword:  keyword,
				Category: word.Category,
				Position: position,
			})
			break
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Position < matches[j].Position
	})

	return matches
}

// Respond возвращает готовый ответ на первое найденное словечко, ok=false если ничего нет
func (s *ResponderService) Respond(text string) (string, bool) {
	matches := s.Match(text)
	if len(matches) == 0 {
		return "", false
	}

	first := matches[0]
	for _, word := range s.words {
		if word.Key != first.Key {
			continue
		}

		s.logger.Debug("responder.match", out.LogFields{
			"word":     first.Key,
			"category": first.Category,
		})
		return word.Responses[s.rand.Intn(len(word.Responses))], true
	}

	return "", false
}

var colombianWords = []ResponderWord{
	{
		Key:      "parce",
		Keywords: []string{"parce", "parcero", "parcerito"},
		Responses: []string{
			"¡Hola parce! ¿Cómo va todo?",
			"¡Qué más parce! ¿Todo bien?",
			"¡Parce! Un gusto saludarte",
		},
		Category: "saludos",
	},
	{
		Key:      "qué más",
		Keywords: []string{"qué más", "que más", "q más", "q mas"},
		Responses: []string{
			"¡Qué más! ¿Cómo va la vida?",
			"¡Qué más parce! Todo tranquilo",
			"¡Qué más! ¿Qué cuentas?",
		},
		Category: "saludos",
	},
	{
		Key:      "bacano",
		Keywords: []string{"bacano", "bacana", "bacán"},
		Responses: []string{
			"¡Sí, súper bacano!",
			"¡Totalmente bacano!",
			"¡Qué bacano!",
		},
		Category: "expresiones",
	},
	{
		Key:      "arepa",
		Keywords: []string{"arepa", "arepita", "arepas"},
		Responses: []string{
			"¡Las arepas son lo máximo! ¿Con qué te gustan?",
			"¡Arepa con todo! La mejor comida colombiana",
			"¡Uy sí! Las arepas son vida",
		},
		Category: "comida",
	},
	{
		Key:      "tinto",
		Keywords: []string{"tinto", "tintico", "café"},
		Responses: []string{
			"¡Un tintico para empezar el día!",
			"¡El tinto es sagrado en Colombia!",
			"¡Tintico con panela, qué rico!",
		},
		Category: "bebida",
	},
	{
		Key:      "ajiaco",
		Keywords: []string{"ajiaco", "ajiacito"},
		Responses: []string{
			"¡El ajiaco es la sopa más rica del mundo!",
			"¡Ajiaco con crema y aguacate!",
			"¡Uy sí! El ajiaco es tradición",
		},
		Category: "comida",
	},
	{
		Key:      "chévere",
		Keywords: []string{"chévere", "chevere"},
		Responses: []string{
			"¡Súper chévere!",
			"¡Qué chévere!",
			"¡Totalmente chévere!",
		},
		Category: "expresiones",
	},
	{
		Key:      "guayabo",
		Keywords: []string{"guayabo", "guayabito"},
		Responses: []string{
			"¡Uy, qué guayabo! ¿Qué pasó?",
			"¡El guayabo es duro!",
			"¡Qué guayabo tan feo!",
		},
		Category: "expresiones",
	},
	{
		Key:      "maluco",
		Keywords: []string{"maluco", "maluca", "malucos"},
		Responses: []string{
			"¡Uy sí, está maluco!",
			"¡Qué maluco!",
			"¡Está súper maluco!",
		},
		Category: "expresiones",
	},
	{
		Key:      "chimba",
		Keywords: []string{"chimba", "chimbita", "chimbas"},
		Responses: []string{
			"¡Qué chimba!",
			"¡Súper chimba!",
			"¡Está chimba!",
		},
		Category: "jerga",
	},
	{
		Key:      "berraco",
		Keywords: []string{"berraco", "berraca", "berracos"},
		Responses: []string{
			"¡Qué berraco!",
			"¡Súper berraco!",
			"¡Está berraco!",
		},
		Category: "jerga",
	},
	{
		Key:      "nojoda",
		Keywords: []string{"nojoda", "no joda", "nojodas"},
		Responses: []string{
			"¡Nojoda! ¿En serio?",
			"¡Nojoda! Qué locura",
			"¡Nojoda! No me lo creo",
		},
		Category: "asombro",
	},
}
