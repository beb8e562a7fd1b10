package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"America/Bogota"`
		LogLevel string      `env:"APP_LOG_LEVEL" envDefault:"debug"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"citas_bot:citas_bot"`
		BasicClients       []ConfigBasicClient
	}

	RabbitMQ struct {
		Enabled           bool   `env:"RABBITMQ_ENABLED"`
		URL               string `env:"RABBITMQ_URL"`
		Queue             string `env:"RABBITMQ_QUEUE" envDefault:"citas.bot.inbound"`
		RepliesExchange   string `env:"RABBITMQ_REPLIES_EXCHANGE" envDefault:"citas.bot.outbound"`
		RepliesRoutingKey string `env:"RABBITMQ_REPLIES_ROUTING_KEY" envDefault:"citas.bot.replies"`
	}

	Cache struct {
		Enabled  bool `env:"CACHE_ENABLED"`
		DaysSize int  `env:"CACHE_DAYS_SIZE" envDefault:"365"`
	}

	Schedule struct {
		OpeningTimeString     string `env:"SCHEDULE_OPENING_TIME" envDefault:"08:00"`
		ClosingTimeString     string `env:"SCHEDULE_CLOSING_TIME" envDefault:"18:00"`
		SlotMinutes           int    `env:"SCHEDULE_SLOT_MINUTES" envDefault:"60"`
		BreakWindowString     string `env:"SCHEDULE_BREAK_WINDOW" envDefault:"12:00-13:00"`
		ClosedWeekdayString   string `env:"SCHEDULE_CLOSED_WEEKDAY" envDefault:"Sunday"`
		NonWorkingDatesString string `env:"SCHEDULE_NON_WORKING_DATES" envDefault:"2025-01-19,2025-01-26,2025-01-27,2025-01-28"`
		OccupiedSlotsFile     string `env:"SCHEDULE_OCCUPIED_SLOTS_FILE"`

		Business domain.BusinessSchedule
	}

	Confirmation struct {
		Timeout time.Duration `env:"CONFIRMATION_TIMEOUT" envDefault:"5m"`
	}

	Messages Messages
}

// Messages - шаблоны ответов пользователю, плейсхолдеры {date} и {time}
type Messages struct {
	Welcome              string `env:"MSG_WELCOME" envDefault:"📅 ¡Hola! Te ayudo a agendar tu cita"`
	SelectDate           string `env:"MSG_SELECT_DATE" envDefault:"📅 ¿Para qué fecha te gustaría agendar? (DD/MM)"`
	SelectTime           string `env:"MSG_SELECT_TIME" envDefault:"🕐 ¿A qué hora prefieres? (HH:MM)"`
	ConfirmAppointment   string `env:"MSG_CONFIRM_APPOINTMENT" envDefault:"✅ ¿Confirmas tu cita para el {date} a las {time}?"`
	AppointmentConfirmed string `env:"MSG_APPOINTMENT_CONFIRMED" envDefault:"🎉 ¡Cita confirmada! Te espero el {date} a las {time}"`
	AppointmentCancelled string `env:"MSG_APPOINTMENT_CANCELLED" envDefault:"❌ Cita cancelada. ¿Te gustaría agendar para otra fecha?"`
	NoAvailability       string `env:"MSG_NO_AVAILABILITY" envDefault:"Disculpa, no hay horarios disponibles para esa fecha/hora"`
	InvalidDate          string `env:"MSG_INVALID_DATE" envDefault:"Disculpa, esa fecha no es válida. Dijita la fecha así: 20/01"`
	InvalidTime          string `env:"MSG_INVALID_TIME" envDefault:"Disculpa, esa hora no es válida. Dijita la hora así: 14:30"`
	NonWorkingDay        string `env:"MSG_NON_WORKING_DAY" envDefault:"Disculpa, el {date} no es un día laborable. ¿Te gustaría probar con otra fecha?"`
	OutsideHours         string `env:"MSG_OUTSIDE_HOURS" envDefault:"Disculpa, ese horario está fuera del horario de atención (8:00 AM - 6:00 PM)"`
	AlreadyBooked        string `env:"MSG_ALREADY_BOOKED" envDefault:"Disculpa, ese horario ya está ocupado. ¿Te gustaría elegir otro?"`
	NoPending            string `env:"MSG_NO_PENDING" envDefault:"Disculpa, no hay cita pendiente de confirmación. Escribe \"cita\" para agendar una nueva."`
	ConfirmFailed        string `env:"MSG_CONFIRM_FAILED" envDefault:"Disculpa, hubo un error al confirmar la cita. Por favor, intenta de nuevo."`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	// Разделение basic-auth клиентов
	if cfg.Auth.BasicClients == nil {
		cfg.Auth.BasicClients = []ConfigBasicClient{}
	}
	clientPairs := strings.Split(cfg.Auth.BasicClientsString, ",")
	for _, pair := range clientPairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			cfg.Auth.BasicClients = append(cfg.Auth.BasicClients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}

	business, err := cfg.parseBusinessSchedule()
	if err != nil {
		return nil, fmt.Errorf("config.schedule: %w", err)
	}
	cfg.Schedule.Business = business

	return cfg, nil
}

// parseBusinessSchedule собирает неизменяемое расписание из строковых полей
// Кривое расписание - единственная фатальная ошибка, сервис с ним не стартует
func (c *Config) parseBusinessSchedule() (domain.BusinessSchedule, error) {
	var business domain.BusinessSchedule
	var err error

	business.OpeningTime, err = domain.ParseClockTime(c.Schedule.OpeningTimeString)
	if err != nil {
		return business, fmt.Errorf("opening time: %w", err)
	}
	business.ClosingTime, err = domain.ParseClockTime(c.Schedule.ClosingTimeString)
	if err != nil {
		return business, fmt.Errorf("closing time: %w", err)
	}
	if business.ClosingTime <= business.OpeningTime {
		return business, fmt.Errorf("closing time %s is not after opening time %s",
			c.Schedule.ClosingTimeString, c.Schedule.OpeningTimeString)
	}

	if c.Schedule.SlotMinutes <= 0 {
		return business, fmt.Errorf("slot minutes must be positive, got %d", c.Schedule.SlotMinutes)
	}
	business.SlotDuration = c.Schedule.SlotMinutes

	if c.Schedule.BreakWindowString != "" {
		parts := strings.Split(c.Schedule.BreakWindowString, "-")
		if len(parts) != 2 {
			return business, fmt.Errorf("invalid break window: %s", c.Schedule.BreakWindowString)
		}
		business.BreakStart, err = domain.ParseClockTime(parts[0])
		if err != nil {
			return business, fmt.Errorf("break start: %w", err)
		}
		business.BreakEnd, err = domain.ParseClockTime(parts[1])
		if err != nil {
			return business, fmt.Errorf("break end: %w", err)
		}
		business.HasBreak = true
	}

	business.ClosedWeekday, err = parseWeekday(c.Schedule.ClosedWeekdayString)
	if err != nil {
		return business, err
	}

	business.NonWorkingDays = make(map[domain.Day]struct{})
	if c.Schedule.NonWorkingDatesString != "" {
		for _, dateStr := range strings.Split(c.Schedule.NonWorkingDatesString, ",") {
			day, err := domain.ParseISODay(strings.TrimSpace(dateStr))
			if err != nil {
				return business, fmt.Errorf("non-working date %q: %w", dateStr, err)
			}
			business.NonWorkingDays[day] = struct{}{}
		}
	}

	return business, nil
}

func parseWeekday(str string) (time.Weekday, error) {
	weekdays := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	weekday, ok := weekdays[strings.ToLower(str)]
	if !ok {
		return 0, fmt.Errorf("invalid weekday: %s", str)
	}
	return weekday, nil
}

// LoadScheduleBook загружает датасет занятых слотов
// Пустой путь дает пустой датасет, кривой файл - фатальная ошибка
func (c *Config) LoadScheduleBook() (*domain.ScheduleBook, error) {
	if c.Schedule.OccupiedSlotsFile == "" {
		return domain.NewScheduleBook(nil), nil
	}

	data, err := os.ReadFile(c.Schedule.OccupiedSlotsFile)
	if err != nil {
		return nil, fmt.Errorf("config.occupied_slots: %w", err)
	}

	var records []domain.DayOccupation
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("config.occupied_slots: %w", err)
	}

	return domain.NewScheduleBook(records), nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
