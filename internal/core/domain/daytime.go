package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Day - календарная дата без времени и таймзоны
// Используется как ключ в мапах, поэтому состоит только из сравнимых полей
type Day struct {
	Year  int
	Month time.Month
	Date  int
}

func NewDay(year int, month time.Month, date int) Day {
	return Day{Year: year, Month: month, Date: date}
}

func DayOf(t time.Time) Day {
	return Day{Year: t.Year(), Month: t.Month(), Date: t.Day()}
}

// ParseUserDay парсит дату от пользователя в формате D/M или DD/MM
// Год не указывается, подставляется переданный год
func ParseUserDay(dayStr, monthStr string, year int) (Day, error) {
	var d, m int
	if _, err := fmt.Sscanf(dayStr, "%d", &d); err != nil {
		return Day{}, fmt.Errorf("failed to parse day: %v", err)
	}
	if _, err := fmt.Sscanf(monthStr, "%d", &m); err != nil {
		return Day{}, fmt.Errorf("failed to parse month: %v", err)
	}

	day := Day{Year: year, Month: time.Month(m), Date: d}
	// Проверяем что дата реально существует, time.Date нормализует 31/02 в 03/03
	check := day.Time(time.UTC)
	if check.Day() != d || check.Month() != time.Month(m) || check.Year() != year {
		return Day{}, fmt.Errorf("invalid calendar date: %s/%s", dayStr, monthStr)
	}

	return day, nil
}

// ParseISODay парсит дату в формате 2006-01-02
func ParseISODay(str string) (Day, error) {
	parsed, err := time.Parse("2006-01-02", str)
	if err != nil {
		return Day{}, fmt.Errorf("failed to parse date: %v", err)
	}
	return DayOf(parsed), nil
}

func (d Day) IsZero() bool {
	return d == Day{}
}

func (d Day) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, loc)
}

// Weekday не зависит от таймзоны, дата уже календарная
func (d Day) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

func (d Day) Before(other Day) bool {
	return d.Time(time.UTC).Before(other.Time(time.UTC))
}

// String - ISO формат, используется для ключей кэша и датасета
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Date)
}

// FormatUser - формат для ответов пользователю, DD/MM/YYYY
func (d Day) FormatUser() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Date, int(d.Month), d.Year)
}

func (d *Day) UnmarshalJSON(data []byte) error {
	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])

	parsed, err := ParseISODay(str)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// ClockTime - время дня в минутах с полуночи
// Все сравнения делаются по целому числу, а не по строкам
type ClockTime int

// ParseClockTime парсит время в формате H:MM или HH:MM (24 часа)
func ParseClockTime(str string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(str, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("failed to parse time: %v", err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time out of range: %s", str)
	}
	return ClockTime(h*60 + m), nil
}

func (t ClockTime) Hour() int {
	return int(t) / 60
}

func (t ClockTime) Minute() int {
	return int(t) % 60
}

// String - формат HH:MM для ответов пользователю
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])

	parsed, err := ParseClockTime(str)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
