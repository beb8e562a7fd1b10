package domain

import "time"

// BusinessSchedule - расписание работы, неизменяемое после загрузки конфигурации
type BusinessSchedule struct {
	OpeningTime   ClockTime
	ClosingTime   ClockTime
	SlotDuration  int // в минутах
	BreakStart    ClockTime
	BreakEnd      ClockTime
	HasBreak      bool
	ClosedWeekday time.Weekday
	// Праздничные и прочие нерабочие даты
	NonWorkingDays map[Day]struct{}
}

// IsNonWorkingDay проверяет еженедельный выходной и список нерабочих дат
func (s BusinessSchedule) IsNonWorkingDay(day Day) bool {
	if day.Weekday() == s.ClosedWeekday {
		return true
	}
	_, listed := s.NonWorkingDays[day]
	return listed
}

// IsWithinBusinessHours: start <= t < end, обеденный перерыв исключается
func (s BusinessSchedule) IsWithinBusinessHours(t ClockTime) bool {
	if t < s.OpeningTime || t >= s.ClosingTime {
		return false
	}
	if s.HasBreak && t >= s.BreakStart && t < s.BreakEnd {
		return false
	}
	return true
}

// OccupiedSlot - уже занятый слот из статического датасета
type OccupiedSlot struct {
	Start  ClockTime `json:"start"`
	End    ClockTime `json:"end"`
	Client string    `json:"client"`
}

// DayOccupation - строка датасета занятых слотов на одну дату
type DayOccupation struct {
	Date  Day            `json:"date"`
	Slots []OccupiedSlot `json:"slots"`
}

// ScheduleBook - датасет занятых слотов, только для чтения после загрузки
// Безопасен для конкурентного чтения без синхронизации
type ScheduleBook struct {
	occupied map[Day][]OccupiedSlot
}

func NewScheduleBook(records []DayOccupation) *ScheduleBook {
	occupied := make(map[Day][]OccupiedSlot, len(records))
	for _, record := range records {
		occupied[record.Date] = append(occupied[record.Date], record.Slots...)
	}
	return &ScheduleBook{occupied: occupied}
}

func (b *ScheduleBook) OccupiedFor(day Day) []OccupiedSlot {
	return b.occupied[day]
}

// FindOccupied ищет занятый слот по дате и времени начала
func (b *ScheduleBook) FindOccupied(day Day, t ClockTime) (OccupiedSlot, bool) {
	for _, slot := range b.occupied[day] {
		if slot.Start == t {
			return slot, true
		}
	}
	return OccupiedSlot{}, false
}

func (b *ScheduleBook) TotalOccupied() int {
	total := 0
	for _, slots := range b.occupied {
		total += len(slots)
	}
	return total
}
