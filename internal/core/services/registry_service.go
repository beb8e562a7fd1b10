package services

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/out"
)

var (
	// ErrAppointmentNotFound покрывает и несуществующие, и уже обработанные записи:
	// терминальные записи вычищаются сразу, снаружи эти случаи неразличимы
	ErrAppointmentNotFound = errors.New("appointment_not_found")

	// ErrSlotTaken - слот уже удерживается другой живой предварительной записью
	ErrSlotTaken = errors.New("already_booked")
)

const registryShardCount = 16

type registryShard struct {
	mu      sync.Mutex
	records map[uuid.UUID]*registryRecord
}

type registryRecord struct {
	appointment domain.Appointment
	timer       *time.Timer
}

type reservationShard struct {
	mu   sync.Mutex
	held map[slotKey]uuid.UUID
}

type slotKey struct {
	day  domain.Day
	time domain.ClockTime
}

// RegistryService владеет жизненным циклом предварительных записей
// Pending -> Confirmed | Cancelled | Expired, все три терминальны
// Шардирование по ключу, чтобы не сериализовать несвязанных пользователей
type RegistryService struct {
	shards       [registryShardCount]*registryShard
	reservations [registryShardCount]*reservationShard
	timeout      time.Duration
	logger       out.LoggerPort
	now          func() time.Time
}

func NewRegistryService(timeout time.Duration, logger out.LoggerPort) *RegistryService {
	r := &RegistryService{
		timeout: timeout,
		logger:  logger.WithModule("RegistryService"),
		now:     time.Now,
	}
	for i := range r.shards {
		r.shards[i] = &registryShard{records: make(map[uuid.UUID]*registryRecord)}
		r.reservations[i] = &reservationShard{held: make(map[slotKey]uuid.UUID)}
	}
	return r
}

func (r *RegistryService) shardFor(id uuid.UUID) *registryShard {
	h := fnv.New32a()
	h.Write(id[:])
	return r.shards[h.Sum32()%registryShardCount]
}

func (r *RegistryService) reservationShardFor(key slotKey) *reservationShard {
	h := fnv.New32a()
	h.Write([]byte(key.day.String()))
	h.Write([]byte(key.time.String()))
	return r.reservations[h.Sum32()%registryShardCount]
}

// Create создает запись в статусе pending и взводит таймер истечения
// Доступность слота не перепроверяется - это зона ответственности вызывающего,
// но слот, уже удерживаемый живой записью, не отдается второй раз
func (r *RegistryService) Create(ctx context.Context, day domain.Day, t domain.ClockTime, userID string) (domain.Appointment, error) {
	key := slotKey{day: day, time: t}
	id := uuid.New()

	resShard := r.reservationShardFor(key)
	resShard.mu.Lock()
	if holder, taken := resShard.held[key]; taken {
		resShard.mu.Unlock()
		r.logger.Debug("registry.appointment.slot_taken", out.LogFields{
			"day":    day.String(),
			"time":   t.String(),
			"holder": holder,
		})
		return domain.Appointment{}, ErrSlotTaken
	}
	resShard.held[key] = id
	resShard.mu.Unlock()

	createdAt := r.now()
	appointment := domain.Appointment{
		ID:        id,
		Day:       day,
		Time:      t,
		UserID:    userID,
		Status:    domain.AppointmentStatusPending,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(r.timeout),
	}

	shard := r.shardFor(id)
	shard.mu.Lock()
	shard.records[id] = &registryRecord{
		appointment: appointment,
		timer:       time.AfterFunc(r.timeout, func() { r.expire(id) }),
	}
	shard.mu.Unlock()

	r.logger.Info("registry.appointment.created", out.LogFields{
		"appointmentId": id,
		"day":           day.String(),
		"time":          t.String(),
		"userId":        userID,
		"expiresAt":     appointment.ExpiresAt,
	})

	return appointment, nil
}

// Confirm переводит живую запись в confirmed и сразу вычищает ее
func (r *RegistryService) Confirm(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	record, ok := r.evict(id)
	if !ok {
		return domain.Appointment{}, ErrAppointmentNotFound
	}

	record.appointment.Status = domain.AppointmentStatusConfirmed
	r.logger.Info("registry.appointment.confirmed", out.LogFields{
		"appointmentId": id,
		"day":           record.appointment.Day.String(),
		"time":          record.appointment.Time.String(),
	})

	return record.appointment, nil
}

// Cancel вычищает живую запись
func (r *RegistryService) Cancel(ctx context.Context, id uuid.UUID) error {
	record, ok := r.evict(id)
	if !ok {
		return ErrAppointmentNotFound
	}

	r.logger.Info("registry.appointment.cancelled", out.LogFields{
		"appointmentId": id,
		"day":           record.appointment.Day.String(),
		"time":          record.appointment.Time.String(),
	})

	return nil
}

// Snapshot возвращает копию живой записи
func (r *RegistryService) Snapshot(id uuid.UUID) (domain.Appointment, bool) {
	shard := r.shardFor(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	record, exists := shard.records[id]
	if !exists {
		return domain.Appointment{}, false
	}
	return record.appointment, true
}

func (r *RegistryService) PendingCount() int {
	total := 0
	for _, shard := range r.shards {
		shard.mu.Lock()
		total += len(shard.records)
		shard.mu.Unlock()
	}
	return total
}

// evict атомарно изымает запись и останавливает ее таймер
// Второй вызов по тому же id вернет ok=false - на этом держится
// идемпотентность confirm/cancel/expire между собой
func (r *RegistryService) evict(id uuid.UUID) (*registryRecord, bool) {
	shard := r.shardFor(id)
	shard.mu.Lock()
	record, exists := shard.records[id]
	if !exists {
		shard.mu.Unlock()
		return nil, false
	}
	delete(shard.records, id)
	shard.mu.Unlock()

	record.timer.Stop()
	r.releaseSlot(record.appointment, id)

	return record, true
}

func (r *RegistryService) releaseSlot(appointment domain.Appointment, id uuid.UUID) {
	key := slotKey{day: appointment.Day, time: appointment.Time}
	resShard := r.reservationShardFor(key)
	resShard.mu.Lock()
	// Освобождаем только свою резервацию
	if holder, held := resShard.held[key]; held && holder == id {
		delete(resShard.held, key)
	}
	resShard.mu.Unlock()
}

// expire вызывается таймером, если запись еще жива - вычищает как expired
// Уже обработанная запись не найдется, и это no-op
func (r *RegistryService) expire(id uuid.UUID) {
	record, ok := r.evict(id)
	if !ok {
		return
	}

	record.appointment.Status = domain.AppointmentStatusExpired
	r.logger.Info("registry.appointment.expired", out.LogFields{
		"appointmentId": id,
		"day":           record.appointment.Day.String(),
		"time":          record.appointment.Time.String(),
		"userId":        record.appointment.UserID,
	})
}
