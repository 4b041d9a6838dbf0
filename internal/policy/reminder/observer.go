package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/wellbeing-journal/internal/lib/sl"
	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
	"github.com/magabrotheeeer/wellbeing-journal/internal/notify"
	"github.com/magabrotheeeer/wellbeing-journal/internal/store"
)

// Observer применяет выведенное расписание к планировщику уведомлений.
// Пересчитывает расписание на каждом зафиксированном намерении и при
// возврате приложения на передний план.
type Observer struct {
	log   *slog.Logger
	sched notify.Scheduler
	now   func() time.Time

	applyCh chan pendingApply
}

type pendingApply struct {
	schedule Schedule
	now      time.Time
}

// NewObserver создает наблюдателя расписания. nowFn позволяет тестам
// подменять текущее время; nil означает time.Now.
func NewObserver(log *slog.Logger, sched notify.Scheduler, nowFn func() time.Time) *Observer {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Observer{
		log:     log,
		sched:   sched,
		now:     nowFn,
		applyCh: make(chan pendingApply, 1),
	}
}

// Handle пересчитывает расписание и передаёт его горутине применения.
// Вызывается синхронно из цикла диспетчеризации; при заполненном буфере
// хранится только самое свежее расписание, поэтому команды планировщику
// никогда не приходят в устаревшем порядке.
func (o *Observer) Handle(_ store.Intent, st store.State) {
	now := o.now()
	today := now.Format(models.DateKey)
	schedule := Derive(st.Identity.User, now, st.Diary.Entries[today])
	for {
		select {
		case o.applyCh <- pendingApply{schedule: schedule, now: now}:
			return
		default:
			select {
			case <-o.applyCh:
			default:
			}
		}
	}
}

// Run применяет расписания по одному: очередное применение начинается
// только после завершения предыдущего. Блокируется до отмены контекста.
func (o *Observer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-o.applyCh:
			o.Apply(p.schedule, p.now)
		}
	}
}

// Apply приводит планировщик к выведенному расписанию.
func (o *Observer) Apply(schedule Schedule, now time.Time) {
	ctx := context.Background()
	o.applySlot(ctx, schedule.Morning, MorningID, morningTitle, morningBody, schedule.SuppressToday, now)
	o.applySlot(ctx, schedule.Evening, EveningID, eveningTitle, eveningBody, schedule.SuppressToday, now)
}

func (o *Observer) applySlot(ctx context.Context, slot Slot, id, title, body string, suppressToday bool, now time.Time) {
	if !slot.Enabled {
		if err := o.sched.Cancel(ctx, id); err != nil {
			o.log.Warn("failed to cancel reminder", sl.Err(err), slog.String("id", id))
		}
		return
	}

	// Запись за сегодня уже начата: сегодняшнее срабатывание отменяется,
	// завтрашнее планируется заново.
	if suppressToday && slot.FiresToday(now) {
		if err := o.sched.Cancel(ctx, id); err != nil {
			o.log.Warn("failed to cancel reminder", sl.Err(err), slog.String("id", id))
		}
		return
	}

	if err := o.sched.Schedule(ctx, notify.Notification{
		ID:      id,
		Channel: Channel,
		Title:   title,
		Body:    body,
		Hour:    slot.Hour,
		Minute:  slot.Minute,
	}); err != nil {
		o.log.Warn("failed to schedule reminder", sl.Err(err), slog.String("id", id))
	}
}
