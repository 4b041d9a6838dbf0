package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/wellbeing-journal/internal/lib/sl"
)

// Имена срезов, снапшоты которых сохраняются во внешнем хранилище.
const (
	SliceIdentity = "identity"
	SliceDiary    = "diary"
	SliceExplore  = "explore"
)

var (
	intentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_intents_total",
		Help: "Количество обработанных намерений по типам.",
	}, []string{"kind"})
	snapshotFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "journal_snapshot_failures_total",
		Help: "Количество неудачных записей снапшотов состояния.",
	})
)

// Snapshots контракт хранилища снапшотов срезов. Реализация на Redis
// живёт в пакете cache.
type Snapshots interface {
	// Save сохраняет сериализованный срез под его именем.
	Save(slice string, value any) error
	// Load читает срез; (false, nil) означает отсутствие снапшота.
	Load(slice string, into any) (bool, error)
	// Reset удаляет все снапшоты, затем заново сохраняет срез identity,
	// содержащий только язык.
	Reset(keepLanguage string) error
}

// Listener получает каждое зафиксированное намерение вместе с новым
// состоянием. Вызывается синхронно внутри цикла диспетчеризации, поэтому
// долгие операции должны уходить в отдельные горутины.
type Listener func(in Intent, st State)

// Store единое авторитетное дерево состояния с последовательной
// диспетчеризацией намерений.
type Store struct {
	log   *slog.Logger
	snaps Snapshots

	mu    sync.RWMutex
	state State

	intents   chan Intent
	persistCh chan State

	lmu       sync.Mutex
	listeners []Listener
}

// New создаёт Store и синхронно восстанавливает сохранённые срезы.
// Повреждённые или отсутствующие снапшоты молча заменяются начальным
// состоянием; восстановление никогда не фатально.
func New(log *slog.Logger, snaps Snapshots) *Store {
	s := &Store{
		log:       log,
		snaps:     snaps,
		state:     InitialState(),
		intents:   make(chan Intent, 1024),
		persistCh: make(chan State, 1),
	}
	s.rehydrate()
	return s
}

// Register добавляет слушателя зафиксированных намерений.
// Слушатели регистрируются до запуска цикла.
func (s *Store) Register(l Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Dispatch ставит намерение в очередь обработки. Не блокируется:
// при заполненной очереди доставка уходит в отдельную горутину.
func (s *Store) Dispatch(in Intent) {
	select {
	case s.intents <- in:
	default:
		go func() { s.intents <- in }()
	}
}

// State возвращает текущее зафиксированное состояние.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ResetSnapshots очищает сохранённые срезы, оставляя только язык.
// Используется координатором выхода из аккаунта.
func (s *Store) ResetSnapshots(keepLanguage string) {
	if s.snaps == nil {
		return
	}
	if err := s.snaps.Reset(keepLanguage); err != nil {
		s.log.Warn("failed to reset persisted snapshots", sl.Err(err))
	}
}

// Run запускает цикл диспетчеризации и горутину записи снапшотов.
// Блокируется до отмены контекста.
func (s *Store) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.persistLoop(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case in := <-s.intents:
			s.commit(in)
		}
	}
}

// commit применяет намерение, фиксирует состояние, уведомляет слушателей
// и передаёт снапшот на запись.
func (s *Store) commit(in Intent) {
	s.mu.Lock()
	next := Reduce(s.state, in)
	s.state = next
	s.mu.Unlock()

	intentsTotal.WithLabelValues(in.Kind()).Inc()

	s.lmu.Lock()
	listeners := s.listeners
	s.lmu.Unlock()
	for _, l := range listeners {
		l(in, next)
	}

	s.enqueueSnapshot(next)
}

// enqueueSnapshot передаёт состояние горутине записи; при заполненном
// буфере хранится только самое свежее состояние.
func (s *Store) enqueueSnapshot(st State) {
	if s.snaps == nil {
		return
	}
	for {
		select {
		case s.persistCh <- st:
			return
		default:
			select {
			case <-s.persistCh:
			default:
			}
		}
	}
}

// persistLoop пишет снапшоты по одному: очередная запись начинается
// только после завершения предыдущей.
func (s *Store) persistLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case st := <-s.persistCh:
			s.persist(st)
		}
	}
}

func (s *Store) persist(st State) {
	const op = "store.persist"
	saves := []struct {
		slice string
		value any
	}{
		{SliceIdentity, st.Identity},
		{SliceDiary, st.Diary},
		{SliceExplore, st.Explore},
	}
	for _, sv := range saves {
		if err := s.snaps.Save(sv.slice, sv.value); err != nil {
			snapshotFailures.Inc()
			s.log.Warn("failed to persist slice snapshot",
				sl.Op(op), slog.String("slice", sv.slice), sl.Err(err))
		}
	}
}

// rehydrate восстанавливает сохранённые срезы до первого намерения.
func (s *Store) rehydrate() {
	const op = "store.rehydrate"
	if s.snaps == nil {
		return
	}

	var idn = s.state.Identity
	if ok, err := s.snaps.Load(SliceIdentity, &idn); err != nil {
		s.log.Warn("failed to rehydrate identity slice, using initial state", sl.Op(op), sl.Err(err))
	} else if ok {
		s.state.Identity = idn
	}

	var d = s.state.Diary
	if ok, err := s.snaps.Load(SliceDiary, &d); err != nil {
		s.log.Warn("failed to rehydrate diary slice, using initial state", sl.Op(op), sl.Err(err))
	} else if ok {
		if d.Entries == nil {
			d.Entries = s.state.Diary.Entries
		}
		if d.AllEntries == nil {
			d.AllEntries = s.state.Diary.AllEntries
		}
		s.state.Diary = d
	}

	var e = s.state.Explore
	if ok, err := s.snaps.Load(SliceExplore, &e); err != nil {
		s.log.Warn("failed to rehydrate explore slice, using initial state", sl.Op(op), sl.Err(err))
	} else if ok {
		if e.Catalog == nil {
			e.Catalog = s.state.Explore.Catalog
		}
		s.state.Explore = e
	}
}
