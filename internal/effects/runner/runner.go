// Package runner реализует дисциплину "выигрывает последний" для
// конкурирующих запросов одной категории. Каждому запросу выдаётся
// монотонный номер; результат применяется, только если его номер равен
// последнему выданному для категории. Сами внешние вызовы не
// прерываются — устаревшие результаты отбрасываются в точке применения.
package runner

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var staleDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "journal_stale_results_discarded_total",
	Help: "Количество отброшенных устаревших результатов по категориям запросов.",
}, []string{"category"})

// Runner выдаёт номера запросов по категориям.
type Runner struct {
	mu  sync.Mutex
	seq map[string]uint64
}

// New создаёт пустой Runner.
func New() *Runner {
	return &Runner{seq: make(map[string]uint64)}
}

// Begin регистрирует новый запрос категории и возвращает его номер.
// Любой ранее выданный номер этой категории становится устаревшим.
func (r *Runner) Begin(category string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq[category]++
	return r.seq[category]
}

// Latest сообщает, остаётся ли номер seq последним выданным для
// категории. Устаревшие результаты учитываются в метрике.
func (r *Runner) Latest(category string, seq uint64) bool {
	r.mu.Lock()
	current := r.seq[category]
	r.mu.Unlock()
	if seq != current {
		staleDiscarded.WithLabelValues(category).Inc()
		return false
	}
	return true
}
