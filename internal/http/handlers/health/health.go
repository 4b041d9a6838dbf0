// Package health содержит обработчик проверки готовности приложения.
// Отдаёт состояние подключений к Postgres и Redis для отладочного сервера.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wellbeing-journal/internal/http/response"
	"github.com/magabrotheeeer/wellbeing-journal/internal/lib/sl"
)

// Pinger проверяет доступность внешней зависимости.
type Pinger interface {
	Ping(r *http.Request) error
}

// PingFunc адаптер функции к интерфейсу Pinger.
type PingFunc func(r *http.Request) error

// Ping вызывает f.
func (f PingFunc) Ping(r *http.Request) error { return f(r) }

// Handler обработчик /health.
type Handler struct {
	log  *slog.Logger
	deps map[string]Pinger
}

// New создает обработчик. deps — именованные зависимости, каждая из
// которых должна отвечать на пинг.
func New(log *slog.Logger, deps map[string]Pinger) *Handler {
	return &Handler{log: log, deps: deps}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	checks := make(map[string]string, len(h.deps))
	healthy := true
	for name, dep := range h.deps {
		if err := dep.Ping(r); err != nil {
			h.log.Warn("health check failed", sl.Op(op),
				slog.String("dependency", name), sl.Err(err))
			checks[name] = err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("one or more dependencies are unavailable"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(checks))
}
