package notify

import (
	"context"
	"sync"
)

// MemoryScheduler хранит запланированные уведомления в памяти.
// Используется в тестах и при работе без брокера.
type MemoryScheduler struct {
	mu    sync.Mutex
	items map[string]Notification
}

// NewMemoryScheduler создает пустой планировщик в памяти.
func NewMemoryScheduler() *MemoryScheduler {
	return &MemoryScheduler{items: make(map[string]Notification)}
}

// Schedule запоминает уведомление, перезаписывая прежнее с тем же ID.
func (s *MemoryScheduler) Schedule(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[n.ID] = n
	return nil
}

// Cancel убирает уведомление по ID. Отмена незапланированного не ошибка.
func (s *MemoryScheduler) Cancel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Scheduled возвращает снимок запланированных уведомлений.
func (s *MemoryScheduler) Scheduled() map[string]Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Notification, len(s.items))
	for id, n := range s.items {
		out[id] = n
	}
	return out
}
