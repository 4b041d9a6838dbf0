// Package reminder выводит расписание двух ежедневных напоминаний из
// сессии, текущего времени и записи дневника за сегодня. Вывод — чистая
// функция; применение расписания к планировщику выполняет наблюдатель.
package reminder

import (
	"time"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

// Идентификаторы и канал локальных уведомлений.
const (
	MorningID = "1235"
	EveningID = "1234"
	Channel   = "wellbeing"
)

// Тексты уведомлений.
const (
	morningTitle = "Good Morning!"
	morningBody  = "Start Your Day with Intention. Your daily journal awaits."
	eveningTitle = "Evening Reflection"
	eveningBody  = "Time to complete your daily journal entry."
)

// Slot эффективное состояние одного напоминания.
type Slot struct {
	Enabled bool
	Hour    int
	Minute  int
	FireAt  time.Time // Ближайшее срабатывание с учётом переноса на завтра
}

// Schedule выведенное расписание напоминаний.
type Schedule struct {
	Morning Slot
	Evening Slot
	// SuppressToday — сегодняшние срабатывания отменяются, так как запись
	// за сегодня уже начата. Завтрашние остаются.
	SuppressToday bool
}

// Derive выводит расписание. Для гостя (nil-сессия) оба напоминания
// включены со временем по умолчанию. Время, уже прошедшее сегодня,
// переносится на то же время завтра.
func Derive(session *models.Session, now time.Time, todayEntry models.DiaryEntry) Schedule {
	prefs := models.DefaultReminders()
	if session != nil {
		prefs = session.Reminders
	}

	return Schedule{
		Morning:       deriveSlot(prefs.IsMorningEnabled, prefs.MorningHour, prefs.MorningMinute, now),
		Evening:       deriveSlot(prefs.IsEveningEnabled, prefs.EveningHour, prefs.EveningMinute, now),
		SuppressToday: !todayEntry.IsEmpty(),
	}
}

func deriveSlot(enabled bool, hour, minute int, now time.Time) Slot {
	fireAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !fireAt.After(now) {
		fireAt = fireAt.AddDate(0, 0, 1)
	}
	return Slot{
		Enabled: enabled,
		Hour:    hour,
		Minute:  minute,
		FireAt:  fireAt,
	}
}

// FiresToday сообщает, приходится ли ближайшее срабатывание на сегодня.
func (s Slot) FiresToday(now time.Time) bool {
	y1, m1, d1 := s.FireAt.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
