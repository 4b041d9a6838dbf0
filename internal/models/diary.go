package models

import "time"

// DateKey формат календарной даты, используемый ключом записи дневника.
const DateKey = "2006-01-02"

// MorningEntry утренняя часть записи дневника.
type MorningEntry struct {
	Point1         string `json:"point1"`         // Первый пункт благодарности
	Point2         string `json:"point2"`         // Второй пункт благодарности
	Point3         string `json:"point3"`         // Третий пункт благодарности
	MakeTodayGreat string `json:"makeTodayGreat"` // Что сделает день хорошим
	Affirmation    string `json:"affirmation"`    // Аффирмация дня
}

// EveningEntry вечерняя часть записи дневника.
type EveningEntry struct {
	Highlight1    string `json:"highlight1"`    // Первое яркое событие дня
	Highlight2    string `json:"highlight2"`    // Второе яркое событие дня
	Highlight3    string `json:"highlight3"`    // Третье яркое событие дня
	GoodDeed      string `json:"goodDeed"`      // Доброе дело
	LessonLearned string `json:"lessonLearned"` // Полученный урок
}

// DiaryEntry запись дневника за одну календарную дату.
// На дату существует не более одной записи; полностью пустая запись
// не сохраняется.
type DiaryEntry struct {
	Morning   MorningEntry `json:"morning"`
	Evening   EveningEntry `json:"evening"`
	UpdatedAt time.Time    `json:"updatedAt"` // Серверная отметка последнего изменения
}

// IsEmpty сообщает, пусты ли все текстовые поля записи.
func (e DiaryEntry) IsEmpty() bool {
	m, ev := e.Morning, e.Evening
	fields := []string{
		m.Point1, m.Point2, m.Point3, m.MakeTodayGreat, m.Affirmation,
		ev.Highlight1, ev.Highlight2, ev.Highlight3, ev.GoodDeed, ev.LessonLearned,
	}
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}

// Quote цитата дня из коллекции quotes.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}
