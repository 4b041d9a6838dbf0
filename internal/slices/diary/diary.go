// Package diary содержит срез состояния дневника: записи по датам,
// полный набор записей пользователя и цитату дня.
package diary

import "github.com/magabrotheeeer/wellbeing-journal/internal/models"

// Intent закрытое множество намерений среза diary.
type Intent interface {
	Kind() string
	isDiary()
}

type intent struct{}

func (intent) isDiary() {}

// FetchEntryRequest запрос записи дневника за конкретную дату.
type FetchEntryRequest struct {
	intent
	UID  string
	Date string // Ключ даты в формате models.DateKey
}

// FetchEntrySuccess загруженная запись; пустой документ даёт пустую запись.
type FetchEntrySuccess struct {
	intent
	Date  string
	Entry models.DiaryEntry
}

// FetchEntryFailure неуспешная загрузка записи.
type FetchEntryFailure struct {
	intent
	Message string
}

// UpsertEntryRequest сохранение записи за дату (merge-семантика).
// Полностью пустые записи координатор не сохраняет.
type UpsertEntryRequest struct {
	intent
	UID   string
	Date  string
	Entry models.DiaryEntry
}

// UpsertEntrySuccess подтверждённое сохранение записи с серверной отметкой времени.
type UpsertEntrySuccess struct {
	intent
	Date  string
	Entry models.DiaryEntry
}

// UpsertEntryFailure неуспешное сохранение записи.
type UpsertEntryFailure struct {
	intent
	Message string
}

// FetchAllRequest запрос всех записей пользователя.
type FetchAllRequest struct {
	intent
	UID string
}

// FetchAllSuccess все записи пользователя по датам.
type FetchAllSuccess struct {
	intent
	Entries map[string]models.DiaryEntry
}

// FetchAllFailure неуспешная загрузка всех записей.
type FetchAllFailure struct {
	intent
	Message string
}

// FetchQuoteRequest запрос случайной цитаты дня.
type FetchQuoteRequest struct{ intent }

// FetchQuoteSuccess загруженная цитата.
type FetchQuoteSuccess struct {
	intent
	Quote models.Quote
}

// FetchQuoteFailure неуспешная загрузка цитаты.
type FetchQuoteFailure struct {
	intent
	Message string
}

func (FetchEntryRequest) Kind() string  { return "diary.fetchEntry.request" }
func (FetchEntrySuccess) Kind() string  { return "diary.fetchEntry.success" }
func (FetchEntryFailure) Kind() string  { return "diary.fetchEntry.failure" }
func (UpsertEntryRequest) Kind() string { return "diary.upsertEntry.request" }
func (UpsertEntrySuccess) Kind() string { return "diary.upsertEntry.success" }
func (UpsertEntryFailure) Kind() string { return "diary.upsertEntry.failure" }
func (FetchAllRequest) Kind() string    { return "diary.fetchAll.request" }
func (FetchAllSuccess) Kind() string    { return "diary.fetchAll.success" }
func (FetchAllFailure) Kind() string    { return "diary.fetchAll.failure" }
func (FetchQuoteRequest) Kind() string  { return "diary.fetchQuote.request" }
func (FetchQuoteSuccess) Kind() string  { return "diary.fetchQuote.success" }
func (FetchQuoteFailure) Kind() string  { return "diary.fetchQuote.failure" }

// State состояние среза diary.
type State struct {
	Entries    map[string]models.DiaryEntry `json:"entries"`
	AllEntries map[string]models.DiaryEntry `json:"allEntries"`
	Quote      models.Quote                 `json:"quote"`
	IsLoading  bool                         `json:"loading"`
	Err        string                       `json:"error"`
}

// Initial возвращает начальное состояние среза.
func Initial() State {
	return State{
		Entries:    map[string]models.DiaryEntry{},
		AllEntries: map[string]models.DiaryEntry{},
	}
}

// Reduce чистая функция перехода среза diary. Успешная загрузка и
// успешное сохранение изменяют ровно один ключ даты.
func Reduce(s State, in Intent) State {
	switch in := in.(type) {
	case FetchEntryRequest:
		s.IsLoading = true
		s.Err = ""
	case FetchEntrySuccess:
		s.IsLoading = false
		s.Entries = withEntry(s.Entries, in.Date, in.Entry)
	case FetchEntryFailure:
		s.IsLoading = false
		s.Err = in.Message
	case UpsertEntryRequest:
		s.IsLoading = true
		s.Err = ""
	case UpsertEntrySuccess:
		s.IsLoading = false
		s.Entries = withEntry(s.Entries, in.Date, in.Entry)
	case UpsertEntryFailure:
		s.IsLoading = false
		s.Err = in.Message
	case FetchAllRequest:
		s.IsLoading = true
		s.Err = ""
	case FetchAllSuccess:
		s.IsLoading = false
		s.AllEntries = in.Entries
	case FetchAllFailure:
		s.IsLoading = false
		s.Err = in.Message
	case FetchQuoteRequest:
		s.IsLoading = true
		s.Err = ""
	case FetchQuoteSuccess:
		s.IsLoading = false
		s.Quote = in.Quote
	case FetchQuoteFailure:
		s.IsLoading = false
		s.Err = in.Message
	}
	return s
}

// withEntry возвращает копию отображения с обновлённым единственным ключом.
func withEntry(entries map[string]models.DiaryEntry, date string, entry models.DiaryEntry) map[string]models.DiaryEntry {
	next := make(map[string]models.DiaryEntry, len(entries)+1)
	for k, v := range entries {
		next[k] = v
	}
	next[date] = entry
	return next
}
