// Package diary реализует координатор эффектов дневника: загрузку и
// сохранение записей, загрузку всех записей и цитаты дня. Полностью
// пустые записи во внешнее хранилище не попадают.
package diary

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/wellbeing-journal/internal/effects/runner"
	"github.com/magabrotheeeer/wellbeing-journal/internal/lib/sl"
	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
	dry "github.com/magabrotheeeer/wellbeing-journal/internal/slices/diary"
	"github.com/magabrotheeeer/wellbeing-journal/internal/storage/docstore"
	"github.com/magabrotheeeer/wellbeing-journal/internal/store"
)

// Категории запросов для дисциплины "выигрывает последний".
const (
	categoryFetchEntry  = "diary.fetchEntry"
	categoryUpsertEntry = "diary.upsertEntry"
	categoryFetchAll    = "diary.fetchAll"
	categoryQuote       = "diary.quote"
)

// Dispatcher контракт хранилища, достаточный координатору.
type Dispatcher interface {
	Dispatch(in store.Intent)
}

// Docs контракт документного хранилища дневника.
type Docs interface {
	GetDiaryEntry(ctx context.Context, uid, dateKey string) (*models.DiaryEntry, error)
	UpsertDiaryEntry(ctx context.Context, uid, dateKey string, entry models.DiaryEntry) (*models.DiaryEntry, error)
	ListDiaryEntries(ctx context.Context, uid string) (map[string]models.DiaryEntry, error)
	RandomQuote(ctx context.Context, lang string) (*models.Quote, error)
}

// Coordinator координатор эффектов среза diary.
type Coordinator struct {
	log    *slog.Logger
	disp   Dispatcher
	docs   Docs
	runner *runner.Runner
}

// New создает координатор эффектов diary.
func New(log *slog.Logger, disp Dispatcher, docs Docs, r *runner.Runner) *Coordinator {
	return &Coordinator{
		log:    log,
		disp:   disp,
		docs:   docs,
		runner: r,
	}
}

// Handle реагирует на зафиксированные намерения среза diary.
func (c *Coordinator) Handle(in store.Intent, st store.State) {
	switch in := in.(type) {
	case dry.FetchEntryRequest:
		go c.fetchEntry(in)
	case dry.UpsertEntryRequest:
		go c.upsertEntry(in)
	case dry.FetchAllRequest:
		go c.fetchAll(in)
	case dry.FetchQuoteRequest:
		go c.fetchQuote(st.Identity.Language)
	}
}

func (c *Coordinator) fetchEntry(in dry.FetchEntryRequest) {
	seq := c.runner.Begin(categoryFetchEntry)

	entry, err := c.docs.GetDiaryEntry(context.Background(), in.UID, in.Date)
	if !c.runner.Latest(categoryFetchEntry, seq) {
		return
	}
	if errors.Is(err, docstore.ErrNotFound) {
		// Отсутствие записи за дату — пустая запись, не ошибка.
		c.disp.Dispatch(dry.FetchEntrySuccess{Date: in.Date, Entry: models.DiaryEntry{}})
		return
	}
	if err != nil {
		c.log.Warn("failed to fetch diary entry", sl.Err(err), slog.String("date", in.Date))
		c.disp.Dispatch(dry.FetchEntryFailure{Message: "Failed to load entry"})
		return
	}
	c.disp.Dispatch(dry.FetchEntrySuccess{Date: in.Date, Entry: *entry})
}

func (c *Coordinator) upsertEntry(in dry.UpsertEntryRequest) {
	seq := c.runner.Begin(categoryUpsertEntry)

	if in.Entry.IsEmpty() {
		// Пустая запись не сохраняется, но подтверждается, чтобы
		// интерфейс не застрял в состоянии загрузки.
		if c.runner.Latest(categoryUpsertEntry, seq) {
			c.disp.Dispatch(dry.UpsertEntrySuccess{Date: in.Date, Entry: in.Entry})
		}
		return
	}

	saved, err := c.docs.UpsertDiaryEntry(context.Background(), in.UID, in.Date, in.Entry)
	if !c.runner.Latest(categoryUpsertEntry, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to save diary entry", sl.Err(err), slog.String("date", in.Date))
		c.disp.Dispatch(dry.UpsertEntryFailure{Message: "Failed to save entry"})
		return
	}
	c.disp.Dispatch(dry.UpsertEntrySuccess{Date: in.Date, Entry: *saved})
}

func (c *Coordinator) fetchAll(in dry.FetchAllRequest) {
	seq := c.runner.Begin(categoryFetchAll)

	entries, err := c.docs.ListDiaryEntries(context.Background(), in.UID)
	if !c.runner.Latest(categoryFetchAll, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to list diary entries", sl.Err(err))
		c.disp.Dispatch(dry.FetchAllFailure{Message: "Failed to load entries"})
		return
	}
	c.disp.Dispatch(dry.FetchAllSuccess{Entries: entries})
}

func (c *Coordinator) fetchQuote(lang string) {
	seq := c.runner.Begin(categoryQuote)
	if lang == "" {
		lang = "en"
	}

	quote, err := c.docs.RandomQuote(context.Background(), lang)
	if !c.runner.Latest(categoryQuote, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to fetch quote", sl.Err(err))
		c.disp.Dispatch(dry.FetchQuoteFailure{Message: "Failed to load quote"})
		return
	}
	c.disp.Dispatch(dry.FetchQuoteSuccess{Quote: *quote})
}
