// Package explore реализует координатор эффектов раздела "Explore":
// загрузку каталога по фиксированным категориям, сохранение карточек,
// отметки "пройдено" и избранное. Изменения сперва записываются во
// внешнее хранилище и только после подтверждаются намерением успеха.
package explore

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/wellbeing-journal/internal/effects/runner"
	"github.com/magabrotheeeer/wellbeing-journal/internal/lib/sl"
	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
	exp "github.com/magabrotheeeer/wellbeing-journal/internal/slices/explore"
	"github.com/magabrotheeeer/wellbeing-journal/internal/store"
)

// Категории запросов для дисциплины "выигрывает последний".
const (
	categoryCatalog        = "explore.catalog"
	categoryStoreCard      = "explore.storeCard"
	categoryCompleted      = "explore.completed"
	categoryMarkCompleted  = "explore.markCompleted"
	categoryFavorites      = "explore.favorites"
	categoryToggleFavorite = "explore.toggleFavorite"
)

// Dispatcher контракт хранилища, достаточный координатору.
type Dispatcher interface {
	Dispatch(in store.Intent)
}

// Docs контракт документного хранилища раздела "Explore".
type Docs interface {
	ListCards(ctx context.Context, category string) ([]models.Card, error)
	StoreCard(ctx context.Context, category string, card models.Card) error
	ListCompletedCards(ctx context.Context, uid string) ([]string, error)
	MarkCardCompleted(ctx context.Context, uid, cardKey string) error
	ListFavoriteCards(ctx context.Context, uid string) ([]string, error)
	AddFavoriteCard(ctx context.Context, uid, cardKey string) error
	RemoveFavoriteCard(ctx context.Context, uid, cardKey string) error
}

// Coordinator координатор эффектов среза explore.
type Coordinator struct {
	log    *slog.Logger
	disp   Dispatcher
	docs   Docs
	runner *runner.Runner
}

// New создает координатор эффектов explore.
func New(log *slog.Logger, disp Dispatcher, docs Docs, r *runner.Runner) *Coordinator {
	return &Coordinator{
		log:    log,
		disp:   disp,
		docs:   docs,
		runner: r,
	}
}

// Handle реагирует на зафиксированные намерения среза explore.
func (c *Coordinator) Handle(in store.Intent, _ store.State) {
	switch in := in.(type) {
	case exp.FetchCatalogRequest:
		go c.fetchCatalog()
	case exp.StoreCardRequest:
		go c.storeCard(in)
	case exp.FetchCompletedRequest:
		go c.fetchCompleted(in)
	case exp.MarkCompletedRequest:
		go c.markCompleted(in)
	case exp.FetchFavoritesRequest:
		go c.fetchFavorites(in)
	case exp.ToggleFavoriteRequest:
		go c.toggleFavorite(in)
	}
}

// fetchCatalog загружает карточки всех фиксированных категорий.
// Ошибка любой категории роняет запрос целиком.
func (c *Coordinator) fetchCatalog() {
	ctx := context.Background()
	seq := c.runner.Begin(categoryCatalog)

	catalog := make(map[string][]models.Card, len(models.Categories))
	for _, category := range models.Categories {
		cards, err := c.docs.ListCards(ctx, category)
		if err != nil {
			if c.runner.Latest(categoryCatalog, seq) {
				c.log.Warn("failed to fetch explore catalog", sl.Err(err),
					slog.String("category", category))
				c.disp.Dispatch(exp.FetchCatalogFailure{Message: "Failed to load content"})
			}
			return
		}
		catalog[models.CategoryKey(category)] = cards
	}

	if !c.runner.Latest(categoryCatalog, seq) {
		return
	}
	c.disp.Dispatch(exp.FetchCatalogSuccess{Catalog: catalog})
}

func (c *Coordinator) storeCard(in exp.StoreCardRequest) {
	seq := c.runner.Begin(categoryStoreCard)

	err := c.docs.StoreCard(context.Background(), in.Category, in.Card)
	if !c.runner.Latest(categoryStoreCard, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to store card", sl.Err(err),
			slog.String("card", in.Card.ID))
		c.disp.Dispatch(exp.StoreCardFailure{Message: "Failed to save card"})
		return
	}
	c.disp.Dispatch(exp.StoreCardSuccess{Category: in.Category, Card: in.Card})
}

func (c *Coordinator) fetchCompleted(in exp.FetchCompletedRequest) {
	seq := c.runner.Begin(categoryCompleted)

	ids, err := c.docs.ListCompletedCards(context.Background(), in.UID)
	if !c.runner.Latest(categoryCompleted, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to fetch completed cards", sl.Err(err))
		c.disp.Dispatch(exp.FetchCompletedFailure{Message: "Failed to load progress"})
		return
	}
	c.disp.Dispatch(exp.FetchCompletedSuccess{CardIDs: ids})
}

func (c *Coordinator) markCompleted(in exp.MarkCompletedRequest) {
	seq := c.runner.Begin(categoryMarkCompleted)

	err := c.docs.MarkCardCompleted(context.Background(), in.UID, in.CardID)
	if !c.runner.Latest(categoryMarkCompleted, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to mark card completed", sl.Err(err),
			slog.String("card", in.CardID))
		c.disp.Dispatch(exp.MarkCompletedFailure{Message: "Failed to save progress"})
		return
	}
	c.disp.Dispatch(exp.MarkCompletedSuccess{CardID: in.CardID})
}

func (c *Coordinator) fetchFavorites(in exp.FetchFavoritesRequest) {
	seq := c.runner.Begin(categoryFavorites)

	ids, err := c.docs.ListFavoriteCards(context.Background(), in.UID)
	if !c.runner.Latest(categoryFavorites, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to fetch favorite cards", sl.Err(err))
		c.disp.Dispatch(exp.FetchFavoritesFailure{Message: "Failed to load favorites"})
		return
	}
	c.disp.Dispatch(exp.FetchFavoritesSuccess{CardIDs: ids})
}

// toggleFavorite записывает новое состояние избранного и лишь после
// подтверждает его. IsFavorite в запросе — целевое состояние.
func (c *Coordinator) toggleFavorite(in exp.ToggleFavoriteRequest) {
	ctx := context.Background()
	seq := c.runner.Begin(categoryToggleFavorite)

	var err error
	if in.IsFavorite {
		err = c.docs.AddFavoriteCard(ctx, in.UID, in.CardID)
	} else {
		err = c.docs.RemoveFavoriteCard(ctx, in.UID, in.CardID)
	}
	if !c.runner.Latest(categoryToggleFavorite, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to toggle favorite", sl.Err(err),
			slog.String("card", in.CardID))
		c.disp.Dispatch(exp.ToggleFavoriteFailure{Message: "Failed to update favorites"})
		return
	}
	c.disp.Dispatch(exp.ToggleFavoriteSuccess{CardID: in.CardID, IsFavorite: in.IsFavorite})
}
