package explore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wellbeing-journal/internal/effects/runner"
	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
	exp "github.com/magabrotheeeer/wellbeing-journal/internal/slices/explore"
	"github.com/magabrotheeeer/wellbeing-journal/internal/store"
)

type dispMock struct {
	mu         sync.Mutex
	dispatched []store.Intent
}

func (d *dispMock) Dispatch(in store.Intent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatched = append(d.dispatched, in)
}

func (d *dispMock) last(t *testing.T) store.Intent {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.dispatched)
	return d.dispatched[len(d.dispatched)-1]
}

type docsMock struct{ mock.Mock }

func (m *docsMock) ListCards(ctx context.Context, category string) ([]models.Card, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *docsMock) StoreCard(ctx context.Context, category string, card models.Card) error {
	return m.Called(ctx, category, card).Error(0)
}

func (m *docsMock) ListCompletedCards(ctx context.Context, uid string) ([]string, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *docsMock) MarkCardCompleted(ctx context.Context, uid, cardKey string) error {
	return m.Called(ctx, uid, cardKey).Error(0)
}

func (m *docsMock) ListFavoriteCards(ctx context.Context, uid string) ([]string, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *docsMock) AddFavoriteCard(ctx context.Context, uid, cardKey string) error {
	return m.Called(ctx, uid, cardKey).Error(0)
}

func (m *docsMock) RemoveFavoriteCard(ctx context.Context, uid, cardKey string) error {
	return m.Called(ctx, uid, cardKey).Error(0)
}

func newCoordinator(docs *docsMock) (*Coordinator, *dispMock) {
	disp := &dispMock{}
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(log, disp, docs, runner.New()), disp
}

func TestFetchCatalog_ЗагружаетВсеКатегории(t *testing.T) {
	docs := &docsMock{}
	c, disp := newCoordinator(docs)

	for _, category := range models.Categories {
		docs.On("ListCards", mock.Anything, category).
			Return([]models.Card{{ID: category + "-1", Category: models.CategoryKey(category)}}, nil)
	}

	c.fetchCatalog()

	got, ok := disp.last(t).(exp.FetchCatalogSuccess)
	require.True(t, ok)
	assert.Len(t, got.Catalog, len(models.Categories))
	assert.Contains(t, got.Catalog, "recommended")
	assert.Contains(t, got.Catalog, "calm")
}

func TestFetchCatalog_ОшибкаОднойКатегорииРонятЗапрос(t *testing.T) {
	docs := &docsMock{}
	c, disp := newCoordinator(docs)

	docs.On("ListCards", mock.Anything, "Recommended").
		Return([]models.Card{{ID: "r-1"}}, nil)
	docs.On("ListCards", mock.Anything, "Grateful").
		Return(nil, errors.New("connection refused"))

	c.fetchCatalog()

	got, ok := disp.last(t).(exp.FetchCatalogFailure)
	require.True(t, ok)
	assert.Equal(t, "Failed to load content", got.Message)
}

func TestMarkCompleted_ЗаписьПередПодтверждением(t *testing.T) {
	docs := &docsMock{}
	c, disp := newCoordinator(docs)

	docs.On("MarkCardCompleted", mock.Anything, "uid-1", "card-1").Return(nil)

	c.markCompleted(exp.MarkCompletedRequest{UID: "uid-1", CardID: "card-1"})

	got, ok := disp.last(t).(exp.MarkCompletedSuccess)
	require.True(t, ok)
	assert.Equal(t, "card-1", got.CardID)
	docs.AssertExpectations(t)
}

func TestToggleFavorite_ЦелевоеСостояниеОпределяетОперацию(t *testing.T) {
	tests := []struct {
		name       string
		isFavorite bool
		wantMethod string
	}{
		{
			name:       "добавление в избранное",
			isFavorite: true,
			wantMethod: "AddFavoriteCard",
		},
		{
			name:       "удаление из избранного",
			isFavorite: false,
			wantMethod: "RemoveFavoriteCard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := &docsMock{}
			c, disp := newCoordinator(docs)

			docs.On(tt.wantMethod, mock.Anything, "uid-1", "card-1").Return(nil)

			c.toggleFavorite(exp.ToggleFavoriteRequest{
				UID:        "uid-1",
				CardID:     "card-1",
				IsFavorite: tt.isFavorite,
			})

			got, ok := disp.last(t).(exp.ToggleFavoriteSuccess)
			require.True(t, ok)
			assert.Equal(t, tt.isFavorite, got.IsFavorite)
			docs.AssertExpectations(t)
		})
	}
}

func TestToggleFavorite_ОшибкаЗаписиНеПодтверждается(t *testing.T) {
	docs := &docsMock{}
	c, disp := newCoordinator(docs)

	docs.On("AddFavoriteCard", mock.Anything, "uid-1", "card-1").
		Return(errors.New("connection refused"))

	c.toggleFavorite(exp.ToggleFavoriteRequest{UID: "uid-1", CardID: "card-1", IsFavorite: true})

	_, ok := disp.last(t).(exp.ToggleFavoriteFailure)
	require.True(t, ok)
}

func TestToggleFavorite_ЗапоздалыйОтветНеПодтверждается(t *testing.T) {
	docs := &docsMock{}
	c, disp := newCoordinator(docs)

	started := make(chan struct{})
	release := make(chan struct{})
	docs.On("AddFavoriteCard", mock.Anything, "uid-1", "card-1").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil)
	docs.On("RemoveFavoriteCard", mock.Anything, "uid-1", "card-1").Return(nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.toggleFavorite(exp.ToggleFavoriteRequest{UID: "uid-1", CardID: "card-1", IsFavorite: true})
	}()
	<-started

	// Пользователь уже передумал: снятие из избранного завершается раньше.
	c.toggleFavorite(exp.ToggleFavoriteRequest{UID: "uid-1", CardID: "card-1", IsFavorite: false})
	close(release)
	wg.Wait()

	disp.mu.Lock()
	defer disp.mu.Unlock()
	require.Len(t, disp.dispatched, 1)
	got, ok := disp.dispatched[0].(exp.ToggleFavoriteSuccess)
	require.True(t, ok)
	assert.False(t, got.IsFavorite)
}

func TestStoreCard_Успех(t *testing.T) {
	docs := &docsMock{}
	c, disp := newCoordinator(docs)

	card := models.Card{ID: "card-9", Category: "calm"}
	docs.On("StoreCard", mock.Anything, "Calm", card).Return(nil)

	c.storeCard(exp.StoreCardRequest{Category: "Calm", Card: card})

	got, ok := disp.last(t).(exp.StoreCardSuccess)
	require.True(t, ok)
	assert.Equal(t, "card-9", got.Card.ID)
}

func TestFetchFavorites_Успех(t *testing.T) {
	docs := &docsMock{}
	c, disp := newCoordinator(docs)

	docs.On("ListFavoriteCards", mock.Anything, "uid-1").
		Return([]string{"card-1", "card-2"}, nil)

	c.fetchFavorites(exp.FetchFavoritesRequest{UID: "uid-1"})

	got, ok := disp.last(t).(exp.FetchFavoritesSuccess)
	require.True(t, ok)
	assert.Equal(t, []string{"card-1", "card-2"}, got.CardIDs)
}
