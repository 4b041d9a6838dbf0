// Package explore содержит срез состояния раздела "Explore": каталог
// карточек по категориям и отметки пользователя "пройдено"/"избранное".
package explore

import "github.com/magabrotheeeer/wellbeing-journal/internal/models"

// Intent закрытое множество намерений среза explore.
type Intent interface {
	Kind() string
	isExplore()
}

type intent struct{}

func (intent) isExplore() {}

// FetchCatalogRequest массовая загрузка каталога по фиксированным категориям.
type FetchCatalogRequest struct{ intent }

// FetchCatalogSuccess загруженный каталог; ключ — категория в нижнем регистре.
type FetchCatalogSuccess struct {
	intent
	Catalog map[string][]models.Card
}

// FetchCatalogFailure неуспешная загрузка каталога.
type FetchCatalogFailure struct {
	intent
	Message string
}

// StoreCardRequest сохранение новой карточки в каталоге.
type StoreCardRequest struct {
	intent
	Category string
	Card     models.Card
}

// StoreCardSuccess карточка сохранена и добавлена в свою категорию.
type StoreCardSuccess struct {
	intent
	Category string
	Card     models.Card
}

// StoreCardFailure карточка не сохранена.
type StoreCardFailure struct {
	intent
	Message string
}

// FetchCompletedRequest запрос отметок "пройдено" пользователя.
type FetchCompletedRequest struct {
	intent
	UID string
}

// FetchCompletedSuccess идентификаторы пройденных карточек.
type FetchCompletedSuccess struct {
	intent
	CardIDs []string
}

// FetchCompletedFailure неуспешная загрузка отметок "пройдено".
type FetchCompletedFailure struct {
	intent
	Message string
}

// MarkCompletedRequest отметка карточки как пройденной.
type MarkCompletedRequest struct {
	intent
	UID    string
	CardID string
}

// MarkCompletedSuccess подтверждённая отметка; повторная отметка — no-op.
type MarkCompletedSuccess struct {
	intent
	CardID string
}

// MarkCompletedFailure отметка не записана.
type MarkCompletedFailure struct {
	intent
	Message string
}

// FetchFavoritesRequest запрос избранных карточек пользователя.
type FetchFavoritesRequest struct {
	intent
	UID string
}

// FetchFavoritesSuccess идентификаторы избранных карточек.
type FetchFavoritesSuccess struct {
	intent
	CardIDs []string
}

// FetchFavoritesFailure неуспешная загрузка избранного.
type FetchFavoritesFailure struct {
	intent
	Message string
}

// ToggleFavoriteRequest добавление или удаление карточки из избранного.
type ToggleFavoriteRequest struct {
	intent
	UID        string
	CardID     string
	IsFavorite bool
}

// ToggleFavoriteSuccess подтверждённое изменение избранного.
type ToggleFavoriteSuccess struct {
	intent
	CardID     string
	IsFavorite bool
}

// ToggleFavoriteFailure изменение избранного не записано.
type ToggleFavoriteFailure struct {
	intent
	Message string
}

func (FetchCatalogRequest) Kind() string   { return "explore.fetchCatalog.request" }
func (FetchCatalogSuccess) Kind() string   { return "explore.fetchCatalog.success" }
func (FetchCatalogFailure) Kind() string   { return "explore.fetchCatalog.failure" }
func (StoreCardRequest) Kind() string      { return "explore.storeCard.request" }
func (StoreCardSuccess) Kind() string      { return "explore.storeCard.success" }
func (StoreCardFailure) Kind() string      { return "explore.storeCard.failure" }
func (FetchCompletedRequest) Kind() string { return "explore.fetchCompleted.request" }
func (FetchCompletedSuccess) Kind() string { return "explore.fetchCompleted.success" }
func (FetchCompletedFailure) Kind() string { return "explore.fetchCompleted.failure" }
func (FetchFavoritesRequest) Kind() string { return "explore.fetchFavorites.request" }
func (FetchFavoritesSuccess) Kind() string { return "explore.fetchFavorites.success" }
func (FetchFavoritesFailure) Kind() string { return "explore.fetchFavorites.failure" }
func (MarkCompletedRequest) Kind() string  { return "explore.markCompleted.request" }
func (MarkCompletedSuccess) Kind() string  { return "explore.markCompleted.success" }
func (MarkCompletedFailure) Kind() string  { return "explore.markCompleted.failure" }
func (ToggleFavoriteRequest) Kind() string { return "explore.toggleFavorite.request" }
func (ToggleFavoriteSuccess) Kind() string { return "explore.toggleFavorite.success" }
func (ToggleFavoriteFailure) Kind() string { return "explore.toggleFavorite.failure" }

// State состояние среза explore.
type State struct {
	Catalog        map[string][]models.Card `json:"exploreData"`
	CompletedCards []string                 `json:"userCompletedCards"`
	FavoriteCards  []string                 `json:"userFavoriteCards"`
	IsLoading      bool                     `json:"loading"`
	Err            string                   `json:"error"`
}

// Initial возвращает начальное состояние среза.
func Initial() State {
	return State{Catalog: map[string][]models.Card{}}
}

// Reduce чистая функция перехода среза explore. Отметки "пройдено"
// идемпотентны, избранное переключается по равенству идентификаторов.
func Reduce(s State, in Intent) State {
	switch in := in.(type) {
	case FetchCatalogRequest:
		s.IsLoading = true
	case FetchCatalogSuccess:
		s.IsLoading = false
		s.Catalog = in.Catalog
	case FetchCatalogFailure:
		s.IsLoading = false
		s.Err = in.Message
	case StoreCardRequest:
		s.IsLoading = true
	case StoreCardSuccess:
		s.IsLoading = false
		key := models.CategoryKey(in.Category)
		next := make(map[string][]models.Card, len(s.Catalog)+1)
		for k, v := range s.Catalog {
			next[k] = v
		}
		next[key] = append(append([]models.Card{}, next[key]...), in.Card)
		s.Catalog = next
	case StoreCardFailure:
		s.IsLoading = false
		s.Err = in.Message
	case FetchCompletedRequest:
		s.IsLoading = true
	case FetchCompletedSuccess:
		s.IsLoading = false
		s.CompletedCards = in.CardIDs
	case FetchCompletedFailure:
		s.IsLoading = false
		s.Err = in.Message
	case MarkCompletedRequest:
		s.IsLoading = true
	case MarkCompletedSuccess:
		s.IsLoading = false
		if !contains(s.CompletedCards, in.CardID) {
			s.CompletedCards = append(append([]string{}, s.CompletedCards...), in.CardID)
		}
	case MarkCompletedFailure:
		s.IsLoading = false
		s.Err = in.Message
	case FetchFavoritesRequest:
		s.IsLoading = true
	case FetchFavoritesSuccess:
		s.IsLoading = false
		s.FavoriteCards = in.CardIDs
	case FetchFavoritesFailure:
		s.IsLoading = false
		s.Err = in.Message
	case ToggleFavoriteRequest:
		s.IsLoading = true
	case ToggleFavoriteSuccess:
		s.IsLoading = false
		if in.IsFavorite && !contains(s.FavoriteCards, in.CardID) {
			s.FavoriteCards = append(append([]string{}, s.FavoriteCards...), in.CardID)
		} else if !in.IsFavorite {
			s.FavoriteCards = without(s.FavoriteCards, in.CardID)
		}
	case ToggleFavoriteFailure:
		s.IsLoading = false
		s.Err = in.Message
	}
	return s
}

// Unlocked сообщает, открыта ли карточка с индексом idx в своей категории:
// первая карточка всегда открыта, остальные требуют подписки.
func Unlocked(idx int, isPremium bool) bool {
	return idx == 0 || isPremium
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	next := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			next = append(next, v)
		}
	}
	return next
}
