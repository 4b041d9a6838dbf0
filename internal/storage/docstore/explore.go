package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

// ListCards возвращает карточки категории в порядке их позиции.
// Категория хранится в нижнем регистре.
func (s *Storage) ListCards(ctx context.Context, category string) ([]models.Card, error) {
	const op = "docstore.ListCards"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, category, translations, background_color, image_ref
			  FROM explore_cards
			  WHERE category = $1
			  ORDER BY position`
	rows, err := s.DB.QueryContext(ctx, query, models.CategoryKey(category))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Card
	for rows.Next() {
		var card models.Card
		var translations []byte
		if err = rows.Scan(&card.ID, &card.Category, &translations,
			&card.BackgroundColor, &card.ImageRef); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(translations, &card.Translations); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, card)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// StoreCard сохраняет карточку в каталоге. Позиция назначается следующей
// в категории, существующая карточка обновляется на месте.
func (s *Storage) StoreCard(ctx context.Context, category string, card models.Card) error {
	const op = "docstore.StoreCard"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	translations, err := json.Marshal(card.Translations)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO explore_cards (id, category, position, translations, background_color, image_ref)
			  VALUES ($1, $2,
			      (SELECT COALESCE(MAX(position), -1) + 1 FROM explore_cards WHERE category = $2),
			      $3, $4, $5)
			  ON CONFLICT (id) DO UPDATE SET
			      category         = EXCLUDED.category,
			      translations     = EXCLUDED.translations,
			      background_color = EXCLUDED.background_color,
			      image_ref        = EXCLUDED.image_ref;`
	if _, err = s.DB.ExecContext(ctx, query,
		card.ID, models.CategoryKey(category), translations,
		card.BackgroundColor, card.ImageRef); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListCompletedCards возвращает ключи карточек, отмеченных выполненными.
func (s *Storage) ListCompletedCards(ctx context.Context, uid string) ([]string, error) {
	const op = "docstore.ListCompletedCards"
	return s.listCardKeys(ctx, op, "completed_cards", uid)
}

// MarkCardCompleted отмечает карточку выполненной. Повторная отметка
// той же карточки не является ошибкой.
func (s *Storage) MarkCardCompleted(ctx context.Context, uid, cardKey string) error {
	const op = "docstore.MarkCardCompleted"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO completed_cards (uid, card_key, created_at)
			  VALUES ($1, $2, now())
			  ON CONFLICT (uid, card_key) DO NOTHING;`
	if _, err := s.DB.ExecContext(ctx, query, uid, cardKey); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListFavoriteCards возвращает ключи избранных карточек.
func (s *Storage) ListFavoriteCards(ctx context.Context, uid string) ([]string, error) {
	const op = "docstore.ListFavoriteCards"
	return s.listCardKeys(ctx, op, "favorite_cards", uid)
}

// AddFavoriteCard добавляет карточку в избранное.
func (s *Storage) AddFavoriteCard(ctx context.Context, uid, cardKey string) error {
	const op = "docstore.AddFavoriteCard"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO favorite_cards (uid, card_key, created_at)
			  VALUES ($1, $2, now())
			  ON CONFLICT (uid, card_key) DO NOTHING;`
	if _, err := s.DB.ExecContext(ctx, query, uid, cardKey); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveFavoriteCard убирает карточку из избранного.
func (s *Storage) RemoveFavoriteCard(ctx context.Context, uid, cardKey string) error {
	const op = "docstore.RemoveFavoriteCard"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM favorite_cards WHERE uid = $1 AND card_key = $2`
	if _, err := s.DB.ExecContext(ctx, query, uid, cardKey); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) listCardKeys(ctx context.Context, op, table, uid string) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := fmt.Sprintf(`SELECT card_key FROM %s WHERE uid = $1 ORDER BY created_at`, table)
	rows, err := s.DB.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []string
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, key)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
