package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

// GetDiaryEntry возвращает запись дневника за дату dateKey.
func (s *Storage) GetDiaryEntry(ctx context.Context, uid, dateKey string) (*models.DiaryEntry, error) {
	const op = "docstore.GetDiaryEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT morning, evening, updated_at
			  FROM daily_entries
			  WHERE uid = $1 AND date_key = $2`
	var morning, evening []byte
	var updatedAt time.Time
	err := s.DB.QueryRowContext(ctx, query, uid, dateKey).Scan(&morning, &evening, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entry := &models.DiaryEntry{UpdatedAt: updatedAt}
	if err = json.Unmarshal(morning, &entry.Morning); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(evening, &entry.Evening); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entry, nil
}

// UpsertDiaryEntry сохраняет запись дневника за дату dateKey и возвращает
// её с серверной отметкой времени. На дату существует не более одной записи.
func (s *Storage) UpsertDiaryEntry(ctx context.Context, uid, dateKey string, entry models.DiaryEntry) (*models.DiaryEntry, error) {
	const op = "docstore.UpsertDiaryEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	morning, err := json.Marshal(entry.Morning)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	evening, err := json.Marshal(entry.Evening)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO daily_entries (uid, date_key, morning, evening, updated_at)
			  VALUES ($1, $2, $3, $4, now())
			  ON CONFLICT (uid, date_key) DO UPDATE SET
			      morning    = EXCLUDED.morning,
			      evening    = EXCLUDED.evening,
			      updated_at = now()
			  RETURNING updated_at;`
	var updatedAt time.Time
	if err = s.DB.QueryRowContext(ctx, query, uid, dateKey, morning, evening).Scan(&updatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entry.UpdatedAt = updatedAt
	return &entry, nil
}

// ListDiaryEntries возвращает все записи дневника пользователя,
// индексированные датой.
func (s *Storage) ListDiaryEntries(ctx context.Context, uid string) (map[string]models.DiaryEntry, error) {
	const op = "docstore.ListDiaryEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT date_key, morning, evening, updated_at
			  FROM daily_entries
			  WHERE uid = $1
			  ORDER BY date_key`
	rows, err := s.DB.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[string]models.DiaryEntry)
	for rows.Next() {
		var dateKey string
		var morning, evening []byte
		var entry models.DiaryEntry
		if err = rows.Scan(&dateKey, &morning, &evening, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(morning, &entry.Morning); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(evening, &entry.Evening); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[dateKey] = entry
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RandomQuote возвращает случайную цитату дня для языка lang с откатом
// на английский, если переводов для языка нет.
func (s *Storage) RandomQuote(ctx context.Context, lang string) (*models.Quote, error) {
	const op = "docstore.RandomQuote"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT text, author
			  FROM quotes
			  WHERE language = $1
			  ORDER BY random()
			  LIMIT 1`
	q := &models.Quote{}
	err := s.DB.QueryRowContext(ctx, query, lang).Scan(&q.Text, &q.Author)
	if errors.Is(err, sql.ErrNoRows) && lang != "en" {
		err = s.DB.QueryRowContext(ctx, query, "en").Scan(&q.Text, &q.Author)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return q, nil
}
