package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

// ErrNotFound возвращается, когда запрошенный документ отсутствует.
var ErrNotFound = errors.New("document not found")

// SaveUserDoc сохраняет документ пользователя. Существующий документ
// дополняется: непустые поля перезаписывают старые значения,
// пустые оставляют прежние.
func (s *Storage) SaveUserDoc(ctx context.Context, doc models.UserDoc) error {
	const op = "docstore.SaveUserDoc"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var reminders []byte
	if doc.Reminders != nil {
		raw, err := json.Marshal(doc.Reminders)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		reminders = raw
	}

	query := `INSERT INTO user_docs (uid, email, name, photo_ref, provider, language, reminders, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			  ON CONFLICT (uid) DO UPDATE SET
			      email      = COALESCE(NULLIF(EXCLUDED.email, ''), user_docs.email),
			      name       = COALESCE(NULLIF(EXCLUDED.name, ''), user_docs.name),
			      photo_ref  = COALESCE(NULLIF(EXCLUDED.photo_ref, ''), user_docs.photo_ref),
			      provider   = COALESCE(NULLIF(EXCLUDED.provider, ''), user_docs.provider),
			      language   = COALESCE(NULLIF(EXCLUDED.language, ''), user_docs.language),
			      reminders  = COALESCE(EXCLUDED.reminders, user_docs.reminders),
			      updated_at = now();`
	if _, err := s.DB.ExecContext(ctx, query,
		doc.UID, doc.Email, doc.Name, doc.PhotoRef, string(doc.Provider),
		doc.Language, reminders); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserDoc возвращает документ пользователя по его UID.
func (s *Storage) GetUserDoc(ctx context.Context, uid string) (*models.UserDoc, error) {
	const op = "docstore.GetUserDoc"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, name, photo_ref, provider, language, reminders
			  FROM user_docs
			  WHERE uid = $1`
	doc := &models.UserDoc{}
	var provider string
	var reminders []byte
	err := s.DB.QueryRowContext(ctx, query, uid).Scan(
		&doc.UID, &doc.Email, &doc.Name, &doc.PhotoRef, &provider,
		&doc.Language, &reminders)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc.Provider = models.Provider(provider)
	if len(reminders) > 0 {
		patch := &models.ReminderPatch{}
		if err = json.Unmarshal(reminders, patch); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		doc.Reminders = patch
	}
	return doc, nil
}

// UpdateProfile применяет частичное обновление профиля. nil-поля не меняются.
func (s *Storage) UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate) error {
	const op = "docstore.UpdateProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_docs
			  SET name       = COALESCE($2, name),
			      photo_ref  = COALESCE($3, photo_ref),
			      language   = COALESCE($4, language),
			      updated_at = now()
			  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, uid, update.Name, update.PhotoRef, update.Language)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// SaveReminders перезаписывает настройки напоминаний пользователя целиком.
func (s *Storage) SaveReminders(ctx context.Context, uid string, reminders models.Reminders) error {
	const op = "docstore.SaveReminders"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	raw, err := json.Marshal(reminders)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE user_docs
			  SET reminders = $2, updated_at = now()
			  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, uid, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteUserData удаляет все документы пользователя одной транзакцией.
// Используется при удалении аккаунта.
func (s *Storage) DeleteUserData(ctx context.Context, uid string) error {
	const op = "docstore.DeleteUserData"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	tables := []string{"daily_entries", "completed_cards", "favorite_cards", "user_subscriptions", "user_docs"}
	for _, table := range tables {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE uid = $1`, table), uid); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
