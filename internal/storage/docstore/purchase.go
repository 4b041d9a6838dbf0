package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

// SaveSubscription сохраняет запись о подписке пользователя. Повторная
// валидация той же транзакции обновляет существующую запись.
func (s *Storage) SaveSubscription(ctx context.Context, uid string, record models.SubscriptionRecord) (string, error) {
	const op = "docstore.SaveSubscription"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	id := record.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := `INSERT INTO user_subscriptions (id, uid, product_id, platform, transaction_id, updated_at)
			  VALUES ($1, $2, $3, $4, $5, now())
			  ON CONFLICT (uid, transaction_id) DO UPDATE SET
			      product_id = EXCLUDED.product_id,
			      platform   = EXCLUDED.platform,
			      updated_at = now()
			  RETURNING id;`
	var savedID string
	if err := s.DB.QueryRowContext(ctx, query,
		id, uid, record.ProductID, string(record.Platform), record.TransactionID).Scan(&savedID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return savedID, nil
}

// ListSubscriptions возвращает записи о подписках пользователя,
// свежие первыми.
func (s *Storage) ListSubscriptions(ctx context.Context, uid string) ([]models.SubscriptionRecord, error) {
	const op = "docstore.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, product_id, platform, transaction_id, updated_at
			  FROM user_subscriptions
			  WHERE uid = $1
			  ORDER BY updated_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.SubscriptionRecord
	for rows.Next() {
		var rec models.SubscriptionRecord
		var platform string
		if err = rows.Scan(&rec.ID, &rec.ProductID, &platform, &rec.TransactionID, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rec.Platform = models.Platform(platform)
		result = append(result, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteSubscriptions удаляет все записи о подписках пользователя.
// Вызывается после окончательного отказа восстановления покупок.
func (s *Storage) DeleteSubscriptions(ctx context.Context, uid string) error {
	const op = "docstore.DeleteSubscriptions"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM user_subscriptions WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpsertProduct зеркалирует продукт маркетплейса в хранилище. Отсутствующая
// цена сохраняется как "N/A".
func (s *Storage) UpsertProduct(ctx context.Context, platform models.Platform, product models.Product) error {
	const op = "docstore.UpsertProduct"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	price := product.LocalizedPrice
	if price == "" {
		price = "N/A"
	}
	raw, err := json.Marshal(product.Raw)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO products (product_id, platform, title, localized_price, currency, type, raw, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			  ON CONFLICT (product_id, platform) DO UPDATE SET
			      title           = EXCLUDED.title,
			      localized_price = EXCLUDED.localized_price,
			      currency        = EXCLUDED.currency,
			      type            = EXCLUDED.type,
			      raw             = EXCLUDED.raw,
			      updated_at      = now();`
	if _, err = s.DB.ExecContext(ctx, query,
		product.ProductID, string(platform), product.Title, price,
		product.Currency, product.Type, raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
