// Package market определяет контракт маркетплейса встроенных покупок.
// Маркетплейс — внешний сервис платформы; приложение видит его только
// через этот узкий интерфейс, в тестах он подменяется моками.
package market

import (
	"context"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

// Marketplace операции маркетплейса подписок.
type Marketplace interface {
	// GetSubscriptions возвращает продукты по известным идентификаторам.
	GetSubscriptions(ctx context.Context, skus []string) ([]models.Product, error)
	// RequestSubscription запускает оформление подписки. Для Android
	// передаётся offerToken, для iOS он пустой.
	RequestSubscription(ctx context.Context, sku, androidOfferToken string) (*models.Purchase, error)
	// GetAvailablePurchases возвращает ранее выданные покупки.
	GetAvailablePurchases(ctx context.Context) ([]models.Purchase, error)
	// GetPurchaseHistory возвращает историю покупок.
	GetPurchaseHistory(ctx context.Context) ([]models.Purchase, error)
	// PurchaseUpdates поток завершённых покупок от платформы.
	PurchaseUpdates() <-chan models.Purchase
	// PurchaseErrors поток ошибок покупки от платформы.
	PurchaseErrors() <-chan error
}
