package market

import (
	"context"
	"errors"
	"sync"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

// ErrNotBound возвращается операциями Bridge до привязки платформы.
var ErrNotBound = errors.New("marketplace is not bound")

// Ops операции магазина, предоставляемые платформой при привязке.
type Ops interface {
	GetSubscriptions(ctx context.Context, skus []string) ([]models.Product, error)
	RequestSubscription(ctx context.Context, sku, androidOfferToken string) (*models.Purchase, error)
	GetAvailablePurchases(ctx context.Context) ([]models.Purchase, error)
	GetPurchaseHistory(ctx context.Context) ([]models.Purchase, error)
}

// Bridge реализация Marketplace, привязываемая встраивающей платформой.
// До вызова Bind все операции возвращают ErrNotBound; потоки покупок
// наполняются платформой через PublishPurchase и PublishError.
type Bridge struct {
	mu  sync.RWMutex
	ops Ops

	updates chan models.Purchase
	errs    chan error
}

// NewBridge создает непривязанный мост к магазину.
func NewBridge() *Bridge {
	return &Bridge{
		updates: make(chan models.Purchase, 16),
		errs:    make(chan error, 16),
	}
}

// Bind привязывает операции магазина платформы.
func (b *Bridge) Bind(ops Ops) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = ops
}

// PublishPurchase доставляет завершённую покупку в поток обновлений.
func (b *Bridge) PublishPurchase(p models.Purchase) {
	b.updates <- p
}

// PublishError доставляет ошибку покупки в поток ошибок.
func (b *Bridge) PublishError(err error) {
	b.errs <- err
}

func (b *Bridge) bound() (Ops, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.ops == nil {
		return nil, ErrNotBound
	}
	return b.ops, nil
}

// GetSubscriptions возвращает продукты по известным идентификаторам.
func (b *Bridge) GetSubscriptions(ctx context.Context, skus []string) ([]models.Product, error) {
	ops, err := b.bound()
	if err != nil {
		return nil, err
	}
	return ops.GetSubscriptions(ctx, skus)
}

// RequestSubscription запускает оформление подписки.
func (b *Bridge) RequestSubscription(ctx context.Context, sku, androidOfferToken string) (*models.Purchase, error) {
	ops, err := b.bound()
	if err != nil {
		return nil, err
	}
	return ops.RequestSubscription(ctx, sku, androidOfferToken)
}

// GetAvailablePurchases возвращает ранее выданные покупки.
func (b *Bridge) GetAvailablePurchases(ctx context.Context) ([]models.Purchase, error) {
	ops, err := b.bound()
	if err != nil {
		return nil, err
	}
	return ops.GetAvailablePurchases(ctx)
}

// GetPurchaseHistory возвращает историю покупок.
func (b *Bridge) GetPurchaseHistory(ctx context.Context) ([]models.Purchase, error) {
	ops, err := b.bound()
	if err != nil {
		return nil, err
	}
	return ops.GetPurchaseHistory(ctx)
}

// PurchaseUpdates поток завершённых покупок.
func (b *Bridge) PurchaseUpdates() <-chan models.Purchase { return b.updates }

// PurchaseErrors поток ошибок покупки.
func (b *Bridge) PurchaseErrors() <-chan error { return b.errs }
