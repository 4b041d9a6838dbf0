package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

type opsMock struct {
	mock.Mock
}

func (m *opsMock) GetSubscriptions(ctx context.Context, skus []string) ([]models.Product, error) {
	args := m.Called(ctx, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *opsMock) RequestSubscription(ctx context.Context, sku, androidOfferToken string) (*models.Purchase, error) {
	args := m.Called(ctx, sku, androidOfferToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *opsMock) GetAvailablePurchases(ctx context.Context) ([]models.Purchase, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Purchase), args.Error(1)
}

func (m *opsMock) GetPurchaseHistory(ctx context.Context) ([]models.Purchase, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Purchase), args.Error(1)
}

func TestBridge_НепривязанныеОперацииВозвращаютОшибку(t *testing.T) {
	b := NewBridge()

	_, err := b.GetSubscriptions(context.Background(), []string{"sku"})
	assert.ErrorIs(t, err, ErrNotBound)

	_, err = b.GetAvailablePurchases(context.Background())
	assert.ErrorIs(t, err, ErrNotBound)
}

func TestBridge_ПривязкаДелегируетОперации(t *testing.T) {
	ops := new(opsMock)
	products := []models.Product{{ProductID: "wellie_sub_3m_29usd"}}
	ops.On("GetSubscriptions", mock.Anything, []string{"wellie_sub_3m_29usd"}).
		Return(products, nil)

	b := NewBridge()
	b.Bind(ops)

	got, err := b.GetSubscriptions(context.Background(), []string{"wellie_sub_3m_29usd"})
	require.NoError(t, err)
	assert.Equal(t, products, got)
	ops.AssertExpectations(t)
}

func TestBridge_ПотокиДоставляютСобытия(t *testing.T) {
	b := NewBridge()

	b.PublishPurchase(models.Purchase{TransactionID: "txn-1"})
	b.PublishError(errors.New("cancelled"))

	select {
	case p := <-b.PurchaseUpdates():
		assert.Equal(t, "txn-1", p.TransactionID)
	case <-time.After(time.Second):
		t.Fatal("purchase was not delivered")
	}

	select {
	case err := <-b.PurchaseErrors():
		assert.EqualError(t, err, "cancelled")
	case <-time.After(time.Second):
		t.Fatal("error was not delivered")
	}
}
