package purchase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wellbeing-journal/internal/client/receipt"
	"github.com/magabrotheeeer/wellbeing-journal/internal/effects/runner"
	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
	pur "github.com/magabrotheeeer/wellbeing-journal/internal/slices/purchase"
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

func (d *dispMock) all() []store.Intent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]store.Intent, len(d.dispatched))
	copy(out, d.dispatched)
	return out
}

func (d *dispMock) last(t *testing.T) store.Intent {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.dispatched)
	return d.dispatched[len(d.dispatched)-1]
}

type marketMock struct {
	mock.Mock
	updates chan models.Purchase
	errs    chan error
}

func newMarketMock() *marketMock {
	return &marketMock{
		updates: make(chan models.Purchase, 1),
		errs:    make(chan error, 1),
	}
}

func (m *marketMock) GetSubscriptions(ctx context.Context, skus []string) ([]models.Product, error) {
	args := m.Called(ctx, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *marketMock) RequestSubscription(ctx context.Context, sku, androidOfferToken string) (*models.Purchase, error) {
	args := m.Called(ctx, sku, androidOfferToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *marketMock) GetAvailablePurchases(ctx context.Context) ([]models.Purchase, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Purchase), args.Error(1)
}

func (m *marketMock) GetPurchaseHistory(ctx context.Context) ([]models.Purchase, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Purchase), args.Error(1)
}

func (m *marketMock) PurchaseUpdates() <-chan models.Purchase { return m.updates }
func (m *marketMock) PurchaseErrors() <-chan error            { return m.errs }

type validatorMock struct{ mock.Mock }

func (m *validatorMock) Validate(ctx context.Context, purchase models.Purchase, uid string, isRestore bool) (*receipt.Result, error) {
	args := m.Called(ctx, purchase, uid, isRestore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receipt.Result), args.Error(1)
}

type docsMock struct{ mock.Mock }

func (m *docsMock) SaveSubscription(ctx context.Context, uid string, record models.SubscriptionRecord) (string, error) {
	args := m.Called(ctx, uid, record)
	return args.String(0), args.Error(1)
}

func (m *docsMock) DeleteSubscriptions(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *docsMock) UpsertProduct(ctx context.Context, platform models.Platform, product models.Product) error {
	return m.Called(ctx, platform, product).Error(0)
}

var testSKUs = []string{"wellie_sub_3m_29usd", "wellie_sub_12m_199usd"}

func newCoordinator(m *marketMock, v *validatorMock, docs *docsMock) (*Coordinator, *dispMock) {
	disp := &dispMock{}
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return New(log, disp, m, v, docs, runner.New(), models.PlatformIOS, testSKUs), disp
}

func TestFetchProducts_ОтсутствующаяЦенаЗаменяетсяЗаглушкой(t *testing.T) {
	m := newMarketMock()
	docs := &docsMock{}
	c, disp := newCoordinator(m, &validatorMock{}, docs)

	m.On("GetSubscriptions", mock.Anything, testSKUs).Return([]models.Product{
		{ProductID: "wellie_sub_3m_29usd", LocalizedPrice: "$29.99"},
		{ProductID: "wellie_sub_12m_199usd"},
	}, nil)
	docs.On("UpsertProduct", mock.Anything, models.PlatformIOS, mock.Anything).Return(nil)

	c.fetchProducts()

	got, ok := disp.last(t).(pur.FetchProductsSuccess)
	require.True(t, ok)
	require.Len(t, got.Products, 2)
	assert.Equal(t, "$29.99", got.Products[0].LocalizedPrice)
	assert.Equal(t, "N/A", got.Products[1].LocalizedPrice)
}

func TestFetchProducts_ОшибкаЗеркалированияНеРонятЗагрузку(t *testing.T) {
	m := newMarketMock()
	docs := &docsMock{}
	c, disp := newCoordinator(m, &validatorMock{}, docs)

	m.On("GetSubscriptions", mock.Anything, testSKUs).
		Return([]models.Product{{ProductID: "wellie_sub_3m_29usd", LocalizedPrice: "$29.99"}}, nil)
	docs.On("UpsertProduct", mock.Anything, models.PlatformIOS, mock.Anything).
		Return(errors.New("connection refused"))

	c.fetchProducts()

	_, ok := disp.last(t).(pur.FetchProductsSuccess)
	require.True(t, ok)
}

func TestValidateReceipt_УспехСохраняетЗаписьОПодписке(t *testing.T) {
	v := &validatorMock{}
	docs := &docsMock{}
	c, disp := newCoordinator(newMarketMock(), v, docs)

	purchase := models.Purchase{ProductID: "wellie_sub_3m_29usd", TransactionID: "txn-1"}
	v.On("Validate", mock.Anything, purchase, "uid-1", false).
		Return(&receipt.Result{}, nil)
	docs.On("SaveSubscription", mock.Anything, "uid-1", models.SubscriptionRecord{
		ProductID:     "wellie_sub_3m_29usd",
		Platform:      models.PlatformIOS,
		TransactionID: "txn-1",
	}).Return("rec-1", nil)

	c.validateReceipt(pur.ValidateReceiptRequest{Receipt: purchase, UID: "uid-1"})

	got, ok := disp.last(t).(pur.ValidateReceiptSuccess)
	require.True(t, ok)
	assert.Nil(t, got.IsPremium)
	docs.AssertExpectations(t)
}

func TestValidateReceipt_ОтказПриВосстановленииОкончателен(t *testing.T) {
	v := &validatorMock{}
	c, disp := newCoordinator(newMarketMock(), v, &docsMock{})

	purchase := models.Purchase{ProductID: "wellie_sub_3m_29usd", TransactionID: "txn-1"}
	v.On("Validate", mock.Anything, purchase, "uid-1", true).
		Return(nil, &receipt.RejectedError{Message: "expired"})

	c.validateReceipt(pur.ValidateReceiptRequest{Receipt: purchase, UID: "uid-1", IsRestore: true})

	var failure *pur.RestorePurchasesFailure
	for _, in := range disp.all() {
		if f, ok := in.(pur.RestorePurchasesFailure); ok {
			failure = &f
		}
	}
	require.NotNil(t, failure)
	assert.True(t, failure.Definitive)
	assert.Equal(t, "expired", failure.Message)
}

func TestValidateReceipt_СетеваяОшибкаНеОкончательна(t *testing.T) {
	v := &validatorMock{}
	c, disp := newCoordinator(newMarketMock(), v, &docsMock{})

	purchase := models.Purchase{ProductID: "wellie_sub_3m_29usd"}
	v.On("Validate", mock.Anything, purchase, "uid-1", true).
		Return(nil, &receipt.NetworkError{Err: errors.New("connection refused")})

	c.validateReceipt(pur.ValidateReceiptRequest{Receipt: purchase, UID: "uid-1", IsRestore: true})

	var failure *pur.RestorePurchasesFailure
	for _, in := range disp.all() {
		if f, ok := in.(pur.RestorePurchasesFailure); ok {
			failure = &f
		}
	}
	require.NotNil(t, failure)
	assert.False(t, failure.Definitive)
	assert.Equal(t, msgNetwork, failure.Message)
}

func TestRestore_ВыбираетсяСамаяСвежаяПокупка(t *testing.T) {
	m := newMarketMock()
	c, disp := newCoordinator(m, &validatorMock{}, &docsMock{})

	older := models.Purchase{TransactionID: "txn-old",
		TransactionDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := models.Purchase{TransactionID: "txn-new",
		TransactionDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	m.On("GetAvailablePurchases", mock.Anything).
		Return([]models.Purchase{older, newer}, nil)

	c.restorePurchases(pur.RestorePurchasesRequest{UID: "uid-1"})

	got, ok := disp.last(t).(pur.ValidateReceiptRequest)
	require.True(t, ok)
	assert.Equal(t, "txn-new", got.Receipt.TransactionID)
	assert.True(t, got.IsRestore)
}

func TestRestore_ПустойСписокОкончательныйОтказ(t *testing.T) {
	m := newMarketMock()
	c, disp := newCoordinator(m, &validatorMock{}, &docsMock{})

	m.On("GetAvailablePurchases", mock.Anything).Return([]models.Purchase{}, nil)

	c.restorePurchases(pur.RestorePurchasesRequest{UID: "uid-1"})

	got, ok := disp.last(t).(pur.RestorePurchasesFailure)
	require.True(t, ok)
	assert.True(t, got.Definitive)
	assert.Equal(t, msgNoPurchases, got.Message)
}

func TestRestore_СетеваяОшибкаБезУдаленияЗаписей(t *testing.T) {
	m := newMarketMock()
	docs := &docsMock{}
	c, disp := newCoordinator(m, &validatorMock{}, docs)

	m.On("GetAvailablePurchases", mock.Anything).
		Return(nil, errors.New("connection refused"))

	c.restorePurchases(pur.RestorePurchasesRequest{UID: "uid-1"})

	got, ok := disp.last(t).(pur.RestorePurchasesFailure)
	require.True(t, ok)
	assert.False(t, got.Definitive)
	docs.AssertNotCalled(t, "DeleteSubscriptions", mock.Anything, mock.Anything)
}

func TestHandle_ОкончательныйОтказЧиститЗаписи(t *testing.T) {
	docs := &docsMock{}
	c, _ := newCoordinator(newMarketMock(), &validatorMock{}, docs)

	done := make(chan struct{})
	docs.On("DeleteSubscriptions", mock.Anything, "uid-1").
		Run(func(mock.Arguments) { close(done) }).Return(nil)

	c.Handle(pur.RestorePurchasesFailure{UID: "uid-1", Definitive: true}, store.InitialState())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup was not triggered")
	}
	docs.AssertExpectations(t)
}

func TestPurchaseHistory_ПустаяИсторияОшибка(t *testing.T) {
	m := newMarketMock()
	c, disp := newCoordinator(m, &validatorMock{}, &docsMock{})

	m.On("GetPurchaseHistory", mock.Anything).Return([]models.Purchase{}, nil)

	c.purchaseHistory(pur.PurchaseHistoryRequest{UID: "uid-1"})

	got, ok := disp.last(t).(pur.PurchaseHistoryFailure)
	require.True(t, ok)
	assert.Equal(t, msgNoPurchases, got.Message)
}

func TestRun_ПокупкаИзПотокаУходитНаВалидацию(t *testing.T) {
	m := newMarketMock()
	c, disp := newCoordinator(m, &validatorMock{}, &docsMock{})

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx, func() string { return "uid-1" })

	m.updates <- models.Purchase{ProductID: "wellie_sub_3m_29usd", TransactionID: "txn-1"}

	require.Eventually(t, func() bool {
		for _, in := range disp.all() {
			if req, ok := in.(pur.ValidateReceiptRequest); ok {
				return req.UID == "uid-1" && req.Receipt.TransactionID == "txn-1"
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
	cancel()
}
