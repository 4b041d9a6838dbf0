// Package purchase реализует координатор эффектов подписки: загрузку и
// зеркалирование продуктов, валидацию чеков, восстановление покупок и
// историю. Результаты валидации управляют правом на премиум; при
// окончательном отказе восстановления записи о подписках удаляются.
package purchase

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/magabrotheeeer/wellbeing-journal/internal/client/receipt"
	"github.com/magabrotheeeer/wellbeing-journal/internal/effects/runner"
	"github.com/magabrotheeeer/wellbeing-journal/internal/lib/sl"
	"github.com/magabrotheeeer/wellbeing-journal/internal/market"
	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
	pur "github.com/magabrotheeeer/wellbeing-journal/internal/slices/purchase"
	"github.com/magabrotheeeer/wellbeing-journal/internal/store"
)

// Категории запросов для дисциплины "выигрывает последний".
const (
	categoryProducts = "purchase.products"
	categoryValidate = "purchase.validate"
	categoryRestore  = "purchase.restore"
	categoryHistory  = "purchase.history"
)

// Сообщения об ошибках, показываемые пользователю.
const (
	msgNetwork      = "Please check your internet connection and try again"
	msgServer       = "Server error, please try again later"
	msgNoPurchases  = "No previous purchases found"
	msgFetchFailed  = "Failed to load subscription options"
	msgCheckInvalid = "Your purchase could not be verified"
)

// Dispatcher контракт хранилища, достаточный координатору.
type Dispatcher interface {
	Dispatch(in store.Intent)
}

// Validator контракт клиента валидации чеков.
type Validator interface {
	Validate(ctx context.Context, purchase models.Purchase, uid string, isRestore bool) (*receipt.Result, error)
}

// Docs контракт документного хранилища подписок и продуктов.
type Docs interface {
	SaveSubscription(ctx context.Context, uid string, record models.SubscriptionRecord) (string, error)
	DeleteSubscriptions(ctx context.Context, uid string) error
	UpsertProduct(ctx context.Context, platform models.Platform, product models.Product) error
}

// Coordinator координатор эффектов среза purchase.
type Coordinator struct {
	log       *slog.Logger
	disp      Dispatcher
	market    market.Marketplace
	validator Validator
	docs      Docs
	runner    *runner.Runner
	platform  models.Platform
	skus      []string
}

// New создает координатор эффектов purchase. skus — известные
// идентификаторы продуктов подписки.
func New(log *slog.Logger, disp Dispatcher, m market.Marketplace, v Validator, docs Docs,
	r *runner.Runner, platform models.Platform, skus []string) *Coordinator {
	return &Coordinator{
		log:       log,
		disp:      disp,
		market:    m,
		validator: v,
		docs:      docs,
		runner:    r,
		platform:  platform,
		skus:      skus,
	}
}

// Handle реагирует на зафиксированные намерения среза purchase.
func (c *Coordinator) Handle(in store.Intent, st store.State) {
	switch in := in.(type) {
	case pur.FetchProductsRequest:
		go c.fetchProducts()
	case pur.ValidateReceiptRequest:
		go c.validateReceipt(in)
	case pur.RestorePurchasesRequest:
		go c.restorePurchases(in)
	case pur.RestorePurchasesFailure:
		if in.Definitive {
			go c.cleanupAfterRestoreFailure(in.UID)
		}
	case pur.PurchaseHistoryRequest:
		go c.purchaseHistory(in)
	case store.Foreground:
		// Возврат приложения на передний план: повторная проверка права,
		// если есть сохранённые подписки.
		if st.Identity.User != nil && len(st.Identity.UserSubscriptions) > 0 {
			c.disp.Dispatch(pur.RestorePurchasesRequest{UID: st.Identity.User.UID})
		}
	}
}

// Run слушает поток покупок платформы до отмены контекста. Каждая
// завершённая покупка уходит на валидацию чека.
func (c *Coordinator) Run(ctx context.Context, uidOf func() string) {
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-c.market.PurchaseUpdates():
			if !ok {
				return
			}
			c.disp.Dispatch(pur.ValidateReceiptRequest{Receipt: p, UID: uidOf()})
		case err, ok := <-c.market.PurchaseErrors():
			if !ok {
				return
			}
			c.log.Warn("marketplace reported purchase error", sl.Err(err))
			c.disp.Dispatch(pur.ValidateReceiptFailure{Message: msgCheckInvalid})
		}
	}
}

// fetchProducts загружает продукты и зеркалирует их в хранилище.
// Ошибка зеркалирования не роняет загрузку.
func (c *Coordinator) fetchProducts() {
	ctx := context.Background()
	seq := c.runner.Begin(categoryProducts)

	products, err := c.market.GetSubscriptions(ctx, c.skus)
	if !c.runner.Latest(categoryProducts, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to fetch products", sl.Err(err))
		c.disp.Dispatch(pur.FetchProductsFailure{Message: msgFetchFailed})
		return
	}

	for i := range products {
		if products[i].LocalizedPrice == "" {
			products[i].LocalizedPrice = "N/A"
		}
		if err = c.docs.UpsertProduct(ctx, c.platform, products[i]); err != nil {
			c.log.Warn("failed to mirror product", sl.Err(err),
				slog.String("product", products[i].ProductID))
		}
	}
	c.disp.Dispatch(pur.FetchProductsSuccess{Products: products})
}

func (c *Coordinator) validateReceipt(in pur.ValidateReceiptRequest) {
	ctx := context.Background()
	seq := c.runner.Begin(categoryValidate)

	res, err := c.validator.Validate(ctx, in.Receipt, in.UID, in.IsRestore)
	if !c.runner.Latest(categoryValidate, seq) {
		return
	}
	if err != nil {
		c.log.Warn("receipt validation failed", sl.Err(err),
			slog.String("product", in.Receipt.ProductID))
		c.disp.Dispatch(pur.ValidateReceiptFailure{Message: validationMessage(err)})
		if in.IsRestore {
			c.disp.Dispatch(pur.RestorePurchasesFailure{
				Message:    validationMessage(err),
				UID:        in.UID,
				Definitive: isDefinitive(err),
			})
		}
		return
	}

	if in.UID != "" {
		if _, err = c.docs.SaveSubscription(ctx, in.UID, models.SubscriptionRecord{
			ProductID:     in.Receipt.ProductID,
			Platform:      c.platform,
			TransactionID: in.Receipt.TransactionID,
		}); err != nil {
			c.log.Warn("failed to save subscription record", sl.Err(err))
		}
	}
	c.disp.Dispatch(pur.ValidateReceiptSuccess{IsPremium: res.IsPremium})
}

// restorePurchases запрашивает ранее выданные покупки и отправляет на
// валидацию самую свежую. Пустой список — окончательный отказ.
func (c *Coordinator) restorePurchases(in pur.RestorePurchasesRequest) {
	ctx := context.Background()
	seq := c.runner.Begin(categoryRestore)

	purchases, err := c.market.GetAvailablePurchases(ctx)
	if !c.runner.Latest(categoryRestore, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to restore purchases", sl.Err(err))
		c.disp.Dispatch(pur.RestorePurchasesFailure{
			Message: msgNetwork,
			UID:     in.UID,
		})
		return
	}
	if len(purchases) == 0 {
		c.disp.Dispatch(pur.RestorePurchasesFailure{
			Message:    msgNoPurchases,
			UID:        in.UID,
			Definitive: true,
		})
		return
	}

	latest := latestPurchase(purchases)
	c.disp.Dispatch(pur.RestorePurchasesSuccess{})
	c.disp.Dispatch(pur.ValidateReceiptRequest{
		Receipt:   latest,
		UID:       in.UID,
		IsRestore: true,
	})
}

func (c *Coordinator) cleanupAfterRestoreFailure(uid string) {
	if uid == "" {
		return
	}
	if err := c.docs.DeleteSubscriptions(context.Background(), uid); err != nil {
		c.log.Warn("failed to delete subscription records", sl.Err(err))
	}
}

func (c *Coordinator) purchaseHistory(in pur.PurchaseHistoryRequest) {
	seq := c.runner.Begin(categoryHistory)

	history, err := c.market.GetPurchaseHistory(context.Background())
	if !c.runner.Latest(categoryHistory, seq) {
		return
	}
	if err != nil {
		c.log.Warn("failed to fetch purchase history", sl.Err(err))
		c.disp.Dispatch(pur.PurchaseHistoryFailure{Message: msgNetwork})
		return
	}
	if len(history) == 0 {
		c.disp.Dispatch(pur.PurchaseHistoryFailure{Message: msgNoPurchases})
		return
	}
	c.disp.Dispatch(pur.PurchaseHistorySuccess{})
}

// latestPurchase выбирает покупку с самой поздней датой транзакции.
func latestPurchase(purchases []models.Purchase) models.Purchase {
	sorted := make([]models.Purchase, len(purchases))
	copy(sorted, purchases)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TransactionDate.After(sorted[j].TransactionDate)
	})
	return sorted[0]
}

// validationMessage переводит ошибки валидатора в сообщение для пользователя.
func validationMessage(err error) string {
	var rejected *receipt.RejectedError
	var server *receipt.ServerError
	var network *receipt.NetworkError
	switch {
	case errors.As(err, &rejected):
		if rejected.Message != "" {
			return rejected.Message
		}
		return msgCheckInvalid
	case errors.As(err, &server):
		return msgServer
	case errors.As(err, &network):
		return msgNetwork
	default:
		return msgCheckInvalid
	}
}

// isDefinitive сообщает, является ли отказ валидатора окончательным.
// Сетевые и серверные ошибки окончательными не считаются.
func isDefinitive(err error) bool {
	var rejected *receipt.RejectedError
	return errors.As(err, &rejected)
}
