// Package purchase содержит срез состояния покупок: продукты подписки,
// выбранный продукт и право на премиум-контент. Право устанавливается
// только координатором, который общается с маркетплейсом и валидатором
// чеков; UI его не меняет напрямую.
package purchase

import "github.com/magabrotheeeer/wellbeing-journal/internal/models"

// Intent закрытое множество намерений среза purchase.
type Intent interface {
	Kind() string
	isPurchase()
}

type intent struct{}

func (intent) isPurchase() {}

// FetchProductsRequest запрос продуктов подписки у маркетплейса.
type FetchProductsRequest struct{ intent }

// FetchProductsSuccess загруженные продукты.
type FetchProductsSuccess struct {
	intent
	Products []models.Product
}

// FetchProductsFailure продукты не загружены.
type FetchProductsFailure struct {
	intent
	Message string
}

// ValidateReceiptRequest запрос валидации чека покупки.
type ValidateReceiptRequest struct {
	intent
	Receipt   models.Purchase
	UID       string
	IsRestore bool
}

// ValidateReceiptSuccess чек признан действительным. Если валидатор
// явно вернул признак премиума, он имеет приоритет; иначе право
// считается подтверждённым.
type ValidateReceiptSuccess struct {
	intent
	IsPremium *bool
}

// ValidateReceiptFailure чек отклонён или валидация не удалась;
// право на премиум принудительно снимается.
type ValidateReceiptFailure struct {
	intent
	Message string
}

// RestorePurchasesRequest запрос восстановления покупок из маркетплейса.
type RestorePurchasesRequest struct {
	intent
	UID string
}

// RestorePurchasesSuccess восстановление запущено: самая свежая покупка
// передана на валидацию.
type RestorePurchasesSuccess struct{ intent }

// RestorePurchasesFailure восстановление не удалось; право снимается.
// Definitive выставляется только когда маркетплейс или валидатор дали
// однозначный отказ, а не при сетевой ошибке.
type RestorePurchasesFailure struct {
	intent
	Message    string
	UID        string
	Definitive bool
}

// PurchaseHistoryRequest запрос истории покупок.
type PurchaseHistoryRequest struct {
	intent
	UID string
}

// PurchaseHistorySuccess история покупок не пуста.
type PurchaseHistorySuccess struct{ intent }

// PurchaseHistoryFailure история покупок пуста или недоступна.
type PurchaseHistoryFailure struct {
	intent
	Message string
}

// SetSelectedProduct выбор продукта для оформления.
type SetSelectedProduct struct {
	intent
	Product models.SelectedProduct
}

// ClearSelectedProduct сброс выбранного продукта.
type ClearSelectedProduct struct{ intent }

// SetPremiumStatus явная установка права на премиум координатором.
type SetPremiumStatus struct {
	intent
	IsPremium bool
}

func (FetchProductsRequest) Kind() string    { return "purchase.fetchProducts.request" }
func (FetchProductsSuccess) Kind() string    { return "purchase.fetchProducts.success" }
func (FetchProductsFailure) Kind() string    { return "purchase.fetchProducts.failure" }
func (ValidateReceiptRequest) Kind() string  { return "purchase.validateReceipt.request" }
func (ValidateReceiptSuccess) Kind() string  { return "purchase.validateReceipt.success" }
func (ValidateReceiptFailure) Kind() string  { return "purchase.validateReceipt.failure" }
func (RestorePurchasesRequest) Kind() string { return "purchase.restore.request" }
func (RestorePurchasesSuccess) Kind() string { return "purchase.restore.success" }
func (RestorePurchasesFailure) Kind() string { return "purchase.restore.failure" }
func (PurchaseHistoryRequest) Kind() string  { return "purchase.history.request" }
func (PurchaseHistorySuccess) Kind() string  { return "purchase.history.success" }
func (PurchaseHistoryFailure) Kind() string  { return "purchase.history.failure" }
func (SetSelectedProduct) Kind() string      { return "purchase.setSelectedProduct" }
func (ClearSelectedProduct) Kind() string    { return "purchase.clearSelectedProduct" }
func (SetPremiumStatus) Kind() string        { return "purchase.setPremiumStatus" }

// State состояние среза purchase.
type State struct {
	Products        []models.Product       `json:"products"`
	IsPremium       bool                   `json:"isPremium"`
	IsLoading       bool                   `json:"loading"`
	Err             string                 `json:"error"`
	SelectedProduct models.SelectedProduct `json:"selectedProduct"`
}

// Initial возвращает начальное состояние: проверка права ещё не
// завершена, поэтому загрузка включена.
func Initial() State {
	return State{IsLoading: true}
}

// Reduce чистая функция перехода среза purchase.
func Reduce(s State, in Intent) State {
	switch in := in.(type) {
	case FetchProductsRequest:
		s.Err = ""
	case FetchProductsSuccess:
		s.Products = in.Products
	case FetchProductsFailure:
		s.Err = in.Message
	case ValidateReceiptRequest:
		s.IsLoading = true
		s.Err = ""
	case ValidateReceiptSuccess:
		s.IsLoading = false
		if in.IsPremium != nil {
			s.IsPremium = *in.IsPremium
		} else {
			s.IsPremium = true
		}
	case ValidateReceiptFailure:
		s.IsLoading = false
		s.Err = in.Message
		s.IsPremium = false
	case RestorePurchasesRequest:
		s.IsLoading = true
		s.Err = ""
	case RestorePurchasesSuccess:
		// Завершение придёт от каскада валидации чека.
	case RestorePurchasesFailure:
		s.IsLoading = false
		s.Err = in.Message
		s.IsPremium = false
	case PurchaseHistoryRequest:
		s.Err = ""
	case PurchaseHistorySuccess:
	case PurchaseHistoryFailure:
		s.Err = in.Message
	case SetSelectedProduct:
		s.SelectedProduct = in.Product
	case ClearSelectedProduct:
		s.SelectedProduct = models.SelectedProduct{}
	case SetPremiumStatus:
		s.IsPremium = in.IsPremium
	}
	return s
}
