package models

import "time"

// Platform платформа мобильного приложения.
type Platform string

// Поддерживаемые платформы.
const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Product продукт подписки, полученный из маркетплейса.
// Отсутствующая цена отображается как "N/A".
type Product struct {
	ProductID      string         `json:"productId"`
	Title          string         `json:"title"`
	LocalizedPrice string         `json:"localizedPrice"`
	Currency       string         `json:"currency"`
	Type           string         `json:"type"`
	Raw            map[string]any `json:"raw,omitempty"` // Сырые метаданные платформы
}

// SelectedProduct продукт, выбранный пользователем для оформления.
type SelectedProduct struct {
	ProductID      string `json:"productId"`
	Title          string `json:"title"`
	LocalizedPrice string `json:"localizedPrice"`
}

// Purchase покупка, выданная маркетплейсом.
type Purchase struct {
	ProductID          string    `json:"productId"`
	TransactionID      string    `json:"transactionId"`
	TransactionDate    time.Time `json:"transactionDate"`
	TransactionReceipt string    `json:"transactionReceipt"` // iOS: base64-блоб чека
	PurchaseToken      string    `json:"purchaseToken"`      // Android: токен покупки
}

// SubscriptionRecord запись о подписке пользователя во внешнем хранилище.
type SubscriptionRecord struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	Platform      Platform  `json:"platform"`
	TransactionID string    `json:"transactionId"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
