// Package receipt реализует HTTP-клиент серверного валидатора чеков.
// Клиент собирает платформенный payload (iOS: base64-блоб чека,
// Android: токен покупки), отправляет его на фиксированный адрес с
// таймаутом и трактует статус "Valid" как успех. Сетевые ошибки,
// не-2xx ответы и явный отказ валидатора различимы по типу ошибки.
package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

// StatusValid значение validationStatus, означающее действительный чек.
const StatusValid = "Valid"

// NetworkError сетевой сбой: ответ от валидатора не получен.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError валидатор ответил кодом вне 2xx.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error %d", e.StatusCode)
}

// RejectedError валидатор ответил 2xx, но статус отличен от "Valid".
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

// Result ответ валидатора на действительный чек. Признак премиума
// присутствует не всегда.
type Result struct {
	IsPremium *bool
}

// payload платформенный запрос к валидатору.
type payload struct {
	LatestReceipt string `json:"latest_receipt,omitempty"` // iOS: base64-блоб чека
	PurchaseToken string `json:"purchaseToken,omitempty"`  // Android: токен покупки
	UserID        string `json:"userId"`
	ProductID     string `json:"productId"`
	TransactionID string `json:"transactionId"`
	Platform      string `json:"platform"`
	IsRestore     bool   `json:"isRestore"`
}

// validatorResponse ответ валидатора.
type validatorResponse struct {
	ValidationStatus string `json:"validationStatus"`
	IsPremium        *bool  `json:"isPremium,omitempty"`
	Message          string `json:"message,omitempty"`
}

// Client HTTP-клиент валидатора чеков.
type Client struct {
	endpoint   string
	platform   models.Platform
	httpClient *http.Client
}

// New создаёт клиент с фиксированным адресом валидатора и таймаутом.
func New(endpoint string, platform models.Platform, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		platform: platform,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Validate отправляет чек на валидацию и возвращает результат.
// Ошибки различаются типами: *NetworkError, *ServerError, *RejectedError.
func (c *Client) Validate(ctx context.Context, purchase models.Purchase, uid string, isRestore bool) (*Result, error) {
	const op = "receipt.Validate"

	p, err := c.buildPayload(purchase, uid, isRestore)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	var vr validatorResponse
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = json.NewDecoder(resp.Body).Decode(&vr)
		return nil, &ServerError{StatusCode: resp.StatusCode, Message: vr.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if vr.ValidationStatus != StatusValid {
		msg := vr.Message
		if msg == "" {
			msg = "receipt validation failed"
		}
		return nil, &RejectedError{Message: msg}
	}

	return &Result{IsPremium: vr.IsPremium}, nil
}

// buildPayload собирает платформенный запрос: для iOS обязателен
// base64-блоб чека, для Android — токен покупки.
func (c *Client) buildPayload(purchase models.Purchase, uid string, isRestore bool) (*payload, error) {
	productID := purchase.ProductID
	if productID == "" {
		productID = "unknown"
	}
	p := &payload{
		UserID:        uid,
		ProductID:     productID,
		TransactionID: purchase.TransactionID,
		IsRestore:     isRestore,
	}
	switch c.platform {
	case models.PlatformIOS:
		if purchase.TransactionReceipt == "" {
			return nil, fmt.Errorf("missing transaction receipt")
		}
		p.LatestReceipt = purchase.TransactionReceipt
		p.Platform = "iOS"
	case models.PlatformAndroid:
		if purchase.PurchaseToken == "" {
			return nil, fmt.Errorf("missing purchase token")
		}
		p.PurchaseToken = purchase.PurchaseToken
		p.Platform = "Android"
	default:
		return nil, fmt.Errorf("unsupported platform: %s", c.platform)
	}
	return p, nil
}
