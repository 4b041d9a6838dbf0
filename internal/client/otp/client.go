// Package otp содержит HTTP-клиент сервиса одноразовых кодов подтверждения.
// Повторная отправка кода на один и тот же адрес ограничена по частоте.
package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrTooSoon возвращается, когда повторная отправка кода запрошена раньше,
// чем истёк интервал ожидания.
var ErrTooSoon = fmt.Errorf("otp resend requested too soon")

// ErrInvalidCode возвращается, когда сервис отклонил введённый код.
var ErrInvalidCode = fmt.Errorf("invalid otp code")

// Client отправляет и проверяет одноразовые коды через внешние эндпоинты.
type Client struct {
	sendURL   string
	verifyURL string
	http      *http.Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

// New создает клиент OTP. interval задает минимальную паузу между
// повторными отправками кода на один адрес.
func New(sendURL, verifyURL string, interval time.Duration, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Client{
		sendURL:   sendURL,
		verifyURL: verifyURL,
		http:      &http.Client{Timeout: timeout},
		limiters:  make(map[string]*rate.Limiter),
		interval:  interval,
	}
}

func (c *Client) limiter(email string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limiters[email]
	if !ok {
		lim = rate.NewLimiter(rate.Every(c.interval), 1)
		c.limiters[email] = lim
	}
	return lim
}

type sendRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"otp"`
}

type serviceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Send запрашивает отправку кода на адрес. Возвращает ErrTooSoon,
// если интервал между отправками ещё не истёк.
func (c *Client) Send(ctx context.Context, email string) error {
	const op = "client.otp.Send"

	if !c.limiter(email).Allow() {
		return fmt.Errorf("%s: %w", op, ErrTooSoon)
	}
	if err := c.post(ctx, c.sendURL, sendRequest{Email: email}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Verify проверяет код. Возвращает ErrInvalidCode, если сервис его отклонил.
func (c *Client) Verify(ctx context.Context, email, code string) error {
	const op = "client.otp.Verify"

	if err := c.post(ctx, c.verifyURL, verifyRequest{Email: email, Code: code}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, url string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var sr serviceResponse
	_ = json.NewDecoder(resp.Body).Decode(&sr)

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidCode
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		if sr.Message != "" {
			return fmt.Errorf("service error %d: %s", resp.StatusCode, sr.Message)
		}
		return fmt.Errorf("service error %d", resp.StatusCode)
	}
	return nil
}
