package receipt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

func iosPurchase() models.Purchase {
	return models.Purchase{
		ProductID:          "wellie_sub_3m_29usd",
		TransactionID:      "txn-1",
		TransactionReceipt: "base64receipt",
	}
}

func TestValidate_УспехБезПризнакаПремиум(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "base64receipt", got["latest_receipt"])
		assert.Equal(t, "iOS", got["platform"])
		assert.Equal(t, false, got["isRestore"])

		_ = json.NewEncoder(w).Encode(map[string]any{"validationStatus": "Valid"})
	}))
	defer srv.Close()

	c := New(srv.URL, models.PlatformIOS, time.Second)
	res, err := c.Validate(context.Background(), iosPurchase(), "u1", false)

	require.NoError(t, err)
	assert.Nil(t, res.IsPremium)
}

func TestValidate_ЯвныйПризнакПремиум(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"validationStatus": "Valid", "isPremium": false})
	}))
	defer srv.Close()

	c := New(srv.URL, models.PlatformIOS, time.Second)
	res, err := c.Validate(context.Background(), iosPurchase(), "u1", false)

	require.NoError(t, err)
	require.NotNil(t, res.IsPremium)
	assert.False(t, *res.IsPremium)
}

func TestValidate_ОтказВалидатора(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"validationStatus": "Invalid", "message": "expired"})
	}))
	defer srv.Close()

	c := New(srv.URL, models.PlatformIOS, time.Second)
	_, err := c.Validate(context.Background(), iosPurchase(), "u1", false)

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "expired", rejected.Message)
}

func TestValidate_ОшибкаСервера(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "boom"})
	}))
	defer srv.Close()

	c := New(srv.URL, models.PlatformIOS, time.Second)
	_, err := c.Validate(context.Background(), iosPurchase(), "u1", false)

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.StatusCode)
	assert.Equal(t, "boom", serverErr.Message)
}

func TestValidate_СетеваяОшибка(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // соединение сразу недоступно

	c := New(srv.URL, models.PlatformIOS, time.Second)
	_, err := c.Validate(context.Background(), iosPurchase(), "u1", false)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestValidate_AndroidPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "token-1", got["purchaseToken"])
		assert.Equal(t, "Android", got["platform"])
		assert.Nil(t, got["latest_receipt"])

		_ = json.NewEncoder(w).Encode(map[string]any{"validationStatus": "Valid"})
	}))
	defer srv.Close()

	c := New(srv.URL, models.PlatformAndroid, time.Second)
	_, err := c.Validate(context.Background(), models.Purchase{
		ProductID:     "wellie_sub_12m_199usd",
		TransactionID: "txn-2",
		PurchaseToken: "token-1",
	}, "u1", true)

	require.NoError(t, err)
}

func TestValidate_БезЧекаОшибка(t *testing.T) {
	c := New("http://unused", models.PlatformIOS, time.Second)
	_, err := c.Validate(context.Background(), models.Purchase{ProductID: "p"}, "u1", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing transaction receipt")
}
