package purchase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

func boolPtr(v bool) *bool { return &v }

func TestReduce_ValidateReceiptSuccess(t *testing.T) {
	tests := []struct {
		name        string
		in          ValidateReceiptSuccess
		wantPremium bool
	}{
		{
			name:        "без явного признака премиум подтверждается",
			in:          ValidateReceiptSuccess{},
			wantPremium: true,
		},
		{
			name:        "явный признак true",
			in:          ValidateReceiptSuccess{IsPremium: boolPtr(true)},
			wantPremium: true,
		},
		{
			name:        "явный признак false имеет приоритет",
			in:          ValidateReceiptSuccess{IsPremium: boolPtr(false)},
			wantPremium: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Reduce(Initial(), tt.in)
			assert.False(t, s.IsLoading)
			assert.Equal(t, tt.wantPremium, s.IsPremium)
		})
	}
}

func TestReduce_ValidateReceiptFailure_СнимаетПремиум(t *testing.T) {
	s := Initial()
	s.IsPremium = true

	s = Reduce(s, ValidateReceiptFailure{Message: "expired"})

	assert.False(t, s.IsPremium)
	assert.Equal(t, "expired", s.Err)
	assert.False(t, s.IsLoading)
}

func TestReduce_RestoreFailure_СнимаетПремиум(t *testing.T) {
	s := Initial()
	s.IsPremium = true

	s = Reduce(s, RestorePurchasesFailure{Message: "no purchases", Definitive: true})

	assert.False(t, s.IsPremium)
	assert.Equal(t, "no purchases", s.Err)
}

func TestReduce_Initial_ЗагрузкаВключена(t *testing.T) {
	assert.True(t, Initial().IsLoading)
	assert.False(t, Initial().IsPremium)
}

func TestReduce_SelectedProduct(t *testing.T) {
	p := models.SelectedProduct{ProductID: "wellie_sub_3m_29usd", Title: "3 months", LocalizedPrice: "$29"}

	s := Reduce(Initial(), SetSelectedProduct{Product: p})
	assert.Equal(t, p, s.SelectedProduct)

	s = Reduce(s, ClearSelectedProduct{})
	assert.Equal(t, models.SelectedProduct{}, s.SelectedProduct)
}

func TestReduce_FetchProducts(t *testing.T) {
	products := []models.Product{{ProductID: "wellie_sub_3m_29usd", LocalizedPrice: "$29"}}
	s := Reduce(Initial(), FetchProductsSuccess{Products: products})
	assert.Equal(t, products, s.Products)

	s = Reduce(s, FetchProductsFailure{Message: "market unavailable"})
	assert.Equal(t, "market unavailable", s.Err)
	// Ранее загруженные продукты не затираются ошибкой.
	assert.Equal(t, products, s.Products)
}
