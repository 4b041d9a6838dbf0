package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pur "github.com/magabrotheeeer/wellbeing-journal/internal/slices/purchase"
	"github.com/magabrotheeeer/wellbeing-journal/internal/store"
)

func boolPtr(v bool) *bool { return &v }

func TestPolicy_НачальнаяФазаUninitialized(t *testing.T) {
	p := New()
	assert.Equal(t, PhaseUninitialized, p.Phase())
	assert.False(t, p.IsPremium())
}

func TestPolicy_ЗапросПереводитВChecking(t *testing.T) {
	p := New()

	p.Handle(pur.FetchProductsRequest{}, store.State{})

	assert.Equal(t, PhaseChecking, p.Phase())
}

func TestPolicy_ПереходыПоРезультатамВалидации(t *testing.T) {
	tests := []struct {
		name    string
		intents []store.Intent
		want    Phase
	}{
		{
			name: "успех без явного признака подтверждает премиум",
			intents: []store.Intent{
				pur.ValidateReceiptRequest{},
				pur.ValidateReceiptSuccess{},
			},
			want: PhasePremium,
		},
		{
			name: "явный отрицательный признак побеждает",
			intents: []store.Intent{
				pur.ValidateReceiptRequest{},
				pur.ValidateReceiptSuccess{IsPremium: boolPtr(false)},
			},
			want: PhaseFree,
		},
		{
			name: "отказ валидации снимает право",
			intents: []store.Intent{
				pur.ValidateReceiptRequest{},
				pur.ValidateReceiptSuccess{},
				pur.ValidateReceiptFailure{Message: "expired"},
			},
			want: PhaseFree,
		},
		{
			name: "отказ восстановления снимает право",
			intents: []store.Intent{
				pur.RestorePurchasesRequest{},
				pur.RestorePurchasesFailure{Definitive: true},
			},
			want: PhaseFree,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			for _, in := range tt.intents {
				p.Handle(in, store.State{})
			}
			assert.Equal(t, tt.want, p.Phase())
		})
	}
}

func TestPolicy_ПейволПредлагаетсяОдинРаз(t *testing.T) {
	p := New()

	// До завершения первой проверки пейвол не предлагается.
	p.Handle(pur.ValidateReceiptRequest{}, store.State{})
	assert.False(t, p.ShouldPromptPaywall())

	p.Handle(pur.ValidateReceiptFailure{Message: "expired"}, store.State{})
	assert.True(t, p.ShouldPromptPaywall())
	assert.False(t, p.ShouldPromptPaywall())

	// Повторная потеря права защёлку не взводит.
	p.Handle(pur.ValidateReceiptSuccess{}, store.State{})
	p.Handle(pur.ValidateReceiptFailure{Message: "expired"}, store.State{})
	assert.False(t, p.ShouldPromptPaywall())
}

func TestPolicy_ПейволНеПредлагаетсяПремиуму(t *testing.T) {
	p := New()

	p.Handle(pur.ValidateReceiptRequest{}, store.State{})
	p.Handle(pur.ValidateReceiptSuccess{}, store.State{})

	assert.True(t, p.IsPremium())
	assert.False(t, p.ShouldPromptPaywall())
}

func TestPolicy_ЯвнаяУстановкаСтатуса(t *testing.T) {
	p := New()

	p.Handle(pur.SetPremiumStatus{IsPremium: true}, store.State{})
	assert.Equal(t, PhasePremium, p.Phase())

	// Снятие до первой завершённой проверки не переводит в free.
	p2 := New()
	p2.Handle(pur.SetPremiumStatus{IsPremium: false}, store.State{})
	assert.Equal(t, PhaseUninitialized, p2.Phase())
}
