// Package entitlement реализует машину состояний права на премиум поверх
// зафиксированных намерений среза purchase. Пейвол предлагается
// автоматически не более одного раза за процесс: защёлка взводится после
// первой завершённой проверки.
package entitlement

import (
	"sync"

	pur "github.com/magabrotheeeer/wellbeing-journal/internal/slices/purchase"
	"github.com/magabrotheeeer/wellbeing-journal/internal/store"
)

// Phase фаза права на премиум.
type Phase string

// Фазы машины состояний.
const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseChecking      Phase = "checking"
	PhasePremium       Phase = "premium"
	PhaseFree          Phase = "free"
)

// Policy машина состояний права на премиум.
type Policy struct {
	mu             sync.Mutex
	phase          Phase
	firstCheckDone bool
	paywallShown   bool
}

// New создает машину в фазе uninitialized.
func New() *Policy {
	return &Policy{phase: PhaseUninitialized}
}

// Handle продвигает машину по зафиксированному намерению.
// Регистрируется слушателем хранилища.
func (p *Policy) Handle(in store.Intent, _ store.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch in := in.(type) {
	case pur.FetchProductsRequest, pur.ValidateReceiptRequest, pur.RestorePurchasesRequest:
		if p.phase == PhaseUninitialized {
			p.phase = PhaseChecking
		}
	case pur.ValidateReceiptSuccess:
		p.phase = PhasePremium
		if in.IsPremium != nil && !*in.IsPremium {
			p.phase = PhaseFree
		}
		p.firstCheckDone = true
	case pur.ValidateReceiptFailure, pur.RestorePurchasesFailure:
		p.phase = PhaseFree
		p.firstCheckDone = true
	case pur.SetPremiumStatus:
		if in.IsPremium {
			p.phase = PhasePremium
		} else if p.firstCheckDone {
			p.phase = PhaseFree
		}
	}
}

// Phase возвращает текущую фазу.
func (p *Policy) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// IsPremium сообщает, подтверждено ли право на премиум.
func (p *Policy) IsPremium() bool {
	return p.Phase() == PhasePremium
}

// ShouldPromptPaywall одноразовая защёлка автоматического показа пейвола:
// возвращает true ровно один раз, когда первая проверка завершилась
// фазой free. Последующие смены фазы её не взводят.
func (p *Policy) ShouldPromptPaywall() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paywallShown || !p.firstCheckDone || p.phase != PhaseFree {
		return false
	}
	p.paywallShown = true
	return true
}
