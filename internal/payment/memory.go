// Package payment provides an in-process settlement ledger. Production
// deployments swap in an adapter to the host chain; this implementation keeps
// the same atomic-transfer contract for local runs and tests.
package payment

import (
	"errors"
	"sync"

	"energy_go/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds is returned when a transfer exceeds the sender's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownAccount is returned when the sender has never been funded.
	ErrUnknownAccount = errors.New("unknown account")
)

// MemoryLedger is a mutex-guarded account book. Each Transfer either fully
// applies or leaves both balances untouched.
type MemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
}

// NewMemoryLedger creates an empty account book.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]decimal.Decimal),
	}
}

// Deposit credits an account out of thin air. Test and bootstrap helper.
func (m *MemoryLedger) Deposit(id string, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[id] = m.balances[id].Add(amount)
}

// Transfer moves amount from one account to another atomically.
func (m *MemoryLedger) Transfer(from, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInsufficientFunds
	}
	if amount.IsZero() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bal, ok := m.balances[from]
	if !ok {
		return ErrUnknownAccount
	}
	if bal.LessThan(amount) {
		return ErrInsufficientFunds
	}

	m.balances[from] = bal.Sub(amount)
	m.balances[to] = m.balances[to].Add(amount)
	return nil
}

// BalanceOf returns the current balance, zero for unknown accounts.
func (m *MemoryLedger) BalanceOf(id string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.balances[id]
}

var _ domain.PaymentLedger = (*MemoryLedger)(nil)
