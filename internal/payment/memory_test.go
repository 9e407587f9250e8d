package payment

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransfer(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.Deposit("alice", decimal.NewFromInt(1000))

	t.Run("moves funds", func(t *testing.T) {
		if err := ledger.Transfer("alice", "bob", decimal.NewFromInt(400)); err != nil {
			t.Fatalf("Transfer failed: %v", err)
		}

		if got := ledger.BalanceOf("alice"); !got.Equal(decimal.NewFromInt(600)) {
			t.Errorf("alice balance = %s, want 600", got)
		}
		if got := ledger.BalanceOf("bob"); !got.Equal(decimal.NewFromInt(400)) {
			t.Errorf("bob balance = %s, want 400", got)
		}
	})

	t.Run("insufficient funds leaves balances unchanged", func(t *testing.T) {
		err := ledger.Transfer("bob", "alice", decimal.NewFromInt(500))
		if !errors.Is(err, ErrInsufficientFunds) {
			t.Fatalf("expected ErrInsufficientFunds, got %v", err)
		}

		if got := ledger.BalanceOf("bob"); !got.Equal(decimal.NewFromInt(400)) {
			t.Errorf("bob balance = %s, want 400", got)
		}
	})

	t.Run("unknown sender", func(t *testing.T) {
		err := ledger.Transfer("nobody", "alice", decimal.NewFromInt(1))
		if !errors.Is(err, ErrUnknownAccount) {
			t.Fatalf("expected ErrUnknownAccount, got %v", err)
		}
	})

	t.Run("zero amount is a no-op", func(t *testing.T) {
		if err := ledger.Transfer("nobody", "alice", decimal.Zero); err != nil {
			t.Fatalf("zero transfer should succeed, got %v", err)
		}
	})
}

func TestBalanceOfUnknownIsZero(t *testing.T) {
	ledger := NewMemoryLedger()
	if got := ledger.BalanceOf("ghost"); !got.IsZero() {
		t.Errorf("BalanceOf(ghost) = %s, want 0", got)
	}
}
