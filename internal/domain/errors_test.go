package domain

import (
	"errors"
	"testing"
)

func TestPaymentError(t *testing.T) {
	baseErr := errors.New("insufficient funds")

	t.Run("message", func(t *testing.T) {
		err := NewPaymentError("payout", baseErr)

		if err.Error() != "payment payout: insufficient funds" {
			t.Errorf("Error() = %q, want %q", err.Error(), "payment payout: insufficient funds")
		}
	})

	t.Run("unwraps", func(t *testing.T) {
		err := NewPaymentError("escrow", baseErr)

		if !errors.Is(err, baseErr) {
			t.Error("Expected PaymentError to wrap baseErr")
		}
	})

	t.Run("matches via As", func(t *testing.T) {
		var pe *PaymentError
		wrapped := error(NewPaymentError("refund", baseErr))

		if !errors.As(wrapped, &pe) {
			t.Fatal("errors.As should match *PaymentError")
		}
		if pe.Op != "refund" {
			t.Errorf("Op = %q, want %q", pe.Op, "refund")
		}
	})
}
