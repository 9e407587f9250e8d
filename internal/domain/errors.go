package domain

import "errors"

// Every rejected ledger call maps onto exactly one of these sentinels. A
// rejection is terminal for the call and leaves all registries and counters
// untouched; the caller decides whether to resubmit.
var (
	// ErrInvalidAmount is returned for a non-positive or out-of-range quantity.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidListing is returned when a listing id is outside the allocated range.
	ErrInvalidListing = errors.New("invalid listing")

	// ErrListingInactive is returned for a purchase against a closed or exhausted listing.
	ErrListingInactive = errors.New("listing not active")

	// ErrInvalidTransaction is returned when a transaction id is outside the allocated range.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrSelfTradeForbidden is returned when a buyer attempts to purchase their own listing.
	ErrSelfTradeForbidden = errors.New("cannot buy own energy")

	// ErrInsufficientPayment is returned when the offered payment is below the computed total.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrUnauthorized is returned when a privileged operation is called by a non-administrator.
	ErrUnauthorized = errors.New("caller is not the administrator")

	// ErrAlreadyVerified is returned when delivery verification is attempted twice.
	ErrAlreadyVerified = errors.New("transaction already verified")

	// ErrInvalidAddress is returned when an empty identity is passed where one is required.
	ErrInvalidAddress = errors.New("invalid address")
)

// PaymentError wraps a failed settlement transfer. The ledger compensates any
// transfers that already went through before surfacing it, so observing one
// implies no state changed.
type PaymentError struct {
	Op  string // transfer leg that failed: "escrow", "payout", "refund", "withdraw"
	Err error
}

func (e *PaymentError) Error() string {
	return "payment " + e.Op + ": " + e.Err.Error()
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError wraps err as a settlement failure for the given leg.
func NewPaymentError(op string, err error) *PaymentError {
	return &PaymentError{Op: op, Err: err}
}
