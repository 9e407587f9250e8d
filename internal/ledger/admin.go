package ledger

import (
	"log/slog"

	"energy_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Withdraw moves the market's entire escrow balance to the administrator.
// Normally the escrow nets to zero per purchase; a failed reversal can leave
// funds behind, and this is the recovery path.
func (m *Market) Withdraw(caller string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.state.Admin {
		return decimal.Zero, domain.ErrUnauthorized
	}

	held := m.payments.BalanceOf(EscrowAccount)
	if !held.IsPositive() {
		return decimal.Zero, nil
	}
	if err := m.payments.Transfer(EscrowAccount, m.state.Admin, held); err != nil {
		return decimal.Zero, domain.NewPaymentError("withdraw", err)
	}

	slog.Info("escrow withdrawn", slog.String("amount", held.String()))
	return held, nil
}

// TransferAdmin reassigns the administrator identity.
func (m *Market) TransferAdmin(caller, newAdmin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.state.Admin {
		return domain.ErrUnauthorized
	}
	if newAdmin == "" {
		return domain.ErrInvalidAddress
	}

	st := m.state
	st.Admin = newAdmin
	if err := m.persist(&domain.MutationBatch{State: &st}, nil); err != nil {
		return err
	}
	m.state = st

	slog.Info("administrator transferred", slog.String("admin", newAdmin))
	return nil
}
