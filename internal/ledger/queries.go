package ledger

import (
	"energy_go/internal/domain"

	"github.com/shopspring/decimal"
)

// GetListing returns a copy of the listing.
func (m *Market) GetListing(id uint64) (domain.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.listings[id]
	if !ok {
		return domain.Listing{}, domain.ErrInvalidListing
	}
	return *l, nil
}

// GetProducer returns a copy of the producer record, false if the identity
// has never listed.
func (m *Market) GetProducer(address string) (domain.Producer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.producers[address]
	if !ok {
		return domain.Producer{}, false
	}
	return *p, true
}

// GetTransaction returns a copy of the transaction.
func (m *Market) GetTransaction(id uint64) (domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.transactions[id]
	if !ok {
		return domain.Transaction{}, domain.ErrInvalidTransaction
	}
	return *t, nil
}

// ProducerListings returns the producer's listing ids in creation order.
func (m *Market) ProducerListings(address string) []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.producerListings[address]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// BuyerTransactions returns the buyer's transaction ids in creation order.
func (m *Market) BuyerTransactions(address string) []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.buyerTransactions[address]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}

// ActiveListingCount scans all listings and counts the active ones.
func (m *Market) ActiveListingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, l := range m.listings {
		if l.IsActive {
			n++
		}
	}
	return n
}

// Quote computes the total price of a hypothetical purchase without mutating
// state. The listing need not be active, only allocated.
func (m *Market) Quote(listingID uint64, energyAmount decimal.Decimal) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.listings[listingID]
	if !ok {
		return decimal.Zero, domain.ErrInvalidListing
	}
	if !energyAmount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return l.TotalPrice(energyAmount), nil
}

// TotalEnergyTraded returns the sum of all transactions' energy amounts.
func (m *Market) TotalEnergyTraded() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.TotalEnergyTraded
}

// TotalTransactions returns the count of created transactions.
func (m *Market) TotalTransactions() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.TotalTransactions
}

// LastEventSeq returns the sequence of the most recently emitted
// notification. The dispatcher resumes at the next value.
func (m *Market) LastEventSeq() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.LastEventSeq
}

// Admin returns the current administrator identity.
func (m *Market) Admin() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Admin
}
