package domain

import "github.com/shopspring/decimal"

// PaymentLedger is the external settlement collaborator. Transfers are
// atomic per call; the market ledger composes them with compensating
// reversals where a multi-leg settlement can fail half-way.
type PaymentLedger interface {
	Transfer(from, to string, amount decimal.Decimal) error
	BalanceOf(id string) decimal.Decimal
}

// EventRecord is the durable journal entry for an emitted notification.
type EventRecord struct {
	Seq     uint64 `gorm:"primaryKey;autoIncrement:false" json:"seq"`
	Type    string `gorm:"index" json:"type"`
	Payload string `json:"payload"` // json-encoded event
	Ts      int64  `json:"ts"`
}

// MutationBatch is everything one ledger call changed. A store must write
// the whole batch in a single transaction or none of it.
type MutationBatch struct {
	Producers    []*Producer
	Listings     []*Listing
	Transactions []*Transaction
	State        *MarketState
	Events       []*EventRecord
}

// MarketStore persists the registries, scalar state and event journal.
type MarketStore interface {
	Persist(batch *MutationBatch) error
	Load() (*MarketSnapshot, error)
}

// MarketSnapshot is everything a restarted ledger needs to resume with exact
// values. Index lists are rebuilt from the registries in id order.
type MarketSnapshot struct {
	Producers    []Producer
	Listings     []Listing
	Transactions []Transaction
	State        *MarketState
}
