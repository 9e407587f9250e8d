package domain

import (
	"github.com/shopspring/decimal"
)

// KWhScale is the fixed-point base for energy quantities: 1 kWh = 1e18 units.
// Prices are expressed in currency units per whole kWh at the same scale, so
// a trade total is floor(amount * price / KWhScale).
var KWhScale = decimal.New(1, 18)

// EntryReputation is the score assigned to a producer on first listing.
const EntryReputation = 100

// MaxReputation is the upper clamp for producer reputation.
const MaxReputation = 1000

// Producer is a registered energy seller. Producers are created lazily on
// their first listing and never deleted.
type Producer struct {
	Address             string          `gorm:"primaryKey" json:"address"`
	TotalEnergyProduced decimal.Decimal `gorm:"type:text" json:"total_energy_produced"` // cumulative ever-listed, not current availability
	TotalEnergyTraded   decimal.Decimal `gorm:"type:text" json:"total_energy_traded"`
	ReputationScore     int64           `json:"reputation_score"`
	IsVerified          bool            `json:"is_verified"`
	RegisteredAt        int64           `json:"registered_at"` // unix seconds
}

// Listing is an offer to sell a remaining quantity of energy at a fixed unit
// price. Listings are deactivated when exhausted, never deleted.
type Listing struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Producer     string          `gorm:"index" json:"producer"`
	EnergyAmount decimal.Decimal `gorm:"type:text" json:"energy_amount"` // remaining, monotonically non-increasing
	PricePerKWh  decimal.Decimal `gorm:"type:text" json:"price_per_kwh"`
	CreatedAt    int64           `json:"created_at"`
	IsActive     bool            `gorm:"index" json:"is_active"`
	IsCompleted  bool            `json:"is_completed"`
}

// Transaction is a settled purchase against a listing, pending delivery
// verification. Immutable after creation except for IsCompleted.
type Transaction struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ListingID    uint64          `gorm:"index" json:"listing_id"`
	Buyer        string          `gorm:"index" json:"buyer"`
	Producer     string          `json:"producer"`
	EnergyAmount decimal.Decimal `gorm:"type:text" json:"energy_amount"`
	TotalPrice   decimal.Decimal `gorm:"type:text" json:"total_price"`
	CreatedAt    int64           `json:"created_at"`
	IsCompleted  bool            `json:"is_completed"` // delivery verified
}

// MarketState is the single-row scalar state of the ledger: id counters,
// aggregate totals and the administrator identity. It must survive restarts
// with exact values.
type MarketState struct {
	ID                uint            `gorm:"primaryKey" json:"-"`
	NextListingID     uint64          `json:"next_listing_id"`
	NextTransactionID uint64          `json:"next_transaction_id"`
	TotalEnergyTraded decimal.Decimal `gorm:"type:text" json:"total_energy_traded"`
	TotalTransactions uint64          `json:"total_transactions"`
	LastEventSeq      uint64          `json:"last_event_seq"`
	Admin             string          `json:"admin"`
}

// TotalPrice computes the charge for buying amount energy at this listing's
// unit price, floored to whole currency units. QuoRem keeps the division
// exact; Div would round at its configured precision.
func (l *Listing) TotalPrice(amount decimal.Decimal) decimal.Decimal {
	q, _ := amount.Mul(l.PricePerKWh).QuoRem(KWhScale, 0)
	return q
}

// DeliveryAccuracy returns the integer percentage of actually delivered
// energy relative to the purchased amount, floored.
func (t *Transaction) DeliveryAccuracy(actualDelivered decimal.Decimal) int64 {
	q, _ := actualDelivered.Mul(decimal.NewFromInt(100)).QuoRem(t.EnergyAmount, 0)
	return q.IntPart()
}
