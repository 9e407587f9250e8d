package event

// Event is a market notification flowing through the dispatcher. Seq is
// assigned by the ledger at emit time and is strictly increasing.
type Event interface {
	GetSeq() uint64
	GetType() string
	GetTs() int64
}

// Base carries the fields shared by every notification.
type Base struct {
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"` // unix seconds
}

func (b *Base) GetSeq() uint64 { return b.Seq }
func (b *Base) GetTs() int64   { return b.Ts }

// ProducerRegistered is emitted when an identity lists energy for the first time.
type ProducerRegistered struct {
	Base
	Producer string `json:"producer"`
}

func (*ProducerRegistered) GetType() string { return "ProducerRegistered" }

// EnergyListed is emitted for every new listing.
type EnergyListed struct {
	Base
	ListingID    uint64 `json:"listing_id"`
	Producer     string `json:"producer"`
	EnergyAmount string `json:"energy_amount"`
	PricePerKWh  string `json:"price_per_kwh"`
}

func (*EnergyListed) GetType() string { return "EnergyListed" }

// EnergyPurchased is emitted for every settled purchase.
type EnergyPurchased struct {
	Base
	TransactionID uint64 `json:"transaction_id"`
	ListingID     uint64 `json:"listing_id"`
	Buyer         string `json:"buyer"`
	Producer      string `json:"producer"`
	EnergyAmount  string `json:"energy_amount"`
	TotalPrice    string `json:"total_price"`
}

func (*EnergyPurchased) GetType() string { return "EnergyPurchased" }

// EnergyDelivered is emitted when the administrator verifies a delivery.
type EnergyDelivered struct {
	Base
	TransactionID   uint64 `json:"transaction_id"`
	ActualDelivered string `json:"actual_delivered"`
	Accuracy        int64  `json:"accuracy"` // integer percent
}

func (*EnergyDelivered) GetType() string { return "EnergyDelivered" }

// ReputationUpdated is emitted after a delivery verification adjusts a
// producer's score, including the no-change tier.
type ReputationUpdated struct {
	Base
	Producer string `json:"producer"`
	NewScore int64  `json:"new_score"`
}

func (*ReputationUpdated) GetType() string { return "ReputationUpdated" }
