package event

import (
	"sync"
)

// Pools for the two notification kinds emitted on every trade-path call.
// The dispatcher releases events after fan-out, so a busy market recycles
// instead of allocating.
//
// Usage:
//
//	ev := AcquireEnergyPurchased()
//	ev.Buyer = "meter-7"
//	// ... dispatch ...
//	ReleaseEnergyPurchased(ev)
var energyListedPool = sync.Pool{
	New: func() interface{} {
		return &EnergyListed{}
	},
}

// AcquireEnergyListed gets an EnergyListed from the pool.
// The returned event has zero values and must be initialized.
func AcquireEnergyListed() *EnergyListed {
	return energyListedPool.Get().(*EnergyListed)
}

// ReleaseEnergyListed returns an EnergyListed to the pool.
// The event is reset to zero values before being pooled.
func ReleaseEnergyListed(ev *EnergyListed) {
	if ev == nil {
		return
	}
	ev.Seq = 0
	ev.Ts = 0
	ev.ListingID = 0
	ev.Producer = ""
	ev.EnergyAmount = ""
	ev.PricePerKWh = ""

	energyListedPool.Put(ev)
}

// EnergyPurchased pool
var energyPurchasedPool = sync.Pool{
	New: func() interface{} {
		return &EnergyPurchased{}
	},
}

// AcquireEnergyPurchased gets an EnergyPurchased from the pool.
func AcquireEnergyPurchased() *EnergyPurchased {
	return energyPurchasedPool.Get().(*EnergyPurchased)
}

// ReleaseEnergyPurchased returns an EnergyPurchased to the pool.
func ReleaseEnergyPurchased(ev *EnergyPurchased) {
	if ev == nil {
		return
	}
	ev.Seq = 0
	ev.Ts = 0
	ev.TransactionID = 0
	ev.ListingID = 0
	ev.Buyer = ""
	ev.Producer = ""
	ev.EnergyAmount = ""
	ev.TotalPrice = ""

	energyPurchasedPool.Put(ev)
}

// Warmup pre-allocates event objects to reduce GC pressure at startup.
// It acquires and releases a batch of events.
func Warmup() {
	const batchSize = 1000

	listedEvs := make([]*EnergyListed, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		listedEvs = append(listedEvs, AcquireEnergyListed())
	}
	for _, ev := range listedEvs {
		ReleaseEnergyListed(ev)
	}

	purchasedEvs := make([]*EnergyPurchased, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		purchasedEvs = append(purchasedEvs, AcquireEnergyPurchased())
	}
	for _, ev := range purchasedEvs {
		ReleaseEnergyPurchased(ev)
	}
}
