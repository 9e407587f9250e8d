package event

import "testing"

func TestReleaseResetsEnergyPurchased(t *testing.T) {
	ev := AcquireEnergyPurchased()
	ev.Seq = 9
	ev.Ts = 1700000000
	ev.TransactionID = 3
	ev.ListingID = 2
	ev.Buyer = "house-12"
	ev.Producer = "solar-1"
	ev.EnergyAmount = "40000000000000000000"
	ev.TotalPrice = "400"

	ReleaseEnergyPurchased(ev)

	got := AcquireEnergyPurchased()
	defer ReleaseEnergyPurchased(got)

	if got.Seq != 0 || got.TransactionID != 0 || got.Buyer != "" || got.TotalPrice != "" {
		t.Errorf("pooled event not reset: %+v", got)
	}
}

func TestReleaseNilIsSafe(t *testing.T) {
	ReleaseEnergyListed(nil)
	ReleaseEnergyPurchased(nil)
}
