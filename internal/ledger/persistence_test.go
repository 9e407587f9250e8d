package ledger

import (
	"errors"
	"path/filepath"
	"testing"

	"energy_go/internal/domain"
	"energy_go/internal/infra/storage"
	"energy_go/internal/payment"
)

func TestRestartRestoresExactState(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "market.db")
	pay := payment.NewMemoryLedger()
	pay.Deposit("house-7", money(10000))

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}

	m := NewMarket(admin, pay)
	if err := m.AttachStore(store); err != nil {
		t.Fatalf("AttachStore failed: %v", err)
	}

	listingID, err := m.ListEnergy("solar-1", kwh(100), money(10))
	if err != nil {
		t.Fatalf("ListEnergy failed: %v", err)
	}
	txID, err := m.PurchaseEnergy("house-7", listingID, kwh(40), money(400))
	if err != nil {
		t.Fatalf("PurchaseEnergy failed: %v", err)
	}
	if err := m.VerifyDelivery(admin, txID, kwh(38)); err != nil {
		t.Fatalf("VerifyDelivery failed: %v", err)
	}
	if err := m.TransferAdmin(admin, "ops-2"); err != nil {
		t.Fatalf("TransferAdmin failed: %v", err)
	}

	// Simulate a restart: fresh market, same database file.
	store2, err := storage.NewStorage(dbPath)
	if err != nil {
		t.Fatalf("reopen storage failed: %v", err)
	}
	m2 := NewMarket(admin, pay)
	if err := m2.AttachStore(store2); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if got := m2.Admin(); got != "ops-2" {
		t.Errorf("restored admin = %q, want %q", got, "ops-2")
	}
	if !m2.TotalEnergyTraded().Equal(kwh(40)) {
		t.Errorf("restored total traded = %s, want %s", m2.TotalEnergyTraded(), kwh(40))
	}
	if m2.TotalTransactions() != 1 {
		t.Errorf("restored total transactions = %d, want 1", m2.TotalTransactions())
	}

	l, err := m2.GetListing(listingID)
	if err != nil {
		t.Fatalf("restored listing missing: %v", err)
	}
	if !l.EnergyAmount.Equal(kwh(60)) || !l.IsActive {
		t.Errorf("restored listing = %+v, want 60 kWh remaining, active", l)
	}

	p, ok := m2.GetProducer("solar-1")
	if !ok {
		t.Fatal("restored producer missing")
	}
	if p.ReputationScore != 105 {
		t.Errorf("restored reputation = %d, want 105", p.ReputationScore)
	}
	if !p.TotalEnergyProduced.Equal(kwh(100)) || !p.TotalEnergyTraded.Equal(kwh(40)) {
		t.Errorf("restored tallies = %s produced, %s traded", p.TotalEnergyProduced, p.TotalEnergyTraded)
	}

	tx, err := m2.GetTransaction(txID)
	if err != nil {
		t.Fatalf("restored transaction missing: %v", err)
	}
	if !tx.IsCompleted {
		t.Error("restored transaction should stay verified")
	}
	if err := m2.VerifyDelivery("ops-2", txID, kwh(38)); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Errorf("re-verification after restart: got %v, want ErrAlreadyVerified", err)
	}

	// Id allocation resumes, it does not restart.
	nextListing, err := m2.ListEnergy("solar-1", kwh(5), money(10))
	if err != nil {
		t.Fatalf("ListEnergy after restore failed: %v", err)
	}
	if nextListing != listingID+1 {
		t.Errorf("next listing id = %d, want %d", nextListing, listingID+1)
	}

	// Index lists rebuild in creation order.
	if got := m2.ProducerListings("solar-1"); len(got) != 2 || got[0] != listingID {
		t.Errorf("restored producer index = %v", got)
	}
	if got := m2.BuyerTransactions("house-7"); len(got) != 1 || got[0] != txID {
		t.Errorf("restored buyer index = %v", got)
	}

	// The journal carried every notification across both processes.
	records, err := store2.Events(1, 100)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	wantTypes := []string{
		"ProducerRegistered", "EnergyListed", "EnergyPurchased",
		"EnergyDelivered", "ReputationUpdated", "EnergyListed",
	}
	if len(records) != len(wantTypes) {
		t.Fatalf("journal has %d records, want %d", len(records), len(wantTypes))
	}
	for i, rec := range records {
		if rec.Type != wantTypes[i] {
			t.Errorf("journal[%d] = %s, want %s", i, rec.Type, wantTypes[i])
		}
		if rec.Seq != uint64(i+1) {
			t.Errorf("journal[%d] seq = %d, want %d", i, rec.Seq, i+1)
		}
	}
}
