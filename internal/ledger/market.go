// Package ledger implements the marketplace state machine: listing
// lifecycle, purchase settlement and delivery-accuracy reputation scoring.
// Every mutating call validates, settles and commits as one serialized step.
package ledger

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"energy_go/internal/domain"
	"energy_go/internal/event"
	"energy_go/internal/infra"

	"github.com/shopspring/decimal"
)

// EscrowAccount is the settlement-ledger identity the market itself holds
// funds under while a purchase is in flight.
const EscrowAccount = "market.escrow"

// Market owns all marketplace state. Mutations are serialized behind a
// single mutex; queries take the shared side and return copies, so callers
// never observe a mutation mid-flight.
type Market struct {
	mu sync.RWMutex

	producers    map[string]*domain.Producer
	listings     map[uint64]*domain.Listing
	transactions map[uint64]*domain.Transaction

	// append-only per-identity indexes, in creation order
	producerListings  map[string][]uint64
	buyerTransactions map[string][]uint64

	state domain.MarketState

	payments domain.PaymentLedger
	store    domain.MarketStore // nil = memory only
	outbox   chan<- event.Event // nil = notifications journaled but not fanned out

	now func() time.Time
}

// NewMarket creates an empty market administered by admin, settling through
// payments.
func NewMarket(admin string, payments domain.PaymentLedger) *Market {
	return &Market{
		producers:         make(map[string]*domain.Producer),
		listings:          make(map[uint64]*domain.Listing),
		transactions:      make(map[uint64]*domain.Transaction),
		producerListings:  make(map[string][]uint64),
		buyerTransactions: make(map[string][]uint64),
		state: domain.MarketState{
			ID:                1,
			NextListingID:     1,
			NextTransactionID: 1,
			TotalEnergyTraded: decimal.Zero,
			Admin:             admin,
		},
		payments: payments,
		now:      time.Now,
	}
}

// AttachStore wires durable storage and restores any previously persisted
// state. Must be called before the market serves traffic.
func (m *Market) AttachStore(store domain.MarketStore) error {
	snap, err := store.Load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = store
	if snap.State != nil {
		// Admin from config wins only on first boot; a persisted ledger
		// keeps the identity it was last transferred to.
		m.state = *snap.State
	}
	for i := range snap.Producers {
		p := snap.Producers[i]
		m.producers[p.Address] = &p
	}
	for i := range snap.Listings {
		l := snap.Listings[i]
		m.listings[l.ID] = &l
		m.producerListings[l.Producer] = append(m.producerListings[l.Producer], l.ID)
	}
	for i := range snap.Transactions {
		t := snap.Transactions[i]
		m.transactions[t.ID] = &t
		m.buyerTransactions[t.Buyer] = append(m.buyerTransactions[t.Buyer], t.ID)
	}
	return nil
}

// SetOutbox wires the notification dispatcher inbox. Events are sent
// blocking, in emit order.
func (m *Market) SetOutbox(outbox chan<- event.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbox = outbox
}

// ListEnergy creates a new listing, lazily registering the producer on first
// use, and returns the listing id.
func (m *Market) ListEnergy(producer string, energyAmount, pricePerKWh decimal.Decimal) (uint64, error) {
	if producer == "" {
		infra.GlobalMetrics.RecordRejected()
		return 0, domain.ErrInvalidAddress
	}
	if !energyAmount.IsPositive() || !pricePerKWh.IsPositive() {
		infra.GlobalMetrics.RecordRejected()
		return 0, domain.ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().Unix()
	registered := false

	p, ok := m.producers[producer]
	var np domain.Producer
	if ok {
		np = *p
	} else {
		registered = true
		np = domain.Producer{
			Address:             producer,
			TotalEnergyProduced: decimal.Zero,
			TotalEnergyTraded:   decimal.Zero,
			ReputationScore:     domain.EntryReputation,
			IsVerified:          true,
			RegisteredAt:        now,
		}
	}
	// Running tally of everything ever listed, not current availability.
	np.TotalEnergyProduced = np.TotalEnergyProduced.Add(energyAmount)

	listing := &domain.Listing{
		ID:           m.state.NextListingID,
		Producer:     producer,
		EnergyAmount: energyAmount,
		PricePerKWh:  pricePerKWh,
		CreatedAt:    now,
		IsActive:     true,
	}

	st := m.state
	st.NextListingID++

	var evs []event.Event
	if registered {
		reg := &event.ProducerRegistered{Producer: producer}
		reg.Seq, reg.Ts = nextSeq(&st), now
		evs = append(evs, reg)
	}
	listed := event.AcquireEnergyListed()
	listed.ListingID = listing.ID
	listed.Producer = producer
	listed.EnergyAmount = energyAmount.String()
	listed.PricePerKWh = pricePerKWh.String()
	listed.Seq, listed.Ts = nextSeq(&st), now
	evs = append(evs, listed)

	if err := m.persist(&domain.MutationBatch{
		Producers: []*domain.Producer{&np},
		Listings:  []*domain.Listing{listing},
		State:     &st,
	}, evs); err != nil {
		for _, ev := range evs {
			releaseEvent(ev)
		}
		return 0, err
	}

	m.producers[producer] = &np
	m.listings[listing.ID] = listing
	m.producerListings[producer] = append(m.producerListings[producer], listing.ID)
	m.state = st
	m.emit(evs...)

	infra.GlobalMetrics.RecordListing()
	slog.Info("energy listed",
		slog.Uint64("listing_id", listing.ID),
		slog.String("producer", producer),
		slog.String("amount", energyAmount.String()))
	return listing.ID, nil
}

// PurchaseEnergy buys energyAmount from a listing with payment offered by
// the buyer. It settles through the payment ledger (charge, payout, excess
// refund) and commits the state change only if every leg succeeded. Any
// failure compensates completed legs, so a rejected purchase leaves both
// ledgers exactly as before the call.
func (m *Market) PurchaseEnergy(buyer string, listingID uint64, energyAmount, payment decimal.Decimal) (uint64, error) {
	if buyer == "" {
		infra.GlobalMetrics.RecordRejected()
		return 0, domain.ErrInvalidAddress
	}

	start := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.listings[listingID]
	if !ok {
		infra.GlobalMetrics.RecordRejected()
		return 0, domain.ErrInvalidListing
	}
	if !l.IsActive {
		infra.GlobalMetrics.RecordRejected()
		return 0, domain.ErrListingInactive
	}
	if !energyAmount.IsPositive() || energyAmount.GreaterThan(l.EnergyAmount) {
		infra.GlobalMetrics.RecordRejected()
		return 0, domain.ErrInvalidAmount
	}
	if buyer == l.Producer {
		infra.GlobalMetrics.RecordRejected()
		return 0, domain.ErrSelfTradeForbidden
	}

	totalPrice := l.TotalPrice(energyAmount)
	if payment.LessThan(totalPrice) {
		infra.GlobalMetrics.RecordRejected()
		return 0, domain.ErrInsufficientPayment
	}

	if err := m.settle(buyer, l.Producer, payment, totalPrice); err != nil {
		infra.GlobalMetrics.RecordRejected()
		return 0, err
	}

	now := m.now().Unix()

	nl := *l
	nl.EnergyAmount = nl.EnergyAmount.Sub(energyAmount)
	if nl.EnergyAmount.IsZero() {
		nl.IsActive = false
		nl.IsCompleted = true
	}

	np := *m.producers[l.Producer]
	np.TotalEnergyTraded = np.TotalEnergyTraded.Add(energyAmount)

	tx := &domain.Transaction{
		ID:           m.state.NextTransactionID,
		ListingID:    listingID,
		Buyer:        buyer,
		Producer:     l.Producer,
		EnergyAmount: energyAmount,
		TotalPrice:   totalPrice,
		CreatedAt:    now,
	}

	st := m.state
	st.NextTransactionID++
	st.TotalEnergyTraded = st.TotalEnergyTraded.Add(energyAmount)
	st.TotalTransactions++

	purchased := event.AcquireEnergyPurchased()
	purchased.TransactionID = tx.ID
	purchased.ListingID = listingID
	purchased.Buyer = buyer
	purchased.Producer = l.Producer
	purchased.EnergyAmount = energyAmount.String()
	purchased.TotalPrice = totalPrice.String()
	purchased.Seq, purchased.Ts = nextSeq(&st), now

	if err := m.persist(&domain.MutationBatch{
		Producers:    []*domain.Producer{&np},
		Listings:     []*domain.Listing{&nl},
		Transactions: []*domain.Transaction{tx},
		State:        &st,
	}, []event.Event{purchased}); err != nil {
		// Pull the settled funds back so the failed call is invisible.
		if rerr := m.payments.Transfer(l.Producer, buyer, totalPrice); rerr != nil {
			slog.Error("settlement reversal failed after persist error",
				slog.Uint64("listing_id", listingID), slog.Any("error", rerr))
		}
		event.ReleaseEnergyPurchased(purchased)
		return 0, err
	}

	*m.listings[listingID] = nl
	*m.producers[l.Producer] = np
	m.transactions[tx.ID] = tx
	m.buyerTransactions[buyer] = append(m.buyerTransactions[buyer], tx.ID)
	m.state = st
	m.emit(purchased)

	infra.GlobalMetrics.RecordPurchase(time.Since(start).Nanoseconds())
	slog.Info("energy purchased",
		slog.Uint64("transaction_id", tx.ID),
		slog.Uint64("listing_id", listingID),
		slog.String("buyer", buyer),
		slog.String("total_price", totalPrice.String()))
	return tx.ID, nil
}

// settle runs the three transfer legs of a purchase. On a failed leg it
// reverses the completed ones before returning.
func (m *Market) settle(buyer, producer string, payment, totalPrice decimal.Decimal) error {
	if err := m.payments.Transfer(buyer, EscrowAccount, payment); err != nil {
		return domain.NewPaymentError("escrow", err)
	}
	if err := m.payments.Transfer(EscrowAccount, producer, totalPrice); err != nil {
		m.reverse(EscrowAccount, buyer, payment)
		return domain.NewPaymentError("payout", err)
	}
	if excess := payment.Sub(totalPrice); excess.IsPositive() {
		if err := m.payments.Transfer(EscrowAccount, buyer, excess); err != nil {
			m.reverse(producer, EscrowAccount, totalPrice)
			m.reverse(EscrowAccount, buyer, payment)
			return domain.NewPaymentError("refund", err)
		}
	}
	return nil
}

func (m *Market) reverse(from, to string, amount decimal.Decimal) {
	if err := m.payments.Transfer(from, to, amount); err != nil {
		// The settlement ledger rejected its own reversal; funds are stuck
		// in escrow until the administrator withdraws them.
		slog.Error("settlement reversal failed",
			slog.String("from", from), slog.String("to", to),
			slog.String("amount", amount.String()), slog.Any("error", err))
	}
}

// VerifyDelivery marks a transaction delivered and adjusts the producer's
// reputation from the delivery accuracy. Administrator only; a transaction
// can be verified once.
func (m *Market) VerifyDelivery(caller string, transactionID uint64, actualDelivered decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.state.Admin {
		infra.GlobalMetrics.RecordRejected()
		return domain.ErrUnauthorized
	}
	tx, ok := m.transactions[transactionID]
	if !ok {
		infra.GlobalMetrics.RecordRejected()
		return domain.ErrInvalidTransaction
	}
	if tx.IsCompleted {
		infra.GlobalMetrics.RecordRejected()
		return domain.ErrAlreadyVerified
	}
	if actualDelivered.IsNegative() {
		infra.GlobalMetrics.RecordRejected()
		return domain.ErrInvalidAmount
	}

	now := m.now().Unix()
	accuracy := tx.DeliveryAccuracy(actualDelivered)

	np := *m.producers[tx.Producer]
	np.ReputationScore = applyAccuracy(np.ReputationScore, accuracy)

	ntx := *tx
	ntx.IsCompleted = true

	st := m.state

	delivered := &event.EnergyDelivered{
		TransactionID:   transactionID,
		ActualDelivered: actualDelivered.String(),
		Accuracy:        accuracy,
	}
	delivered.Seq, delivered.Ts = nextSeq(&st), now
	repUpdated := &event.ReputationUpdated{
		Producer: tx.Producer,
		NewScore: np.ReputationScore,
	}
	repUpdated.Seq, repUpdated.Ts = nextSeq(&st), now
	evs := []event.Event{delivered, repUpdated}

	if err := m.persist(&domain.MutationBatch{
		Producers:    []*domain.Producer{&np},
		Transactions: []*domain.Transaction{&ntx},
		State:        &st,
	}, evs); err != nil {
		return err
	}

	*m.producers[tx.Producer] = np
	*m.transactions[transactionID] = ntx
	m.state = st
	m.emit(evs...)

	infra.GlobalMetrics.RecordVerification()
	slog.Info("delivery verified",
		slog.Uint64("transaction_id", transactionID),
		slog.Int64("accuracy", accuracy),
		slog.Int64("reputation", np.ReputationScore))
	return nil
}

// applyAccuracy maps an integer delivery-accuracy percentage onto a new
// reputation score. Scores below 10 are never reduced further by a poor
// delivery; only the upper bound is clamped.
func applyAccuracy(score, accuracy int64) int64 {
	switch {
	case accuracy >= 95:
		score += 5
	case accuracy >= 85:
		score += 2
	case accuracy >= 75:
		// accurate enough, no change
	default:
		if score >= 10 {
			score -= 10
		}
	}
	if score > domain.MaxReputation {
		score = domain.MaxReputation
	}
	return score
}

// persist writes the batch plus journal entries when a store is attached.
func (m *Market) persist(batch *domain.MutationBatch, evs []event.Event) error {
	if m.store == nil {
		return nil
	}
	for _, ev := range evs {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		batch.Events = append(batch.Events, &domain.EventRecord{
			Seq:     ev.GetSeq(),
			Type:    ev.GetType(),
			Payload: string(payload),
			Ts:      ev.GetTs(),
		})
	}
	return m.store.Persist(batch)
}

func (m *Market) emit(evs ...event.Event) {
	if m.outbox == nil {
		for _, ev := range evs {
			releaseEvent(ev)
		}
		return
	}
	for _, ev := range evs {
		m.outbox <- ev
	}
}

func releaseEvent(ev event.Event) {
	switch e := ev.(type) {
	case *event.EnergyListed:
		event.ReleaseEnergyListed(e)
	case *event.EnergyPurchased:
		event.ReleaseEnergyPurchased(e)
	}
}

func nextSeq(st *domain.MarketState) uint64 {
	st.LastEventSeq++
	return st.LastEventSeq
}
