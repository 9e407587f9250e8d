package engine

import (
	"context"
	"fmt"
	"log/slog"

	"energy_go/internal/event"
)

// Sink receives each notification in emit order. Sinks must not retain the
// event past the call: pooled events are recycled after fan-out.
type Sink interface {
	Deliver(ev event.Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev event.Event)

func (f SinkFunc) Deliver(ev event.Event) { f(ev) }

// Dispatcher is the single-threaded notification fan-out loop. The ledger
// journals events before they reach the inbox, so the dispatcher only
// guards ordering and feeds live subscribers.
type Dispatcher struct {
	inbox   chan event.Event
	nextSeq uint64
	sinks   []Sink
}

// NewDispatcher creates a dispatcher expecting the first event to carry
// startSeq. Pass lastSeq+1 when resuming from a persisted ledger.
func NewDispatcher(inboxSize int, startSeq uint64, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		inbox:   make(chan event.Event, inboxSize),
		nextSeq: startSeq,
		sinks:   sinks,
	}
}

// Inbox returns the event channel. The ledger sends events here.
func (d *Dispatcher) Inbox() chan<- event.Event {
	return d.inbox
}

// Run starts the fan-out loop. This MUST be run in a single goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
	slog.Info("notification dispatcher started", slog.Uint64("next_seq", d.nextSeq))

	for {
		select {
		case <-ctx.Done():
			slog.Info("notification dispatcher stopping...")
			return
		case ev := <-d.inbox:
			d.dispatch(ev)
		}
	}
}

func (d *Dispatcher) dispatch(ev event.Event) {
	// A gap means a notification was lost between ledger and dispatcher;
	// downstream indexers would silently diverge. Halt instead.
	if ev.GetSeq() != d.nextSeq {
		panic(fmt.Sprintf("NOTIFICATION_GAP_DETECTED: expected %d, got %d", d.nextSeq, ev.GetSeq()))
	}

	for _, sink := range d.sinks {
		sink.Deliver(ev)
	}

	switch e := ev.(type) {
	case *event.EnergyListed:
		event.ReleaseEnergyListed(e)
	case *event.EnergyPurchased:
		event.ReleaseEnergyPurchased(e)
	}

	d.nextSeq++
}
