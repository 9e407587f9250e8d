package engine

import (
	"context"
	"testing"
	"time"

	"energy_go/internal/event"
)

func TestDispatchOrder(t *testing.T) {
	got := make(chan string, 8)
	d := NewDispatcher(8, 1, SinkFunc(func(ev event.Event) {
		got <- ev.GetType()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	reg := &event.ProducerRegistered{Producer: "solar-1"}
	reg.Seq = 1
	listed := event.AcquireEnergyListed()
	listed.Seq = 2
	listed.ListingID = 1

	d.Inbox() <- reg
	d.Inbox() <- listed

	for _, want := range []string{"ProducerRegistered", "EnergyListed"} {
		select {
		case typ := <-got:
			if typ != want {
				t.Errorf("delivered %s, want %s", typ, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}
}

func TestSeqGapHalts(t *testing.T) {
	d := NewDispatcher(1, 1, SinkFunc(func(ev event.Event) {}))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on sequence gap")
		}
	}()

	reg := &event.ProducerRegistered{Producer: "solar-1"}
	reg.Seq = 5
	d.dispatch(reg)
}

func TestFanOutToMultipleSinks(t *testing.T) {
	var a, b int
	d := NewDispatcher(1, 1,
		SinkFunc(func(ev event.Event) { a++ }),
		SinkFunc(func(ev event.Event) { b++ }),
	)

	reg := &event.ProducerRegistered{}
	reg.Seq = 1
	d.dispatch(reg)

	if a != 1 || b != 1 {
		t.Errorf("sink deliveries = (%d, %d), want (1, 1)", a, b)
	}
}
