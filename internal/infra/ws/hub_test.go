package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"energy_go/internal/event"

	"github.com/gorilla/websocket"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Registration is asynchronous to the dial returning.
	deadline := time.Now().Add(time.Second)
	for hub.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.SubscriberCount() != 1 {
		t.Fatalf("subscriber count = %d, want 1", hub.SubscriberCount())
	}

	ev := &event.EnergyPurchased{
		TransactionID: 7,
		ListingID:     3,
		Buyer:         "house-7",
		Producer:      "solar-1",
		EnergyAmount:  "40000000000000000000",
		TotalPrice:    "400",
	}
	ev.Seq = 12
	ev.Ts = 1700000000
	hub.Deliver(ev)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var env struct {
		Seq   uint64          `json:"seq"`
		Type  string          `json:"type"`
		Event json.RawMessage `json:"event"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if env.Seq != 12 || env.Type != "EnergyPurchased" {
		t.Errorf("envelope = %+v, want seq 12 type EnergyPurchased", env)
	}

	var body event.EnergyPurchased
	if err := json.Unmarshal(env.Event, &body); err != nil {
		t.Fatalf("unmarshal body failed: %v", err)
	}
	if body.TransactionID != 7 || body.TotalPrice != "400" {
		t.Errorf("body = %+v", body)
	}
}

func TestCloseDisconnectsSubscribers(t *testing.T) {
	hub := NewHub()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hub.Close()
	if got := hub.SubscriberCount(); got != 0 {
		t.Errorf("subscriber count after Close = %d, want 0", got)
	}
}
