package statusfeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"papertrader/internal/model"
)

// fakeClient registers a bare client so Broadcast output can be inspected
// without a real connection.
func fakeClient(h *Hub) *client {
	c := &client{hub: h, send: make(chan []byte, 16)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c
}

func TestBroadcast_Envelope(t *testing.T) {
	h := NewHub(slog.Default())
	c := fakeClient(h)

	h.Broadcast("cycle_status", []byte(`{"symbol":"OBTUSDT"}`))

	var raw []byte
	select {
	case raw = <-c.send:
	default:
		t.Fatal("no message broadcast")
	}

	var envelope struct {
		Kind string          `json:"kind"`
		Data json.RawMessage `json:"data"`
		TS   string          `json:"ts"`
		Seq  int64           `json:"seq"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("envelope not valid JSON: %v\n%s", err, raw)
	}
	if envelope.Kind != "cycle_status" {
		t.Errorf("kind = %q, want cycle_status", envelope.Kind)
	}
	if envelope.Seq != 1 {
		t.Errorf("seq = %d, want 1", envelope.Seq)
	}
	if !strings.Contains(string(envelope.Data), "OBTUSDT") {
		t.Errorf("data = %s, want embedded payload", envelope.Data)
	}
	if _, err := time.Parse(time.RFC3339Nano, envelope.TS); err != nil {
		t.Errorf("ts %q not RFC3339Nano: %v", envelope.TS, err)
	}
}

func TestBroadcast_SequenceIncrements(t *testing.T) {
	h := NewHub(slog.Default())
	c := fakeClient(h)

	for i := 0; i < 3; i++ {
		h.Broadcast("trade", []byte(`{}`))
	}

	for want := int64(1); want <= 3; want++ {
		var envelope struct {
			Seq int64 `json:"seq"`
		}
		if err := json.Unmarshal(<-c.send, &envelope); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if envelope.Seq != want {
			t.Errorf("seq = %d, want %d", envelope.Seq, want)
		}
	}
}

func TestBroadcast_SlowClientDropped(t *testing.T) {
	h := NewHub(slog.Default())
	c := &client{hub: h, send: make(chan []byte)} // unbuffered, nobody reading
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.Broadcast("trade", []byte(`{}`))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on slow client")
	}
}

func TestPublishTrade_OverWebSocket(t *testing.T) {
	h := NewHub(slog.Default())
	srv := httptest.NewServer(h)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the hub to register the client.
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	trade := model.Trade{
		Symbol:  "OBTUSDT",
		Side:    model.SideBuy,
		Price:   97.0,
		Qty:     500.0 / 97.0,
		Amount:  500,
		At:      time.Date(2026, 2, 25, 10, 17, 0, 0, time.UTC),
	}
	h.PublishTrade(context.Background(), trade)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var envelope struct {
		Kind string `json:"kind"`
		Data struct {
			Symbol string  `json:"symbol"`
			Side   string  `json:"side"`
			Price  float64 `json:"price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, raw)
	}
	if envelope.Kind != "trade" {
		t.Errorf("kind = %q, want trade", envelope.Kind)
	}
	if envelope.Data.Symbol != "OBTUSDT" || envelope.Data.Side != "BUY" {
		t.Errorf("payload = %+v", envelope.Data)
	}
	if envelope.Data.Price != 97.0 {
		t.Errorf("price = %v, want 97", envelope.Data.Price)
	}
}
