// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc, <-chan error) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub, cancel, done
}

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewHandler(hub, nil))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for hub.GetClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.GetClientCount(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	t.Parallel()

	hub, _, _ := startHub(t)
	a := dial(t, hub)
	b := dial(t, hub)
	waitForClients(t, hub, 2)

	hub.BroadcastJSON("page_invalidated", map[string]string{"path": "/product/polo-shirt"})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		if msg.Type != "page_invalidated" {
			t.Errorf("type = %q", msg.Type)
		}
		data, ok := msg.Data.(map[string]any)
		if !ok || data["path"] != "/product/polo-shirt" {
			t.Errorf("data = %#v", msg.Data)
		}
	}
}

func TestHub_PingPong(t *testing.T) {
	t.Parallel()

	hub, _, _ := startHub(t)
	conn := dial(t, hub)
	waitForClients(t, hub, 1)

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != MessageTypePong {
		t.Errorf("type = %q, want pong", msg.Type)
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	t.Parallel()

	hub, _, _ := startHub(t)
	conn := dial(t, hub)
	waitForClients(t, hub, 1)

	_ = conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	t.Parallel()

	hub, cancel, done := startHub(t)
	conn := dial(t, hub)
	waitForClients(t, hub, 1)

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("hub did not stop")
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
		t.Errorf("expected close frame, got %v", err)
	}
	if hub.Register(NewClient(hub, nil)) {
		t.Error("Register succeeded after shutdown")
	}
	// Must not block.
	hub.Unregister(NewClient(hub, nil))
}

func TestHub_BroadcastDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	hub := NewHub() // not running
	for range cap(hub.broadcast) + 10 {
		hub.BroadcastJSON("x", nil)
	}
	if len(hub.broadcast) != cap(hub.broadcast) {
		t.Errorf("queued = %d", len(hub.broadcast))
	}
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin", nil, "", true},
		{"same host", nil, "http://shop.example", true},
		{"foreign", nil, "http://evil.example", false},
		{"allowed list", []string{"http://cdn.example"}, "http://cdn.example", true},
		{"wildcard", []string{"*"}, "http://evil.example", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "http://shop.example/api/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := originChecker(tt.allowed)(r); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
