// Storefront - Session Cart and Route Gating Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package audit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLogger_RecordsAndFlushesOnClose(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(100)
	l := NewLogger(store, nil)

	actor := Actor{ID: "u1", Email: "user@example.com", Role: "user"}
	src := Source{IPAddress: "10.0.0.1"}
	l.LogSignIn(context.Background(), actor, src, true)
	l.LogSignIn(context.Background(), Actor{Email: "user@example.com"}, src, false)
	l.LogSignOut(context.Background(), actor, src)

	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 3 {
		t.Fatalf("stored %d events", store.Len())
	}

	events, _ := l.Query(context.Background(), QueryFilter{})
	if events[0].Type != EventTypeSignOut {
		t.Errorf("newest = %s", events[0].Type)
	}
	for _, e := range events {
		if e.ID == "" || e.Timestamp.IsZero() {
			t.Errorf("event not stamped: %+v", e)
		}
	}

	failed, _ := l.Query(context.Background(), QueryFilter{Outcome: OutcomeFailure})
	if len(failed) != 1 || failed[0].Severity != SeverityWarning {
		t.Errorf("failures = %+v", failed)
	}
}

func TestLogger_CloseIdempotentAndDropsLateEvents(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	l := NewLogger(store, &Config{BufferSize: 4})
	_ = l.Close()
	_ = l.Close()

	l.LogSignOut(context.Background(), Actor{ID: "u1"}, Source{})
	if store.Len() != 0 {
		t.Errorf("late event stored")
	}
}

func TestLogger_AdminActionMetadata(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	l := NewLogger(store, nil)
	l.LogAdminAction(context.Background(), EventTypeStockUpdated, Actor{ID: "a1", Role: "admin"}, Source{},
		&Target{ID: "p1", Type: "product", Name: "polo"}, "Stock updated", map[string]int{"stock": 0})
	_ = l.Close()

	events, _ := store.Query(context.Background(), QueryFilter{Types: []EventType{EventTypeStockUpdated}})
	if len(events) != 1 {
		t.Fatalf("events = %d", len(events))
	}
	if got := string(events[0].Metadata); got != `{"stock":0}` {
		t.Errorf("metadata = %s", got)
	}
	if events[0].Target == nil || events[0].Target.Name != "polo" {
		t.Errorf("target = %+v", events[0].Target)
	}
}

func TestLogger_RunAppliesRetention(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	_ = store.Save(context.Background(), &Event{ID: "old", Timestamp: time.Now().Add(-2 * time.Hour)})
	_ = store.Save(context.Background(), &Event{ID: "new", Timestamp: time.Now()})

	l := NewLogger(store, &Config{Retention: time.Hour})
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := l.Run(ctx, 10*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v", err)
	}

	events, _ := store.Query(context.Background(), QueryFilter{})
	if len(events) != 1 || events[0].ID != "new" {
		t.Errorf("events = %+v", events)
	}
}

func TestMemoryStore_Filters(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	now := time.Now()
	for i, e := range []Event{
		{ID: "1", Type: EventTypeSignIn, Actor: Actor{ID: "a"}, Outcome: OutcomeSuccess, Timestamp: now.Add(-3 * time.Minute)},
		{ID: "2", Type: EventTypeSignIn, Actor: Actor{ID: "b"}, Outcome: OutcomeFailure, Timestamp: now.Add(-2 * time.Minute)},
		{ID: "3", Type: EventTypeSignUp, Actor: Actor{ID: "a"}, Outcome: OutcomeSuccess, Timestamp: now.Add(-time.Minute)},
	} {
		if err := store.Save(context.Background(), &e); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{"all newest first", QueryFilter{}, []string{"3", "2", "1"}},
		{"by type", QueryFilter{Types: []EventType{EventTypeSignIn}}, []string{"2", "1"}},
		{"by actor", QueryFilter{ActorID: "a"}, []string{"3", "1"}},
		{"by outcome", QueryFilter{Outcome: OutcomeFailure}, []string{"2"}},
		{"since", QueryFilter{Since: now.Add(-90 * time.Second)}, []string{"3"}},
		{"limit", QueryFilter{Limit: 2}, []string{"3", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := store.Query(context.Background(), tt.filter)
			ids := make([]string, len(got))
			for i := range got {
				ids[i] = got[i].ID
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("got %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", ids, tt.want)
				}
			}
		})
	}
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	for i := range 11 {
		_ = store.Save(context.Background(), &Event{ID: string(rune('a' + i))})
	}
	if store.Len() != 10 {
		t.Errorf("len = %d", store.Len())
	}
	events, _ := store.Query(context.Background(), QueryFilter{})
	if events[len(events)-1].ID != "b" {
		t.Errorf("oldest = %s", events[len(events)-1].ID)
	}
}

func TestSourceFromRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7"
	r.Header.Set("User-Agent", "test-agent")
	if got := SourceFromRequest(r); got.IPAddress != "203.0.113.7" || got.UserAgent != "test-agent" {
		t.Errorf("source = %+v", got)
	}
}
