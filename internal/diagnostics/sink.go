// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

/*
Package diagnostics keeps a bounded in-memory trail of structured client
events (auth failures, uploads, replication) for audit and support export.

The sink is an explicitly constructed value injected into whoever records
or reads events - there is no package-level state - so tests can create and
reset sinks freely.
*/
package diagnostics

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asharvi/admin-core/internal/platform/headers"
)

const (
	// Capacity bounds the ring; appending past it evicts the oldest event.
	Capacity = 200
	// maxStringLength truncates oversized payload strings so a single event
	// can never balloon the ring's memory or leak large content.
	maxStringLength = 200
)

// Event is one recorded diagnostics entry.
type Event struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
	At      string         `json:"at"`
	Version string         `json:"version"`
}

// Listener receives a snapshot of all events after every append.
type Listener func(events []Event)

// Sink is a fixed-capacity ring of events with subscriber fan-out.
// All methods are safe for concurrent use.
type Sink struct {
	mu        sync.Mutex
	events    []Event
	listeners map[int]Listener
	nextID    int
}

// NewSink constructs an empty sink.
func NewSink() *Sink {
	return &Sink{listeners: map[int]Listener{}}
}

// Log appends an event, evicting the oldest entry beyond capacity, and
// notifies every subscriber with a fresh snapshot.
func (s *Sink) Log(eventType string, payload map[string]any) {
	event := Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		Payload: sanitize(payload),
		At:      time.Now().UTC().Format(time.RFC3339),
		Version: headers.ClientVersion,
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	if len(s.events) > Capacity {
		s.events = s.events[len(s.events)-Capacity:]
	}
	snapshot := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// Snapshot returns a defensive copy of the current history, oldest first.
func (s *Sink) Snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Sink) snapshotLocked() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Reset clears the history and notifies subscribers.
func (s *Sink) Reset() {
	s.mu.Lock()
	s.events = nil
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(nil)
	}
}

// Subscribe registers a listener, immediately feeds it the current
// snapshot, and returns an unsubscribe function.
func (s *Sink) Subscribe(listener Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	listener(snapshot)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// ExportJSON serializes the current snapshot for support bundles.
func (s *Sink) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s.Snapshot(), "", "  ")
}

// sanitize truncates every string value (recursively) so stored payloads
// stay bounded. Non-map, non-slice values pass through unchanged.
func sanitize(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[key] = sanitizeValue(value)
	}
	return out
}

func sanitizeValue(value any) any {
	switch v := value.(type) {
	case string:
		return truncate(v)
	case map[string]any:
		return sanitize(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = sanitizeValue(item)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = truncate(item)
		}
		return out
	default:
		return value
	}
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxStringLength {
		return s
	}
	return string(runes[:maxStringLength]) + "…"
}
