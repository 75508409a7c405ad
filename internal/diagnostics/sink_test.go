// Copyright (c) 2026 Asharvi. All rights reserved.
// Author: admin-platform@asharvi.dev

package diagnostics_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asharvi/admin-core/internal/diagnostics"
)

func TestLogAndSnapshot(t *testing.T) {
	sink := diagnostics.NewSink()
	sink.Log("UPLOAD_START", map[string]any{"type": "thumbnail", "name": "cover.png"})
	sink.Log("UPLOAD_SUCCESS", map[string]any{"type": "thumbnail"})

	events := sink.Snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, "UPLOAD_START", events[0].Type)
	assert.Equal(t, "UPLOAD_SUCCESS", events[1].Type)
	assert.NotEmpty(t, events[0].ID)
	assert.NotEmpty(t, events[0].At)
}

func TestRingEvictsOldest(t *testing.T) {
	sink := diagnostics.NewSink()
	for i := 0; i < diagnostics.Capacity+25; i++ {
		sink.Log("EVENT", map[string]any{"n": i})
	}

	events := sink.Snapshot()
	require.Len(t, events, diagnostics.Capacity)
	assert.Equal(t, 25, events[0].Payload["n"], "oldest entries are evicted first")
}

func TestPayloadSanitization(t *testing.T) {
	sink := diagnostics.NewSink()
	long := strings.Repeat("x", 500)
	sink.Log("API_ERROR", map[string]any{
		"message": long,
		"nested":  map[string]any{"detail": long},
		"status":  500,
	})

	event := sink.Snapshot()[0]
	message := event.Payload["message"].(string)
	assert.Len(t, []rune(message), 201, "200 runes plus ellipsis marker")
	assert.True(t, strings.HasSuffix(message, "…"))

	nested := event.Payload["nested"].(map[string]any)
	assert.True(t, strings.HasSuffix(nested["detail"].(string), "…"))
	assert.Equal(t, 500, event.Payload["status"])
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	sink := diagnostics.NewSink()
	sink.Log("A", nil)

	snapshot := sink.Snapshot()
	snapshot[0].Type = "TAMPERED"

	assert.Equal(t, "A", sink.Snapshot()[0].Type)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	sink := diagnostics.NewSink()
	sink.Log("BEFORE", nil)

	var notifications [][]diagnostics.Event
	unsubscribe := sink.Subscribe(func(events []diagnostics.Event) {
		notifications = append(notifications, events)
	})

	// Subscription immediately delivers the current history.
	require.Len(t, notifications, 1)
	assert.Equal(t, "BEFORE", notifications[0][0].Type)

	sink.Log("AFTER", nil)
	require.Len(t, notifications, 2)
	assert.Len(t, notifications[1], 2)

	unsubscribe()
	sink.Log("IGNORED", nil)
	assert.Len(t, notifications, 2)
}

func TestReset(t *testing.T) {
	sink := diagnostics.NewSink()
	sink.Log("A", nil)
	sink.Reset()
	assert.Empty(t, sink.Snapshot())
}

func TestExportJSON(t *testing.T) {
	sink := diagnostics.NewSink()
	for i := 0; i < 3; i++ {
		sink.Log("EXPORTED", map[string]any{"n": fmt.Sprintf("%d", i)})
	}

	out, err := sink.ExportJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"EXPORTED"`)
}
