package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modecontrol/mced/pkg/log"
)

func writeTestLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.mlog")

	logger, err := log.NewFileLogger(path)
	require.NoError(t, err)

	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	events := []log.Event{
		{
			Timestamp: base,
			Client:    ":1.42",
			Kind:      log.KindRequest,
			Domain:    log.DomainKeepalive,
			Request:   &log.RequestEvent{Member: "req_cpu_keepalive_start", Args: []string{"sync"}, Accepted: true},
		},
		{
			Timestamp: base.Add(time.Second),
			Kind:      log.KindSignal,
			Domain:    log.DomainRadio,
			Signal:    &log.SignalEvent{Member: "radio_states_ind", Value: "5"},
		},
		{
			Timestamp: base.Add(2 * time.Second),
			Client:    ":1.42",
			Kind:      log.KindRequest,
			Domain:    log.DomainCallState,
			Request:   &log.RequestEvent{Member: "req_call_state_change", Args: []string{"bogus", "normal"}},
		},
		{
			Timestamp: base.Add(3 * time.Second),
			Client:    ":1.42",
			Kind:      log.KindEviction,
			Eviction:  &log.EvictionEvent{Entries: 2},
		},
	}
	for _, ev := range events {
		logger.Log(ev)
	}
	require.NoError(t, logger.Close())
	return path
}

func TestView(t *testing.T) {
	path := writeTestLog(t)

	var buf bytes.Buffer
	require.NoError(t, View([]string{path}, &buf))

	out := buf.String()
	assert.Contains(t, out, "req_cpu_keepalive_start")
	assert.Contains(t, out, "radio_states_ind")
	assert.Contains(t, out, "EVICTION")
	assert.Contains(t, out, "(rejected)")
}

func TestViewFilters(t *testing.T) {
	path := writeTestLog(t)

	var buf bytes.Buffer
	require.NoError(t, View([]string{"-kind", "signal", path}, &buf))
	assert.Contains(t, buf.String(), "radio_states_ind")
	assert.NotContains(t, buf.String(), "req_cpu_keepalive_start")

	buf.Reset()
	require.NoError(t, View([]string{"-domain", "keepalive", path}, &buf))
	assert.Contains(t, buf.String(), "req_cpu_keepalive_start")
	assert.NotContains(t, buf.String(), "radio_states_ind")

	buf.Reset()
	require.NoError(t, View([]string{"-client", ":1.99", path}, &buf))
	assert.Empty(t, strings.TrimSpace(buf.String()))
}

func TestViewRejectsBadFilter(t *testing.T) {
	path := writeTestLog(t)

	var buf bytes.Buffer
	assert.Error(t, View([]string{"-kind", "frame", path}, &buf))
	assert.Error(t, View([]string{"-domain", "zones", path}, &buf))
	assert.Error(t, View([]string{}, &buf))
}

func TestExport(t *testing.T) {
	path := writeTestLog(t)

	var buf bytes.Buffer
	require.NoError(t, Export([]string{path}, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var first jsonEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, ":1.42", first.Client)
	assert.Equal(t, "request", first.Kind)
	assert.Equal(t, "keepalive", first.Domain)
	require.NotNil(t, first.Request)
	assert.True(t, first.Request.Accepted)

	var last jsonEvent
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &last))
	assert.Equal(t, "eviction", last.Kind)
	require.NotNil(t, last.Eviction)
	assert.Equal(t, 2, last.Eviction.Entries)
}

func TestStats(t *testing.T) {
	path := writeTestLog(t)

	var buf bytes.Buffer
	require.NoError(t, Stats([]string{path}, &buf))

	out := buf.String()
	assert.Contains(t, out, "Events:    4")
	assert.Contains(t, out, "Rejected:  1")
	assert.Contains(t, out, "keepalive")
	assert.Contains(t, out, ":1.42")
	assert.Contains(t, out, "(evicted)")
}
