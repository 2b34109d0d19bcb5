package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvent(t *testing.T, r *bufio.Reader) Event {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: "); ok {
			var ev Event
			require.NoError(t, json.Unmarshal([]byte(data), &ev))
			return ev
		}
	}
}

func TestBroadcaster_StreamsEvents(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(http.HandlerFunc(b.HandleSSE))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	hello := readEvent(t, r)
	assert.Equal(t, EventConnected, hello.Type)
	assert.NotEmpty(t, hello.ClientID)
	assert.Equal(t, 1, b.ClientCount())

	score := 97
	b.Broadcast(Event{Type: EventScore, Kind: "dna", Score: &score, Label: "Divine Frequency"})

	ev := readEvent(t, r)
	assert.Equal(t, EventScore, ev.Type)
	assert.Equal(t, "dna", ev.Kind)
	require.NotNil(t, ev.Score)
	assert.Equal(t, 97, *ev.Score)
	assert.NotZero(t, ev.Timestamp)
}

func TestBroadcaster_RemovesClientOnDisconnect(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(http.HandlerFunc(b.HandleSSE))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	readEvent(t, bufio.NewReader(resp.Body))
	require.Equal(t, 1, b.ClientCount())

	cancel()
	resp.Body.Close()

	assert.Eventually(t, func() bool { return b.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcaster_NoClients(t *testing.T) {
	b := NewBroadcaster()
	assert.NotPanics(t, func() { b.Broadcast(Event{Type: EventTablesReloaded}) })
	assert.Zero(t, b.ClientCount())
}

func TestBroadcaster_RemoveClientTwice(t *testing.T) {
	b := NewBroadcaster()
	client, err := b.AddClient(httptest.NewRecorder())
	require.NoError(t, err)

	b.RemoveClient(client)
	assert.NotPanics(t, func() { b.RemoveClient(client) })
	assert.Zero(t, b.ClientCount())
}
