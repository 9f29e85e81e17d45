package http

import (
	"bufio"
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/core"
	applog "timesheet/internal/log"
)

func TestEventHub(t *testing.T) {
	hub := newEventHub(applog.New(applog.DefaultConfig()))

	id1, ch1 := hub.subscribe()
	_, ch2 := hub.subscribe()

	hub.broadcast()
	select {
	case <-ch1:
	default:
		t.Fatal("subscriber 1 missed the broadcast")
	}
	select {
	case <-ch2:
	default:
		t.Fatal("subscriber 2 missed the broadcast")
	}

	// A second broadcast onto an undrained channel must not block.
	hub.broadcast()
	hub.broadcast()

	hub.unsubscribe(id1)
	hub.broadcast()

	hub.close()
	_, open := <-ch2
	assert.False(t, open, "close terminates remaining subscriber channels")
}

func TestEventStreamDeliversReload(t *testing.T) {
	srv, st := newTestServer(t)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := stdhttp.NewRequestWithContext(ctx, "GET", ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := stdhttp.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, ": connected"))

	// Give the stream a moment to register with the hub before saving.
	time.Sleep(50 * time.Millisecond)
	_, err = st.CreateEntry(core.Entry{ClientID: "safran", Date: "2025-03-14", Hours: 1, Activity: "Customer Support"})
	require.NoError(t, err)

	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err, "stream ended before the reload event arrived")
		if strings.HasPrefix(line, "event: reload") {
			return
		}
	}
}
