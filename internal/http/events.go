package http

import (
	"fmt"
	stdhttp "net/http"
	"sync"
	"time"

	applog "timesheet/internal/log"
)

// eventHub fans document-change ticks out to every open window over
// server-sent events. The quick-add popup and the primary screen run
// against the same in-process store; this is the reload signal that keeps
// whichever window didn't make the edit from going stale.
type eventHub struct {
	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int
	closed bool
	log    *applog.Logger
}

func newEventHub(logger *applog.Logger) *eventHub {
	return &eventHub{
		subs: make(map[int]chan struct{}),
		log:  logger.WithComponent(applog.ComponentEvents),
	}
}

func (h *eventHub) subscribe() (int, <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan struct{}, 1)
	h.subs[id] = ch
	return id, ch
}

func (h *eventHub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

func (h *eventHub) broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default: // window already has a pending reload
		}
	}
}

func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
}

// handleEvents streams reload events to one window until it disconnects.
// Deliberately outside withCommon: the stream outlives any per-request
// logging window.
func (s *Server) handleEvents(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	flusher, ok := w.(stdhttp.Flusher)
	if !ok {
		stdhttp.Error(w, "streaming unsupported", stdhttp.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(stdhttp.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	id, ch := s.hub.subscribe()
	defer s.hub.unsubscribe(id)
	s.hub.log.Debug("window connected", "subscriber", id)

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, open := <-ch:
			if !open {
				return
			}
			_, _ = fmt.Fprint(w, "event: reload\ndata: {}\n\n")
			flusher.Flush()
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
