package web

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

type sseMessage struct {
	event string
	data  []byte
}

type sseHub struct {
	mu      sync.Mutex
	clients map[string]map[chan sseMessage]struct{}
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[string]map[chan sseMessage]struct{})}
}

func (h *sseHub) add(key string) chan sseMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan sseMessage, 8)
	if _, ok := h.clients[key]; !ok {
		h.clients[key] = make(map[chan sseMessage]struct{})
	}
	h.clients[key][ch] = struct{}{}
	return ch
}

func (h *sseHub) remove(key string, ch chan sseMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if chans, ok := h.clients[key]; ok {
		delete(chans, ch)
		if len(chans) == 0 {
			delete(h.clients, key)
		}
	}
	close(ch)
}

func (h *sseHub) broadcast(key, event string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	send(h.clients[key], sseMessage{event: event, data: data})
}

func (h *sseHub) broadcastAll(event string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, chans := range h.clients {
		send(chans, sseMessage{event: event, data: data})
	}
}

// send never blocks; a slow client misses messages.
func send(chans map[chan sseMessage]struct{}, msg sseMessage) {
	for ch := range chans {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	key := clientKey(r)
	if key == "" {
		key = "client:anonymous"
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch := s.events.add(key)
	defer s.events.remove(key, ch)

	fmt.Fprint(w, "event: ready\ndata: ok\n\n")
	flusher.Flush()

	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.event, msg.data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
