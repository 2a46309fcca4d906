package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	toastInfo  = "info"
	toastError = "error"
)

type Toast struct {
	ID              string    `json:"id"`
	Message         string    `json:"message"`
	Kind            string    `json:"kind"`
	DurationSeconds int       `json:"durationSeconds"`
	CreatedAt       time.Time `json:"createdAt"`
}

type toastStore struct {
	mu       sync.Mutex
	byClient map[string][]Toast
}

func newToastStore() *toastStore {
	return &toastStore{byClient: make(map[string][]Toast)}
}

func (s *toastStore) Add(key string, toast Toast) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byClient[key] = append(s.byClient[key], toast)
}

// List returns the toasts of key that have not expired yet.
func (s *toastStore) List(key string) []Toast {
	if key == "" {
		return nil
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	toasts := s.byClient[key]
	if len(toasts) == 0 {
		return nil
	}
	active := toasts[:0]
	for _, toast := range toasts {
		if toast.DurationSeconds > 0 {
			exp := toast.CreatedAt.Add(time.Duration(toast.DurationSeconds) * time.Second)
			if now.After(exp) {
				continue
			}
		}
		active = append(active, toast)
	}
	if len(active) == 0 {
		delete(s.byClient, key)
		return nil
	}
	out := make([]Toast, len(active))
	copy(out, active)
	s.byClient[key] = active
	return out
}

func (s *toastStore) Remove(key, id string) {
	if key == "" || id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	toasts := s.byClient[key]
	next := toasts[:0]
	for _, toast := range toasts {
		if toast.ID != id {
			next = append(next, toast)
		}
	}
	if len(next) == 0 {
		delete(s.byClient, key)
		return
	}
	s.byClient[key] = next
}

func newToast(kind, message string) Toast {
	duration := 4
	if kind == toastError {
		duration = 8
	}
	return Toast{
		ID:              uuid.NewString(),
		Message:         message,
		Kind:            kind,
		DurationSeconds: duration,
		CreatedAt:       time.Now(),
	}
}

// addToast queues a toast for the requesting client and pushes it to its
// open event streams.
func (s *Server) addToast(r *http.Request, kind, message string) Toast {
	toast := newToast(kind, message)
	key := clientKey(r)
	s.toasts.Add(key, toast)
	s.events.broadcast(key, "toast", eventPayload(toast))
	return toast
}
