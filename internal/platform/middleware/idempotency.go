package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// IdempotencyStore remembers request keys for a bounded window so retried
// POSTs are not applied twice.
type IdempotencyStore interface {
	// PutIfAbsent records key and reports whether it was newly stored.
	PutIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Idempotency rejects duplicate submissions that carry the same
// Idempotency-Key header. Requests without the header pass through.
func Idempotency(store IdempotencyStore, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if store == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			fresh, err := store.PutIfAbsent(r.Context(), r.Method+" "+r.URL.Path+" "+key, ttl)
			if err != nil {
				// Degrade open: a broken cache must not block donations.
				next.ServeHTTP(w, r)
				return
			}
			if !fresh {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "duplicate_request",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MemoryIdempotencyStore is the fallback used when Redis is not configured.
type MemoryIdempotencyStore struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	clock func() time.Time
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{seen: make(map[string]time.Time), clock: time.Now}
}

func (s *MemoryIdempotencyStore) PutIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	if expiry, ok := s.seen[key]; ok && now.Before(expiry) {
		return false, nil
	}
	s.seen[key] = now.Add(ttl)
	return true, nil
}
