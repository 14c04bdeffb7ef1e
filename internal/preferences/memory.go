package preferences

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the selection in process. Slow watchers only ever see
// the latest value.
type MemoryStore struct {
	mu       sync.Mutex
	current  Selection
	watchers map[int]chan Selection
	nextID   int
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWith(Empty())
}

// NewMemoryStoreWith seeds the store, e.g. to simulate a restart.
func NewMemoryStoreWith(sel Selection) *MemoryStore {
	return &MemoryStore{
		current:  sel,
		watchers: make(map[int]chan Selection),
	}
}

func (s *MemoryStore) Save(_ context.Context, sel Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = sel
	for _, ch := range s.watchers {
		offer(ch, sel)
	}
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

func (s *MemoryStore) Watch(ctx context.Context) (<-chan Selection, error) {
	ch := make(chan Selection, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	ch <- s.current
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch, nil
}

// offer replaces any unread value. Callers hold s.mu, so nothing else
// sends on ch concurrently.
func offer(ch chan Selection, sel Selection) {
	select {
	case <-ch:
	default:
	}
	ch <- sel
}
