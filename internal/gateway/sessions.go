package gateway

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/searchloop/searchloop/internal/memory"
)

// session binds a Runner (with its own conversation memory) to an ID.
// The mutex serialises queries within one session; the orchestration
// loop assumes exclusive memory ownership for the duration of a request.
type session struct {
	id        string
	runner    Runner
	createdAt time.Time

	mu sync.Mutex
}

// sessionStore tracks live sessions by ID.
type sessionStore struct {
	factory RunnerFactory

	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore(factory RunnerFactory) *sessionStore {
	return &sessionStore{
		factory:  factory,
		sessions: make(map[string]*session),
	}
}

// getOrCreate returns the session for id, creating one when id is empty
// or unknown. Unknown non-empty IDs are adopted as-is so clients can
// supply their own identifiers. A non-nil mem seeds the new session's
// conversation; it is ignored when the session already exists.
func (s *sessionStore) getOrCreate(id string, mem *memory.Memory) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			return sess
		}
	} else {
		id = uuid.NewString()
	}

	sess := &session{
		id:        id,
		runner:    s.factory(mem),
		createdAt: time.Now(),
	}
	s.sessions[id] = sess
	return sess
}

func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *sessionStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *sessionStore) list() []*session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].createdAt.Before(out[j].createdAt)
	})
	return out
}

func (s *sessionStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
