package memory

import (
	"time"

	"project-echo-be/pkg/session"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps chat sessions in process memory. A session expires
// after ttl without access; reads slide the expiry forward.
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	cleanup := ttl / 6
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &SessionRepository{
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

func (r *SessionRepository) Save(s *session.State) {
	r.cache.Set(s.ID, s, r.ttl)
}

func (r *SessionRepository) Get(sessionID string) (*session.State, bool) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	s := x.(*session.State)
	r.cache.Set(sessionID, s, r.ttl)
	return s, true
}

func (r *SessionRepository) Delete(sessionID string) bool {
	_, found := r.cache.Get(sessionID)
	r.cache.Delete(sessionID)
	return found
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
