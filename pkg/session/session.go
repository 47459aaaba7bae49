// Package session keeps dashboards alive between requests.
//
// A [Store] holds one [Session] per browser or API client. Each session owns
// a [dashboard.Dashboard] and serializes access to it with its own mutex, so
// concurrent requests against different sessions never contend.
//
//	store := session.NewStore(session.Options{MaxSessions: 100, TTL: time.Hour})
//	sess, err := store.Create(dashboard.Options{Backend: b})
//	err = sess.Do(func(d *dashboard.Dashboard) error {
//	    d.Click("US", tier.Countries)
//	    return nil
//	})
package session

import (
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/geoset/pkg/dashboard"
	"github.com/matzehuels/geoset/pkg/errors"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist or has expired.
	ErrNotFound = stderrors.New("not found")
)

// Default limits.
const (
	DefaultMaxSessions = 100
	DefaultTTL         = 2 * time.Hour
)

// EvictReason says why a session left the store.
type EvictReason string

const (
	EvictExpired  EvictReason = "expired"
	EvictCapacity EvictReason = "capacity"
	EvictDeleted  EvictReason = "deleted"
)

// Session is one dashboard plus bookkeeping.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu         sync.Mutex
	dash       *dashboard.Dashboard
	lastAccess time.Time
}

// Do runs fn with exclusive access to the session's dashboard.
func (s *Session) Do(fn func(d *dashboard.Dashboard) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.dash)
}

// Options configures a Store.
type Options struct {
	MaxSessions int
	TTL         time.Duration
	// OnChange is called with the session count after every change.
	OnChange func(active int)
	// OnEvict is called once for each session that leaves the store.
	OnEvict func(id string, reason EvictReason)
}

// Store is an in-memory session store with idle expiry and a capacity
// limit. When full, the least recently used session is evicted.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     Options
	now      func() time.Time
}

// NewStore creates an empty store. Zero limits take the defaults.
func NewStore(opts Options) *Store {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*Session),
		opts:     opts,
		now:      time.Now,
	}
}

// Create starts a session around a new dashboard.
func (s *Store) Create(opts dashboard.Options) (*Session, error) {
	d := dashboard.New(opts)

	s.mu.Lock()
	var evicted []string
	if len(s.sessions) >= s.opts.MaxSessions {
		if id := s.oldestLocked(); id != "" {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	now := s.now()
	sess := &Session{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		dash:       d,
		lastAccess: now,
	}
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	for _, id := range evicted {
		s.evicted(id, EvictCapacity)
	}
	s.changed(n)
	return sess, nil
}

// Get returns the session and refreshes its idle timer. Expired sessions
// are removed and reported as SESSION_NOT_FOUND.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok && s.expiredLocked(sess) {
		delete(s.sessions, id)
		n := len(s.sessions)
		s.mu.Unlock()
		s.evicted(id, EvictExpired)
		s.changed(n)
		return nil, notFound(id)
	}
	if !ok {
		s.mu.Unlock()
		return nil, notFound(id)
	}
	sess.lastAccess = s.now()
	s.mu.Unlock()
	return sess, nil
}

// Delete removes a session. Deleting an unknown id is an error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	if _, ok := s.sessions[id]; !ok {
		s.mu.Unlock()
		return notFound(id)
	}
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	s.evicted(id, EvictDeleted)
	s.changed(n)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup removes sessions idle for longer than the TTL and returns how
// many were removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	var expired []string
	for id, sess := range s.sessions {
		if s.expiredLocked(sess) {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, id := range expired {
		s.evicted(id, EvictExpired)
	}
	if len(expired) > 0 {
		s.changed(n)
	}
	return len(expired)
}

// StartCleanup runs Cleanup every interval until the returned stop
// function is called.
func (s *Store) StartCleanup(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (s *Store) expiredLocked(sess *Session) bool {
	return s.now().Sub(sess.lastAccess) > s.opts.TTL
}

func (s *Store) oldestLocked() string {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastAccess.Before(oldest) {
			oldestID = id
			oldest = sess.lastAccess
		}
	}
	return oldestID
}

func (s *Store) evicted(id string, reason EvictReason) {
	if s.opts.OnEvict != nil {
		s.opts.OnEvict(id, reason)
	}
}

func (s *Store) changed(n int) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(n)
	}
}

func notFound(id string) error {
	return errors.Wrap(errors.ErrCodeSessionNotFound, ErrNotFound, "session %s not found", id)
}
