// Package session holds the authenticated identity of one storefront user and
// notifies subscribers when it changes.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
)

// Listener is called with the new identity after every change. ok is false
// when the session was cleared.
type Listener func(identity domain.Identity, ok bool)

// Session is the explicit replacement for an ambient login context. It is
// safe for concurrent use. Listeners run synchronously on the goroutine that
// changed the session, outside the session lock.
type Session struct {
	id string

	mu        sync.RWMutex
	identity  domain.Identity
	signedIn  bool
	nextID    int
	listeners map[int]Listener
}

// New creates an empty session with a fresh id.
func New() *Session {
	return &Session{
		id:        uuid.New().String(),
		listeners: make(map[int]Listener),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Current returns the signed-in identity. ok is false when nobody is signed in.
func (s *Session) Current() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.signedIn
}

// SetIdentity signs identity in. Listeners are only notified when the
// identity actually changed.
func (s *Session) SetIdentity(identity domain.Identity) {
	s.mu.Lock()
	if s.signedIn && s.identity == identity {
		s.mu.Unlock()
		return
	}
	s.identity = identity
	s.signedIn = true
	listeners := s.snapshot()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(identity, true)
	}
}

// Clear signs the current identity out.
func (s *Session) Clear() {
	s.mu.Lock()
	if !s.signedIn {
		s.mu.Unlock()
		return
	}
	s.identity = domain.Identity{}
	s.signedIn = false
	listeners := s.snapshot()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(domain.Identity{}, false)
	}
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// snapshot copies the listeners in registration order. Callers hold mu.
func (s *Session) snapshot() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
