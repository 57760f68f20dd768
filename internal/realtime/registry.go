package realtime

import (
	"sync"

	"mingle/internal/metrics"
)

// Registry maps authenticated users to their live sessions. It is created
// once at startup and injected into everything that fans events out; there is
// no package-level instance.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]map[*Session]struct{}),
	}
}

// Register adds the session. Reports whether it is the user's first live
// session (the offline -> online edge).
func (r *Registry) Register(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.sessions[s.UserID]
	if set == nil {
		set = make(map[*Session]struct{})
		r.sessions[s.UserID] = set
	}
	first := len(set) == 0
	set[s] = struct{}{}
	metrics.SessionsActive.Inc()
	return first
}

// Unregister removes the session and closes its connection. Reports whether
// it was the user's last live session (the online -> offline edge).
func (r *Registry) Unregister(s *Session) bool {
	r.mu.Lock()
	set, ok := r.sessions[s.UserID]
	var last bool
	if ok {
		if _, present := set[s]; present {
			delete(set, s)
			metrics.SessionsActive.Dec()
		}
		if len(set) == 0 {
			delete(r.sessions, s.UserID)
			last = ok
		}
	}
	r.mu.Unlock()
	_ = s.Close()
	return last
}

// SessionsFor returns a snapshot of the user's live sessions; empty when the
// user is offline.
func (r *Registry) SessionsFor(userID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.sessions[userID]
	out := make([]*Session, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

// BroadcastTo sends the event to every live session of userID. Delivery is
// fire-and-forget: an offline user is a no-op and per-session write errors
// are dropped, the dead connection gets cleaned up by its own read loop.
func (r *Registry) BroadcastTo(userID string, event interface{}) {
	for _, s := range r.SessionsFor(userID) {
		_ = s.Send(event)
	}
}
