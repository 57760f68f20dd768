package realtime

import (
	"sync"
	"time"
)

type typingKey struct {
	chatID string
	userID string
}

// TypingTracker holds per-chat typing timestamps. Entries are ephemeral: a
// stop_typing event, a disconnect, or the TTL sweep removes them, so an
// abruptly dropped client cannot leave a stuck indicator.
type TypingTracker struct {
	mu      sync.Mutex
	entries map[typingKey]time.Time
	ttl     time.Duration

	// onExpire is called outside the lock for every entry the sweep drops.
	onExpire func(chatID, userID string)
	done     chan struct{}
	stopOnce sync.Once
}

func NewTypingTracker(ttl time.Duration, onExpire func(chatID, userID string)) *TypingTracker {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &TypingTracker{
		entries:  make(map[typingKey]time.Time),
		ttl:      ttl,
		onExpire: onExpire,
		done:     make(chan struct{}),
	}
}

// Start runs the expiry sweep until Stop is called.
func (t *TypingTracker) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.C:
				t.sweep(time.Now())
			}
		}
	}()
}

func (t *TypingTracker) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
}

// Touch records that userID is typing in chatID.
func (t *TypingTracker) Touch(chatID, userID string) {
	t.mu.Lock()
	t.entries[typingKey{chatID, userID}] = time.Now()
	t.mu.Unlock()
}

// Clear removes a single typing entry. Reports whether it existed.
func (t *TypingTracker) Clear(chatID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := typingKey{chatID, userID}
	_, ok := t.entries[k]
	delete(t.entries, k)
	return ok
}

// ClearUser drops every typing entry for userID and returns the chat IDs that
// were cleared, so the caller can emit stop-typing events.
func (t *TypingTracker) ClearUser(userID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var chatIDs []string
	for k := range t.entries {
		if k.userID == userID {
			chatIDs = append(chatIDs, k.chatID)
			delete(t.entries, k)
		}
	}
	return chatIDs
}

// Active reports whether userID has a non-expired typing entry in chatID.
func (t *TypingTracker) Active(chatID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	at, ok := t.entries[typingKey{chatID, userID}]
	return ok && time.Since(at) < t.ttl
}

func (t *TypingTracker) sweep(now time.Time) {
	t.mu.Lock()
	var expired []typingKey
	for k, at := range t.entries {
		if now.Sub(at) >= t.ttl {
			expired = append(expired, k)
			delete(t.entries, k)
		}
	}
	t.mu.Unlock()

	if t.onExpire == nil {
		return
	}
	for _, k := range expired {
		t.onExpire(k.chatID, k.userID)
	}
}
