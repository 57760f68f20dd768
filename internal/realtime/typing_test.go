package realtime

import (
	"sync"
	"testing"
	"time"
)

func TestTypingTouchAndClear(t *testing.T) {
	tr := NewTypingTracker(time.Minute, nil)

	tr.Touch("c1", "u1")
	if !tr.Active("c1", "u1") {
		t.Error("entry not active after touch")
	}

	if !tr.Clear("c1", "u1") {
		t.Error("clear of existing entry reported false")
	}
	if tr.Active("c1", "u1") {
		t.Error("entry still active after clear")
	}
	if tr.Clear("c1", "u1") {
		t.Error("clear of absent entry reported true")
	}
}

func TestTypingClearUserReturnsChatIDs(t *testing.T) {
	tr := NewTypingTracker(time.Minute, nil)
	tr.Touch("c1", "u1")
	tr.Touch("c2", "u1")
	tr.Touch("c1", "u2")

	cleared := tr.ClearUser("u1")
	if len(cleared) != 2 {
		t.Fatalf("cleared %v, want two chats", cleared)
	}
	if tr.Active("c1", "u1") || tr.Active("c2", "u1") {
		t.Error("u1 entries survived ClearUser")
	}
	if !tr.Active("c1", "u2") {
		t.Error("u2 entry removed by u1's ClearUser")
	}
}

func TestTypingSweepExpiresAndNotifies(t *testing.T) {
	var mu sync.Mutex
	var expired [][2]string
	tr := NewTypingTracker(10*time.Millisecond, func(chatID, userID string) {
		mu.Lock()
		expired = append(expired, [2]string{chatID, userID})
		mu.Unlock()
	})

	tr.Touch("c1", "u1")
	tr.sweep(time.Now().Add(time.Second))

	mu.Lock()
	defer mu.Unlock()
	if len(expired) != 1 || expired[0] != [2]string{"c1", "u1"} {
		t.Fatalf("expired = %v", expired)
	}
	if tr.Active("c1", "u1") {
		t.Error("entry still active after sweep")
	}
}

func TestTypingSweepKeepsFreshEntries(t *testing.T) {
	tr := NewTypingTracker(time.Minute, func(chatID, userID string) {
		t.Errorf("fresh entry expired: %s/%s", chatID, userID)
	})
	tr.Touch("c1", "u1")
	tr.sweep(time.Now())

	if !tr.Active("c1", "u1") {
		t.Error("fresh entry dropped by sweep")
	}
}

func TestTypingStopIsIdempotent(t *testing.T) {
	tr := NewTypingTracker(time.Minute, nil)
	tr.Start(time.Millisecond)
	tr.Stop()
	tr.Stop()
}
