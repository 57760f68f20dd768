package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type memDirectory struct {
	mu    sync.Mutex
	state map[string]bool
}

func (d *memDirectory) SetPresence(_ context.Context, userID string, online bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == nil {
		d.state = make(map[string]bool)
	}
	d.state[userID] = online
	return nil
}

func (d *memDirectory) get(userID string) (bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.state[userID]
	return v, ok
}

func testTracker(t *testing.T) (*Tracker, *memDirectory) {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	dir := &memDirectory{}
	return NewTracker(rdb, dir, 5*time.Second), dir
}

func TestOnlineOfflineRoundtrip(t *testing.T) {
	tracker, dir := testTracker(t)
	ctx := context.Background()
	const userID = "presence-test-user"

	if err := tracker.SetOnline(ctx, userID); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	online, err := tracker.Online(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if !online {
		t.Error("user not online after SetOnline")
	}
	if v, ok := dir.get(userID); !ok || !v {
		t.Error("directory mirror not set online")
	}

	if err := tracker.SetOffline(ctx, userID); err != nil {
		t.Fatalf("SetOffline: %v", err)
	}
	online, err = tracker.Online(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if online {
		t.Error("user still online after SetOffline")
	}
	if v, _ := dir.get(userID); v {
		t.Error("directory mirror not set offline")
	}
}

func TestOnlineForUnknownUser(t *testing.T) {
	tracker, _ := testTracker(t)

	online, err := tracker.Online(context.Background(), "presence-test-never-seen")
	if err != nil {
		t.Fatal(err)
	}
	if online {
		t.Error("unknown user reported online")
	}
}
