package realtime

import (
	"encoding/json"
	"testing"

	"mingle/internal/models"
)

func deliveredNotification(t *testing.T, conn *fakeConn) models.Notification {
	t.Helper()
	events := conn.events()
	if len(events) != 1 {
		t.Fatalf("delivered %d events, want 1", len(events))
	}
	ev, ok := events[0].(NotificationEvent)
	if !ok {
		t.Fatalf("delivered %T, want NotificationEvent", events[0])
	}
	if ev.Type != EventNotification {
		t.Errorf("event type = %q", ev.Type)
	}
	return ev.Notification
}

func TestNotifierFollowRequest(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn()
	r.Register(NewSession("u2", "bob", conn))

	NewNotifier(r).FollowRequest("u1", "u2")

	notif := deliveredNotification(t, conn)
	if notif.Type != models.NotifFollowRequest {
		t.Errorf("type = %q", notif.Type)
	}
	if notif.From != "u1" || notif.To != "u2" {
		t.Errorf("from/to = %q/%q", notif.From, notif.To)
	}
	if notif.Message != "sent you a follow request" {
		t.Errorf("message = %q", notif.Message)
	}
	if notif.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestNotifierFollowAcceptedGoesToRequester(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn()
	r.Register(NewSession("u1", "alice", conn))

	NewNotifier(r).FollowAccepted("u1", "u2")

	notif := deliveredNotification(t, conn)
	if notif.Type != models.NotifFollowAccepted {
		t.Errorf("type = %q", notif.Type)
	}
	if notif.From != "u2" || notif.To != "u1" {
		t.Errorf("from/to = %q/%q", notif.From, notif.To)
	}
}

func TestNotifierPostAndCommentCarryIDs(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn()
	r.Register(NewSession("owner", "alice", conn))
	n := NewNotifier(r)

	n.PostLiked("owner", "p1", "u2")
	n.NewComment("owner", "p1", "cm1", "u3")

	events := conn.events()
	if len(events) != 2 {
		t.Fatalf("delivered %d events, want 2", len(events))
	}
	liked := events[0].(NotificationEvent).Notification
	if liked.Type != models.NotifPostLiked || liked.PostID != "p1" {
		t.Errorf("post_liked = %+v", liked)
	}
	comment := events[1].(NotificationEvent).Notification
	if comment.Type != models.NotifNewComment || comment.PostID != "p1" || comment.CommentID != "cm1" {
		t.Errorf("new_comment = %+v", comment)
	}
}

func TestNotifierMessageReceived(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn()
	r.Register(NewSession("u2", "bob", conn))

	NewNotifier(r).MessageReceived("c1", "u1", "u2")

	notif := deliveredNotification(t, conn)
	if notif.Type != models.NotifMessageReceived || notif.ChatID != "c1" {
		t.Errorf("notification = %+v", notif)
	}
}

func TestNotifierOfflineRecipientDropsSilently(t *testing.T) {
	NewNotifier(NewRegistry()).FollowRequest("u1", "nobody")
}

// The notification frame nests its payload under a "notification" key; the
// payload's own "type" (the notification kind) must never surface at the top
// level where it would clash with the frame discriminator.
func TestNotifierFrameNestsPayload(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn()
	r.Register(NewSession("u2", "bob", conn))

	NewNotifier(r).FollowRequest("u1", "u2")

	events := conn.events()
	if len(events) != 1 {
		t.Fatalf("delivered %d events, want 1", len(events))
	}
	raw, err := json.Marshal(events[0])
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	var frame map[string]json.RawMessage
	if err := json.Unmarshal(raw, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if len(frame) != 2 {
		t.Fatalf("frame keys = %d, want type and notification only: %s", len(frame), raw)
	}
	if string(frame["type"]) != `"notification"` {
		t.Errorf("frame type = %s", frame["type"])
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(frame["notification"], &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	for _, key := range []string{"type", "from", "to", "message", "timestamp"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("payload missing %q: %s", key, frame["notification"])
		}
	}
	if string(payload["type"]) != `"follow-request"` {
		t.Errorf("payload type = %s", payload["type"])
	}
}
