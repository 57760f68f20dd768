package models

import "testing"

func TestPairKeyIsOrderInsensitive(t *testing.T) {
	if PairKey("bob", "alice") != PairKey("alice", "bob") {
		t.Error("pair key depends on argument order")
	}
	if got := PairKey("alice", "bob"); got != "alice:bob" {
		t.Errorf("key = %q", got)
	}
}

func TestChatParticipantHelpers(t *testing.T) {
	c := &Chat{Participants: []string{"alice", "bob"}}

	if !c.HasParticipant("alice") || !c.HasParticipant("bob") {
		t.Error("participant not recognized")
	}
	if c.HasParticipant("carol") {
		t.Error("outsider recognized as participant")
	}

	if got := c.OtherParticipant("alice"); got != "bob" {
		t.Errorf("other of alice = %q", got)
	}
	if got := c.OtherParticipant("carol"); got != "" {
		t.Errorf("other of outsider = %q", got)
	}
}

func TestUnreadCountsGet(t *testing.T) {
	var nilCounts UnreadCounts
	if nilCounts.Get("alice") != 0 {
		t.Error("nil map did not read as zero")
	}

	counts := UnreadCounts{"alice": 2}
	if counts.Get("alice") != 2 {
		t.Error("stored count not returned")
	}
	if counts.Get("bob") != 0 {
		t.Error("absent key not zero")
	}
}
