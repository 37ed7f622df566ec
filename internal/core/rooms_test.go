package core

import (
	"errors"
	"testing"
)

func TestRoomCapacity(t *testing.T) {
	ev := &recEvents{}
	rm := NewRoomManager(ev)

	if err := rm.Join("r1", "m1", "a", "ca", &fakeConn{}); err != nil {
		t.Fatalf("first Join() = %v", err)
	}
	if err := rm.Join("r1", "m1", "b", "cb", &fakeConn{}); err != nil {
		t.Fatalf("second Join() = %v", err)
	}
	err := rm.Join("r1", "m1", "x", "cx", &fakeConn{})
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("third Join() = %v, want ErrRoomFull", err)
	}

	infos := rm.List()
	if len(infos) != 1 || infos[0].Participants != 2 {
		t.Errorf("room must still hold exactly 2 participants, got %+v", infos)
	}
}

func TestRoomJoinIdempotentPerConnection(t *testing.T) {
	ev := &recEvents{}
	rm := NewRoomManager(ev)

	rm.Join("r1", "m1", "a", "ca", &fakeConn{})
	if err := rm.Join("r1", "m1", "a", "ca", &fakeConn{}); err != nil {
		t.Fatalf("re-Join() of the same connection = %v, want nil no-op", err)
	}
	if rm.List()[0].Participants != 1 {
		t.Error("re-join must not add a second participant")
	}
	if len(ev.byKind("room-ready")) != 0 {
		t.Error("room must not be ready with one participant")
	}
}

func TestRoomReadyNotifiesBothParticipants(t *testing.T) {
	ev := &recEvents{}
	rm := NewRoomManager(ev)
	ca, cb := &fakeConn{}, &fakeConn{}

	rm.Join("r1", "m1", "a", "ca", ca)
	rm.Join("r1", "m1", "b", "cb", cb)

	ready := ev.byKind("room-ready")
	if len(ready) != 2 {
		t.Fatalf("room-ready events = %d, want 2", len(ready))
	}
	seen := map[SignalConn]bool{}
	for _, e := range ready {
		seen[e.conn] = true
		if e.roomID != "r1" || e.matchID != "m1" || e.queueSize != 2 {
			t.Errorf("room-ready payload = %+v", e)
		}
	}
	if !seen[ca] || !seen[cb] {
		t.Error("both participants must be notified")
	}
}

func TestRoomLeaveNotifiesRemainingOnce(t *testing.T) {
	ev := &recEvents{}
	rm := NewRoomManager(ev)
	rm.Join("r1", "m1", "a", "ca", &fakeConn{})
	cb := &fakeConn{}
	rm.Join("r1", "m1", "b", "cb", cb)

	remaining, ok := rm.Leave("r1", "ca")
	if !ok || remaining != "b" {
		t.Fatalf("Leave() = (%s, %v), want (b, true)", remaining, ok)
	}
	left := ev.byKind("participant-left")
	if len(left) != 1 || left[0].conn != cb || left[0].userID != "a" {
		t.Fatalf("participant-left = %+v, want exactly one to b about a", left)
	}

	// idempotent: a second leave of the same connection is a no-op
	if _, ok := rm.Leave("r1", "ca"); ok {
		t.Error("second Leave() must be a no-op")
	}
	if len(ev.byKind("participant-left")) != 1 {
		t.Error("remaining peer must be notified exactly once")
	}
}

func TestRoomDeletedWhenLastLeaves(t *testing.T) {
	ev := &recEvents{}
	rm := NewRoomManager(ev)

	// a joins first and disconnects before b arrives
	rm.Join("r1", "m1", "a", "ca", &fakeConn{})
	rm.LeaveAll("ca")
	if rm.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 after last participant left", rm.Count())
	}

	// b joining with the stale room id gets a fresh room, no crash
	if err := rm.Join("r1", "m1", "b", "cb", &fakeConn{}); err != nil {
		t.Fatalf("Join() with stale room id = %v, want fresh room", err)
	}
	infos := rm.List()
	if len(infos) != 1 || infos[0].Participants != 1 {
		t.Errorf("stale-id join must create a new single-member room, got %+v", infos)
	}
}

func TestRoomLeaveUnknownRoomIsNoop(t *testing.T) {
	rm := NewRoomManager(&recEvents{})
	if _, ok := rm.Leave("nope", "ca"); ok {
		t.Error("Leave() of an unknown room must be a no-op")
	}
}

func TestRoomLeaveAllCoversEveryRoom(t *testing.T) {
	ev := &recEvents{}
	rm := NewRoomManager(ev)
	rm.Join("r1", "m1", "a", "ca", &fakeConn{})
	rm.Join("r1", "m1", "b", "cb", &fakeConn{})
	rm.Join("r2", "m2", "a", "ca", &fakeConn{})

	notified := rm.LeaveAll("ca")
	if len(notified) != 1 || notified[0] != "b" {
		t.Errorf("LeaveAll() notified %v, want [b]", notified)
	}
	if rm.Count() != 1 {
		t.Errorf("Count() = %d, want 1 (r2 deleted, r1 keeps b)", rm.Count())
	}
}

func TestRoomDestroySilent(t *testing.T) {
	ev := &recEvents{}
	rm := NewRoomManager(ev)
	rm.Join("r1", "m1", "a", "ca", &fakeConn{})
	rm.Join("r1", "m1", "b", "cb", &fakeConn{})

	rm.Destroy("r1")
	if rm.Count() != 0 {
		t.Error("Destroy() must drop the room")
	}
	if len(ev.byKind("participant-left")) != 0 {
		t.Error("Destroy() must not emit participant-left")
	}
}

func TestRoomReset(t *testing.T) {
	rm := NewRoomManager(&recEvents{})
	rm.Join("r1", "m1", "a", "ca", &fakeConn{})
	rm.Reset()
	rm.Reset()
	if rm.Count() != 0 {
		t.Error("Reset() must clear the room table")
	}
}
