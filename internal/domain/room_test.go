package domain

import (
	"testing"
	"time"
)

func newTestMember(t *testing.T, id string) *Member {
	t.Helper()
	u, err := NewUser(UserID(id), id)
	if err != nil {
		t.Fatalf("new user %s: %v", id, err)
	}
	return NewMember(u, time.Unix(0, 0))
}

func TestRoomJoinOrder(t *testing.T) {
	r := NewRoom("R1", time.Now(), 0)
	for _, id := range []string{"a", "b", "c"} {
		if !r.Add(newTestMember(t, id)) {
			t.Fatalf("add %s: expected true", id)
		}
	}
	if r.Add(newTestMember(t, "b")) {
		t.Errorf("second add of b should be rejected")
	}
	if r.Len() != 3 {
		t.Fatalf("len = %d, want 3", r.Len())
	}

	if got := r.Successor(); got != "a" {
		t.Errorf("successor = %q, want a", got)
	}
	r.Remove("a")
	if got := r.Successor(); got != "b" {
		t.Errorf("successor after remove = %q, want b", got)
	}

	var ids []UserID
	for _, m := range r.Members() {
		ids = append(ids, m.User.ID)
	}
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "c" {
		t.Errorf("members = %v, want [b c]", ids)
	}

	r.Remove("b")
	r.Remove("c")
	if !r.Empty() || r.Successor() != "" {
		t.Errorf("room should be empty")
	}
	if _, ok := r.Remove("c"); ok {
		t.Errorf("double remove should report false")
	}
}

func TestRoomGrants(t *testing.T) {
	r := NewRoom("R1", time.Now(), 0)
	r.Add(newTestMember(t, "mod"))
	r.Add(newTestMember(t, "u"))
	r.Moderator = "mod"

	if !r.Can("mod", CapVideoControl) {
		t.Errorf("moderator must hold every capability")
	}
	if r.Can("u", CapVideoControl) {
		t.Errorf("u must not hold video-control before a grant")
	}
	if !r.Grant("u", CapVideoControl) {
		t.Fatalf("grant failed")
	}
	if r.Grant("u", CapVideoControl) {
		t.Errorf("repeated grant should report false")
	}
	if !r.Can("u", CapVideoControl) || r.Can("u", CapScreenShare) {
		t.Errorf("grant applied to the wrong capability")
	}
	if r.Grant("ghost", CapVideoControl) {
		t.Errorf("grant to absent user should fail")
	}

	r.Remove("u")
	r.Add(newTestMember(t, "u"))
	if r.Can("u", CapVideoControl) {
		t.Errorf("grants must be discarded when the user leaves")
	}

	r.Grant("u", CapScreenShare)
	if !r.Revoke("u", CapScreenShare) || r.Can("u", CapScreenShare) {
		t.Errorf("revoke failed")
	}
}

func TestRoomHistoryLimit(t *testing.T) {
	r := NewRoom("R1", time.Now(), 2)
	for _, id := range []string{"1", "2", "3"} {
		r.AppendMessage(Message{ID: id})
	}
	h := r.History()
	if len(h) != 2 || h[0].ID != "2" || h[1].ID != "3" {
		t.Errorf("history = %+v, want last two", h)
	}

	unbounded := NewRoom("R2", time.Now(), 0)
	for i := 0; i < 500; i++ {
		unbounded.AppendMessage(Message{})
	}
	if got := len(unbounded.History()); got != 500 {
		t.Errorf("unbounded history len = %d", got)
	}
}
