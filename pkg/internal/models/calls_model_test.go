package models

import "testing"

func TestIsGroupOwnerType(t *testing.T) {
	for _, ownerType := range []string{OwnerTypeSpace, OwnerTypeSpaceEvent, OwnerTypeChatRoom} {
		if !IsGroupOwnerType(ownerType) {
			t.Fatalf("expected %s to be a group owner type", ownerType)
		}
	}
	if IsGroupOwnerType(OwnerTypeUser) {
		t.Fatalf("a user owner is not a group")
	}
}

func TestFindAndRemoveParticipant(t *testing.T) {
	call := Call{
		ID: "c1",
		Participants: []Participant{
			{CallID: "c1", ID: "alice", Type: ParticipantTypeUser, State: ParticipantJoined},
			{CallID: "c1", ID: "bob", Type: ParticipantTypeUser},
		},
	}

	if part := call.FindParticipant("alice"); part == nil || !part.IsJoined() {
		t.Fatalf("expected alice joined, got %+v", part)
	}
	if part := call.FindParticipant("bob"); part == nil || part.IsJoined() {
		t.Fatalf("a participant without state never joined, got %+v", part)
	}

	call.RemoveParticipant("alice")
	if call.FindParticipant("alice") != nil {
		t.Fatalf("expected alice removed")
	}
	if len(call.Participants) != 1 {
		t.Fatalf("unexpected roster size: %d", len(call.Participants))
	}
}

func TestParticipantClientMatch(t *testing.T) {
	part := Participant{ID: "alice", ClientID: "client-1"}
	if !part.HasSameClientID("client-1") {
		t.Fatalf("expected a client match")
	}
	if part.HasSameClientID("") {
		t.Fatalf("an empty client id never matches")
	}
	if (Participant{ID: "bob"}).HasSameClientID("client-1") {
		t.Fatalf("a participant without client id never matches")
	}
}
