package services

import (
	"testing"

	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/spf13/viper"
)

func TestInviteTokenRoundTrip(t *testing.T) {
	viper.Set("security.invite_secret", "test-secret")

	invitationID := NewInviteID()
	token, err := EncodeInviteToken("call-1", invitationID)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	callID, gotInvitation, err := DecodeInviteToken(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if callID != "call-1" || gotInvitation != invitationID {
		t.Fatalf("unexpected claims: %s %s", callID, gotInvitation)
	}
}

func TestInviteTokenRejectsGarbage(t *testing.T) {
	viper.Set("security.invite_secret", "test-secret")

	if _, _, err := DecodeInviteToken("not-a-token"); !models.IsArgumentError(err) {
		t.Fatalf("expected an argument error, got %v", err)
	}
}

func TestInviteTokenRejectsForeignSignature(t *testing.T) {
	viper.Set("security.invite_secret", "test-secret")
	token, err := EncodeInviteToken("call-1", NewInviteID())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	viper.Set("security.invite_secret", "another-secret")
	defer viper.Set("security.invite_secret", "test-secret")
	if _, _, err := DecodeInviteToken(token); !models.IsArgumentError(err) {
		t.Fatalf("expected an argument error, got %v", err)
	}
}

func TestCheckInviteAgainstStore(t *testing.T) {
	viper.Set("security.invite_secret", "test-secret")
	fx := newFixture(t)

	call, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "grp-token",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
		Start:        true,
	}, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	token, err := EncodeInviteToken(call.ID, call.InviteID)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	checked, err := fx.service.CheckInvite(token)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if checked.ID != call.ID {
		t.Fatalf("unexpected call: %s", checked.ID)
	}

	// Stopping the call deletes its invitation rows; the token must die
	// with them even though the signature still validates.
	if _, err := fx.service.StopCall(call.ID, "alice", false); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := fx.service.CheckInvite(token); !models.IsNotFound(err) {
		t.Fatalf("expected not found after stop, got %v", err)
	}
}
