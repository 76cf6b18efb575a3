package services

import (
	"time"

	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// inviteClaims binds an invite-link token to one call and one invitation
// id. The token stops validating as soon as the invitation row is gone,
// which happens on every call (re)start and stop.
type inviteClaims struct {
	CallID       string `json:"call_id"`
	InvitationID string `json:"invitation_id"`
	jwt.RegisteredClaims
}

func inviteSecret() []byte {
	return []byte(viper.GetString("security.invite_secret"))
}

// NewInviteID mints a fresh invitation id for a call start.
func NewInviteID() string {
	return uuid.NewString()
}

// EncodeInviteToken signs a join-by-link token for the call's current
// invitation id.
func EncodeInviteToken(callID, invitationID string) (string, error) {
	claims := inviteClaims{
		CallID:       callID,
		InvitationID: invitationID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(inviteSecret())
}

// DecodeInviteToken verifies the signature and returns the claims. The
// caller still has to check the invitation id against storage; old tokens
// fail there because their rows were deleted with the stopped call.
func DecodeInviteToken(token string) (callID, invitationID string, err error) {
	var claims inviteClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return inviteSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", "", models.NewArgumentError("invalid invite token")
	}
	return claims.CallID, claims.InvitationID, nil
}
