package models

import (
	"time"

	"gorm.io/datatypes"
)

type CallState = string

const (
	CallStateCreated CallState = "created"
	CallStateStarted CallState = "started"
	CallStatePaused  CallState = "paused"
	CallStateStopped CallState = "stopped"
)

type ParticipantState = string

const (
	ParticipantJoined ParticipantState = "joined"
	ParticipantLeaved ParticipantState = "leaved"
)

type ParticipantType = string

const (
	ParticipantTypeUser     ParticipantType = "user"
	ParticipantTypeGuest    ParticipantType = "guest"
	ParticipantTypeExternal ParticipantType = "external"
)

type OriginType = string

const (
	OriginTypeUser  OriginType = "user"
	OriginTypeSpace OriginType = "space"
)

// Call is a signaling session, not the media stream itself.
// The ID is caller-supplied and globally unique; uniqueness is enforced
// by the primary key and is the conflict-detection primitive on create.
type Call struct {
	ID           string `json:"id" gorm:"primaryKey;size:255"`
	Title        string `json:"title" gorm:"size:255"`
	OwnerID      string `json:"owner_id" gorm:"size:255;index"`
	OwnerType    string `json:"owner_type" gorm:"size:32"`
	ProviderType string `json:"provider_type" gorm:"size:32"`
	State        string `json:"state" gorm:"size:32"`
	IsGroup      bool   `json:"is_group"`

	// Settings keeps owner-type specific payload, e.g. the chat room title.
	Settings datatypes.JSONMap `json:"settings,omitempty"`

	LastDate  time.Time  `json:"last_date"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	// InviteID is the live join-by-link token id, regenerated on every (re)start.
	InviteID string `json:"invite_id,omitempty" gorm:"size:64"`

	Participants []Participant `json:"participants" gorm:"foreignKey:CallID;constraint:OnDelete:CASCADE"`
	Origins      []Origin      `json:"origins" gorm:"foreignKey:CallID;constraint:OnDelete:CASCADE"`

	// Owner is resolved from the directory on read, never persisted.
	Owner Identity `json:"owner,omitempty" gorm:"-"`
}

// Participant tracks live membership of a call. Mutable on every join and leave.
type Participant struct {
	CallID string `json:"-" gorm:"primaryKey;size:255"`
	ID     string `json:"id" gorm:"primaryKey;size:255"`
	Type   string `json:"type" gorm:"size:32"`

	// State is empty until the first join; empty means never joined.
	State    string `json:"state,omitempty" gorm:"size:32"`
	ClientID string `json:"client_id,omitempty" gorm:"size:64"`
}

func (p Participant) IsJoined() bool {
	return p.State == ParticipantJoined
}

func (p Participant) IsGuest() bool {
	return p.Type == ParticipantTypeGuest
}

func (p Participant) HasSameClientID(clientID string) bool {
	return p.ClientID != "" && p.ClientID == clientID
}

// Origin is a statically allow-listed identity for a call, set on creation
// or update and never given a live state.
type Origin struct {
	CallID string `json:"-" gorm:"primaryKey;size:255"`
	ID     string `json:"id" gorm:"primaryKey;size:255"`
	Type   string `json:"type" gorm:"primaryKey;size:32"`
}

// Invite allows join-by-link without prior membership proof. The previous
// token is invalidated by deleting the row when the call (re)starts or stops.
type Invite struct {
	CallID       string `json:"call_id" gorm:"primaryKey;size:255"`
	Identity     string `json:"identity" gorm:"primaryKey;size:255"`
	IdentityType string `json:"identity_type" gorm:"size:32"`
	InvitationID string `json:"invitation_id" gorm:"size:64;index"`
}

// CallStateBrief is a light projection used when listing a user's calls.
type CallStateBrief struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

func (c *Call) FindParticipant(id string) *Participant {
	for idx := range c.Participants {
		if c.Participants[idx].ID == id {
			return &c.Participants[idx]
		}
	}
	return nil
}

func (c *Call) RemoveParticipant(id string) {
	for idx := range c.Participants {
		if c.Participants[idx].ID == id {
			c.Participants = append(c.Participants[:idx], c.Participants[idx+1:]...)
			return
		}
	}
}
