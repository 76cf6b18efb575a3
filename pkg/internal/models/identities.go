package models

// Owner kinds a call may belong to. Group-like kinds carry a members map
// resolved from the directory at read time; it is never persisted.
const (
	OwnerTypeUser       = "user"
	OwnerTypeSpace      = "space"
	OwnerTypeSpaceEvent = "space_event"
	OwnerTypeChatRoom   = "chat_room"
)

func IsGroupOwnerType(ownerType string) bool {
	switch ownerType {
	case OwnerTypeSpace, OwnerTypeSpaceEvent, OwnerTypeChatRoom:
		return true
	}
	return false
}

// Identity abstracts a call owner: a single user or a group-like entity.
type Identity interface {
	GetID() string
	GetType() string
	GetTitle() string
	IsGroup() bool
}

type UserIdentity struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Title       string `json:"title"`
	AvatarLink  string `json:"avatar_link,omitempty"`
	ProfileLink string `json:"profile_link,omitempty"`
}

func (u *UserIdentity) GetID() string    { return u.ID }
func (u *UserIdentity) GetType() string  { return OwnerTypeUser }
func (u *UserIdentity) GetTitle() string { return u.Title }
func (u *UserIdentity) IsGroup() bool    { return false }

// GroupIdentity represents a space, space event or chat room owner.
// Members are keyed by user id.
type GroupIdentity struct {
	ID         string                   `json:"id"`
	Type       string                   `json:"type"`
	Title      string                   `json:"title"`
	AvatarLink string                   `json:"avatar_link,omitempty"`
	Members    map[string]*UserIdentity `json:"members,omitempty"`
}

func (g *GroupIdentity) GetID() string    { return g.ID }
func (g *GroupIdentity) GetType() string  { return g.Type }
func (g *GroupIdentity) GetTitle() string { return g.Title }
func (g *GroupIdentity) IsGroup() bool    { return true }

func (g *GroupIdentity) HasMember(userID string) bool {
	_, ok := g.Members[userID]
	return ok
}
