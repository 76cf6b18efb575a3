package models

// Account is a directory user record. The account name is the identity id
// used across calls, participants and origins.
type Account struct {
	Name      string `json:"name" gorm:"primaryKey;size:255"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Nick      string `json:"nick"`
	Avatar    string `json:"avatar"`
	Disabled  bool   `json:"disabled"`
}

// GroupUnit is a directory group of any supported kind: space, space event
// or chat room. Kind uses the owner type constants.
type GroupUnit struct {
	Name  string `json:"name" gorm:"primaryKey;size:255"`
	Kind  string `json:"kind" gorm:"size:32"`
	Title string `json:"title" gorm:"size:255"`
}

type GroupMember struct {
	GroupName   string `json:"group_name" gorm:"primaryKey;size:255"`
	AccountName string `json:"account_name" gorm:"primaryKey;size:255"`
}
