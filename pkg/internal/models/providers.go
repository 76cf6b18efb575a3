package models

// ProviderConfig is the persisted per-provider activation state, editable
// from the admin surface. Providers missing a row default to active.
type ProviderConfig struct {
	Type   string `json:"type" gorm:"primaryKey;size:32"`
	Active bool   `json:"active"`
}
