package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/callspace/conferencing/pkg/internal/models"
	"gorm.io/gorm"
)

// Resolver turns abstract identity ids into concrete snapshots. A nil
// result with nil error means "not found"; a non-nil error means the
// directory itself failed and must surface as an identity error.
type Resolver interface {
	ResolveUser(id string) (*models.UserIdentity, error)
	ResolveGroup(id string, kind string) (*models.GroupIdentity, error)
}

// Service resolves identities from the directory tables. It has no state
// of its own; every call reads the current directory content.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) ResolveUser(id string) (*models.UserIdentity, error) {
	var account models.Account
	if err := s.db.Where("name = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding user %s: %w", id, err)
	}
	if account.Disabled {
		// Disabled users are treated as not found.
		return nil, nil
	}
	return userIdentity(account), nil
}

func (s *Service) ResolveGroup(id string, kind string) (*models.GroupIdentity, error) {
	var unit models.GroupUnit
	if err := s.db.Where("name = ? AND kind = ?", id, kind).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding group %s (%s): %w", id, kind, err)
	}

	var members []models.GroupMember
	if err := s.db.Where("group_name = ?", unit.Name).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("reading members of %s: %w", id, err)
	}

	group := &models.GroupIdentity{
		ID:      unit.Name,
		Type:    unit.Kind,
		Title:   unit.Title,
		Members: make(map[string]*models.UserIdentity, len(members)),
	}
	for _, member := range members {
		user, err := s.ResolveUser(member.AccountName)
		if err != nil {
			return nil, err
		}
		if user == nil {
			// The group should be consistent; skip vanished members.
			continue
		}
		group.Members[user.ID] = user
	}
	return group, nil
}

func userIdentity(account models.Account) *models.UserIdentity {
	title := strings.TrimSpace(account.FirstName + " " + account.LastName)
	if title == "" {
		title = account.Nick
	}
	if title == "" {
		title = account.Name
	}
	return &models.UserIdentity{
		ID:         account.Name,
		FirstName:  account.FirstName,
		LastName:   account.LastName,
		Title:      title,
		AvatarLink: account.Avatar,
	}
}
