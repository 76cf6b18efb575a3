package services

import (
	"errors"
	"time"

	"github.com/callspace/conferencing/pkg/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CallStore is the durable storage contract of the coordinator. Multi-row
// writes that belong to one coordinator operation run inside Atomic so they
// commit or roll back as one unit.
type CallStore interface {
	// FindCall returns the call with participants and origins loaded, or
	// nil when no such call exists.
	FindCall(id string) (*models.Call, error)
	// CreateCall persists the call with its participants, origins and
	// invites. A duplicate id yields a conflict error.
	CreateCall(call *models.Call) error
	UpdateCall(call *models.Call) error
	UpdateCallAndParticipants(call *models.Call) error
	DeleteCall(id string) error

	AddParticipant(callID string, part models.Participant) error
	SaveParticipant(callID string, part models.Participant) error
	RemoveParticipant(callID, partID string) error
	ReplaceOrigins(callID string, origins []models.Origin) error

	FindGroupCallByOwner(ownerID, ownerType string) (*models.Call, error)
	FindUserGroupCalls(userID string) ([]models.Call, error)
	DeleteStaleUserCalls(before time.Time) (int64, error)

	SaveInvite(invite models.Invite) error
	ListCallInvites(callID string) ([]models.Invite, error)
	FindInviteByToken(invitationID string) (*models.Invite, error)
	DeleteCallInvites(callID string) error

	// Atomic runs fn inside one storage transaction; the store passed to
	// fn operates on that transaction.
	Atomic(fn func(CallStore) error) error
}

// GormStore is the postgres-backed CallStore.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindCall(id string) (*models.Call, error) {
	var call models.Call
	if err := s.db.
		Preload("Participants").
		Preload("Origins").
		Where("id = ?", id).
		First(&call).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStorageError(err, "error reading call %s", id)
	}
	return &call, nil
}

func (s *GormStore) CreateCall(call *models.Call) error {
	if err := s.db.Create(call).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("call id already exists: %s", call.ID)
		}
		return models.NewStorageError(err, "error creating call %s", call.ID)
	}
	return nil
}

func (s *GormStore) UpdateCall(call *models.Call) error {
	res := s.db.Model(&models.Call{}).Where("id = ?", call.ID).
		Select("Title", "State", "Settings", "LastDate", "StartDate", "EndDate", "InviteID").
		Updates(call)
	if res.Error != nil {
		return models.NewStorageError(res.Error, "error updating call %s", call.ID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("call not found: %s", call.ID)
	}
	return nil
}

func (s *GormStore) UpdateCallAndParticipants(call *models.Call) error {
	return s.Atomic(func(tx CallStore) error {
		if err := tx.UpdateCall(call); err != nil {
			return err
		}
		for _, part := range call.Participants {
			if err := tx.SaveParticipant(call.ID, part); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) DeleteCall(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Participant{}, &models.Origin{}, &models.Invite{}} {
			if err := tx.Where("call_id = ?", id).Delete(model).Error; err != nil {
				return models.NewStorageError(err, "error deleting call %s rows", id)
			}
		}
		if err := tx.Where("id = ?", id).Delete(&models.Call{}).Error; err != nil {
			return models.NewStorageError(err, "error deleting call %s", id)
		}
		return nil
	})
}

func (s *GormStore) AddParticipant(callID string, part models.Participant) error {
	part.CallID = callID
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&part).Error; err != nil {
		return models.NewStorageError(err, "error adding participant %s to %s", part.ID, callID)
	}
	return nil
}

func (s *GormStore) SaveParticipant(callID string, part models.Participant) error {
	res := s.db.Model(&models.Participant{}).
		Where("call_id = ? AND id = ?", callID, part.ID).
		Select("State", "ClientID").
		Updates(map[string]any{"state": part.State, "client_id": part.ClientID})
	if res.Error != nil {
		return models.NewStorageError(res.Error, "error updating participant %s of %s", part.ID, callID)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("participant %s not found for %s", part.ID, callID)
	}
	return nil
}

func (s *GormStore) RemoveParticipant(callID, partID string) error {
	if err := s.db.Where("call_id = ? AND id = ?", callID, partID).
		Delete(&models.Participant{}).Error; err != nil {
		return models.NewStorageError(err, "error removing participant %s of %s", partID, callID)
	}
	return nil
}

func (s *GormStore) ReplaceOrigins(callID string, origins []models.Origin) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("call_id = ?", callID).Delete(&models.Origin{}).Error; err != nil {
			return models.NewStorageError(err, "error clearing origins of %s", callID)
		}
		for _, origin := range origins {
			origin.CallID = callID
			if err := tx.Create(&origin).Error; err != nil {
				return models.NewStorageError(err, "error saving origin %s of %s", origin.ID, callID)
			}
		}
		return nil
	})
}

func (s *GormStore) FindGroupCallByOwner(ownerID, ownerType string) (*models.Call, error) {
	tx := s.db.Where("owner_id = ? AND is_group = ?", ownerID, true)
	if ownerType != "" {
		tx = tx.Where("owner_type = ?", ownerType)
	}
	var call models.Call
	if err := tx.Preload("Participants").Preload("Origins").First(&call).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStorageError(err, "error reading group call of %s", ownerID)
	}
	return &call, nil
}

func (s *GormStore) FindUserGroupCalls(userID string) ([]models.Call, error) {
	var calls []models.Call
	if err := s.db.
		Joins("JOIN participants ON participants.call_id = calls.id").
		Where("participants.id = ? AND calls.is_group = ?", userID, true).
		Find(&calls).Error; err != nil {
		return nil, models.NewStorageError(err, "error reading group calls of %s", userID)
	}
	return calls, nil
}

func (s *GormStore) DeleteStaleUserCalls(before time.Time) (int64, error) {
	var stale []models.Call
	if err := s.db.
		Where("is_group = ? AND last_date < ?", false, before).
		Find(&stale).Error; err != nil {
		return 0, models.NewStorageError(err, "error finding stale calls")
	}
	for _, call := range stale {
		if err := s.DeleteCall(call.ID); err != nil {
			return 0, err
		}
	}
	return int64(len(stale)), nil
}

func (s *GormStore) SaveInvite(invite models.Invite) error {
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&invite).Error; err != nil {
		return models.NewStorageError(err, "error saving invite of %s", invite.CallID)
	}
	return nil
}

func (s *GormStore) ListCallInvites(callID string) ([]models.Invite, error) {
	var invites []models.Invite
	if err := s.db.Where("call_id = ?", callID).Order("identity").Find(&invites).Error; err != nil {
		return nil, models.NewStorageError(err, "error listing invites of %s", callID)
	}
	return invites, nil
}

func (s *GormStore) FindInviteByToken(invitationID string) (*models.Invite, error) {
	var invite models.Invite
	if err := s.db.Where("invitation_id = ?", invitationID).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStorageError(err, "error reading invite")
	}
	return &invite, nil
}

func (s *GormStore) DeleteCallInvites(callID string) error {
	if err := s.db.Where("call_id = ?", callID).Delete(&models.Invite{}).Error; err != nil {
		return models.NewStorageError(err, "error deleting invites of %s", callID)
	}
	return nil
}

func (s *GormStore) Atomic(fn func(CallStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
