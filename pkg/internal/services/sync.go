package services

import (
	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/samber/lo"
)

// syncMembersAndParticipants reconciles the stored roster of a group call
// against the freshly resolved membership: members without a roster row
// are inserted as leaved, rows of users no longer in the group are
// deleted. Guests are out of band and never touched. The call's in-memory
// roster is updated to match.
func syncMembersAndParticipants(tx CallStore, call *models.Call, members map[string]*models.UserIdentity) error {
	present := make(map[string]struct{}, len(call.Participants))
	for _, part := range call.Participants {
		present[part.ID] = struct{}{}
	}

	for memberID := range members {
		if _, ok := present[memberID]; ok {
			continue
		}
		added := models.Participant{
			CallID: call.ID,
			ID:     memberID,
			Type:   models.ParticipantTypeUser,
			State:  models.ParticipantLeaved,
		}
		if err := tx.AddParticipant(call.ID, added); err != nil {
			return err
		}
		call.Participants = append(call.Participants, added)
	}

	removed := make(map[string]struct{})
	for _, part := range call.Participants {
		if part.IsGuest() {
			continue
		}
		if _, ok := members[part.ID]; ok {
			continue
		}
		if err := tx.RemoveParticipant(call.ID, part.ID); err != nil {
			return err
		}
		removed[part.ID] = struct{}{}
	}
	if len(removed) > 0 {
		call.Participants = lo.Reject(call.Participants, func(part models.Participant, _ int) bool {
			_, gone := removed[part.ID]
			return gone
		})
	}
	return nil
}
