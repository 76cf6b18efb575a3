package services

import (
	"time"

	"github.com/callspace/conferencing/pkg/internal/directory"
	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

const (
	idMaxLength   = 255
	textMaxLength = 255
	argMaxLength  = 32
	dataMaxLength = 2000
)

func isValidID(id string) bool {
	return len(id) > 0 && len(id) <= idMaxLength
}

// isValidText accepts empty values; a present value is length-bounded.
func isValidText(text string) bool {
	return text == "" || len(text) <= textMaxLength
}

func isNotNullArg(arg string) bool {
	return len(arg) > 0 && len(arg) <= argMaxLength
}

// CallService owns the call lifecycle state machine. Every public
// operation is one logically atomic unit spanning storage and in-memory
// notification; notification never rolls storage back.
type CallService struct {
	store     CallStore
	resolver  directory.Resolver
	registry  *ListenerRegistry
	notifier  *Notifier
	providers *ProviderRegistry
	stream    *EventStream
}

// Calls is the coordinator instance wired at startup.
var Calls *CallService

func NewCallService(
	store CallStore,
	resolver directory.Resolver,
	registry *ListenerRegistry,
	notifier *Notifier,
	providers *ProviderRegistry,
	stream *EventStream,
) *CallService {
	return &CallService{
		store:     store,
		resolver:  resolver,
		registry:  registry,
		notifier:  notifier,
		providers: providers,
		stream:    stream,
	}
}

type CreateCallRequest struct {
	ID           string     `json:"id" validate:"required,max=255"`
	OwnerID      string     `json:"owner_id" validate:"required,max=255"`
	OwnerType    string     `json:"owner_type" validate:"required,max=32"`
	Title        string     `json:"title" validate:"max=255"`
	ProviderType string     `json:"provider_type" validate:"required,max=32"`
	Participants []string   `json:"participants"`
	Spaces       []string   `json:"spaces"`
	Start        bool       `json:"start"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// CreateCall validates the request, clears conflicting stale records,
// persists the call with its origins (and participants plus an invite
// token when started) as one unit and notifies the started parties.
func (s *CallService) CreateCall(req CreateCallRequest, actorID string) (*models.Call, error) {
	opStart := time.Now()

	if !isValidID(req.ID) {
		return nil, models.NewArgumentError("wrong call id value")
	}
	if !isValidID(req.OwnerID) {
		return nil, models.NewArgumentError("wrong owner id value")
	}
	if !isNotNullArg(req.OwnerType) {
		return nil, models.NewArgumentError("wrong owner type")
	}
	if !isNotNullArg(req.ProviderType) {
		return nil, models.NewArgumentError("wrong provider")
	}
	if !isValidText(req.Title) {
		return nil, models.NewArgumentError("wrong call title")
	}

	isGroup := models.IsGroupOwnerType(req.OwnerType)
	if !isGroup && req.OwnerType != models.OwnerTypeUser {
		return nil, models.NewArgumentError("wrong call owner type: %s", req.OwnerType)
	}
	if s.providers.GetProvider(req.ProviderType) == nil {
		return nil, models.NewArgumentError("unknown provider: %s", req.ProviderType)
	}

	// A group owner keeps at most one call; an abandoned one left by a
	// crashed client is replaced. Space events may run many calls at once.
	if isGroup && req.OwnerType != models.OwnerTypeSpaceEvent {
		prev, err := s.store.FindGroupCallByOwner(req.OwnerID, "")
		if err != nil {
			return nil, err
		}
		if prev != nil && prev.ID != req.ID {
			if err := s.store.DeleteCall(prev.ID); err != nil {
				return nil, err
			}
			log.Warn().Str("call", prev.ID).Str("owner", req.OwnerID).Msg("Deleted outdated group call.")
		}
	}

	if err := s.Invalidate(req.ID, isGroup); err != nil {
		return nil, err
	}

	owner, err := s.resolveOwnerSnapshot(req, isGroup)
	if err != nil {
		return nil, err
	}

	origins, err := s.computeOrigins(req.Participants, req.Spaces)
	if err != nil {
		return nil, err
	}

	call := &models.Call{
		ID:           req.ID,
		Title:        req.Title,
		OwnerID:      req.OwnerID,
		OwnerType:    req.OwnerType,
		ProviderType: req.ProviderType,
		IsGroup:      isGroup,
		State:        models.CallStateCreated,
		LastDate:     time.Now(),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Origins:      origins,
		Owner:        owner,
	}
	if req.OwnerType == models.OwnerTypeChatRoom {
		settings, err := roomSettings(req.Title)
		if err != nil {
			return nil, err
		}
		call.Settings = settings
	}

	if req.Start {
		call.State = models.CallStateStarted
		call.InviteID = NewInviteID()
		call.Participants = s.startingParticipants(call, actorID, req.Participants)
	}

	if err := s.store.Atomic(func(tx CallStore) error {
		if err := tx.CreateCall(call); err != nil {
			if models.IsConflict(err) {
				return s.classifyCreateConflict(call)
			}
			return err
		}
		if req.Start {
			return tx.SaveInvite(linkInvite(call))
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if req.Start {
		if provider := s.providers.GetProvider(call.ProviderType); provider != nil {
			if err := provider.OnCallStarted(call); err != nil {
				log.Warn().Err(err).Str("call", call.ID).Msg("Call provider start hook failed.")
			}
		}
		for _, part := range call.Participants {
			if part.Type == models.ParticipantTypeUser && part.ID != actorID {
				s.notifier.FireStateChanged(part.ID, stateUpdate(call, models.CallStateStarted))
			}
		}
	}

	s.logOperation(models.OperationCallCreated, actorID, call, opStart)
	s.stream.Emit(models.OperationCallCreated, actorID, *call)
	return call, nil
}

// Invalidate is the conflict gate run just before a create writes. An
// existing group call is a hard conflict; an existing P2P call is a
// conflict only while someone is actually connected, otherwise the record
// is stale and gets self-healed away.
func (s *CallService) Invalidate(id string, isGroup bool) error {
	existing, err := s.store.FindCall(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if isGroup {
		return models.NewConflictError("call already created")
	}
	if existing.State == models.CallStateStarted {
		for _, part := range existing.Participants {
			if part.ClientID != "" && s.registry.HasClient(part.ID, part.ClientID) {
				return models.NewConflictError("call already started")
			}
		}
	}
	if err := s.store.DeleteCall(id); err != nil {
		return err
	}
	log.Warn().Str("call", id).Msg("Deleted stale call.")
	return nil
}

// classifyCreateConflict inspects a uniqueness violation raced in by a
// concurrent creator and reports whether the winner is actually running.
func (s *CallService) classifyCreateConflict(call *models.Call) error {
	existing, err := s.store.FindCall(call.ID)
	if err != nil || existing == nil {
		return models.NewConflictError("call id already found: %s", call.ID)
	}
	if existing.State == models.CallStateStarted {
		for _, part := range existing.Participants {
			if part.ClientID != "" && s.registry.HasClient(part.ID, part.ClientID) {
				return models.NewConflictError("call already started and running")
			}
		}
		return models.NewConflictError("call already started")
	}
	return models.NewConflictError("call already created")
}

// GetCall reads the call and freshly resolves its owner; group membership
// is never cached in storage.
func (s *CallService) GetCall(id string) (*models.Call, error) {
	call, err := s.store.FindCall(id)
	if err != nil {
		return nil, err
	}
	if call == nil {
		return nil, models.NewNotFoundError("call not found: %s", id)
	}
	if err := s.attachOwner(call); err != nil {
		return nil, err
	}
	return call, nil
}

type UpdateCallRequest struct {
	Title        *string    `json:"title" validate:"omitempty,max=255"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Participants []string   `json:"participants"`
	Spaces       []string   `json:"spaces"`
}

// UpdateCall applies a partial update. Only origins are recomputed here;
// live participants belong to UpdateParticipants, because origins carry
// intent while participants carry presence.
func (s *CallService) UpdateCall(id string, req UpdateCallRequest) (*models.Call, error) {
	call, err := s.GetCall(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if !isValidText(*req.Title) {
			return nil, models.NewArgumentError("wrong call title")
		}
		call.Title = *req.Title
		if call.OwnerType == models.OwnerTypeChatRoom {
			settings, err := roomSettings(*req.Title)
			if err != nil {
				return nil, err
			}
			call.Settings = settings
		}
	}
	if req.StartDate != nil {
		call.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		call.EndDate = req.EndDate
	}

	var origins []models.Origin
	recompute := req.Participants != nil || req.Spaces != nil
	if recompute {
		if origins, err = s.computeOrigins(req.Participants, req.Spaces); err != nil {
			return nil, err
		}
	}

	if err := s.store.Atomic(func(tx CallStore) error {
		if err := tx.UpdateCall(call); err != nil {
			return err
		}
		if recompute {
			return tx.ReplaceOrigins(call.ID, origins)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if recompute {
		call.Origins = origins
	}
	return call, nil
}

// StartCall marks the call started, reconciles group membership against
// the directory, regenerates the invite token and alerts every resolved
// owner member (or the P2P peer).
func (s *CallService) StartCall(id, partID, clientID string) (*models.Call, error) {
	opStart := time.Now()
	call, err := s.GetCall(id)
	if err != nil {
		return nil, err
	}
	if err := s.startCall(call, partID, clientID, true); err != nil {
		return nil, err
	}
	s.logOperation(models.OperationCallStarted, partID, call, opStart)
	s.stream.Emit(models.OperationCallStarted, partID, *call)
	return call, nil
}

func (s *CallService) startCall(call *models.Call, partID, clientID string, announce bool) error {
	call.State = models.CallStateStarted
	call.LastDate = time.Now()
	call.InviteID = NewInviteID()

	var members map[string]*models.UserIdentity
	if group, ok := call.Owner.(*models.GroupIdentity); ok && call.IsGroup {
		members = group.Members
	}

	// A scheduled one-on-one call has no roster until its first start; seed
	// it from the owner and the user origins.
	if !call.IsGroup && len(call.Participants) == 0 {
		var named []string
		for _, origin := range call.Origins {
			if origin.Type == models.OriginTypeUser {
				named = append(named, origin.ID)
			}
		}
		call.Participants = s.startingParticipants(call, partID, named)
	}

	if err := s.store.Atomic(func(tx CallStore) error {
		if call.IsGroup {
			if err := syncMembersAndParticipants(tx, call, members); err != nil {
				return err
			}
		}

		// The starter joins; everyone else is reset to leaved and will be
		// marked joined by their own join.
		for idx := range call.Participants {
			part := &call.Participants[idx]
			if part.Type == models.ParticipantTypeUser && part.ID == partID {
				part.State = models.ParticipantJoined
				part.ClientID = clientID
			} else {
				part.State = models.ParticipantLeaved
				part.ClientID = ""
			}
		}

		if err := tx.UpdateCall(call); err != nil {
			return err
		}
		for _, part := range call.Participants {
			if err := tx.AddParticipant(call.ID, part); err != nil {
				return err
			}
			if err := tx.SaveParticipant(call.ID, part); err != nil {
				return err
			}
		}

		if err := tx.DeleteCallInvites(call.ID); err != nil {
			return err
		}
		return tx.SaveInvite(linkInvite(call))
	}); err != nil {
		return err
	}

	if provider := s.providers.GetProvider(call.ProviderType); provider != nil {
		if err := provider.OnCallStarted(call); err != nil {
			log.Warn().Err(err).Str("call", call.ID).Msg("Call provider start hook failed.")
		}
	}

	if announce {
		// Group members who never joined still must be alerted, so the
		// audience is the resolved membership, not the participant roster.
		if call.IsGroup && members != nil {
			for memberID := range members {
				if memberID != partID {
					s.notifier.FireStateChanged(memberID, stateUpdate(call, models.CallStateStarted))
				}
			}
		} else {
			for _, part := range call.Participants {
				if part.Type == models.ParticipantTypeUser && part.ID != partID {
					s.notifier.FireStateChanged(part.ID, stateUpdate(call, models.CallStateStarted))
				}
			}
		}
	}
	return nil
}

// JoinCall marks the participant joined in a started call, self-healing a
// missing roster row for current group members. A call not yet started is
// started implicitly without the started notification burst.
func (s *CallService) JoinCall(id, partID, clientID string) (*models.Call, error) {
	opStart := time.Now()
	call, err := s.GetCall(id)
	if err != nil {
		return nil, err
	}

	if call.State != models.CallStateStarted {
		if err := s.startCall(call, partID, clientID, false); err != nil {
			return nil, err
		}
	} else {
		part := call.FindParticipant(partID)
		if part == nil {
			group, ok := call.Owner.(*models.GroupIdentity)
			if !ok || !group.HasMember(partID) {
				return nil, models.NewNotFoundError("participant %s not found for %s", partID, id)
			}
			// Member never made it into the roster, e.g. joined the group
			// after the call started on another node.
			added := models.Participant{
				CallID:   call.ID,
				ID:       partID,
				Type:     models.ParticipantTypeUser,
				State:    models.ParticipantJoined,
				ClientID: clientID,
			}
			if err := s.store.AddParticipant(call.ID, added); err != nil {
				return nil, err
			}
			call.Participants = append(call.Participants, added)
		} else {
			part.State = models.ParticipantJoined
			part.ClientID = clientID
			if err := s.store.SaveParticipant(call.ID, *part); err != nil {
				return nil, err
			}
		}
	}

	update := partUpdate(call, partID)
	for _, part := range call.Participants {
		s.notifier.FirePartJoined(part.ID, update)
	}

	s.logOperation(models.OperationCallJoined, partID, call, opStart)
	s.stream.Emit(models.OperationCallJoined, partID, *call)
	return call, nil
}

// LeaveCall marks the participant leaved (guests are dropped outright),
// notifies the roster and evaluates the stop conditions: a group call
// stops once everyone left, a P2P call is deleted once one side remains.
// A missing call is not an error.
func (s *CallService) LeaveCall(id, partID, clientID string) (*models.Call, error) {
	opStart := time.Now()
	call, err := s.store.FindCall(id)
	if err != nil {
		return nil, err
	}
	if call == nil {
		log.Warn().Str("call", id).Str("participant", partID).Msg("Call not found to leave it.")
		return nil, nil
	}
	if err := s.attachOwner(call); err != nil {
		return nil, err
	}

	if call.State != models.CallStateStarted && call.State != models.CallStatePaused {
		// Leaving an already stopped call needs no action.
		return call, nil
	}

	var leaved *models.Participant
	leavedNum := 0
	for idx := range call.Participants {
		part := &call.Participants[idx]
		if part.ID == partID {
			leaved = part
			leavedNum++
			continue
		}
		if part.Type == models.ParticipantTypeUser && !part.IsJoined() {
			leavedNum++
		}
	}
	if leaved == nil {
		return call, nil
	}

	if leaved.IsGuest() {
		// Guests are not retained after leaving.
		if err := s.store.RemoveParticipant(call.ID, partID); err != nil {
			return nil, err
		}
		call.RemoveParticipant(partID)
	} else {
		leaved.State = models.ParticipantLeaved
		leaved.ClientID = ""
		if err := s.store.SaveParticipant(call.ID, *leaved); err != nil {
			return nil, err
		}
	}

	update := partUpdate(call, partID)
	for _, part := range call.Participants {
		s.notifier.FirePartLeaved(part.ID, update)
	}
	s.logOperation(models.OperationCallLeaved, partID, call, opStart)
	s.stream.Emit(models.OperationCallLeaved, partID, *call)

	if call.IsGroup {
		allLeft := lo.EveryBy(call.Participants, func(part models.Participant) bool {
			return !part.IsJoined()
		})
		if allLeft || len(call.Participants) == 0 {
			if err := s.stopCall(call, partID, false); err != nil {
				return nil, err
			}
			s.logOperation(models.OperationCallStopped, partID, call, opStart)
		}
	} else if len(call.Participants)-leavedNum <= 1 {
		if err := s.stopCall(call, partID, true); err != nil {
			return nil, err
		}
		s.logOperation(models.OperationCallDeleted, partID, call, opStart)
	}
	return call, nil
}

// StopCall stops the call; with remove it is deleted with every dependent
// row, otherwise the stopped state is kept for informational queries while
// invites and guests are cleared.
func (s *CallService) StopCall(id, actorID string, remove bool) (*models.Call, error) {
	opStart := time.Now()
	call, err := s.GetCall(id)
	if err != nil {
		return nil, err
	}
	if err := s.stopCall(call, actorID, remove); err != nil {
		return nil, err
	}
	if remove {
		s.logOperation(models.OperationCallDeleted, actorID, call, opStart)
	} else {
		s.logOperation(models.OperationCallStopped, actorID, call, opStart)
	}
	return call, nil
}

func (s *CallService) stopCall(call *models.Call, actorID string, remove bool) error {
	call.State = models.CallStateStopped
	call.InviteID = ""

	if remove {
		if err := s.store.DeleteCall(call.ID); err != nil {
			return err
		}
	} else {
		if err := s.store.Atomic(func(tx CallStore) error {
			if err := tx.UpdateCall(call); err != nil {
				return err
			}
			if err := tx.DeleteCallInvites(call.ID); err != nil {
				return err
			}
			// Guests cannot survive a stop.
			for _, part := range call.Participants {
				if part.IsGuest() {
					if err := tx.RemoveParticipant(call.ID, part.ID); err != nil {
						return err
					}
				}
			}
			return nil
		}); err != nil {
			return err
		}
		call.Participants = lo.Reject(call.Participants, func(part models.Participant, _ int) bool {
			return part.IsGuest()
		})
	}

	if provider := s.providers.GetProvider(call.ProviderType); provider != nil {
		if err := provider.OnCallStopped(call); err != nil {
			log.Warn().Err(err).Str("call", call.ID).Msg("Call provider stop hook failed.")
		}
	}

	if call.IsGroup {
		for _, part := range call.Participants {
			if part.Type != models.ParticipantTypeUser && part.Type != models.ParticipantTypeGuest {
				continue
			}
			// On deletion the initiator already knows; everyone else, and
			// every client of the same user on a plain stop, is told.
			if actorID == "" || !(remove && actorID == part.ID) {
				s.notifier.FireStateChanged(part.ID, stateUpdate(call, models.CallStateStopped))
			}
		}
	} else {
		// Even the stopping user is notified: other clients of the same
		// user may be listening.
		for _, part := range call.Participants {
			if part.Type == models.ParticipantTypeUser {
				s.notifier.FireStateChanged(part.ID, stateUpdate(call, models.CallStateStopped))
			}
		}
	}

	operation := models.OperationCallStopped
	if remove {
		operation = models.OperationCallDeleted
	}
	s.stream.Emit(operation, actorID, *call)
	return nil
}

// AddParticipant inserts a user into the roster without notification; it
// exists for external systems reconciling membership, not for presence.
func (s *CallService) AddParticipant(id, partID string) error {
	if !isValidID(partID) {
		return models.NewArgumentError("wrong participant id (%s)", partID)
	}
	call, err := s.GetCall(id)
	if err != nil {
		return err
	}
	partType := models.ParticipantTypeUser
	user, err := s.resolver.ResolveUser(partID)
	if err != nil {
		return models.NewIdentityError(err, "error resolving participant %s", partID)
	}
	if user == nil {
		partType = models.ParticipantTypeExternal
	}
	return s.store.AddParticipant(call.ID, models.Participant{
		ID:   partID,
		Type: partType,
	})
}

// AddGuest admits a guest to the roster; guests are removed again when
// they leave or the call stops.
func (s *CallService) AddGuest(id, guestID string) error {
	if !isValidID(guestID) {
		return models.NewArgumentError("wrong guest id (%s)", guestID)
	}
	call, err := s.GetCall(id)
	if err != nil {
		return err
	}
	return s.store.AddParticipant(call.ID, models.Participant{
		ID:   guestID,
		Type: models.ParticipantTypeGuest,
	})
}

// UpdateParticipants reconciles the stored user roster against the given
// set: absent ids are deleted, new ids inserted. Guests are untouched and
// nothing is notified; bulk sync is maintenance, not a live event.
func (s *CallService) UpdateParticipants(id string, ids []string) error {
	call, err := s.GetCall(id)
	if err != nil {
		return err
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, partID := range ids {
		if !isValidID(partID) {
			return models.NewArgumentError("wrong participant id (%s)", partID)
		}
		wanted[partID] = struct{}{}
	}

	return s.store.Atomic(func(tx CallStore) error {
		for _, part := range call.Participants {
			if part.IsGuest() {
				continue
			}
			if _, keep := wanted[part.ID]; !keep {
				if err := tx.RemoveParticipant(call.ID, part.ID); err != nil {
					return err
				}
			}
		}
		for partID := range wanted {
			if call.FindParticipant(partID) != nil {
				continue
			}
			partType := models.ParticipantTypeUser
			user, err := s.resolver.ResolveUser(partID)
			if err != nil {
				return models.NewIdentityError(err, "error resolving participant %s", partID)
			}
			if user == nil {
				partType = models.ParticipantTypeExternal
			}
			if err := tx.AddParticipant(call.ID, models.Participant{ID: partID, Type: partType}); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetUserCalls lists the user's group calls with their current states.
func (s *CallService) GetUserCalls(userID string) ([]models.CallStateBrief, error) {
	calls, err := s.store.FindUserGroupCalls(userID)
	if err != nil {
		return nil, err
	}
	return lo.Map(calls, func(call models.Call, _ int) models.CallStateBrief {
		state := call.State
		if state == "" {
			state = models.CallStateStopped
		}
		return models.CallStateBrief{ID: call.ID, State: state}
	}), nil
}

// CheckInvite validates a join-by-link token against the call's current
// invitation; tokens of restarted or stopped calls fail here because the
// invitation rows are gone.
func (s *CallService) CheckInvite(token string) (*models.Call, error) {
	callID, invitationID, err := DecodeInviteToken(token)
	if err != nil {
		return nil, err
	}
	invite, err := s.store.FindInviteByToken(invitationID)
	if err != nil {
		return nil, err
	}
	if invite == nil || invite.CallID != callID {
		return nil, models.NewNotFoundError("invite not found")
	}
	return s.GetCall(callID)
}

func (s *CallService) ListCallInvites(id string) ([]models.Invite, error) {
	if _, err := s.GetCall(id); err != nil {
		return nil, err
	}
	return s.store.ListCallInvites(id)
}

// ---- owner and origin resolution ----

func (s *CallService) resolveOwnerSnapshot(req CreateCallRequest, isGroup bool) (models.Identity, error) {
	if !isGroup {
		user, err := s.resolver.ResolveUser(req.OwnerID)
		if err != nil {
			return nil, models.NewIdentityError(err, "error resolving call owner %s", req.OwnerID)
		}
		if user == nil {
			return nil, models.NewArgumentError("call owner not found: %s", req.OwnerID)
		}
		return user, nil
	}

	group, err := s.resolver.ResolveGroup(req.OwnerID, req.OwnerType)
	if err != nil {
		return nil, models.NewIdentityError(err, "error resolving call owner %s", req.OwnerID)
	}
	if group == nil {
		return nil, models.NewArgumentError("call owner group not found: %s", req.OwnerID)
	}
	// Live membership matters only when the call starts right away; a
	// scheduled call resolves members at start time instead.
	if !req.Start {
		group.Members = nil
	}
	return group, nil
}

func (s *CallService) attachOwner(call *models.Call) error {
	if call.IsGroup {
		group, err := s.resolver.ResolveGroup(call.OwnerID, call.OwnerType)
		if err != nil {
			return models.NewIdentityError(err, "error resolving call owner %s", call.OwnerID)
		}
		if group == nil {
			group = &models.GroupIdentity{ID: call.OwnerID, Type: call.OwnerType}
			if call.OwnerType == models.OwnerTypeChatRoom {
				title, ok := call.Settings["roomTitle"].(string)
				if !ok || title == "" {
					return models.NewSettingsError("saved call has no room settings: %s", call.ID)
				}
				group.Title = title
			}
		}
		call.Owner = group
		return nil
	}

	user, err := s.resolver.ResolveUser(call.OwnerID)
	if err != nil {
		return models.NewIdentityError(err, "error resolving call owner %s", call.OwnerID)
	}
	if user == nil {
		user = &models.UserIdentity{ID: call.OwnerID, Title: call.OwnerID}
	}
	call.Owner = user
	return nil
}

// computeOrigins builds the static allow-list from named users and spaces.
// Every named identity must resolve; silently dropping one would corrupt
// the invite intent.
func (s *CallService) computeOrigins(participants, spaces []string) ([]models.Origin, error) {
	var origins []models.Origin
	for _, partID := range participants {
		if !isValidID(partID) {
			return nil, models.NewArgumentError("wrong participant id (%s)", partID)
		}
		user, err := s.resolver.ResolveUser(partID)
		if err != nil {
			return nil, models.NewIdentityError(err, "error resolving participant %s", partID)
		}
		if user == nil {
			return nil, models.NewArgumentError("participant not found: %s", partID)
		}
		origins = append(origins, models.Origin{ID: partID, Type: models.OriginTypeUser})
	}
	for _, spaceID := range spaces {
		if !isValidID(spaceID) {
			return nil, models.NewArgumentError("wrong space id (%s)", spaceID)
		}
		space, err := s.resolver.ResolveGroup(spaceID, models.OwnerTypeSpace)
		if err != nil {
			return nil, models.NewIdentityError(err, "error resolving space %s", spaceID)
		}
		if space == nil {
			return nil, models.NewArgumentError("space not found: %s", spaceID)
		}
		origins = append(origins, models.Origin{ID: spaceID, Type: models.OriginTypeSpace})
	}
	return origins, nil
}

// startingParticipants builds the initial roster of a call created in the
// started state: the resolved owner membership for groups, the owner plus
// the named parties for P2P. Everyone starts leaved except the actor.
func (s *CallService) startingParticipants(call *models.Call, actorID string, named []string) []models.Participant {
	var ids []string
	if group, ok := call.Owner.(*models.GroupIdentity); ok && call.IsGroup {
		for memberID := range group.Members {
			ids = append(ids, memberID)
		}
		for _, partID := range named {
			ids = append(ids, partID)
		}
	} else {
		ids = append(ids, call.OwnerID)
		ids = append(ids, named...)
	}
	ids = lo.Uniq(ids)

	parts := make([]models.Participant, 0, len(ids))
	for _, partID := range ids {
		part := models.Participant{
			CallID: call.ID,
			ID:     partID,
			Type:   models.ParticipantTypeUser,
			State:  models.ParticipantLeaved,
		}
		if partID == actorID {
			part.State = models.ParticipantJoined
		}
		parts = append(parts, part)
	}
	return parts
}

func roomSettings(title string) (datatypes.JSONMap, error) {
	settings := datatypes.JSONMap{"roomTitle": title}
	if len(title) > dataMaxLength {
		return nil, models.NewSettingsError("call settings too long (room title)")
	}
	return settings, nil
}

func linkInvite(call *models.Call) models.Invite {
	return models.Invite{
		CallID:       call.ID,
		Identity:     "*",
		IdentityType: "link",
		InvitationID: call.InviteID,
	}
}

func stateUpdate(call *models.Call, state string) models.CallUpdate {
	return models.CallUpdate{
		CallID:       call.ID,
		ProviderType: call.ProviderType,
		CallState:    state,
		OwnerID:      call.OwnerID,
		OwnerType:    call.OwnerType,
	}
}

func partUpdate(call *models.Call, partID string) models.CallUpdate {
	return models.CallUpdate{
		CallID:       call.ID,
		ProviderType: call.ProviderType,
		PartID:       partID,
		OwnerID:      call.OwnerID,
		OwnerType:    call.OwnerType,
	}
}

func (s *CallService) logOperation(operation, actorID string, call *models.Call, opStart time.Time) {
	log.Info().
		Str("operation", operation).
		Str("user", actorID).
		Str("call", call.ID).
		Str("owner", call.OwnerID).
		Str("owner_type", call.OwnerType).
		Str("provider", call.ProviderType).
		Str("state", call.State).
		Bool("is_group", call.IsGroup).
		Int("participants", len(call.Participants)).
		Dur("duration", time.Since(opStart)).
		Msg("Call operation accomplished.")
}
