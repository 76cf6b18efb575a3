package services

import (
	"sort"
	"testing"
	"time"

	"github.com/callspace/conferencing/pkg/internal/models"
)

// memoryStore is an in-memory CallStore for coordinator tests. Atomic runs
// the function directly; rollback semantics are the database's concern.
type memoryStore struct {
	calls   map[string]*models.Call
	invites map[string][]models.Invite
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		calls:   make(map[string]*models.Call),
		invites: make(map[string][]models.Invite),
	}
}

func copyCall(call *models.Call) *models.Call {
	out := *call
	out.Participants = append([]models.Participant(nil), call.Participants...)
	out.Origins = append([]models.Origin(nil), call.Origins...)
	out.Owner = nil
	return &out
}

func (s *memoryStore) FindCall(id string) (*models.Call, error) {
	call, ok := s.calls[id]
	if !ok {
		return nil, nil
	}
	return copyCall(call), nil
}

func (s *memoryStore) CreateCall(call *models.Call) error {
	if _, ok := s.calls[call.ID]; ok {
		return models.NewConflictError("call id already exists: %s", call.ID)
	}
	stored := copyCall(call)
	for idx := range stored.Participants {
		stored.Participants[idx].CallID = call.ID
	}
	for idx := range stored.Origins {
		stored.Origins[idx].CallID = call.ID
	}
	s.calls[call.ID] = stored
	return nil
}

func (s *memoryStore) UpdateCall(call *models.Call) error {
	stored, ok := s.calls[call.ID]
	if !ok {
		return models.NewNotFoundError("call not found: %s", call.ID)
	}
	stored.Title = call.Title
	stored.State = call.State
	stored.Settings = call.Settings
	stored.LastDate = call.LastDate
	stored.StartDate = call.StartDate
	stored.EndDate = call.EndDate
	stored.InviteID = call.InviteID
	return nil
}

func (s *memoryStore) UpdateCallAndParticipants(call *models.Call) error {
	if err := s.UpdateCall(call); err != nil {
		return err
	}
	for _, part := range call.Participants {
		if err := s.SaveParticipant(call.ID, part); err != nil {
			return err
		}
	}
	return nil
}

func (s *memoryStore) DeleteCall(id string) error {
	delete(s.calls, id)
	delete(s.invites, id)
	return nil
}

func (s *memoryStore) AddParticipant(callID string, part models.Participant) error {
	call, ok := s.calls[callID]
	if !ok {
		return models.NewNotFoundError("call not found: %s", callID)
	}
	if call.FindParticipant(part.ID) != nil {
		return nil
	}
	part.CallID = callID
	call.Participants = append(call.Participants, part)
	return nil
}

func (s *memoryStore) SaveParticipant(callID string, part models.Participant) error {
	call, ok := s.calls[callID]
	if !ok {
		return models.NewNotFoundError("call not found: %s", callID)
	}
	stored := call.FindParticipant(part.ID)
	if stored == nil {
		return models.NewNotFoundError("participant %s not found for %s", part.ID, callID)
	}
	stored.State = part.State
	stored.ClientID = part.ClientID
	return nil
}

func (s *memoryStore) RemoveParticipant(callID, partID string) error {
	if call, ok := s.calls[callID]; ok {
		call.RemoveParticipant(partID)
	}
	return nil
}

func (s *memoryStore) ReplaceOrigins(callID string, origins []models.Origin) error {
	call, ok := s.calls[callID]
	if !ok {
		return models.NewNotFoundError("call not found: %s", callID)
	}
	call.Origins = append([]models.Origin(nil), origins...)
	return nil
}

func (s *memoryStore) FindGroupCallByOwner(ownerID, ownerType string) (*models.Call, error) {
	for _, call := range s.calls {
		if !call.IsGroup || call.OwnerID != ownerID {
			continue
		}
		if ownerType != "" && call.OwnerType != ownerType {
			continue
		}
		return copyCall(call), nil
	}
	return nil, nil
}

func (s *memoryStore) FindUserGroupCalls(userID string) ([]models.Call, error) {
	var out []models.Call
	for _, call := range s.calls {
		if call.IsGroup && call.FindParticipant(userID) != nil {
			out = append(out, *copyCall(call))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) DeleteStaleUserCalls(before time.Time) (int64, error) {
	var count int64
	for id, call := range s.calls {
		if !call.IsGroup && call.LastDate.Before(before) {
			delete(s.calls, id)
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) SaveInvite(invite models.Invite) error {
	list := s.invites[invite.CallID]
	for idx := range list {
		if list[idx].Identity == invite.Identity {
			list[idx] = invite
			return nil
		}
	}
	s.invites[invite.CallID] = append(list, invite)
	return nil
}

func (s *memoryStore) ListCallInvites(callID string) ([]models.Invite, error) {
	return append([]models.Invite(nil), s.invites[callID]...), nil
}

func (s *memoryStore) FindInviteByToken(invitationID string) (*models.Invite, error) {
	for _, list := range s.invites {
		for _, invite := range list {
			if invite.InvitationID == invitationID {
				found := invite
				return &found, nil
			}
		}
	}
	return nil, nil
}

func (s *memoryStore) DeleteCallInvites(callID string) error {
	delete(s.invites, callID)
	return nil
}

func (s *memoryStore) Atomic(fn func(CallStore) error) error {
	return fn(s)
}

// fakeResolver serves a fixed directory.
type fakeResolver struct {
	users  map[string]*models.UserIdentity
	groups map[string]*models.GroupIdentity
}

func (r *fakeResolver) ResolveUser(id string) (*models.UserIdentity, error) {
	return r.users[id], nil
}

func (r *fakeResolver) ResolveGroup(id string, kind string) (*models.GroupIdentity, error) {
	group, ok := r.groups[id]
	if !ok || group.Type != kind {
		return nil, nil
	}
	// Copy so callers can strip the member map.
	out := *group
	out.Members = make(map[string]*models.UserIdentity, len(group.Members))
	for memberID, member := range group.Members {
		out.Members[memberID] = member
	}
	return &out, nil
}

type fakeProvider struct {
	started []string
	stopped []string
}

func (p *fakeProvider) Type() string  { return "webrtc" }
func (p *fakeProvider) Title() string { return "Fake" }

func (p *fakeProvider) OnCallStarted(call *models.Call) error {
	p.started = append(p.started, call.ID)
	return nil
}

func (p *fakeProvider) OnCallStopped(call *models.Call) error {
	p.stopped = append(p.stopped, call.ID)
	return nil
}

func (p *fakeProvider) JoinToken(call *models.Call, userID string, moderator bool) (string, error) {
	return "token-" + call.ID + "-" + userID, nil
}

type fixture struct {
	service  *CallService
	store    *memoryStore
	registry *ListenerRegistry
	notifier *Notifier
	provider *fakeProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemoryStore()
	registry := NewListenerRegistry()
	notifier := NewNotifier(registry)
	t.Cleanup(notifier.Stop)

	provider := &fakeProvider{}
	providers := NewProviderRegistry(nil)
	providers.AddProvider(provider)

	resolver := &fakeResolver{
		users: map[string]*models.UserIdentity{
			"alice": {ID: "alice", Title: "Alice"},
			"bob":   {ID: "bob", Title: "Bob"},
			"carol": {ID: "carol", Title: "Carol"},
		},
		groups: map[string]*models.GroupIdentity{
			"marketing": {
				ID:    "marketing",
				Type:  models.OwnerTypeSpace,
				Title: "Marketing",
				Members: map[string]*models.UserIdentity{
					"alice": {ID: "alice", Title: "Alice"},
					"bob":   {ID: "bob", Title: "Bob"},
				},
			},
		},
	}

	return &fixture{
		service:  NewCallService(store, resolver, registry, notifier, providers, NewEventStream()),
		store:    store,
		registry: registry,
		notifier: notifier,
		provider: provider,
	}
}

func TestCreateP2PCallStarted(t *testing.T) {
	fx := newFixture(t)

	call, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "p2p-1",
		OwnerID:      "alice",
		OwnerType:    models.OwnerTypeUser,
		ProviderType: "webrtc",
		Participants: []string{"bob"},
		Start:        true,
	}, "alice")
	if err != nil {
		t.Fatalf("create call: %v", err)
	}
	if call.State != models.CallStateStarted {
		t.Fatalf("expected started state, got %s", call.State)
	}
	if call.InviteID == "" {
		t.Fatalf("expected an invite id on a started call")
	}
	if call.IsGroup {
		t.Fatalf("user-owned call must not be a group call")
	}

	owner := call.FindParticipant("alice")
	peer := call.FindParticipant("bob")
	if owner == nil || !owner.IsJoined() {
		t.Fatalf("expected the starter joined, got %+v", owner)
	}
	if peer == nil || peer.IsJoined() {
		t.Fatalf("expected the peer leaved, got %+v", peer)
	}

	if len(call.Origins) != 1 || call.Origins[0].ID != "bob" || call.Origins[0].Type != models.OriginTypeUser {
		t.Fatalf("expected one user origin for bob, got %+v", call.Origins)
	}
	if len(fx.provider.started) != 1 {
		t.Fatalf("expected the provider start hook, got %v", fx.provider.started)
	}
}

func TestCreateCallUnknownParticipant(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "p2p-2",
		OwnerID:      "alice",
		OwnerType:    models.OwnerTypeUser,
		ProviderType: "webrtc",
		Participants: []string{"nobody"},
	}, "alice")
	if !models.IsArgumentError(err) {
		t.Fatalf("expected an argument error, got %v", err)
	}
}

func TestCreateGroupCallConflict(t *testing.T) {
	fx := newFixture(t)

	req := CreateCallRequest{
		ID:           "grp-1",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
	}
	if _, err := fx.service.CreateCall(req, "alice"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := fx.service.CreateCall(req, "bob"); !models.IsConflict(err) {
		t.Fatalf("expected a conflict for the same group call id, got %v", err)
	}
}

func TestCreateGroupCallReplacesPreviousOwnerCall(t *testing.T) {
	fx := newFixture(t)

	first := CreateCallRequest{
		ID:           "grp-old",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
	}
	if _, err := fx.service.CreateCall(first, "alice"); err != nil {
		t.Fatalf("first create: %v", err)
	}

	second := first
	second.ID = "grp-new"
	if _, err := fx.service.CreateCall(second, "alice"); err != nil {
		t.Fatalf("second create: %v", err)
	}

	if gone, _ := fx.store.FindCall("grp-old"); gone != nil {
		t.Fatalf("expected the previous owner call deleted")
	}
	if kept, _ := fx.store.FindCall("grp-new"); kept == nil {
		t.Fatalf("expected the new owner call persisted")
	}
}

func TestInvalidateSelfHealsAbandonedP2PCall(t *testing.T) {
	fx := newFixture(t)

	fx.store.calls["p2p-stale"] = &models.Call{
		ID:        "p2p-stale",
		OwnerID:   "alice",
		OwnerType: models.OwnerTypeUser,
		State:     models.CallStateStarted,
		Participants: []models.Participant{
			{CallID: "p2p-stale", ID: "alice", Type: models.ParticipantTypeUser, State: models.ParticipantJoined, ClientID: "dead-client"},
		},
	}

	// No listener is registered for the stored client, so the record is
	// stale and must be removed instead of conflicting.
	if err := fx.service.Invalidate("p2p-stale", false); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if call, _ := fx.store.FindCall("p2p-stale"); call != nil {
		t.Fatalf("expected the stale call deleted")
	}
}

func TestInvalidateConflictsWhileClientIsLive(t *testing.T) {
	fx := newFixture(t)

	fx.store.calls["p2p-live"] = &models.Call{
		ID:        "p2p-live",
		OwnerID:   "alice",
		OwnerType: models.OwnerTypeUser,
		State:     models.CallStateStarted,
		Participants: []models.Participant{
			{CallID: "p2p-live", ID: "alice", Type: models.ParticipantTypeUser, State: models.ParticipantJoined, ClientID: "client-1"},
		},
	}
	fx.registry.Add(&UserCallListener{UserID: "alice", ClientID: "client-1"})

	if err := fx.service.Invalidate("p2p-live", false); !models.IsConflict(err) {
		t.Fatalf("expected a conflict while the client is connected, got %v", err)
	}
}

func TestStartGroupCallSyncsMembers(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "grp-sync",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
	}, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}

	// A row of someone who left the space, plus a guest that must survive.
	fx.store.calls["grp-sync"].Participants = []models.Participant{
		{CallID: "grp-sync", ID: "mallory", Type: models.ParticipantTypeUser, State: models.ParticipantLeaved},
		{CallID: "grp-sync", ID: "visitor", Type: models.ParticipantTypeGuest},
	}

	call, err := fx.service.StartCall("grp-sync", "alice", "client-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if call.FindParticipant("mallory") != nil {
		t.Fatalf("expected the departed member removed")
	}
	if call.FindParticipant("visitor") == nil {
		t.Fatalf("expected the guest kept by the sync")
	}
	alice := call.FindParticipant("alice")
	bob := call.FindParticipant("bob")
	if alice == nil || !alice.IsJoined() {
		t.Fatalf("expected the starter joined, got %+v", alice)
	}
	if bob == nil || bob.IsJoined() {
		t.Fatalf("expected the other member leaved, got %+v", bob)
	}
}

func TestStartCallRegeneratesInvite(t *testing.T) {
	fx := newFixture(t)

	call, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "grp-invite",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
		Start:        true,
	}, "alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	firstInvite := call.InviteID

	restarted, err := fx.service.StartCall("grp-invite", "bob", "client-2")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if restarted.InviteID == "" || restarted.InviteID == firstInvite {
		t.Fatalf("expected a fresh invite id on restart")
	}

	invites, _ := fx.store.ListCallInvites("grp-invite")
	if len(invites) != 1 || invites[0].InvitationID != restarted.InviteID {
		t.Fatalf("expected exactly the current invitation persisted, got %+v", invites)
	}
}

func TestJoinCallSelfHealsMissingMemberRow(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "grp-join",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
		Start:        true,
	}, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Simulate a member row that never made it into the roster.
	if err := fx.store.RemoveParticipant("grp-join", "bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	call, err := fx.service.JoinCall("grp-join", "bob", "client-2")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	bob := call.FindParticipant("bob")
	if bob == nil || !bob.IsJoined() || bob.ClientID != "client-2" {
		t.Fatalf("expected bob joined with his client id, got %+v", bob)
	}
}

func TestJoinCallUnknownParticipant(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "grp-outsider",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
		Start:        true,
	}, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := fx.service.JoinCall("grp-outsider", "carol", "client-3"); !models.IsNotFound(err) {
		t.Fatalf("expected not found for a non-member, got %v", err)
	}
}

func TestJoinCallAutoStarts(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "grp-lazy",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
	}, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}

	call, err := fx.service.JoinCall("grp-lazy", "bob", "client-2")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if call.State != models.CallStateStarted {
		t.Fatalf("expected the call auto-started, got %s", call.State)
	}
	bob := call.FindParticipant("bob")
	if bob == nil || !bob.IsJoined() {
		t.Fatalf("expected the joiner joined, got %+v", bob)
	}
}

func TestLeaveP2PCallDeletesWhenOneSideRemains(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "p2p-leave",
		OwnerID:      "alice",
		OwnerType:    models.OwnerTypeUser,
		ProviderType: "webrtc",
		Participants: []string{"bob"},
		Start:        true,
	}, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := fx.service.LeaveCall("p2p-leave", "alice", "client-1"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if call, _ := fx.store.FindCall("p2p-leave"); call != nil {
		t.Fatalf("expected the one-on-one call deleted once one side remains")
	}
	if len(fx.provider.stopped) != 1 {
		t.Fatalf("expected the provider stop hook, got %v", fx.provider.stopped)
	}
}

func TestLeaveGroupCallStopsWhenEveryoneLeft(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "grp-leave",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
		Start:        true,
	}, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := fx.service.JoinCall("grp-leave", "bob", "client-2"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if _, err := fx.service.LeaveCall("grp-leave", "alice", "client-1"); err != nil {
		t.Fatalf("first leave: %v", err)
	}
	if call, _ := fx.store.FindCall("grp-leave"); call == nil || call.State != models.CallStateStarted {
		t.Fatalf("expected the call still running after the first leave")
	}

	if _, err := fx.service.LeaveCall("grp-leave", "bob", "client-2"); err != nil {
		t.Fatalf("second leave: %v", err)
	}
	call, _ := fx.store.FindCall("grp-leave")
	if call == nil {
		t.Fatalf("a stopped group call must stay queryable")
	}
	if call.State != models.CallStateStopped {
		t.Fatalf("expected the call stopped, got %s", call.State)
	}
	if invites, _ := fx.store.ListCallInvites("grp-leave"); len(invites) != 0 {
		t.Fatalf("expected invitations cleared on stop, got %+v", invites)
	}
}

func TestLeaveUnknownCallIsNotAnError(t *testing.T) {
	fx := newFixture(t)

	call, err := fx.service.LeaveCall("no-such-call", "alice", "client-1")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if call != nil {
		t.Fatalf("expected no call, got %+v", call)
	}
}

func TestLeaveDropsGuests(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "grp-guest",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
		Start:        true,
	}, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := fx.service.AddGuest("grp-guest", "visitor"); err != nil {
		t.Fatalf("add guest: %v", err)
	}

	call, err := fx.service.LeaveCall("grp-guest", "visitor", "client-9")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if call.FindParticipant("visitor") != nil {
		t.Fatalf("expected the guest removed on leave")
	}
}

func TestStopGroupCallKeepsRecordWithoutGuests(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "grp-stop",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
		Start:        true,
	}, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := fx.service.AddGuest("grp-stop", "visitor"); err != nil {
		t.Fatalf("add guest: %v", err)
	}

	call, err := fx.service.StopCall("grp-stop", "alice", false)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if call.State != models.CallStateStopped {
		t.Fatalf("expected stopped, got %s", call.State)
	}

	stored, _ := fx.store.FindCall("grp-stop")
	if stored == nil {
		t.Fatalf("expected the stopped call kept")
	}
	if stored.FindParticipant("visitor") != nil {
		t.Fatalf("expected guests purged on stop")
	}
}

func TestStopCallWithRemoveDeletes(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "grp-remove",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
		Start:        true,
	}, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := fx.service.StopCall("grp-remove", "alice", true); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if call, _ := fx.store.FindCall("grp-remove"); call != nil {
		t.Fatalf("expected the call deleted")
	}
}

func TestUpdateParticipantsReconcilesSilently(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "p2p-upd",
		OwnerID:      "alice",
		OwnerType:    models.OwnerTypeUser,
		ProviderType: "webrtc",
		Participants: []string{"bob"},
		Start:        true,
	}, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := fx.service.AddGuest("p2p-upd", "visitor"); err != nil {
		t.Fatalf("add guest: %v", err)
	}

	if err := fx.service.UpdateParticipants("p2p-upd", []string{"alice", "carol"}); err != nil {
		t.Fatalf("update participants: %v", err)
	}

	call, _ := fx.store.FindCall("p2p-upd")
	if call.FindParticipant("bob") != nil {
		t.Fatalf("expected bob removed")
	}
	if call.FindParticipant("carol") == nil {
		t.Fatalf("expected carol added")
	}
	if call.FindParticipant("visitor") == nil {
		t.Fatalf("expected the guest untouched by reconciliation")
	}
}

func TestGetUserCallsListsGroupCalls(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "grp-list",
		OwnerID:      "marketing",
		OwnerType:    models.OwnerTypeSpace,
		ProviderType: "webrtc",
		Start:        true,
	}, "alice"); err != nil {
		t.Fatalf("create: %v", err)
	}

	briefs, err := fx.service.GetUserCalls("bob")
	if err != nil {
		t.Fatalf("get user calls: %v", err)
	}
	if len(briefs) != 1 || briefs[0].ID != "grp-list" || briefs[0].State != models.CallStateStarted {
		t.Fatalf("unexpected briefs: %+v", briefs)
	}
}

func TestCreateCallRejectsUnknownProvider(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.CreateCall(CreateCallRequest{
		ID:           "bad-provider",
		OwnerID:      "alice",
		OwnerType:    models.OwnerTypeUser,
		ProviderType: "teleport",
	}, "alice")
	if !models.IsArgumentError(err) {
		t.Fatalf("expected an argument error for unknown provider, got %v", err)
	}
}

func TestGetCallNotFound(t *testing.T) {
	fx := newFixture(t)

	if _, err := fx.service.GetCall("missing"); !models.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
