package services

import (
	"testing"
	"time"

	"github.com/callspace/conferencing/pkg/internal/models"
)

func waitUpdate(t *testing.T, ch <-chan models.CallUpdate) models.CallUpdate {
	t.Helper()
	select {
	case update := <-ch:
		return update
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for an update")
		return models.CallUpdate{}
	}
}

func TestRegistryHasClient(t *testing.T) {
	registry := NewListenerRegistry()
	listener := &UserCallListener{UserID: "alice", ClientID: "client-1"}

	registry.Add(listener)
	if !registry.HasClient("alice", "client-1") {
		t.Fatalf("expected the client registered")
	}
	if registry.HasClient("alice", "client-2") {
		t.Fatalf("unexpected client match")
	}

	registry.Remove(listener)
	if registry.HasClient("alice", "client-1") {
		t.Fatalf("expected the client gone after remove")
	}
}

func TestNotifierDeliversToEveryUserListener(t *testing.T) {
	registry := NewListenerRegistry()
	notifier := NewNotifier(registry)
	defer notifier.Stop()

	first := make(chan models.CallUpdate, 1)
	second := make(chan models.CallUpdate, 1)
	registry.Add(&UserCallListener{
		UserID:         "alice",
		ClientID:       "client-1",
		OnStateChanged: func(update models.CallUpdate) { first <- update },
	})
	registry.Add(&UserCallListener{
		UserID:         "alice",
		ClientID:       "client-2",
		OnStateChanged: func(update models.CallUpdate) { second <- update },
	})

	notifier.FireStateChanged("alice", models.CallUpdate{CallID: "c1", CallState: models.CallStateStarted})

	for _, ch := range []chan models.CallUpdate{first, second} {
		update := waitUpdate(t, ch)
		if update.CallID != "c1" || update.CallState != models.CallStateStarted {
			t.Fatalf("unexpected update: %+v", update)
		}
	}
}

func TestNotifierPreservesOrder(t *testing.T) {
	registry := NewListenerRegistry()
	notifier := NewNotifier(registry)
	defer notifier.Stop()

	updates := make(chan models.CallUpdate, 8)
	registry.Add(&UserCallListener{
		UserID:       "bob",
		ClientID:     "client-1",
		OnPartJoined: func(update models.CallUpdate) { updates <- update },
		OnPartLeaved: func(update models.CallUpdate) { updates <- update },
	})

	notifier.FirePartJoined("bob", models.CallUpdate{CallID: "c1", PartID: "alice"})
	notifier.FirePartLeaved("bob", models.CallUpdate{CallID: "c1", PartID: "alice"})

	if first := waitUpdate(t, updates); first.PartID != "alice" {
		t.Fatalf("unexpected first update: %+v", first)
	}
	second := waitUpdate(t, updates)
	if second.CallID != "c1" {
		t.Fatalf("unexpected second update: %+v", second)
	}
}

func TestNotifierSkipsOtherUsers(t *testing.T) {
	registry := NewListenerRegistry()
	notifier := NewNotifier(registry)
	defer notifier.Stop()

	wrong := make(chan models.CallUpdate, 1)
	right := make(chan models.CallUpdate, 1)
	registry.Add(&UserCallListener{
		UserID:         "carol",
		ClientID:       "client-1",
		OnStateChanged: func(update models.CallUpdate) { wrong <- update },
	})
	registry.Add(&UserCallListener{
		UserID:         "dave",
		ClientID:       "client-1",
		OnStateChanged: func(update models.CallUpdate) { right <- update },
	})

	notifier.FireStateChanged("dave", models.CallUpdate{CallID: "c2"})

	if update := waitUpdate(t, right); update.CallID != "c2" {
		t.Fatalf("unexpected update: %+v", update)
	}
	select {
	case update := <-wrong:
		t.Fatalf("unexpected delivery to another user: %+v", update)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRemoveClientDropsOnlyMatchingListeners(t *testing.T) {
	registry := NewListenerRegistry()
	keep := &UserCallListener{UserID: "erin", ClientID: "client-1"}
	drop := &UserCallListener{UserID: "erin", ClientID: "client-2"}
	registry.Add(keep)
	registry.Add(drop)

	if !registry.RemoveClient("erin", "client-2") {
		t.Fatalf("expected a removal")
	}
	if registry.HasClient("erin", "client-2") {
		t.Fatalf("expected client-2 gone")
	}
	if !registry.HasClient("erin", "client-1") {
		t.Fatalf("expected client-1 kept")
	}
}
