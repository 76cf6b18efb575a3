package services

import (
	"sync"

	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// UserCallListener receives call updates addressed to one user on one
// client connection. Callbacks must not block; slow consumers should
// buffer on their own side.
type UserCallListener struct {
	UserID   string
	ClientID string

	// Remote marks a relay stub installed for a client connected to
	// another cluster node.
	Remote bool

	OnStateChanged func(update models.CallUpdate)
	OnPartJoined   func(update models.CallUpdate)
	OnPartLeaved   func(update models.CallUpdate)
}

// ListenerRegistry keeps per-user sets of live listeners. Add, remove and
// dispatch are safe to call concurrently.
type ListenerRegistry struct {
	mutex sync.RWMutex
	users map[string]map[*UserCallListener]struct{}
}

func NewListenerRegistry() *ListenerRegistry {
	return &ListenerRegistry{
		users: make(map[string]map[*UserCallListener]struct{}),
	}
}

func (r *ListenerRegistry) Add(listener *UserCallListener) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	set, ok := r.users[listener.UserID]
	if !ok {
		set = make(map[*UserCallListener]struct{})
		r.users[listener.UserID] = set
	}
	set[listener] = struct{}{}
}

func (r *ListenerRegistry) Remove(listener *UserCallListener) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if set, ok := r.users[listener.UserID]; ok {
		delete(set, listener)
		if len(set) == 0 {
			delete(r.users, listener.UserID)
		}
	}
}

// RemoveClient drops every listener of the user bound to the client id and
// reports whether any was found.
func (r *ListenerRegistry) RemoveClient(userID, clientID string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	removed := false
	if set, ok := r.users[userID]; ok {
		for listener := range set {
			if listener.ClientID == clientID {
				delete(set, listener)
				removed = true
			}
		}
		if len(set) == 0 {
			delete(r.users, userID)
		}
	}
	return removed
}

// HasClient reports whether the user has a live listener for the client id
// anywhere in the cluster (relay stubs count).
func (r *ListenerRegistry) HasClient(userID, clientID string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for listener := range r.users[userID] {
		if listener.ClientID == clientID {
			return true
		}
	}
	return false
}

// Local returns the user's listeners for locally connected clients only.
func (r *ListenerRegistry) Local(userID string) []*UserCallListener {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	var out []*UserCallListener
	for listener := range r.users[userID] {
		if !listener.Remote {
			out = append(out, listener)
		}
	}
	return out
}

func (r *ListenerRegistry) snapshot(userID string) []*UserCallListener {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]*UserCallListener, 0, len(r.users[userID]))
	for listener := range r.users[userID] {
		out = append(out, listener)
	}
	return out
}

// Notifier fans call updates out to user listeners. Dispatch runs on a
// single worker so updates for one call are observed in commit order, and
// the requester never blocks on listener callbacks.
type Notifier struct {
	registry *ListenerRegistry
	queue    chan func()
	done     chan struct{}
}

func NewNotifier(registry *ListenerRegistry) *Notifier {
	n := &Notifier{
		registry: registry,
		queue:    make(chan func(), 4096),
		done:     make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *Notifier) run() {
	for {
		select {
		case task := <-n.queue:
			task()
		case <-n.done:
			return
		}
	}
}

func (n *Notifier) Stop() {
	close(n.done)
}

func (n *Notifier) enqueue(task func()) {
	select {
	case n.queue <- task:
	default:
		log.Warn().Msg("Notifier queue full, dropping call update.")
	}
}

// FireStateChanged notifies every listener of the user about a call state
// transition. Failures inside callbacks are the callback's concern; the
// storage mutation behind the update is already committed.
func (n *Notifier) FireStateChanged(userID string, update models.CallUpdate) {
	n.enqueue(func() {
		for _, listener := range n.registry.snapshot(userID) {
			if listener.OnStateChanged != nil {
				listener.OnStateChanged(update)
			}
		}
	})
}

func (n *Notifier) FirePartJoined(userID string, update models.CallUpdate) {
	n.enqueue(func() {
		for _, listener := range n.registry.snapshot(userID) {
			if listener.OnPartJoined != nil {
				listener.OnPartJoined(update)
			}
		}
	})
}

func (n *Notifier) FirePartLeaved(userID string, update models.CallUpdate) {
	n.enqueue(func() {
		for _, listener := range n.registry.snapshot(userID) {
			if listener.OnPartLeaved != nil {
				listener.OnPartLeaved(update)
			}
		}
	})
}
