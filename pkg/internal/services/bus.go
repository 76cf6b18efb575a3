package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	busChannel   = "calls.listeners"
	busKeyPrefix = "calls:listeners:"

	busEntryInit   = "init"
	busEntryClose  = "close"
	busEntryJoined = "joined"
	busEntryLeaved = "leaved"
	busEntryState  = "state"
)

// busEntry is one replicated cache record keyed by (user, client). Init and
// close mirror listener registration; joined, leaved and state carry call
// updates addressed to a client connected somewhere in the cluster.
type busEntry struct {
	Kind     string            `json:"kind"`
	Node     string            `json:"node"`
	UserID   string            `json:"user_id"`
	ClientID string            `json:"client_id"`
	Update   models.CallUpdate `json:"update,omitempty"`
}

// ClusterBus relays call updates between nodes through the replicated
// cache. For every (user, client) announced by another node it installs a
// relay stub into the local registry, so coordinator notifications for that
// user are forwarded into the cache; incoming payload entries matching a
// locally connected client are delivered to that connection directly.
type ClusterBus struct {
	rdb      *redis.Client
	registry *ListenerRegistry
	node     string

	mutex  sync.Mutex
	stubs  map[string]*UserCallListener
	cancel context.CancelFunc
}

func NewClusterBus(rdb *redis.Client, registry *ListenerRegistry) *ClusterBus {
	return &ClusterBus{
		rdb:      rdb,
		registry: registry,
		node:     uuid.NewString(),
		stubs:    make(map[string]*UserCallListener),
	}
}

func (b *ClusterBus) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	if err := b.rebuild(ctx); err != nil {
		cancel()
		return err
	}

	sub := b.rdb.Subscribe(ctx, busChannel)
	go func() {
		defer sub.Close()
		for {
			select {
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var entry busEntry
				if err := jsoniter.UnmarshalFromString(msg.Payload, &entry); err != nil {
					log.Warn().Err(err).Msg("Malformed cluster bus entry, skipped.")
					continue
				}
				b.handle(entry)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (b *ClusterBus) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
}

// rebuild restores the relay table from the replicated key space, so a node
// joining late still relays for clients connected elsewhere.
func (b *ClusterBus) rebuild(ctx context.Context) error {
	iter := b.rdb.Scan(ctx, 0, busKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		node, err := b.rdb.Get(ctx, key).Result()
		if err != nil || node == b.node {
			continue
		}
		rest := strings.TrimPrefix(key, busKeyPrefix)
		userID, clientID, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}
		b.installStub(userID, clientID)
	}
	return iter.Err()
}

// AnnounceInit mirrors a local listener registration into the cluster.
func (b *ClusterBus) AnnounceInit(userID, clientID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.rdb.Set(ctx, busKey(userID, clientID), b.node, 0).Err(); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("Cannot mirror listener registration.")
	}
	b.publish(ctx, busEntry{Kind: busEntryInit, Node: b.node, UserID: userID, ClientID: clientID})
}

func (b *ClusterBus) AnnounceClose(userID, clientID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.rdb.Del(ctx, busKey(userID, clientID)).Err(); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("Cannot clear listener registration.")
	}
	b.publish(ctx, busEntry{Kind: busEntryClose, Node: b.node, UserID: userID, ClientID: clientID})
}

func (b *ClusterBus) publish(ctx context.Context, entry busEntry) {
	payload, _ := jsoniter.MarshalToString(entry)
	if err := b.rdb.Publish(ctx, busChannel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("kind", entry.Kind).Msg("Cannot publish cluster bus entry.")
	}
}

func (b *ClusterBus) relay(kind, userID, clientID string, update models.CallUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b.publish(ctx, busEntry{
		Kind:     kind,
		Node:     b.node,
		UserID:   userID,
		ClientID: clientID,
		Update:   update,
	})
}

func (b *ClusterBus) handle(entry busEntry) {
	switch entry.Kind {
	case busEntryInit:
		if entry.Node != b.node {
			b.installStub(entry.UserID, entry.ClientID)
		}
	case busEntryClose:
		if entry.Node != b.node {
			b.removeStub(entry.UserID, entry.ClientID)
		}
	case busEntryJoined, busEntryLeaved, busEntryState:
		if entry.Node == b.node {
			// Own relays loop back through pub/sub; local clients already
			// got this update from the notifier.
			return
		}
		b.deliver(entry)
	}
}

// installStub registers a relay listener so that local coordinator events
// addressed to the user are forwarded into the cache for the remote client.
func (b *ClusterBus) installStub(userID, clientID string) {
	key := userID + ":" + clientID
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if _, ok := b.stubs[key]; ok {
		return
	}
	stub := &UserCallListener{
		UserID:   userID,
		ClientID: clientID,
		Remote:   true,
		OnStateChanged: func(update models.CallUpdate) {
			b.relay(busEntryState, userID, clientID, update)
		},
		OnPartJoined: func(update models.CallUpdate) {
			b.relay(busEntryJoined, userID, clientID, update)
		},
		OnPartLeaved: func(update models.CallUpdate) {
			b.relay(busEntryLeaved, userID, clientID, update)
		},
	}
	b.stubs[key] = stub
	b.registry.Add(stub)
	log.Debug().Str("user", userID).Str("client", clientID).Msg("Installed remote listener stub.")
}

func (b *ClusterBus) removeStub(userID, clientID string) {
	key := userID + ":" + clientID
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if stub, ok := b.stubs[key]; ok {
		delete(b.stubs, key)
		b.registry.Remove(stub)
		log.Debug().Str("user", userID).Str("client", clientID).Msg("Removed remote listener stub.")
	}
}

// deliver hands a relayed update to the locally connected client it is
// addressed to, bypassing the notifier so it cannot be relayed twice.
func (b *ClusterBus) deliver(entry busEntry) {
	for _, listener := range b.registry.Local(entry.UserID) {
		if listener.ClientID != entry.ClientID {
			continue
		}
		switch entry.Kind {
		case busEntryState:
			if listener.OnStateChanged != nil {
				listener.OnStateChanged(entry.Update)
			}
		case busEntryJoined:
			if listener.OnPartJoined != nil {
				listener.OnPartJoined(entry.Update)
			}
		case busEntryLeaved:
			if listener.OnPartLeaved != nil {
				listener.OnPartLeaved(entry.Update)
			}
		}
	}
}

func busKey(userID, clientID string) string {
	return fmt.Sprintf("%s%s:%s", busKeyPrefix, userID, clientID)
}
