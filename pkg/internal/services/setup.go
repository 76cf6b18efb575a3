package services

import (
	"github.com/callspace/conferencing/pkg/internal/cache"
	"github.com/callspace/conferencing/pkg/internal/database"
	"github.com/callspace/conferencing/pkg/internal/directory"
)

var (
	Registry  *ListenerRegistry
	Notices   *Notifier
	Bus       *ClusterBus
	Providers *ProviderRegistry
	Stream    *EventStream
)

// SetupServices wires the call coordinator and its collaborators on top of
// the shared database and cache connections. Call after database.NewSource
// and cache.NewCache.
func SetupServices() error {
	Registry = NewListenerRegistry()
	Notices = NewNotifier(Registry)
	Stream = NewEventStream()

	Providers = NewProviderRegistry(database.C)
	Providers.AddProvider(NewLiveKitProvider())

	Bus = NewClusterBus(cache.R, Registry)
	if err := Bus.Start(); err != nil {
		return err
	}

	Calls = NewCallService(
		NewGormStore(database.C),
		directory.NewService(database.C),
		Registry,
		Notices,
		Providers,
		Stream,
	)
	return nil
}
