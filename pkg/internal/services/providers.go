package services

import (
	"errors"
	"sync"

	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CallProvider is the abstract contract of a pluggable call connector.
// Providers only exchange opaque signaling identifiers; the coordinator
// never depends on their media semantics.
type CallProvider interface {
	Type() string
	Title() string
	// OnCallStarted and OnCallStopped are activation hooks; their failure
	// does not fail the call operation, only loses the provider session.
	OnCallStarted(call *models.Call) error
	OnCallStopped(call *models.Call) error
	// JoinToken mints an opaque credential a client presents to the
	// provider's media plane.
	JoinToken(call *models.Call, userID string, moderator bool) (string, error)
}

// ProviderRegistry keeps registered providers and their persisted
// activation state. Consulted for type validation and permission checks
// only, never for call lifecycle logic.
type ProviderRegistry struct {
	db        *gorm.DB
	mutex     sync.RWMutex
	providers map[string]CallProvider
}

func NewProviderRegistry(db *gorm.DB) *ProviderRegistry {
	return &ProviderRegistry{
		db:        db,
		providers: make(map[string]CallProvider),
	}
}

func (r *ProviderRegistry) AddProvider(provider CallProvider) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.providers[provider.Type()]; ok {
		log.Warn().Str("type", provider.Type()).Msg("Call provider type already registered, skipped.")
		return
	}
	r.providers[provider.Type()] = provider
}

// GetProvider returns the provider of the type when it is registered and
// active, nil otherwise.
func (r *ProviderRegistry) GetProvider(providerType string) CallProvider {
	r.mutex.RLock()
	provider, ok := r.providers[providerType]
	r.mutex.RUnlock()
	if !ok {
		return nil
	}
	if !r.isActive(providerType) {
		return nil
	}
	return provider
}

func (r *ProviderRegistry) isActive(providerType string) bool {
	if r.db == nil {
		return true
	}
	var config models.ProviderConfig
	if err := r.db.Where("type = ?", providerType).First(&config).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Str("type", providerType).Msg("Error reading provider configuration.")
		}
		// No saved configuration means active.
		return true
	}
	return config.Active
}

func (r *ProviderRegistry) GetConfigurations() []models.ProviderConfig {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]models.ProviderConfig, 0, len(r.providers))
	for providerType := range r.providers {
		out = append(out, models.ProviderConfig{
			Type:   providerType,
			Active: r.isActive(providerType),
		})
	}
	return out
}

func (r *ProviderRegistry) SaveConfiguration(config models.ProviderConfig) error {
	r.mutex.RLock()
	_, known := r.providers[config.Type]
	r.mutex.RUnlock()
	if !known {
		return models.NewNotFoundError("provider not found: %s", config.Type)
	}
	if err := r.db.Save(&config).Error; err != nil {
		return models.NewStorageError(err, "error saving provider configuration %s", config.Type)
	}
	return nil
}
