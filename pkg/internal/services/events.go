package services

import (
	"sync"

	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// EventConsumer receives call event stream entries. Returning an error only
// gets logged; the stream is best-effort and never rolls anything back.
type EventConsumer func(event models.CallEvent) error

// EventStream fans successful call operations out to analytics and audit
// consumers, at most once per consumer.
type EventStream struct {
	mutex     sync.RWMutex
	consumers []EventConsumer
}

func NewEventStream() *EventStream {
	return &EventStream{}
}

func (s *EventStream) Subscribe(consumer EventConsumer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.consumers = append(s.consumers, consumer)
}

func (s *EventStream) Emit(operation, actorID string, call models.Call) {
	s.mutex.RLock()
	consumers := make([]EventConsumer, len(s.consumers))
	copy(consumers, s.consumers)
	s.mutex.RUnlock()

	event := models.CallEvent{Operation: operation, ActorID: actorID, Call: call}
	for _, consumer := range consumers {
		if err := consumer(event); err != nil {
			log.Warn().Err(err).
				Str("operation", operation).
				Str("call", call.ID).
				Msg("Call event consumer failed.")
		}
	}
}
