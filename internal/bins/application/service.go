package application

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	bins "smartwaste-cloud/internal/bins/domain"
	"smartwaste-cloud/internal/observability/metrics"
	telemetry "smartwaste-cloud/internal/telemetry/domain"
)

// Broadcaster pushes one serialized snapshot to every live subscriber.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// Clock provides observation timestamps.
type Clock interface {
	Now() time.Time
}

// UpdaterService applies decoded telemetry to the bin registry and fans the
// resulting snapshot out. It is the only writer of bin state.
type UpdaterService struct {
	registry    *bins.Registry
	broadcaster Broadcaster
	clock       Clock
	logger      *log.Logger
}

// NewUpdaterService constructs the state updater.
func NewUpdaterService(registry *bins.Registry, broadcaster Broadcaster, clock Clock, logger *log.Logger) (*UpdaterService, error) {
	if registry == nil {
		return nil, errors.New("state updater: nil registry")
	}
	if broadcaster == nil {
		return nil, errors.New("state updater: nil broadcaster")
	}
	if clock == nil {
		return nil, errors.New("state updater: nil clock")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &UpdaterService{registry: registry, broadcaster: broadcaster, clock: clock, logger: logger}, nil
}

// Apply mutates the registry in provisioning order, then broadcasts the
// serialized snapshot. The broadcast is unconditional: a message that
// changed nothing still produces one.
func (s *UpdaterService) Apply(update telemetry.Update) {
	observedAt := s.clock.Now()
	for _, id := range s.registry.IDs() {
		level, ok := update[id]
		if !ok {
			continue
		}
		if _, err := s.registry.ApplyLevel(id, level, observedAt); err != nil {
			s.logger.Printf("state updater: apply %s: %v", id, err)
		}
	}

	payload, err := json.Marshal(s.registry.Snapshot())
	if err != nil {
		s.logger.Printf("state updater: marshal snapshot: %v", err)
		return
	}
	s.broadcaster.Broadcast(payload)
	metrics.IncBroadcast()
}
