package worker

import (
	"context"

	"catalog/internal/logger"
	"catalog/internal/worker/processors"

	"github.com/robfig/cron/v3"
)

// SyncScheduler enqueues a catalog sync on a cron schedule.
type SyncScheduler struct {
	cron       *cron.Cron
	spec       string
	dispatcher Dispatcher
	limit      int
	logger     *logger.Logger
}

func NewSyncScheduler(spec string, dispatcher Dispatcher, limit int, logger *logger.Logger) *SyncScheduler {
	return &SyncScheduler{
		cron:       cron.New(),
		spec:       spec,
		dispatcher: dispatcher,
		limit:      limit,
		logger:     logger,
	}
}

// Start registers the job and starts the cron runner. An empty spec
// disables scheduling.
func (s *SyncScheduler) Start() error {
	if s.spec == "" {
		s.logger.Info("Sync schedule disabled (SYNC_CRON not set)")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, s.enqueue)
	if err != nil {
		s.logger.Error("Failed to add cron job for sync %q: %v", s.spec, err)
		return err
	}

	s.cron.Start()
	s.logger.Info("Sync scheduler started (%s)", s.spec)
	return nil
}

func (s *SyncScheduler) enqueue() {
	s.logger.Info("Starting scheduled Shopify sync")
	event := processors.NewEvent(processors.EventSync, "", map[string]interface{}{"limit": s.limit})
	if err := s.dispatcher.Dispatch(context.Background(), event); err != nil {
		s.logger.Error("Failed to enqueue scheduled sync: %v", err)
	}
}

// Stop waits for a running job to finish.
func (s *SyncScheduler) Stop() {
	s.logger.Info("Stopping sync scheduler...")
	<-s.cron.Stop().Done()
}
