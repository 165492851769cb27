package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/uzmath/mathtest-backend/internal/service"
)

const (
	reaperInterval  = 30 * time.Second
	reaperBatchSize = 100
)

// ReaperWorker periodically expires sessions whose duration plus grace
// ran out without a submit. Abandoned tabs and crashed clients end up
// here.
type ReaperWorker struct {
	sessionService *service.SessionService
	log            zerolog.Logger
}

// NewReaperWorker creates a new ReaperWorker.
func NewReaperWorker(sessionService *service.SessionService, log zerolog.Logger) *ReaperWorker {
	return &ReaperWorker{
		sessionService: sessionService,
		log:            log.With().Str("component", "reaper_worker").Logger(),
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (w *ReaperWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	ticker := time.NewTicker(reaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			expired, err := w.sessionService.ExpireOverdue(ctx, reaperBatchSize)
			if err != nil {
				w.log.Error().Err(err).Msg("Sweep failed")
				continue
			}
			if expired > 0 {
				w.log.Info().Int("count", expired).Msg("Expired overdue sessions")
			}
		}
	}
}
