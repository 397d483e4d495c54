package retention

import (
	"context"
	"time"

	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/journal"
	"mercator-hq/loupe/pkg/telemetry/logging"
	"mercator-hq/loupe/pkg/telemetry/metrics"
)

// Pruner enforces retention on a journal backend.
type Pruner struct {
	storage   journal.Storage
	config    config.RetentionConfig
	logger    *logging.Logger
	metrics   *metrics.Collector
	scheduler *Scheduler

	// now is replaced in tests.
	now func() time.Time
}

// NewPruner creates a pruner for storage. collector may be nil.
func NewPruner(storage journal.Storage, cfg config.RetentionConfig, logger *logging.Logger, collector *metrics.Collector) *Pruner {
	if logger == nil {
		logger = logging.NewNop()
	}

	p := &Pruner{
		storage: storage,
		config:  cfg,
		logger:  logger.With("component", "journal.retention"),
		metrics: collector,
		now:     time.Now,
	}
	p.scheduler = NewScheduler(p)

	return p
}

// Prune deletes exchanges older than the retention period, then trims the
// oldest exchanges beyond MaxRecords. Either phase is skipped when its limit
// is zero. Returns the total number of exchanges deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	// Phase 1: Prune by retention period
	if p.config.Days > 0 {
		cutoff := p.now().AddDate(0, 0, -p.config.Days)

		deleted, err := p.storage.DeleteBefore(ctx, cutoff)
		if err != nil {
			return totalDeleted, &journal.RetentionError{Phase: journal.PhaseAge, Err: err}
		}
		totalDeleted += deleted

		p.logger.Debug("pruned exchanges by age",
			"deleted_count", deleted,
			"cutoff_time", cutoff,
		)
	}

	// Phase 2: Prune by max record count
	if p.config.MaxRecords > 0 {
		deleted, err := p.storage.Trim(ctx, p.config.MaxRecords)
		if err != nil {
			return totalDeleted, &journal.RetentionError{Phase: journal.PhaseCount, Err: err}
		}
		totalDeleted += deleted

		p.logger.Debug("pruned exchanges by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	p.metrics.RecordJournalPruned(totalDeleted)

	if totalDeleted > 0 {
		p.logger.Info("journal pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
