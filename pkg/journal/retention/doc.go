// Package retention prunes the exchange journal.
//
// Two limits apply, each disabled when zero:
//
//   - journal.retention.days: exchanges started longer ago are deleted
//   - journal.retention.max_records: the oldest exchanges beyond this count
//     are deleted
//
// Pruning runs on journal.retention.prune_schedule, a standard cron
// expression evaluated by github.com/robfig/cron/v3 (default "0 3 * * *").
//
//	pruner := retention.NewPruner(store, cfg.Journal.Retention, logger, collector)
//	if err := pruner.Start(ctx); err != nil {
//	    return err
//	}
//	defer pruner.Stop()
package retention
