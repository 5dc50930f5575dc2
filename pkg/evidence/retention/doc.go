// Package retention prunes evidence records by age and by count.
//
//   - RetentionDays deletes records that started more than N days ago
//   - MaxRecords keeps only the newest N records
//   - ArchivePath writes pruned records to a JSON file first
//
// Pruning runs on a cron schedule through github.com/robfig/cron/v3:
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 30,
//	    PruneSchedule: "0 3 * * *", // Daily at 3 AM
//	})
//	if err := pruner.Start(ctx); err != nil {
//	    return err
//	}
//	defer pruner.Stop()
package retention
