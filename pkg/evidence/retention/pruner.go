package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mercator-hq/playground/pkg/config"
	"mercator-hq/playground/pkg/evidence"
	"mercator-hq/playground/pkg/evidence/export"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain evidence.
	// 0 means keep evidence forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchivePath, when set, is the directory pruned records are written to
	// as JSON before deletion.
	ArchivePath string

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: config.DefaultEvidenceRetentionDays,
		PruneSchedule: config.DefaultEvidencePruneSchedule,
	}
}

// ConfigFrom builds a retention configuration from the evidence section.
func ConfigFrom(cfg config.EvidenceConfig) *Config {
	return &Config{
		RetentionDays: cfg.RetentionDays,
		PruneSchedule: cfg.PruneSchedule,
		ArchivePath:   cfg.ArchivePath,
		MaxRecords:    cfg.MaxRecords,
	}
}

// Pruner enforces retention policies on evidence records.
type Pruner struct {
	storage   evidence.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	now       func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(storage evidence.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "evidence.retention"),
		now:     time.Now,
	}

	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Enabled reports whether any retention limit is configured.
func (p *Pruner) Enabled() bool {
	return p.config.RetentionDays > 0 || p.config.MaxRecords > 0
}

// Prune applies the retention limits once and returns how many records
// were deleted. Records older than RetentionDays go first; if more than
// MaxRecords remain after that, the oldest are removed until the count
// fits. With an ArchivePath, records are written there before deletion.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	steps := []struct {
		name    string
		enabled bool
		run     func(context.Context) (int64, error)
	}{
		{evidence.PruneByAge, p.config.RetentionDays > 0, p.pruneByAge},
		{evidence.PruneByCount, p.config.MaxRecords > 0, p.pruneByCount},
	}
	for _, step := range steps {
		if !step.enabled {
			continue
		}
		deleted, err := step.run(ctx)
		total += deleted
		if err != nil {
			return total, err
		}
	}

	logArgs := []any{
		"deleted", total,
		"retention_days", p.config.RetentionDays,
		"max_records", p.config.MaxRecords,
	}
	if total == 0 {
		p.logger.Debug("no evidence records pruned", logArgs...)
	} else {
		p.logger.Info("evidence pruning completed", logArgs...)
	}

	return total, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
	p.logger.Debug("pruning by age", "cutoff", cutoff)

	return p.deleteBefore(ctx, evidence.PruneByAge, cutoff, nil)
}

func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &evidence.Query{})
	if err != nil {
		return 0, evidence.NewPruneError(evidence.PruneByCount, err)
	}
	excess := count - p.config.MaxRecords
	if excess <= 0 {
		return 0, nil
	}

	p.logger.Info("evidence count over limit, pruning oldest",
		"count", count,
		"max_records", p.config.MaxRecords,
		"excess", excess,
	)

	oldest, err := p.storage.Query(ctx, &evidence.Query{SortOrder: "asc", Limit: int(excess)})
	if err != nil {
		return 0, evidence.NewPruneError(evidence.PruneByCount, err)
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	// EndTime is exclusive; records sharing the last start time go too.
	cutoff := oldest[len(oldest)-1].StartedAt.Add(time.Nanosecond)
	return p.deleteBefore(ctx, evidence.PruneByCount, cutoff, oldest)
}

// deleteBefore archives and then deletes every record started before
// cutoff. When archived is nil the records to archive are queried first.
func (p *Pruner) deleteBefore(ctx context.Context, step string, cutoff time.Time, archived []*evidence.Record) (int64, error) {
	if p.config.ArchivePath != "" {
		if archived == nil {
			records, err := p.storage.Query(ctx, &evidence.Query{EndTime: &cutoff, SortOrder: "asc"})
			if err != nil {
				return 0, evidence.NewPruneError(step, err)
			}
			archived = records
		}
		if err := p.archive(ctx, archived); err != nil {
			return 0, evidence.NewPruneError(evidence.PruneArchive, err)
		}
	}

	deleted, err := p.storage.Delete(ctx, &evidence.Query{EndTime: &cutoff})
	if err != nil {
		return 0, evidence.NewPruneError(step, err)
	}
	return deleted, nil
}

// archive writes records to a timestamped JSON file under ArchivePath.
func (p *Pruner) archive(ctx context.Context, records []*evidence.Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := fmt.Sprintf("evidence-%s.json", p.now().UTC().Format("20060102T150405.000000000"))
	archiveFile := filepath.Join(p.config.ArchivePath, name)

	f, err := os.Create(archiveFile)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	if err := export.NewJSONExporter(false).Export(ctx, records, f); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync archive file: %w", err)
	}

	p.logger.Info("evidence archived",
		"archive_file", archiveFile,
		"record_count", len(records),
	)

	return nil
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
