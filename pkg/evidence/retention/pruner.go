package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"guardrail-hq/meridian/pkg/evidence"
	"guardrail-hq/meridian/pkg/evidence/export"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to keep decision records.
	// 0 means keep records forever.
	RetentionDays int

	// PruneSchedule is a cron expression, e.g. "0 3 * * *" for
	// daily at 3 AM. Empty disables scheduled pruning.
	PruneSchedule string

	// ArchiveBeforeDelete exports records to JSON before deletion.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory for archive files.
	ArchivePath string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:       90,
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: false,
		ArchivePath:         "data/archives/",
	}
}

// Pruner enforces the retention policy on decision records.
type Pruner struct {
	storage   evidence.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a retention pruner.
func NewPruner(storage evidence.Storage, config *Config, logger *slog.Logger) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  logger.With("component", "evidence.retention"),
	}
	pruner.scheduler = NewScheduler(pruner, logger)

	return pruner
}

// Prune deletes records older than the retention period and returns
// how many were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, nothing to prune")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
	query := &evidence.Query{EndTime: &cutoff}

	if p.config.ArchiveBeforeDelete {
		if err := p.archive(ctx, query); err != nil {
			return 0, evidence.NewRetentionError(p.config.RetentionDays, err)
		}
	}

	deleted, err := p.storage.Delete(ctx, query)
	if err != nil {
		return 0, evidence.NewRetentionError(p.config.RetentionDays, err)
	}

	if deleted > 0 {
		p.logger.Info("decision records pruned",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
			"cutoff_time", cutoff,
		)
	}

	return deleted, nil
}

// archive exports the records matching the query to a dated JSON file
// under ArchivePath.
func (p *Pruner) archive(ctx context.Context, query *evidence.Query) error {
	records, err := p.storage.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query records for archiving: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	archiveFile := filepath.Join(p.config.ArchivePath,
		fmt.Sprintf("decisions-%s.json", time.Now().Format("2006-01-02-150405")))
	f, err := os.Create(archiveFile)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	exporter := export.NewJSONExporter(true)
	if err := exporter.Export(ctx, records, f); err != nil {
		return fmt.Errorf("failed to export records to archive: %w", err)
	}

	p.logger.Info("decision records archived",
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

// NextPruning returns the time of the next scheduled pruning run.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
