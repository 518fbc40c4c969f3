package retention

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"guardrail-hq/meridian/pkg/evidence"
	"guardrail-hq/meridian/pkg/evidence/storage"
)

func seedRecords(t *testing.T, store evidence.Storage, ages ...time.Duration) {
	t.Helper()
	ctx := context.Background()
	for i, age := range ages {
		record := &evidence.DecisionRecord{
			ID:            string(rune('a' + i)),
			RequestID:     "req",
			EvaluatedTime: time.Now().Add(-age),
			RecordedTime:  time.Now(),
			Tool:          "evaluate_policy",
			PolicyID:      "default",
		}
		if err := store.Store(ctx, record); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}
}

func TestPruner_PrunesByAge(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedRecords(t, store,
		100*24*time.Hour, // past retention
		95*24*time.Hour,  // past retention
		time.Hour,        // recent
	)

	pruner := NewPruner(store, &Config{RetentionDays: 90}, nil)

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() = %d, want 2", deleted)
	}

	count, _ := store.Count(context.Background(), nil)
	if count != 1 {
		t.Errorf("remaining count = %d, want 1", count)
	}
}

func TestPruner_RetentionDisabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedRecords(t, store, 365*24*time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 0}, nil)

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() = %d, want 0 with retention disabled", deleted)
	}
}

func TestPruner_ArchivesBeforeDelete(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedRecords(t, store, 100*24*time.Hour, time.Hour)

	archiveDir := t.TempDir()
	pruner := NewPruner(store, &Config{
		RetentionDays:       90,
		ArchiveBeforeDelete: true,
		ArchivePath:         archiveDir,
	}, nil)

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Fatalf("Prune() = %d, want 1", deleted)
	}

	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d archive files, want 1", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(archiveDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var archived []*evidence.DecisionRecord
	if err := json.Unmarshal(data, &archived); err != nil {
		t.Fatalf("archive is not valid JSON: %v", err)
	}
	if len(archived) != 1 || archived[0].ID != "a" {
		t.Errorf("archived %d records (%v), want just the expired one", len(archived), archived)
	}
}
