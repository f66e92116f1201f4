package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"videorelay/internal/domain"
	"videorelay/internal/infra"
)

// snapshot is the on-disk layout of the task file.
type snapshot struct {
	Tasks map[string]domain.VideoTask `json:"tasks"`
	Meta  snapshotMeta                `json:"meta"`
}

type snapshotMeta struct {
	TotalCount int   `json:"total_count"`
	LastSave   int64 `json:"last_save"`
}

// Store persists the full task mapping as a single JSON snapshot file. Writes
// are serialized by an internal mutex so concurrent save calls cannot corrupt
// the file; there are no partial or incremental writes.
type Store struct {
	path   string
	mu     sync.Mutex
	logger infra.Logger
}

// NewStore creates a snapshot store rooted at path.
func NewStore(path string, logger infra.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the snapshot file and returns the task mapping. Any read or
// parse failure is logged and yields an empty mapping so the service always
// starts cleanly, even with a missing or corrupt file.
func (s *Store) Load() map[string]domain.VideoTask {
	tasks := make(map[string]domain.VideoTask)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug().Str("path", s.path).Msg("task store: no snapshot file, starting empty")
		} else {
			s.logger.Error().Err(err).Str("path", s.path).Msg("task store: read snapshot failed")
		}
		return tasks
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("task store: decode snapshot failed")
		return tasks
	}
	for id, t := range snap.Tasks {
		if t.ID == "" {
			t.ID = id
		}
		tasks[id] = t
	}
	s.logger.Info().Int("count", len(tasks)).Msg("task store: snapshot loaded")
	return tasks
}

// Save writes the full mapping to disk, tagging the snapshot with a record
// count and save timestamp. The parent directory is created on first use.
func (s *Store) Save(tasks map[string]domain.VideoTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("task store: ensure directory: %w", err)
	}

	snap := snapshot{
		Tasks: tasks,
		Meta: snapshotMeta{
			TotalCount: len(tasks),
			LastSave:   time.Now().Unix(),
		},
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("task store: encode snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("task store: write snapshot: %w", err)
	}
	s.logger.Debug().Int("count", len(tasks)).Msg("task store: snapshot saved")
	return nil
}
