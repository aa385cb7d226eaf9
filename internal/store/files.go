// Package store persists run state: flat JSON documents for snapshots,
// histories, and queues, plus a SQLite archive of collected items.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elonfeng/mppilot/pkg/collect"
	"github.com/elonfeng/mppilot/pkg/report"
	"github.com/elonfeng/mppilot/pkg/task"
)

// Persisted document names.
const (
	snapshotFile      = "collected-news.json"
	dailyHistoryFile  = "daily-history.json"
	weeklyHistoryFile = "weekly-history.json"
	processedFile     = "processed-comments.json"
	tasksFile         = "generation-tasks.json"
)

// Files reads and writes the flat JSON documents. Each document is a
// single-writer full-overwrite snapshot; a missing or malformed file
// always degrades to its default shape, never to an error.
type Files struct {
	dir string
}

// NewFiles creates the data directory if needed.
func NewFiles(dir string) (*Files, error) {
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Files{dir: dir}, nil
}

// readJSON loads name into out, leaving out untouched when the file is
// absent or malformed.
func (f *Files) readJSON(name string, out any) {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warnf("%s: malformed, using defaults: %v", name, err)
	}
}

// writeJSON fully overwrites name with pretty-printed JSON.
func (f *Files) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(f.dir, name), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// LoadSnapshot returns the latest collection snapshot, or an empty one.
func (f *Files) LoadSnapshot() collect.Snapshot {
	snap := collect.Snapshot{Items: []collect.Item{}}
	f.readJSON(snapshotFile, &snap)
	if snap.Items == nil {
		snap.Items = []collect.Item{}
	}
	return snap
}

// SaveSnapshot fully replaces the persisted snapshot.
func (f *Files) SaveSnapshot(snap collect.Snapshot) error {
	if snap.Items == nil {
		snap.Items = []collect.Item{}
	}
	return f.writeJSON(snapshotFile, snap)
}

func (f *Files) LoadDailyHistory() ([]report.HistoryEntry, error) {
	var entries []report.HistoryEntry
	f.readJSON(dailyHistoryFile, &entries)
	return entries, nil
}

func (f *Files) SaveDailyHistory(entries []report.HistoryEntry) error {
	return f.writeJSON(dailyHistoryFile, entries)
}

func (f *Files) LoadWeeklyHistory() ([]report.HistoryEntry, error) {
	var entries []report.HistoryEntry
	f.readJSON(weeklyHistoryFile, &entries)
	return entries, nil
}

func (f *Files) SaveWeeklyHistory(entries []report.HistoryEntry) error {
	return f.writeJSON(weeklyHistoryFile, entries)
}

// processedDoc is the on-disk shape of the processed-comment set.
type processedDoc struct {
	IDs []string `json:"ids"`
}

func (f *Files) LoadProcessedComments() ([]string, error) {
	var doc processedDoc
	f.readJSON(processedFile, &doc)
	return doc.IDs, nil
}

func (f *Files) SaveProcessedComments(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return f.writeJSON(processedFile, processedDoc{IDs: ids})
}

func (f *Files) LoadTasks() ([]task.Task, error) {
	var tasks []task.Task
	f.readJSON(tasksFile, &tasks)
	return tasks, nil
}

func (f *Files) SaveTasks(tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	return f.writeJSON(tasksFile, tasks)
}
