package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/mppilot/pkg/collect"
	"github.com/elonfeng/mppilot/pkg/report"
	"github.com/elonfeng/mppilot/pkg/task"
)

func newTestFiles(t *testing.T) *Files {
	t.Helper()
	f, err := NewFiles(t.TempDir())
	require.NoError(t, err)
	return f
}

func TestSnapshotRoundTrip(t *testing.T) {
	f := newTestFiles(t)

	snap := collect.Snapshot{
		Date:   "2026-08-30",
		Topics: []string{"AI"},
		Items: []collect.Item{
			{ID: "hn_1", Source: collect.SourceHackerNews, Title: "Hello", Score: 120, Relevance: 0.6},
		},
	}
	require.NoError(t, f.SaveSnapshot(snap))

	got := f.LoadSnapshot()
	assert.Equal(t, snap.Date, got.Date)
	assert.Equal(t, snap.Topics, got.Topics)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "hn_1", got.Items[0].ID)
}

func TestLoadSnapshot_Missing(t *testing.T) {
	f := newTestFiles(t)

	snap := f.LoadSnapshot()
	assert.NotNil(t, snap.Items)
	assert.Empty(t, snap.Items)
}

func TestLoadSnapshot_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collected-news.json"), []byte("{not json"), 0o644))
	f, err := NewFiles(dir)
	require.NoError(t, err)

	snap := f.LoadSnapshot()
	assert.NotNil(t, snap.Items)
	assert.Empty(t, snap.Items)
}

func TestHistoryRoundTrip(t *testing.T) {
	f := newTestFiles(t)

	entries, err := f.LoadDailyHistory()
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries = append(entries, report.HistoryEntry{PeriodStart: "2026-08-29", NetGrowth: 12, TotalReads: 300})
	require.NoError(t, f.SaveDailyHistory(entries))

	got, err := f.LoadDailyHistory()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 12, got[0].NetGrowth)

	weekly, err := f.LoadWeeklyHistory()
	require.NoError(t, err)
	assert.Empty(t, weekly, "daily and weekly documents are independent")
}

func TestProcessedCommentsRoundTrip(t *testing.T) {
	f := newTestFiles(t)

	ids, err := f.LoadProcessedComments()
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, f.SaveProcessedComments([]string{"a1_1", "a1_2"}))
	ids, err = f.LoadProcessedComments()
	require.NoError(t, err)
	assert.Equal(t, []string{"a1_1", "a1_2"}, ids)
}

func TestSaveProcessedComments_NilBecomesEmptyList(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFiles(dir)
	require.NoError(t, err)

	require.NoError(t, f.SaveProcessedComments(nil))
	data, err := os.ReadFile(filepath.Join(dir, "processed-comments.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ids":[]}`, string(data))
}

func TestTasksRoundTrip(t *testing.T) {
	f := newTestFiles(t)

	require.NoError(t, f.SaveTasks([]task.Task{
		{ID: "t1", Topic: "AI agents", Status: task.StatusPending},
	}))
	tasks, err := f.LoadTasks()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.StatusPending, tasks[0].Status)
}

func TestNewFiles_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := NewFiles(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
