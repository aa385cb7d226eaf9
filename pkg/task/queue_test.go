package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	tasks []Task
}

func (m *memStore) LoadTasks() ([]Task, error) {
	return append([]Task(nil), m.tasks...), nil
}

func (m *memStore) SaveTasks(tasks []Task) error {
	m.tasks = append([]Task(nil), tasks...)
	return nil
}

func TestQueue_AddAssignsIDAndPendingStatus(t *testing.T) {
	q := NewQueue(&memStore{})

	added, err := q.Add("AI agents", []string{"agent", "llm"})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, StatusPending, added.Status)
	assert.False(t, added.CreatedAt.IsZero())

	tasks, err := q.List()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, added.ID, tasks[0].ID)
}

func TestQueue_PopIsFIFO(t *testing.T) {
	q := NewQueue(&memStore{})

	first, err := q.Add("first", nil)
	require.NoError(t, err)
	second, err := q.Add("second", nil)
	require.NoError(t, err)

	got, err := q.Pop()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, StatusDone, got.Status)
	assert.False(t, got.DoneAt.IsZero())

	got, err = q.Pop()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
}

func TestQueue_PopEmptyReturnsNil(t *testing.T) {
	q := NewQueue(&memStore{})

	got, err := q.Pop()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestQueue_PopSkipsDoneTasks(t *testing.T) {
	store := &memStore{tasks: []Task{
		{ID: "done-1", Topic: "old", Status: StatusDone},
		{ID: "pend-1", Topic: "waiting", Status: StatusPending},
	}}
	q := NewQueue(store)

	got, err := q.Pop()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "pend-1", got.ID)

	tasks, err := q.List()
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, StatusDone, tasks[1].Status)
}
