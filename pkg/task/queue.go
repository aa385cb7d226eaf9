// Package task manages the persisted queue of content-generation tasks.
package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task states.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// Task is one queued content-generation request.
type Task struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Keywords  []string  `json:"keywords,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	DoneAt    time.Time `json:"doneAt,omitempty"`
}

// Store persists the task queue.
type Store interface {
	LoadTasks() ([]Task, error)
	SaveTasks([]Task) error
}

// Queue is a FIFO task queue over a persisted store.
type Queue struct {
	store Store
}

// NewQueue creates a queue.
func NewQueue(store Store) *Queue {
	return &Queue{store: store}
}

// Add appends a pending task and returns it.
func (q *Queue) Add(topic string, keywords []string) (Task, error) {
	tasks, err := q.store.LoadTasks()
	if err != nil {
		return Task{}, fmt.Errorf("load tasks: %w", err)
	}

	t := Task{
		ID:        uuid.NewString(),
		Topic:     topic,
		Keywords:  keywords,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	tasks = append(tasks, t)
	if err := q.store.SaveTasks(tasks); err != nil {
		return Task{}, fmt.Errorf("save tasks: %w", err)
	}
	return t, nil
}

// List returns all tasks, oldest first.
func (q *Queue) List() ([]Task, error) {
	return q.store.LoadTasks()
}

// Pop marks the oldest pending task done and returns it. A nil task
// means the queue has no pending work.
func (q *Queue) Pop() (*Task, error) {
	tasks, err := q.store.LoadTasks()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	for i := range tasks {
		if tasks[i].Status != StatusPending {
			continue
		}
		tasks[i].Status = StatusDone
		tasks[i].DoneAt = time.Now().UTC()
		if err := q.store.SaveTasks(tasks); err != nil {
			return nil, fmt.Errorf("save tasks: %w", err)
		}
		t := tasks[i]
		return &t, nil
	}
	return nil, nil
}
