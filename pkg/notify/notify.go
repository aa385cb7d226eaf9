// Package notify delivers run results to the operator's channel.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Notification is the data sent to a destination.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// Notifier delivers notifications to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers. The
// silent flag turns every send into a no-op.
type Manager struct {
	notifiers []Notifier
	silent    bool
}

// NewManager creates a notification manager.
func NewManager(notifiers []Notifier, silent bool) *Manager {
	return &Manager{notifiers: notifiers, silent: silent}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	if m.silent {
		return nil
	}
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}
