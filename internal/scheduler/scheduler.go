// Package scheduler drives periodic collection and report generation.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/elonfeng/mppilot/internal/store"
	"github.com/elonfeng/mppilot/pkg/collect"
	"github.com/elonfeng/mppilot/pkg/notify"
	"github.com/elonfeng/mppilot/pkg/report"
)

var log = logrus.WithField("component", "scheduler")

// Scheduler runs collection on an interval and reports on a daily /
// weekly cron in the configured timezone.
type Scheduler struct {
	pipeline    *collect.Pipeline
	collectOpts collect.Options
	files       *store.Files
	archive     *store.Archive
	gen         *report.Generator
	notifier    *notify.Manager

	dailyTime  string // "HH:MM"
	loc        *time.Location
	collectInt time.Duration
}

// New creates a scheduler.
func New(
	pipeline *collect.Pipeline,
	collectOpts collect.Options,
	files *store.Files,
	archive *store.Archive,
	gen *report.Generator,
	notifier *notify.Manager,
	dailyTime string,
	loc *time.Location,
	collectInt time.Duration,
) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if collectInt <= 0 {
		collectInt = 6 * time.Hour
	}
	return &Scheduler{
		pipeline:    pipeline,
		collectOpts: collectOpts,
		files:       files,
		archive:     archive,
		gen:         gen,
		notifier:    notifier,
		dailyTime:   dailyTime,
		loc:         loc,
		collectInt:  collectInt,
	}
}

// Run starts the cron loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	hour, minute, err := parseClock(s.dailyTime)
	if err != nil {
		return fmt.Errorf("daily report time: %w", err)
	}

	c := cron.New(cron.WithLocation(s.loc))

	if _, err := c.AddFunc(fmt.Sprintf("%d %d * * *", minute, hour), func() {
		s.runDaily(ctx)
	}); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}

	// Weekly report on Monday, same clock time.
	if _, err := c.AddFunc(fmt.Sprintf("%d %d * * 1", minute, hour), func() {
		s.runWeekly(ctx)
	}); err != nil {
		return fmt.Errorf("schedule weekly report: %w", err)
	}

	if _, err := c.AddFunc("@every "+s.collectInt.String(), func() {
		s.runCollect(ctx)
	}); err != nil {
		return fmt.Errorf("schedule collection: %w", err)
	}

	log.Infof("running (collect every %s, daily report %s %s)", s.collectInt, s.dailyTime, s.loc)
	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

func (s *Scheduler) runCollect(ctx context.Context) {
	snap := s.pipeline.Run(ctx, s.collectOpts)
	if err := s.files.SaveSnapshot(snap); err != nil {
		log.Errorf("save snapshot: %v", err)
		return
	}
	if s.archive != nil {
		if err := s.archive.UpsertItems(ctx, snap.Items); err != nil {
			log.Errorf("archive items: %v", err)
		}
	}
	log.Infof("collected %d items", len(snap.Items))
}

func (s *Scheduler) runDaily(ctx context.Context) {
	rep, err := s.gen.Daily(ctx)
	if err != nil {
		log.Errorf("daily report: %v", err)
		return
	}
	s.push(ctx, "日报 "+rep.PeriodStart, rep.Text)
}

func (s *Scheduler) runWeekly(ctx context.Context) {
	rep, err := s.gen.Weekly(ctx)
	if err != nil {
		log.Errorf("weekly report: %v", err)
		return
	}
	s.push(ctx, "周报 "+rep.PeriodStart+" ~ "+rep.PeriodEnd, rep.Text)
}

func (s *Scheduler) push(ctx context.Context, title, body string) {
	if s.notifier == nil || !s.notifier.HasNotifiers() {
		return
	}
	if err := s.notifier.Broadcast(ctx, &notify.Notification{Title: title, Body: body}); err != nil {
		log.Errorf("notify: %v", err)
	}
}

// parseClock parses "HH:MM".
func parseClock(v string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(v), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", v)
	}
	if _, err := fmt.Sscanf(v, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", v)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock out of range: %q", v)
	}
	return hour, minute, nil
}
