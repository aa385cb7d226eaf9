package report

import (
	"context"
	"fmt"
	"time"
)

// Daily generates the daily report for the most recent complete day
// (yesterday) and appends it to the rolling daily history.
//
// Each metric fetch is individually fault-tolerant: a failure degrades
// that metric to zero and the report still completes. Only history
// persistence errors abort the run.
func (g *Generator) Daily(ctx context.Context) (*Report, error) {
	now := g.now().UTC()
	day := now.AddDate(0, 0, -1)
	date := day.Format("2006-01-02")

	var m Metrics

	if summaries, err := g.api.GetUserSummary(ctx, date, date); err != nil {
		log.Warnf("user summary: %v", err)
	} else {
		for _, s := range summaries {
			m.NewUsers += s.NewUser
			m.CancelUsers += s.CancelUser
		}
	}
	m.NetGrowth = m.NewUsers - m.CancelUsers

	if cumulates, err := g.api.GetUserCumulate(ctx, date, date); err != nil {
		log.Warnf("user cumulate: %v", err)
	} else if len(cumulates) > 0 {
		m.TotalUsers = cumulates[len(cumulates)-1].CumulateUser
	}

	if articles, err := g.api.GetArticleSummary(ctx, date, date); err != nil {
		log.Warnf("article summary: %v", err)
	} else {
		for _, a := range articles {
			m.TotalReads += a.IntPageReadCount
			m.TotalShares += a.ShareCount
		}
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	top := g.recentArticles(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	m.Articles = len(top)

	history, err := g.store.LoadDailyHistory()
	if err != nil {
		return nil, fmt.Errorf("load daily history: %w", err)
	}

	rep := &Report{
		Type:        "daily",
		PeriodStart: date,
		PeriodEnd:   date,
		Metrics:     m,
		TopArticles: top,
		Changes:     changesAgainst(m, history),
		Insight:     Insight(m),
		GeneratedAt: now,
	}
	rep.Text = Render(rep)

	entry := HistoryEntry{
		PeriodStart: date,
		PeriodEnd:   date,
		NetGrowth:   m.NetGrowth,
		TotalReads:  m.TotalReads,
		TotalUsers:  m.TotalUsers,
		TotalShares: m.TotalShares,
		GeneratedAt: now,
	}
	if err := g.store.SaveDailyHistory(appendCapped(history, entry, DailyHistoryCap)); err != nil {
		return nil, fmt.Errorf("save daily history: %w", err)
	}

	return rep, nil
}
