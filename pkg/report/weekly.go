package report

import (
	"context"
	"fmt"
	"time"
)

// Weekly generates the weekly report over the last seven complete days
// and appends it to the rolling weekly history.
//
// Follower growth is derived from the cumulative-user series: each
// day's growth is that day's cumulative count minus the previous day's.
// Fewer than two data points mean no growth data.
func (g *Generator) Weekly(ctx context.Context) (*Report, error) {
	now := g.now().UTC()
	end := now.AddDate(0, 0, -1)
	start := now.AddDate(0, 0, -7)
	beginDate := start.Format("2006-01-02")
	endDate := end.Format("2006-01-02")

	var m Metrics
	var growth []DayGrowth

	if cumulates, err := g.api.GetUserCumulate(ctx, beginDate, endDate); err != nil {
		log.Warnf("user cumulate: %v", err)
	} else if len(cumulates) >= 2 {
		for i := 1; i < len(cumulates); i++ {
			growth = append(growth, DayGrowth{
				Date:   cumulates[i].RefDate,
				Growth: cumulates[i].CumulateUser - cumulates[i-1].CumulateUser,
			})
		}
		m.NetGrowth = cumulates[len(cumulates)-1].CumulateUser - cumulates[0].CumulateUser
		m.TotalUsers = cumulates[len(cumulates)-1].CumulateUser
	} else if len(cumulates) == 1 {
		m.TotalUsers = cumulates[0].CumulateUser
	}

	if summaries, err := g.api.GetUserSummary(ctx, beginDate, endDate); err != nil {
		log.Warnf("user summary: %v", err)
	} else {
		for _, s := range summaries {
			m.NewUsers += s.NewUser
			m.CancelUsers += s.CancelUser
		}
	}

	if articles, err := g.api.GetArticleSummary(ctx, beginDate, endDate); err != nil {
		log.Warnf("article summary: %v", err)
	} else {
		for _, a := range articles {
			m.TotalReads += a.IntPageReadCount
		}
	}

	if shares, err := g.api.GetUserShare(ctx, beginDate, endDate); err != nil {
		log.Warnf("user share: %v", err)
	} else {
		for _, s := range shares {
			m.TotalShares += s.ShareCount
		}
	}

	weekStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	top := g.recentArticles(ctx, weekStart, weekStart.AddDate(0, 0, 7))
	m.Articles = len(top)

	history, err := g.store.LoadWeeklyHistory()
	if err != nil {
		return nil, fmt.Errorf("load weekly history: %w", err)
	}

	rep := &Report{
		Type:        "weekly",
		PeriodStart: beginDate,
		PeriodEnd:   endDate,
		Metrics:     m,
		DailyGrowth: growth,
		TopArticles: top,
		Changes:     changesAgainst(m, history),
		Insight:     Insight(m),
		GeneratedAt: now,
	}
	rep.Text = Render(rep)

	entry := HistoryEntry{
		PeriodStart: beginDate,
		PeriodEnd:   endDate,
		NetGrowth:   m.NetGrowth,
		TotalReads:  m.TotalReads,
		TotalUsers:  m.TotalUsers,
		TotalShares: m.TotalShares,
		GeneratedAt: now,
	}
	if err := g.store.SaveWeeklyHistory(appendCapped(history, entry, WeeklyHistoryCap)); err != nil {
		return nil, fmt.Errorf("save weekly history: %w", err)
	}

	return rep, nil
}
