// Package report generates daily and weekly analytics reports with a
// persisted rolling history.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/elonfeng/mppilot/pkg/wechat"
)

var log = logrus.WithField("component", "report")

// History caps: oldest entries are evicted by truncation.
const (
	DailyHistoryCap  = 30
	WeeklyHistoryCap = 12
)

// Analytics is the slice of the platform API the report pipelines need.
type Analytics interface {
	GetUserSummary(ctx context.Context, begin, end string) ([]wechat.UserSummary, error)
	GetUserCumulate(ctx context.Context, begin, end string) ([]wechat.UserCumulate, error)
	GetArticleSummary(ctx context.Context, begin, end string) ([]wechat.ArticleSummary, error)
	GetUserShare(ctx context.Context, begin, end string) ([]wechat.UserShare, error)
	ListPublished(ctx context.Context, offset, count int) ([]wechat.PublishedArticle, error)
}

// HistoryStore persists the rolling report histories.
type HistoryStore interface {
	LoadDailyHistory() ([]HistoryEntry, error)
	SaveDailyHistory([]HistoryEntry) error
	LoadWeeklyHistory() ([]HistoryEntry, error)
	SaveWeeklyHistory([]HistoryEntry) error
}

// HistoryEntry is one persisted report record.
type HistoryEntry struct {
	PeriodStart string    `json:"periodStart"`
	PeriodEnd   string    `json:"periodEnd"`
	NetGrowth   int       `json:"netGrowth"`
	TotalReads  int       `json:"totalReads"`
	TotalUsers  int       `json:"totalUsers"`
	TotalShares int       `json:"totalShares"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Metrics are the aggregates a report computes before rendering.
type Metrics struct {
	NewUsers    int `json:"newUsers"`
	CancelUsers int `json:"cancelUsers"`
	NetGrowth   int `json:"netGrowth"`
	TotalReads  int `json:"totalReads"`
	TotalUsers  int `json:"totalUsers"`
	TotalShares int `json:"totalShares"`
	Articles    int `json:"articles"`
}

// DayGrowth is one day's follower delta in a weekly report.
type DayGrowth struct {
	Date   string `json:"date"`
	Growth int    `json:"growth"`
}

// Changes compares current metrics against the most recent history entry.
type Changes struct {
	UserChange  string `json:"userChange"`
	ReadChange  string `json:"readChange"`
	ShareChange string `json:"shareChange"`
}

// Report is a fully computed report ready for rendering or JSON output.
type Report struct {
	Type        string                    `json:"type"` // "daily" or "weekly"
	PeriodStart string                    `json:"periodStart"`
	PeriodEnd   string                    `json:"periodEnd"`
	Metrics     Metrics                   `json:"metrics"`
	DailyGrowth []DayGrowth               `json:"dailyGrowth,omitempty"`
	TopArticles []wechat.PublishedArticle `json:"topArticles"`
	Changes     Changes                   `json:"changes"`
	Insight     string                    `json:"insight"`
	Text        string                    `json:"text"`
	GeneratedAt time.Time                 `json:"generatedAt"`
}

// Generator runs the report pipelines.
type Generator struct {
	api   Analytics
	store HistoryStore
	topN  int
	now   func() time.Time
}

// NewGenerator creates a report generator. topN caps the recent-article
// breakdown.
func NewGenerator(api Analytics, store HistoryStore, topN int) *Generator {
	if topN <= 0 {
		topN = 5
	}
	return &Generator{api: api, store: store, topN: topN, now: time.Now}
}

// appendCapped appends entry and truncates to the cap's most recent
// entries, oldest dropped first.
func appendCapped(entries []HistoryEntry, entry HistoryEntry, cap int) []HistoryEntry {
	entries = append(entries, entry)
	if len(entries) > cap {
		entries = entries[len(entries)-cap:]
	}
	return entries
}

// changesAgainst computes change-rates of current metrics vs the most
// recent history entry; an empty history compares against zeros.
func changesAgainst(m Metrics, history []HistoryEntry) Changes {
	var prev HistoryEntry
	if len(history) > 0 {
		prev = history[len(history)-1]
	}
	return Changes{
		UserChange:  CalcChangeRate(float64(m.NetGrowth), float64(prev.NetGrowth)),
		ReadChange:  CalcChangeRate(float64(m.TotalReads), float64(prev.TotalReads)),
		ShareChange: CalcChangeRate(float64(m.TotalShares), float64(prev.TotalShares)),
	}
}

// recentArticles filters the published list to the report window, newest
// first, capped to topN. A fetch failure degrades to an empty list.
func (g *Generator) recentArticles(ctx context.Context, from, to time.Time) []wechat.PublishedArticle {
	published, err := g.api.ListPublished(ctx, 0, 20)
	if err != nil {
		log.Warnf("list published: %v", err)
		return nil
	}

	var filtered []wechat.PublishedArticle
	for _, a := range published {
		if a.UpdateTime.Before(from) || !a.UpdateTime.Before(to) {
			continue
		}
		filtered = append(filtered, a)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].UpdateTime.After(filtered[j].UpdateTime)
	})
	if len(filtered) > g.topN {
		filtered = filtered[:g.topN]
	}
	return filtered
}
