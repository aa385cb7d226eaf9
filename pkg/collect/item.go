package collect

import (
	"context"
	"time"
)

// SourceType identifies which platform an item came from.
type SourceType string

const (
	SourceHackerNews SourceType = "hackernews"
	SourceGitHub     SourceType = "github"
	SourceV2EX       SourceType = "v2ex"
	SourceZhihu      SourceType = "zhihu"
	SourceWeibo      SourceType = "weibo"
	SourceRSS        SourceType = "rss"
	SourceScript     SourceType = "script"
)

// Item is the standardized data model for all sources. Relevance is
// filled in by the pipeline after scoring and stays fixed afterwards.
type Item struct {
	ID        string     `json:"id" db:"id"`
	Source    SourceType `json:"source" db:"source"`
	Title     string     `json:"title" db:"title"`
	URL       string     `json:"url" db:"url"`
	Score     int        `json:"score" db:"score"`
	Time      string     `json:"time" db:"time"`
	Content   string     `json:"content,omitempty" db:"content"`
	Author    string     `json:"author,omitempty" db:"author"`
	Relevance float64    `json:"relevance" db:"relevance"`

	CollectedAt time.Time `json:"collected_at" db:"collected_at"`
}

// Snapshot is the persisted output of one collection run. It fully
// replaces the previous snapshot on disk.
type Snapshot struct {
	Date        string    `json:"date"`
	Topics      []string  `json:"topics"`
	Sources     []string  `json:"sources"`
	Deep        bool      `json:"deep"`
	Items       []Item    `json:"items"`
	CollectedAt time.Time `json:"collectedAt"`
}

// Source is the interface every collector must implement.
type Source interface {
	Name() SourceType
	Collect(ctx context.Context, limit int) ([]Item, error)
}

// AllSourceTypes returns all built-in source types.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceHackerNews,
		SourceGitHub,
		SourceV2EX,
		SourceZhihu,
		SourceWeibo,
		SourceRSS,
	}
}
