package collect

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource returns canned items or a canned error.
type stubSource struct {
	name  SourceType
	items []Item
	err   error
}

func (s *stubSource) Name() SourceType { return s.name }

func (s *stubSource) Collect(ctx context.Context, limit int) ([]Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.items) > limit {
		return s.items[:limit], nil
	}
	return s.items, nil
}

func TestPipeline_AllSourcesFailingYieldsEmptySnapshot(t *testing.T) {
	p := NewPipeline([]Source{
		&stubSource{name: SourceHackerNews, err: errors.New("network down")},
		&stubSource{name: SourceGitHub, err: errors.New("scrape failed")},
	}, nil, DefaultWeights)

	snap := p.Run(context.Background(), Options{Topics: []string{"ai"}, Count: 10})

	assert.NotNil(t, snap.Items)
	assert.Empty(t, snap.Items)
	assert.Equal(t, []string{"hackernews", "github"}, snap.Sources)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestPipeline_OneFailingSourceDegradesOnly(t *testing.T) {
	p := NewPipeline([]Source{
		&stubSource{name: SourceHackerNews, err: errors.New("down")},
		&stubSource{name: SourceZhihu, items: []Item{
			{ID: "z1", Title: "AI 开源大模型", Score: 200},
		}},
	}, nil, DefaultWeights)

	snap := p.Run(context.Background(), Options{Keywords: []string{"AI"}, Count: 10})

	require.Len(t, snap.Items, 1)
	assert.Equal(t, "z1", snap.Items[0].ID)
}

func TestPipeline_ScoresSortsDedupsAndTruncates(t *testing.T) {
	p := NewPipeline([]Source{
		&stubSource{name: SourceHackerNews, items: []Item{
			{ID: "weak", Title: "unrelated story", Score: 10},
			{ID: "hot-dup", Title: "AI Breakthrough!", Score: 900},
		}},
		&stubSource{name: SourceRSS, items: []Item{
			{ID: "cold-dup", Title: "ai breakthrough", Score: 5},
			{ID: "mid", Title: "AI tooling roundup", Score: 300},
		}},
	}, NewScorer(0.3, 0.15, nil), DefaultWeights)

	snap := p.Run(context.Background(), Options{Keywords: []string{"AI"}, Count: 2})

	require.Len(t, snap.Items, 2)
	// The high-scored duplicate wins; its twin is dropped.
	assert.Equal(t, "hot-dup", snap.Items[0].ID)
	assert.Equal(t, "mid", snap.Items[1].ID)
	// Relevance was filled in and bounded.
	for _, item := range snap.Items {
		assert.GreaterOrEqual(t, item.Relevance, 0.0)
		assert.LessOrEqual(t, item.Relevance, 1.0)
	}
}

func TestPipeline_SnapshotMetadata(t *testing.T) {
	p := NewPipeline(nil, nil, Weights{})

	snap := p.Run(context.Background(), Options{
		Topics: []string{"科技"},
		Deep:   true,
		Count:  5,
	})

	assert.Equal(t, []string{"科技"}, snap.Topics)
	assert.True(t, snap.Deep)
	assert.NotEmpty(t, snap.Date)
}
