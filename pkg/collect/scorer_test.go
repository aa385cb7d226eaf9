package collect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorer_KeywordHits(t *testing.T) {
	s := NewScorer(0.3, 0.15, nil)

	item := Item{Title: "国产大模型发布", Content: "厂商发布新一代大模型"}
	got := s.Relevance(item, []string{"大模型"})
	assert.InDelta(t, 0.45, got, 1e-9) // title + content hit

	titleOnly := s.Relevance(Item{Title: "大模型"}, []string{"大模型"})
	assert.InDelta(t, 0.3, titleOnly, 1e-9)
}

func TestScorer_CaseInsensitive(t *testing.T) {
	s := NewScorer(0.3, 0.15, nil)
	got := s.Relevance(Item{Title: "OpenAI Ships GPT-5"}, []string{"openai", "gpt-5"})
	assert.InDelta(t, 0.6, got, 1e-9)
}

func TestScorer_PopularityBands(t *testing.T) {
	s := NewScorer(0.3, 0.15, nil)

	assert.InDelta(t, 0.2, s.Relevance(Item{Title: "x", Score: 1500}, nil), 1e-9)
	assert.InDelta(t, 0.15, s.Relevance(Item{Title: "x", Score: 600}, nil), 1e-9)
	assert.InDelta(t, 0.1, s.Relevance(Item{Title: "x", Score: 150}, nil), 1e-9)
	assert.Zero(t, s.Relevance(Item{Title: "x", Score: 50}, nil))
}

func TestScorer_AlwaysBounded(t *testing.T) {
	s := NewScorer(0.4, 0.2, nil)
	keywords := []string{"ai", "ml", "llm", "gpt", "agent", "model", "robot", "chip"}

	items := []Item{
		{Title: "ai ml llm gpt agent model robot chip", Content: "ai ml llm gpt agent model robot chip", Score: 99999},
		{Title: "", Score: 0},
		{Title: "nothing relevant", Score: -5},
	}
	for _, item := range items {
		got := s.Relevance(item, keywords)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}

	// Empty keyword list: popularity bonus only.
	assert.InDelta(t, 0.2, s.Relevance(Item{Title: "whatever", Score: 2000}, nil), 1e-9)
	assert.Zero(t, s.Relevance(Item{Title: "whatever"}, nil))
}

func TestNormalizePopularity(t *testing.T) {
	assert.InDelta(t, 0.5, NormalizePopularity(500, 1000), 1e-9)
	assert.Equal(t, 1.0, NormalizePopularity(5000, 1000))
	assert.Equal(t, 0.0, NormalizePopularity(-10, 1000))
	// Zero denominator falls back to 1000.
	assert.InDelta(t, 0.25, NormalizePopularity(250, 0), 1e-9)
}
