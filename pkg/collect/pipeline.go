package collect

import (
	"context"
	"sort"
	"time"
)

// Weights control the composite ranking key.
type Weights struct {
	Relevance  float64
	Popularity float64
	// NormalizeDenom divides raw scores when clamping to [0,1].
	NormalizeDenom float64
}

// DefaultWeights is the standard composite ranking: relevance dominates,
// popularity breaks ties between equally relevant items.
var DefaultWeights = Weights{Relevance: 0.6, Popularity: 0.4, NormalizeDenom: 1000}

// Pipeline turns (topic, keyword, source) parameters into a ranked,
// deduplicated snapshot. Every source is independently fault-tolerant:
// one failure degrades that source to an empty result, never the run.
type Pipeline struct {
	sources []Source
	scorer  *Scorer
	weights Weights
}

// NewPipeline creates a collection pipeline over the given sources.
func NewPipeline(sources []Source, scorer *Scorer, weights Weights) *Pipeline {
	if scorer == nil {
		scorer = NewScorer(0, 0, nil)
	}
	if weights.Relevance == 0 && weights.Popularity == 0 {
		weights = DefaultWeights
	}
	return &Pipeline{sources: sources, scorer: scorer, weights: weights}
}

// Options are the per-run collection parameters.
type Options struct {
	Topics   []string
	Keywords []string
	Count    int
	Deep     bool
}

// Run executes the pipeline and returns the snapshot. It never fails
// outright: total absence of any successful source yields an empty
// items list.
func (p *Pipeline) Run(ctx context.Context, opts Options) Snapshot {
	if opts.Count <= 0 {
		opts.Count = 20
	}

	// Each source may return up to the full count; the merged set is
	// truncated to the requested total after ranking.
	var merged []Item
	var sourceNames []string
	for _, src := range p.sources {
		sourceNames = append(sourceNames, string(src.Name()))
		items, err := src.Collect(ctx, opts.Count)
		if err != nil {
			log.Warnf("source %s: %v", src.Name(), err)
			continue
		}
		log.Infof("source %s: %d items", src.Name(), len(items))
		merged = append(merged, items...)
	}

	if opts.Deep {
		merged = EnrichContent(merged)
	}

	for i := range merged {
		merged[i].Relevance = p.scorer.Relevance(merged[i], opts.Keywords)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return p.composite(merged[i]) > p.composite(merged[j])
	})

	items := Dedup(merged)
	if len(items) > opts.Count {
		items = items[:opts.Count]
	}

	now := time.Now().UTC()
	return Snapshot{
		Date:        now.Format("2006-01-02"),
		Topics:      opts.Topics,
		Sources:     sourceNames,
		Deep:        opts.Deep,
		Items:       items,
		CollectedAt: now,
	}
}

func (p *Pipeline) composite(item Item) float64 {
	pop := NormalizePopularity(item.Score, p.weights.NormalizeDenom)
	return item.Relevance*p.weights.Relevance + pop*p.weights.Popularity
}
