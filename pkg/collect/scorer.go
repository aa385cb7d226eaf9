package collect

import "strings"

// ScoreBand maps a raw popularity threshold to a relevance bonus.
type ScoreBand struct {
	Threshold int     `json:"threshold" yaml:"threshold"`
	Bonus     float64 `json:"bonus" yaml:"bonus"`
}

// DefaultScoreBands is the consolidated popularity bonus table. Bands are
// evaluated top-down; the first threshold the raw score exceeds wins.
var DefaultScoreBands = []ScoreBand{
	{Threshold: 1000, Bonus: 0.2},
	{Threshold: 500, Bonus: 0.15},
	{Threshold: 100, Bonus: 0.1},
}

// Scorer computes a bounded relevance value for an item against a
// keyword set. Deterministic and side-effect-free.
type Scorer struct {
	titleWeight   float64
	contentWeight float64
	bands         []ScoreBand
}

// NewScorer creates a scorer. Zero weights fall back to the defaults
// (0.3 per title hit, 0.15 per content hit); a nil band table falls
// back to DefaultScoreBands.
func NewScorer(titleWeight, contentWeight float64, bands []ScoreBand) *Scorer {
	if titleWeight <= 0 {
		titleWeight = 0.3
	}
	if contentWeight <= 0 {
		contentWeight = 0.15
	}
	if len(bands) == 0 {
		bands = DefaultScoreBands
	}
	return &Scorer{
		titleWeight:   titleWeight,
		contentWeight: contentWeight,
		bands:         bands,
	}
}

// Relevance scores an item in [0, 1]. Keyword hits against the title and
// content are additive, plus a popularity bonus, clamped to 1.
func (s *Scorer) Relevance(item Item, keywords []string) float64 {
	title := strings.ToLower(item.Title)
	content := strings.ToLower(item.Content)

	score := 0.0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(title, kw) {
			score += s.titleWeight
		}
		if content != "" && strings.Contains(content, kw) {
			score += s.contentWeight
		}
	}

	for _, band := range s.bands {
		if item.Score > band.Threshold {
			score += band.Bonus
			break
		}
	}

	if score > 1 {
		return 1
	}
	return score
}

// NormalizePopularity clamps a raw score to [0, 1] by dividing by denom.
func NormalizePopularity(score int, denom float64) float64 {
	if denom <= 0 {
		denom = 1000
	}
	v := float64(score) / denom
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
