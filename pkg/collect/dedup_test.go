package collect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedup_CollapsesNormalizedTitles(t *testing.T) {
	items := []Item{
		{ID: "1", Title: "Hello World"},
		{ID: "2", Title: "hello, world!"},
	}

	got := Dedup(items)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestDedup_FirstOccurrenceWins(t *testing.T) {
	// Pre-sorted by descending composite score: the highest-ranked
	// variant must survive.
	items := []Item{
		{ID: "top", Title: "Go 1.25 Released", Relevance: 0.9},
		{ID: "mid", Title: "go 1.25 released!!!", Relevance: 0.5},
		{ID: "other", Title: "Rust 2.0 Released", Relevance: 0.4},
		{ID: "low", Title: "GO 1.25 RELEASED", Relevance: 0.1},
	}

	got := Dedup(items)
	require.Len(t, got, 2)
	assert.Equal(t, "top", got[0].ID)
	assert.Equal(t, "other", got[1].ID)
}

func TestDedup_TruncatedPrefixCollapses(t *testing.T) {
	long := strings.Repeat("a", 40)
	items := []Item{
		{ID: "1", Title: long + "first"},
		{ID: "2", Title: long + "second"},
	}

	got := Dedup(items)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestDedup_HandlesEmptyAndShortTitles(t *testing.T) {
	items := []Item{
		{ID: "1", Title: ""},
		{ID: "2", Title: "短"},
		{ID: "3", Title: ""},
	}

	got := Dedup(items)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}

func TestDedup_CJKTitles(t *testing.T) {
	items := []Item{
		{ID: "1", Title: "人工智能新突破！"},
		{ID: "2", Title: "人工智能新突破"},
	}

	got := Dedup(items)
	require.Len(t, got, 1)
}

func TestDedup_Empty(t *testing.T) {
	assert.Empty(t, Dedup(nil))
}
