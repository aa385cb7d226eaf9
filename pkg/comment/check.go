// Package comment surfaces reader comments the operator has not seen yet.
package comment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/elonfeng/mppilot/pkg/wechat"
)

var log = logrus.WithField("component", "comment")

// ProcessedCap bounds the persisted processed-id set; oldest ids are
// dropped by truncation.
const ProcessedCap = 1000

// API is the slice of the platform client the checker needs.
type API interface {
	ListPublished(ctx context.Context, offset, count int) ([]wechat.PublishedArticle, error)
	ListComments(ctx context.Context, msgDataID string, index, begin, count int) ([]wechat.Comment, int, error)
}

// ProcessedStore persists the set of already-surfaced comment ids.
type ProcessedStore interface {
	LoadProcessedComments() ([]string, error)
	SaveProcessedComments([]string) error
}

// New is one not-yet-seen comment.
type New struct {
	ArticleID string         `json:"articleId"`
	Title     string         `json:"title"`
	Comment   wechat.Comment `json:"comment"`
}

// Checker runs the moderation check.
type Checker struct {
	api   API
	store ProcessedStore
}

// NewChecker creates a comment checker.
func NewChecker(api API, store ProcessedStore) *Checker {
	return &Checker{api: api, store: store}
}

// Options control one check run.
type Options struct {
	// ArticleID checks a single article; empty means the RecentN most
	// recently published ones.
	ArticleID string
	RecentN   int
	// ListOnly previews new comments without mutating the processed set.
	ListOnly bool
}

// Check fetches comments per candidate article and returns those whose
// composite id (articleId_commentUserId) is absent from the processed
// set. Articles with comments disabled are silently skipped; any other
// per-article failure is logged and the batch continues.
func (c *Checker) Check(ctx context.Context, opts Options) ([]New, error) {
	var articles []wechat.PublishedArticle
	if opts.ArticleID != "" {
		articles = []wechat.PublishedArticle{{ArticleID: opts.ArticleID}}
	} else {
		n := opts.RecentN
		if n <= 0 {
			n = 5
		}
		published, err := c.api.ListPublished(ctx, 0, n)
		if err != nil {
			return nil, fmt.Errorf("list published: %w", err)
		}
		articles = published
	}

	processed, err := c.store.LoadProcessedComments()
	if err != nil {
		return nil, fmt.Errorf("load processed comments: %w", err)
	}
	seen := make(map[string]bool, len(processed))
	for _, id := range processed {
		seen[id] = true
	}

	var fresh []New
	var freshIDs []string
	for _, article := range articles {
		comments, _, err := c.api.ListComments(ctx, article.ArticleID, 0, 0, 50)
		if err != nil {
			if wechat.IsAPIError(err, wechat.ErrCodeCommentClosed) {
				continue
			}
			log.Warnf("article %s: %v", article.ArticleID, err)
			continue
		}

		for _, cm := range comments {
			id := fmt.Sprintf("%s_%d", article.ArticleID, cm.UserCommentID)
			if seen[id] {
				continue
			}
			fresh = append(fresh, New{
				ArticleID: article.ArticleID,
				Title:     article.Title,
				Comment:   cm,
			})
			freshIDs = append(freshIDs, id)
		}
	}

	if !opts.ListOnly && len(freshIDs) > 0 {
		processed = append(processed, freshIDs...)
		if len(processed) > ProcessedCap {
			processed = processed[len(processed)-ProcessedCap:]
		}
		if err := c.store.SaveProcessedComments(processed); err != nil {
			return nil, fmt.Errorf("save processed comments: %w", err)
		}
	}

	return fresh, nil
}
