package comment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/mppilot/pkg/wechat"
)

type fakeAPI struct {
	published []wechat.PublishedArticle
	comments  map[string][]wechat.Comment
	errs      map[string]error
}

func (f *fakeAPI) ListPublished(ctx context.Context, offset, count int) ([]wechat.PublishedArticle, error) {
	if count < len(f.published) {
		return f.published[:count], nil
	}
	return f.published, nil
}

func (f *fakeAPI) ListComments(ctx context.Context, msgDataID string, index, begin, count int) ([]wechat.Comment, int, error) {
	if err, ok := f.errs[msgDataID]; ok {
		return nil, 0, err
	}
	cms := f.comments[msgDataID]
	return cms, len(cms), nil
}

type memProcessed struct {
	ids   []string
	saves int
}

func (m *memProcessed) LoadProcessedComments() ([]string, error) {
	return append([]string(nil), m.ids...), nil
}

func (m *memProcessed) SaveProcessedComments(ids []string) error {
	m.ids = append([]string(nil), ids...)
	m.saves++
	return nil
}

func TestCheck_SurfacesOnlyUnseenComments(t *testing.T) {
	api := &fakeAPI{
		published: []wechat.PublishedArticle{{ArticleID: "a1", Title: "First"}},
		comments: map[string][]wechat.Comment{
			"a1": {
				{UserCommentID: 1, Content: "old"},
				{UserCommentID: 2, Content: "new"},
			},
		},
	}
	store := &memProcessed{ids: []string{"a1_1"}}
	checker := NewChecker(api, store)

	fresh, err := checker.Check(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "a1", fresh[0].ArticleID)
	assert.Equal(t, "First", fresh[0].Title)
	assert.Equal(t, "new", fresh[0].Comment.Content)
	assert.ElementsMatch(t, []string{"a1_1", "a1_2"}, store.ids)
}

func TestCheck_ListOnlyLeavesProcessedSetUnchanged(t *testing.T) {
	api := &fakeAPI{
		published: []wechat.PublishedArticle{{ArticleID: "a1"}},
		comments: map[string][]wechat.Comment{
			"a1": {{UserCommentID: 7, Content: "hi"}},
		},
	}
	store := &memProcessed{}
	checker := NewChecker(api, store)

	for i := 0; i < 3; i++ {
		fresh, err := checker.Check(context.Background(), Options{ListOnly: true})
		require.NoError(t, err)
		assert.Len(t, fresh, 1, "run %d", i)
	}
	assert.Empty(t, store.ids)
	assert.Zero(t, store.saves)
}

func TestCheck_SecondRunSeesNothingNew(t *testing.T) {
	api := &fakeAPI{
		published: []wechat.PublishedArticle{{ArticleID: "a1"}},
		comments: map[string][]wechat.Comment{
			"a1": {{UserCommentID: 7}},
		},
	}
	store := &memProcessed{}
	checker := NewChecker(api, store)

	fresh, err := checker.Check(context.Background(), Options{})
	require.NoError(t, err)
	assert.Len(t, fresh, 1)

	fresh, err = checker.Check(context.Background(), Options{})
	require.NoError(t, err)
	assert.Empty(t, fresh)
	assert.Equal(t, 1, store.saves)
}

func TestCheck_CommentsClosedSkippedSilently(t *testing.T) {
	api := &fakeAPI{
		published: []wechat.PublishedArticle{{ArticleID: "closed"}, {ArticleID: "open"}},
		comments: map[string][]wechat.Comment{
			"open": {{UserCommentID: 1}},
		},
		errs: map[string]error{
			"closed": &wechat.APIError{Code: wechat.ErrCodeCommentClosed, Msg: "comment closed"},
		},
	}
	store := &memProcessed{}
	checker := NewChecker(api, store)

	fresh, err := checker.Check(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "open", fresh[0].ArticleID)
}

func TestCheck_OtherArticleErrorDoesNotAbortBatch(t *testing.T) {
	api := &fakeAPI{
		published: []wechat.PublishedArticle{{ArticleID: "broken"}, {ArticleID: "ok"}},
		comments: map[string][]wechat.Comment{
			"ok": {{UserCommentID: 9}},
		},
		errs: map[string]error{
			"broken": errors.New("timeout"),
		},
	}
	checker := NewChecker(api, &memProcessed{})

	fresh, err := checker.Check(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "ok", fresh[0].ArticleID)
}

func TestCheck_SingleArticleModeSkipsListPublished(t *testing.T) {
	api := &fakeAPI{
		comments: map[string][]wechat.Comment{
			"pinned": {{UserCommentID: 3, Content: "direct"}},
		},
	}
	checker := NewChecker(api, &memProcessed{})

	fresh, err := checker.Check(context.Background(), Options{ArticleID: "pinned"})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "pinned", fresh[0].ArticleID)
}

func TestCheck_ProcessedSetCapped(t *testing.T) {
	var cms []wechat.Comment
	for i := 0; i < 40; i++ {
		cms = append(cms, wechat.Comment{UserCommentID: int64(i)})
	}
	api := &fakeAPI{
		published: []wechat.PublishedArticle{{ArticleID: "a1"}},
		comments:  map[string][]wechat.Comment{"a1": cms},
	}
	store := &memProcessed{}
	for i := 0; i < ProcessedCap; i++ {
		store.ids = append(store.ids, fmt.Sprintf("old_%d", i))
	}
	checker := NewChecker(api, store)

	fresh, err := checker.Check(context.Background(), Options{})
	require.NoError(t, err)
	assert.Len(t, fresh, 40)

	require.Len(t, store.ids, ProcessedCap)
	assert.Equal(t, "old_40", store.ids[0], "oldest ids are dropped")
	assert.Equal(t, "a1_39", store.ids[len(store.ids)-1])
}
