package collect

import (
	"time"

	readability "github.com/go-shiori/go-readability"
)

const deepContentLimit = 2000

// EnrichContent fills in item content by extracting the readable body of
// each item's page. Used in deep mode only; extraction failures leave
// the item untouched.
func EnrichContent(items []Item) []Item {
	for i := range items {
		if items[i].Content != "" || items[i].URL == "" {
			continue
		}
		article, err := readability.FromURL(items[i].URL, 15*time.Second)
		if err != nil {
			log.Debugf("readability %s: %v", items[i].URL, err)
			continue
		}
		items[i].Content = truncate(article.TextContent, deepContentLimit)
	}
	return items
}
