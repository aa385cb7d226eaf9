package collect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Script wraps an out-of-process fetch tool. The tool receives a source
// name, result limit, optional keyword filter, and optional deep flag,
// and is expected to print a JSON array of records on success. A nonzero
// exit status with stderr diagnostics is a failure for this source only.
type Script struct {
	path     string
	source   string
	keywords []string
	deep     bool
	timeout  time.Duration
}

// NewScript creates a collector backed by an external fetch tool.
func NewScript(path, source string, keywords []string, deep bool) *Script {
	return &Script{
		path:     path,
		source:   source,
		keywords: keywords,
		deep:     deep,
		timeout:  60 * time.Second,
	}
}

func (s *Script) Name() SourceType { return SourceScript }

// scriptRecord is the wire shape the external tool emits. Score comes
// through as a free-form string ("342 points", "trending", "").
type scriptRecord struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Score  string `json:"score"`
	Time   string `json:"time"`
}

func (s *Script) Collect(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := []string{"--source", s.source, "--limit", strconv.Itoa(limit)}
	if len(s.keywords) > 0 {
		args = append(args, "--keyword", strings.Join(s.keywords, ","))
	}
	if s.deep {
		args = append(args, "--deep")
	}

	cmd := exec.CommandContext(ctx, s.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("fetch tool %s: %w: %s", s.source, err, msg)
		}
		return nil, fmt.Errorf("fetch tool %s: %w", s.source, err)
	}

	var records []scriptRecord
	if err := json.Unmarshal(stdout.Bytes(), &records); err != nil {
		return nil, fmt.Errorf("fetch tool %s: malformed output: %w", s.source, err)
	}

	now := time.Now().UTC()
	items := make([]Item, 0, len(records))
	for i, rec := range records {
		if rec.Title == "" {
			continue
		}
		items = append(items, Item{
			ID:          fmt.Sprintf("script:%s:%d", s.source, i),
			Source:      SourceScript,
			Title:       rec.Title,
			URL:         rec.URL,
			Score:       parseScoreText(rec.Score),
			Time:        rec.Time,
			CollectedAt: now,
		})
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// parseScoreText pulls the leading integer out of score strings like
// "342 points" or "15 replies". Non-numeric scores count as zero.
func parseScoreText(text string) int {
	text = strings.TrimSpace(text)
	end := 0
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, _ := strconv.Atoi(text[:end])
	return n
}
