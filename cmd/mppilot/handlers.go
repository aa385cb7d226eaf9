package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/elonfeng/mppilot/internal/config"
	"github.com/elonfeng/mppilot/internal/scheduler"
	"github.com/elonfeng/mppilot/internal/store"
	"github.com/elonfeng/mppilot/pkg/collect"
	"github.com/elonfeng/mppilot/pkg/comment"
	"github.com/elonfeng/mppilot/pkg/notify"
	"github.com/elonfeng/mppilot/pkg/report"
	"github.com/elonfeng/mppilot/pkg/server"
	"github.com/elonfeng/mppilot/pkg/task"
	"github.com/elonfeng/mppilot/pkg/wechat"
)

// emit writes the single machine-readable success line to stdout.
func emit(data any) error {
	return json.NewEncoder(os.Stdout).Encode(struct {
		Success bool `json:"success"`
		Data    any  `json:"data"`
	}{Success: true, Data: data})
}

// emitError writes the failure line to stdout.
func emitError(err error) {
	_ = json.NewEncoder(os.Stdout).Encode(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{Success: false, Error: err.Error()})
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func openFiles(cfg *config.Config) (*store.Files, error) {
	return store.NewFiles(cfg.Storage.DataDir)
}

func buildClient(cfg *config.Config) (*wechat.Client, error) {
	if cfg.WeChat.AppID == "" || cfg.WeChat.AppSecret == "" {
		return nil, fmt.Errorf("wechat app_id and app_secret are required (config or WECHAT_APP_ID/WECHAT_APP_SECRET)")
	}
	creds := wechat.NewAppCredentials(cfg.WeChat.AppID, cfg.WeChat.AppSecret, cfg.WeChat.BaseURL)
	return wechat.NewClient(creds, cfg.WeChat.BaseURL), nil
}

func buildSources(cfg *config.Config, keywords []string, deep bool) []collect.Source {
	var sources []collect.Source
	for _, name := range cfg.Content.Sources {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "hackernews", "hn":
			sources = append(sources, collect.NewHackerNews())
		case "github":
			sources = append(sources, collect.NewGitHub())
		case "v2ex":
			sources = append(sources, collect.NewV2EX())
		case "zhihu":
			sources = append(sources, collect.NewZhihu())
		case "weibo":
			sources = append(sources, collect.NewWeibo())
		case "rss":
			feeds := make([]collect.RSSFeed, len(cfg.Content.RSSFeeds))
			for i, f := range cfg.Content.RSSFeeds {
				feeds[i] = collect.RSSFeed{Name: f.Name, URL: f.URL}
			}
			sources = append(sources, collect.NewRSS(feeds))
		default:
			// Unknown names go through the external fetch tool when configured.
			if cfg.Content.FetchTool != "" {
				sources = append(sources, collect.NewScript(cfg.Content.FetchTool, name, keywords, deep))
			}
		}
	}
	return sources
}

func buildPipeline(cfg *config.Config, keywords []string, deep bool) *collect.Pipeline {
	scorer := collect.NewScorer(cfg.Collect.TitleWeight, cfg.Collect.ContentWeight, cfg.Collect.ScoreBands)
	weights := collect.Weights{
		Relevance:      cfg.Collect.RelevanceWeight,
		Popularity:     cfg.Collect.PopularityWeight,
		NormalizeDenom: cfg.Collect.NormalizeDenom,
	}
	return collect.NewPipeline(buildSources(cfg, keywords, deep), scorer, weights)
}

func buildNotifier(cfg *config.Config) *notify.Manager {
	var notifiers []notify.Notifier

	switch cfg.Notification.Channel {
	case "telegram":
		if tg, err := notify.NewTelegram(cfg.Notification.Token, cfg.Notification.Target); err == nil {
			notifiers = append(notifiers, tg)
		}
	case "slack":
		if cfg.Notification.Target != "" {
			notifiers = append(notifiers, notify.NewSlack(cfg.Notification.Target))
		}
	case "webhook":
		if cfg.Notification.Target != "" {
			notifiers = append(notifiers, notify.NewWebhook(cfg.Notification.Target, cfg.Notification.Secret))
		}
	}

	return notify.NewManager(notifiers, cfg.Notification.Silent)
}

func runCollect(ctx context.Context, topics, keywords, srcFilter []string, count int, deep bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if len(topics) == 0 {
		topics = cfg.Content.Topics
	}
	if len(keywords) == 0 {
		keywords = topics
	}
	if count <= 0 {
		count = cfg.Collect.Count
	}
	if len(srcFilter) > 0 {
		cfg.Content.Sources = srcFilter
	}

	files, err := openFiles(cfg)
	if err != nil {
		return err
	}

	pipeline := buildPipeline(cfg, keywords, deep)
	snap := pipeline.Run(ctx, collect.Options{
		Topics:   topics,
		Keywords: keywords,
		Count:    count,
		Deep:     deep,
	})

	if err := files.SaveSnapshot(snap); err != nil {
		return err
	}

	if archive, err := store.OpenArchive(cfg.Storage.ArchivePath); err != nil {
		// The snapshot is the run contract; archive trouble is not fatal.
		fmt.Fprintf(os.Stderr, "archive: %v\n", err)
	} else {
		defer archive.Close()
		if err := archive.UpsertItems(ctx, snap.Items); err != nil {
			fmt.Fprintf(os.Stderr, "archive items: %v\n", err)
		}
	}

	return emit(snap)
}

func runReport(ctx context.Context, kind string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	files, err := openFiles(cfg)
	if err != nil {
		return err
	}

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	gen := report.NewGenerator(client, files, cfg.Analytics.TopArticles)

	var rep *report.Report
	if kind == "weekly" {
		rep, err = gen.Weekly(ctx)
	} else {
		rep, err = gen.Daily(ctx)
	}
	if err != nil {
		return err
	}

	notifier := buildNotifier(cfg)
	if notifier.HasNotifiers() {
		n := &notify.Notification{Title: "报告 " + rep.PeriodStart, Body: rep.Text}
		if err := notifier.Broadcast(ctx, n); err != nil {
			fmt.Fprintf(os.Stderr, "notify: %v\n", err)
		}
	}

	return emit(rep)
}

func runComments(ctx context.Context, articleID string, recent int, listOnly bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	files, err := openFiles(cfg)
	if err != nil {
		return err
	}

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	checker := comment.NewChecker(client, files)
	fresh, err := checker.Check(ctx, comment.Options{
		ArticleID: articleID,
		RecentN:   recent,
		ListOnly:  listOnly,
	})
	if err != nil {
		return err
	}

	if fresh == nil {
		fresh = []comment.New{}
	}
	return emit(fresh)
}

func runCommentReply(ctx context.Context, articleID string, commentID int64, text string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	client, err := buildClient(cfg)
	if err != nil {
		return err
	}
	if err := client.ReplyComment(ctx, articleID, 0, commentID, text); err != nil {
		return err
	}
	return emit(map[string]any{"articleId": articleID, "commentId": commentID, "replied": true})
}

func runPublish(ctx context.Context, title, file, author, digest, thumb, thumbFile string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read content %s: %w", file, err)
	}

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	if thumb == "" && thumbFile != "" {
		img, err := os.ReadFile(thumbFile)
		if err != nil {
			return fmt.Errorf("read cover %s: %w", thumbFile, err)
		}
		mediaID, _, err := client.UploadMaterial(ctx, "image", filepath.Base(thumbFile), img)
		if err != nil {
			return err
		}
		thumb = mediaID
	}

	status, err := client.Publish(ctx, []wechat.Article{{
		Title:           title,
		Author:          author,
		Digest:          digest,
		Content:         string(content),
		ThumbMediaID:    thumb,
		NeedOpenComment: 1,
	}})
	if err != nil {
		return err
	}

	return emit(status)
}

func runTaskAdd(topic string, keywords []string) error {
	q, err := taskQueue()
	if err != nil {
		return err
	}
	t, err := q.Add(topic, keywords)
	if err != nil {
		return err
	}
	return emit(t)
}

func runTaskList() error {
	q, err := taskQueue()
	if err != nil {
		return err
	}
	tasks, err := q.List()
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return emit(tasks)
}

func runTaskPop() error {
	q, err := taskQueue()
	if err != nil {
		return err
	}
	t, err := q.Pop()
	if err != nil {
		return err
	}
	return emit(t)
}

func taskQueue() (*task.Queue, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	files, err := openFiles(cfg)
	if err != nil {
		return nil, err
	}
	return task.NewQueue(files), nil
}

func runSources() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return emit(map[string]any{
		"configured": cfg.Content.Sources,
		"available":  collect.AllSourceTypes(),
	})
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	files, err := openFiles(cfg)
	if err != nil {
		return err
	}
	archive, err := store.OpenArchive(cfg.Storage.ArchivePath)
	if err != nil {
		return err
	}
	defer archive.Close()

	keywords := cfg.Content.Topics
	pipeline := buildPipeline(cfg, keywords, false)
	opts := collect.Options{Topics: cfg.Content.Topics, Keywords: keywords, Count: cfg.Collect.Count}

	srv := server.New(files, archive, pipeline, opts, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	files, err := openFiles(cfg)
	if err != nil {
		return err
	}
	archive, err := store.OpenArchive(cfg.Storage.ArchivePath)
	if err != nil {
		return err
	}
	defer archive.Close()

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	keywords := cfg.Content.Topics
	pipeline := buildPipeline(cfg, keywords, false)
	opts := collect.Options{Topics: cfg.Content.Topics, Keywords: keywords, Count: cfg.Collect.Count}
	gen := report.NewGenerator(client, files, cfg.Analytics.TopArticles)
	notifier := buildNotifier(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(pipeline, opts, files, archive, gen, notifier,
		cfg.Analytics.DailyReportTime, cfg.Analytics.Location(), cfg.Collect.ParseInterval())

	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	srv := server.New(files, archive, pipeline, opts, port)
	return srv.ListenAndServe()
}
