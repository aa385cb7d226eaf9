package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	// Stdout carries exactly one line of machine-readable JSON per run;
	// all diagnostics go to stderr.
	logrus.SetOutput(os.Stderr)

	if err := rootCmd().Execute(); err != nil {
		emitError(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mppilot",
		Short:         "Automate an Official Account: collect trends, publish, report, moderate",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(collectCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(commentsCmd())
	root.AddCommand(publishCmd())
	root.AddCommand(taskCmd())
	root.AddCommand(sourcesCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func collectCmd() *cobra.Command {
	var (
		topics   []string
		keywords []string
		sources  []string
		count    int
		deep     bool
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect, score, and dedupe trending content into a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context(), topics, keywords, sources, count, deep)
		},
	}

	cmd.Flags().StringSliceVar(&topics, "topic", nil, "topics for this run (default: from config)")
	cmd.Flags().StringSliceVar(&keywords, "keyword", nil, "keywords for relevance scoring (default: topics)")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "specific sources to collect (e.g., hackernews,github)")
	cmd.Flags().IntVar(&count, "count", 0, "total item count (default: from config)")
	cmd.Flags().BoolVar(&deep, "deep", false, "fetch readable page content for each item")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate analytics reports",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "daily",
		Short: "Generate the daily report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), "daily")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "weekly",
		Short: "Generate the weekly report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), "weekly")
		},
	})
	return cmd
}

func commentsCmd() *cobra.Command {
	var (
		articleID string
		recent    int
		listOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Surface comments not seen before",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComments(cmd.Context(), articleID, recent, listOnly)
		},
	}

	cmd.Flags().StringVar(&articleID, "article-id", "", "check a single article")
	cmd.Flags().IntVar(&recent, "recent", 5, "check the N most recently published articles")
	cmd.Flags().BoolVar(&listOnly, "list-only", false, "preview without marking comments as seen")

	var (
		replyArticle string
		commentID    int64
		text         string
	)
	reply := &cobra.Command{
		Use:   "reply",
		Short: "Reply to a reader comment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentReply(cmd.Context(), replyArticle, commentID, text)
		},
	}
	reply.Flags().StringVar(&replyArticle, "article-id", "", "article the comment belongs to (required)")
	reply.Flags().Int64Var(&commentID, "comment-id", 0, "user comment id (required)")
	reply.Flags().StringVar(&text, "text", "", "reply text (required)")
	_ = reply.MarkFlagRequired("article-id")
	_ = reply.MarkFlagRequired("comment-id")
	_ = reply.MarkFlagRequired("text")
	cmd.AddCommand(reply)

	return cmd
}

func publishCmd() *cobra.Command {
	var (
		title     string
		file      string
		author    string
		digest    string
		thumb     string
		thumbFile string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Draft and publish an article",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd.Context(), title, file, author, digest, thumb, thumbFile)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "article title (required)")
	cmd.Flags().StringVar(&file, "file", "", "HTML content file (required)")
	cmd.Flags().StringVar(&author, "author", "", "article author")
	cmd.Flags().StringVar(&digest, "digest", "", "article digest")
	cmd.Flags().StringVar(&thumb, "thumb", "", "cover image media id")
	cmd.Flags().StringVar(&thumbFile, "thumb-file", "", "cover image file to upload")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the content-generation task queue",
	}

	var (
		topic    string
		keywords []string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Queue a generation task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskAdd(topic, keywords)
		},
	}
	add.Flags().StringVar(&topic, "topic", "", "task topic (required)")
	add.Flags().StringSliceVar(&keywords, "keyword", nil, "task keywords")
	_ = add.MarkFlagRequired("topic")

	cmd.AddCommand(add)
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List queued tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskList()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pop",
		Short: "Take the oldest pending task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskPop()
		},
	})
	return cmd
}

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources()
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
