package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/elonfeng/mppilot/pkg/collect"
)

// Config is the root configuration.
type Config struct {
	WeChat       WeChatConfig       `yaml:"wechat" json:"wechat"`
	Notification NotificationConfig `yaml:"notification" json:"notification"`
	Content      ContentConfig      `yaml:"content" json:"content"`
	Analytics    AnalyticsConfig    `yaml:"analytics" json:"analytics"`
	Collect      CollectConfig      `yaml:"collect" json:"collect"`
	Storage      StorageConfig      `yaml:"storage" json:"storage"`
	Server       ServerConfig       `yaml:"server" json:"server"`
}

// WeChatConfig holds Official Account credentials.
type WeChatConfig struct {
	AppID     string `yaml:"app_id" json:"appId"`
	AppSecret string `yaml:"app_secret" json:"appSecret"`
	BaseURL   string `yaml:"base_url" json:"baseUrl"`
}

// NotificationConfig selects the operator notification channel.
type NotificationConfig struct {
	Channel string `yaml:"channel" json:"channel"` // telegram, slack, webhook, none
	Target  string `yaml:"target" json:"target"`   // chat id or webhook URL
	Token   string `yaml:"token" json:"token"`     // bot token (telegram)
	Secret  string `yaml:"secret" json:"secret"`   // HMAC secret (webhook)
	Silent  bool   `yaml:"silent" json:"silent"`
}

// ContentConfig configures topic collection.
type ContentConfig struct {
	Topics    []string `yaml:"topics" json:"topics"`
	Sources   []string `yaml:"sources" json:"sources"`
	Language  string   `yaml:"language" json:"language"`
	FetchTool string   `yaml:"fetch_tool" json:"fetchTool"` // external fetch script path, optional
	RSSFeeds  []Feed   `yaml:"rss_feeds" json:"rssFeeds"`
}

// Feed is a single RSS feed entry.
type Feed struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// AnalyticsConfig configures report generation.
type AnalyticsConfig struct {
	DailyReportTime string `yaml:"daily_report_time" json:"dailyReportTime"` // "HH:MM"
	Timezone        string `yaml:"timezone" json:"timezone"`
	TopArticles     int    `yaml:"top_articles" json:"topArticles"`
}

// Location returns the configured timezone, falling back to UTC.
func (a AnalyticsConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CollectConfig configures scoring and ranking.
type CollectConfig struct {
	TitleWeight      float64             `yaml:"title_weight" json:"titleWeight"`
	ContentWeight    float64             `yaml:"content_weight" json:"contentWeight"`
	ScoreBands       []collect.ScoreBand `yaml:"score_bands" json:"scoreBands"`
	RelevanceWeight  float64             `yaml:"relevance_weight" json:"relevanceWeight"`
	PopularityWeight float64             `yaml:"popularity_weight" json:"popularityWeight"`
	NormalizeDenom   float64             `yaml:"normalize_denom" json:"normalizeDenom"`
	Count            int                 `yaml:"count" json:"count"`
	Interval         string              `yaml:"interval" json:"interval"`
}

// ParseInterval returns the collect interval as time.Duration.
func (c CollectConfig) ParseInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// StorageConfig configures persistence.
type StorageConfig struct {
	DataDir     string `yaml:"data_dir" json:"dataDir"`
	ArchivePath string `yaml:"archive_path" json:"archivePath"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

// Default returns a Config with documented defaults.
func Default() *Config {
	return &Config{
		WeChat: WeChatConfig{BaseURL: "https://api.weixin.qq.com"},
		Notification: NotificationConfig{
			Channel: "none",
		},
		Content: ContentConfig{
			Topics:   []string{"AI", "科技"},
			Sources:  []string{"hackernews", "github", "zhihu"},
			Language: "zh",
			RSSFeeds: []Feed{
				{Name: "ithome", URL: "https://www.ithome.com/rss/"},
			},
		},
		Analytics: AnalyticsConfig{
			DailyReportTime: "08:30",
			Timezone:        "Asia/Shanghai",
			TopArticles:     5,
		},
		Collect: CollectConfig{
			TitleWeight:      0.3,
			ContentWeight:    0.15,
			ScoreBands:       collect.DefaultScoreBands,
			RelevanceWeight:  0.6,
			PopularityWeight: 0.4,
			NormalizeDenom:   1000,
			Count:            20,
			Interval:         "6h",
		},
		Storage: StorageConfig{
			DataDir:     "./data",
			ArchivePath: "./data/mppilot.db",
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML or JSON file. With an empty path
// it looks for config.yaml then config.json, and auto-creates
// config.yaml with the documented defaults when neither exists. A .env
// file and environment variables override file values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		for _, candidate := range []string{"config.yaml", "config.json"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			path = "config.yaml"
			if err := writeDefault(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func writeDefault(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WECHAT_APP_ID"); v != "" {
		cfg.WeChat.AppID = v
	}
	if v := os.Getenv("WECHAT_APP_SECRET"); v != "" {
		cfg.WeChat.AppSecret = v
	}
	if v := os.Getenv("MPPILOT_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notification.Token = v
		if cfg.Notification.Channel == "none" {
			cfg.Notification.Channel = "telegram"
		}
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notification.Target = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Notification.Channel = "slack"
		cfg.Notification.Target = v
	}
}
