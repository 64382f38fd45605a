package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultTweetAPIBase  = "https://api.fxtwitter.com"
	DefaultYtdlpPath     = "yt-dlp"
	DefaultWhisperPath   = "whisper"
	DefaultWhisperModel  = "base"
	DefaultWatchSchedule = "0 */6 * * *"
	DefaultConcurrency   = 3

	DefaultTweetTimeoutSecs      = 15
	DefaultWebTimeoutSecs        = 20
	DefaultMetadataTimeoutSecs   = 30
	DefaultSubtitleTimeoutSecs   = 30
	DefaultAudioTimeoutSecs      = 120
	DefaultTranscribeTimeoutSecs = 600
)

type Config struct {
	Store  StoreConfig  `json:"store"`
	Fetch  FetchConfig  `json:"fetch"`
	Labels LabelsConfig `json:"labels"`
	Notify NotifyConfig `json:"notify"`
	Watch  WatchConfig  `json:"watch"`
}

type StoreConfig struct {
	DBPath string `json:"dbPath"`
}

type FetchConfig struct {
	TweetAPIBase     string      `json:"tweetApiBase"`
	TweetTimeoutSecs int         `json:"tweetTimeoutSecs"`
	WebTimeoutSecs   int         `json:"webTimeoutSecs"`
	Video            VideoConfig `json:"video"`
}

type VideoConfig struct {
	YtdlpPath             string   `json:"ytdlpPath"`
	WhisperPath           string   `json:"whisperPath"`
	WhisperModel          string   `json:"whisperModel"`
	SubtitleLangs         []string `json:"subtitleLangs,omitempty"`
	MetadataTimeoutSecs   int      `json:"metadataTimeoutSecs"`
	SubtitleTimeoutSecs   int      `json:"subtitleTimeoutSecs"`
	AudioTimeoutSecs      int      `json:"audioTimeoutSecs"`
	TranscribeTimeoutSecs int      `json:"transcribeTimeoutSecs"`
}

type LabelsConfig struct {
	RulesPath string `json:"rulesPath,omitempty"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  int64  `json:"chatId"`
}

type WatchConfig struct {
	Schedule    string `json:"schedule"`
	Concurrency int    `json:"concurrency"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Store: StoreConfig{
			DBPath: filepath.Join(home, ".linkclaw", "captures.db"),
		},
		Fetch: FetchConfig{
			TweetAPIBase:     DefaultTweetAPIBase,
			TweetTimeoutSecs: DefaultTweetTimeoutSecs,
			WebTimeoutSecs:   DefaultWebTimeoutSecs,
			Video: VideoConfig{
				YtdlpPath:             DefaultYtdlpPath,
				WhisperPath:           DefaultWhisperPath,
				WhisperModel:          DefaultWhisperModel,
				MetadataTimeoutSecs:   DefaultMetadataTimeoutSecs,
				SubtitleTimeoutSecs:   DefaultSubtitleTimeoutSecs,
				AudioTimeoutSecs:      DefaultAudioTimeoutSecs,
				TranscribeTimeoutSecs: DefaultTranscribeTimeoutSecs,
			},
		},
		Labels: LabelsConfig{},
		Notify: NotifyConfig{},
		Watch: WatchConfig{
			Schedule:    DefaultWatchSchedule,
			Concurrency: DefaultConcurrency,
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".linkclaw")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if path := os.Getenv("LINKCLAW_DB_PATH"); path != "" {
		cfg.Store.DBPath = path
	}
	if base := os.Getenv("LINKCLAW_TWEET_API"); base != "" {
		cfg.Fetch.TweetAPIBase = base
	}
	if model := os.Getenv("LINKCLAW_WHISPER_MODEL"); model != "" {
		cfg.Fetch.Video.WhisperModel = model
	}
	if token := os.Getenv("LINKCLAW_TELEGRAM_TOKEN"); token != "" {
		cfg.Notify.Telegram.Token = token
	}
	if chatID := os.Getenv("LINKCLAW_TELEGRAM_CHAT_ID"); chatID != "" {
		if parsed, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			cfg.Notify.Telegram.ChatID = parsed
		}
	}

	if cfg.Store.DBPath == "" {
		cfg.Store.DBPath = DefaultConfig().Store.DBPath
	}
	if cfg.Fetch.TweetAPIBase == "" {
		cfg.Fetch.TweetAPIBase = DefaultTweetAPIBase
	}
	if cfg.Fetch.TweetTimeoutSecs <= 0 {
		cfg.Fetch.TweetTimeoutSecs = DefaultTweetTimeoutSecs
	}
	if cfg.Fetch.WebTimeoutSecs <= 0 {
		cfg.Fetch.WebTimeoutSecs = DefaultWebTimeoutSecs
	}
	if cfg.Fetch.Video.YtdlpPath == "" {
		cfg.Fetch.Video.YtdlpPath = DefaultYtdlpPath
	}
	if cfg.Fetch.Video.WhisperPath == "" {
		cfg.Fetch.Video.WhisperPath = DefaultWhisperPath
	}
	if cfg.Fetch.Video.WhisperModel == "" {
		cfg.Fetch.Video.WhisperModel = DefaultWhisperModel
	}
	if cfg.Fetch.Video.MetadataTimeoutSecs <= 0 {
		cfg.Fetch.Video.MetadataTimeoutSecs = DefaultMetadataTimeoutSecs
	}
	if cfg.Fetch.Video.SubtitleTimeoutSecs <= 0 {
		cfg.Fetch.Video.SubtitleTimeoutSecs = DefaultSubtitleTimeoutSecs
	}
	if cfg.Fetch.Video.AudioTimeoutSecs <= 0 {
		cfg.Fetch.Video.AudioTimeoutSecs = DefaultAudioTimeoutSecs
	}
	if cfg.Fetch.Video.TranscribeTimeoutSecs <= 0 {
		cfg.Fetch.Video.TranscribeTimeoutSecs = DefaultTranscribeTimeoutSecs
	}
	if cfg.Watch.Schedule == "" {
		cfg.Watch.Schedule = DefaultWatchSchedule
	}
	if cfg.Watch.Concurrency <= 0 {
		cfg.Watch.Concurrency = DefaultConcurrency
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
