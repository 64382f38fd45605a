package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/stellarlinkco/linkclaw/internal/config"
	"github.com/stellarlinkco/linkclaw/internal/feed"
	"github.com/stellarlinkco/linkclaw/internal/fetch"
	"github.com/stellarlinkco/linkclaw/internal/notify"
	"github.com/stellarlinkco/linkclaw/internal/pipeline"
	"github.com/stellarlinkco/linkclaw/internal/schedule"
	"github.com/stellarlinkco/linkclaw/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "linkclaw",
	Short: "linkclaw - capture links into a local searchable archive",
}

var captureCmd = &cobra.Command{
	Use:   "capture <url>...",
	Short: "Capture one or more URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCapture,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var feedCmd = &cobra.Command{
	Use:   "feed <feed-url>",
	Short: "Capture every item of an RSS/Atom feed",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeed,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show linkclaw status",
	RunE:  runStatus,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh captured URLs on a schedule until interrupted",
	RunE:  runWatch,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config and data directory",
	RunE:  runOnboard,
}

var (
	jsonFlag         bool
	forceFlag        bool
	notifyFlag       bool
	concurrencyFlag  int
	whisperModelFlag string
	searchLimitFlag  int
	feedLimitFlag    int
)

func init() {
	captureCmd.Flags().BoolVar(&jsonFlag, "json", false, "Machine-readable output")
	captureCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite already captured URLs")
	captureCmd.Flags().BoolVar(&notifyFlag, "notify", false, "Send results to Telegram")
	captureCmd.Flags().IntVar(&concurrencyFlag, "concurrency", 0, "Parallel captures (default from config)")
	captureCmd.Flags().StringVar(&whisperModelFlag, "whisper-model", "", "Whisper model for video transcription")

	searchCmd.Flags().BoolVar(&jsonFlag, "json", false, "Machine-readable output")
	searchCmd.Flags().IntVar(&searchLimitFlag, "limit", 10, "Maximum rows")

	feedCmd.Flags().BoolVar(&jsonFlag, "json", false, "Machine-readable output")
	feedCmd.Flags().IntVar(&feedLimitFlag, "limit", 0, "Maximum feed items (0 = all)")
	feedCmd.Flags().IntVar(&concurrencyFlag, "concurrency", 0, "Parallel captures (default from config)")

	rootCmd.AddCommand(captureCmd, searchCmd, feedCmd, statusCmd, watchCmd, onboardCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildPipeline wires the adapters, the store, and the label rules from config.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, *store.Store, error) {
	st, err := store.NewStore(cfg.Store.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	rules, err := config.LoadLabelRules(cfg.Labels.RulesPath)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	video := fetch.NewVideoAdapter(
		fetch.NewYtDlp(cfg.Fetch.Video.YtdlpPath),
		fetch.NewWhisper(cfg.Fetch.Video.WhisperPath),
		cfg.Fetch.Video.WhisperModel,
	)
	video.Timeouts = fetch.VideoTimeouts{
		Metadata:   time.Duration(cfg.Fetch.Video.MetadataTimeoutSecs) * time.Second,
		Subtitles:  time.Duration(cfg.Fetch.Video.SubtitleTimeoutSecs) * time.Second,
		Audio:      time.Duration(cfg.Fetch.Video.AudioTimeoutSecs) * time.Second,
		Transcribe: time.Duration(cfg.Fetch.Video.TranscribeTimeoutSecs) * time.Second,
	}
	if len(cfg.Fetch.Video.SubtitleLangs) > 0 {
		video.Langs = cfg.Fetch.Video.SubtitleLangs
	}

	router := fetch.NewRouter(
		fetch.NewTweetAdapter(cfg.Fetch.TweetAPIBase, time.Duration(cfg.Fetch.TweetTimeoutSecs)*time.Second),
		fetch.NewWebAdapter(time.Duration(cfg.Fetch.WebTimeoutSecs)*time.Second),
		video,
	)
	return pipeline.New(router, st, rules), st, nil
}

func concurrency(cfg *config.Config) int {
	if concurrencyFlag > 0 {
		return concurrencyFlag
	}
	return cfg.Watch.Concurrency
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if whisperModelFlag != "" {
		cfg.Fetch.Video.WhisperModel = whisperModelFlag
	}

	pipe, st, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	var results []pipeline.Result
	if forceFlag {
		results = pipe.RefreshAll(ctx, args, concurrency(cfg))
	} else {
		results = pipe.RunAll(ctx, args, concurrency(cfg))
	}

	// Notification failures never fail the capture itself.
	if notifyFlag || cfg.Notify.Telegram.Enabled {
		if err := notifyResults(cfg, results); err != nil {
			log.Printf("[notify] %v", err)
		}
	}

	return renderResults(os.Stdout, results, jsonFlag, forceFlag)
}

func notifyResults(cfg *config.Config, results []pipeline.Result) error {
	n, err := notify.NewNotifier(cfg.Notify.Telegram)
	if err != nil {
		return err
	}
	return n.Notify(results)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.NewStore(cfg.Store.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	rows, err := st.Search(args[0], searchLimitFlag)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if jsonFlag {
		return printJSON(os.Stdout, rows)
	}
	if len(rows) == 0 {
		fmt.Println("No captures match.")
		return nil
	}
	for _, row := range rows {
		printStored(os.Stdout, row)
	}
	return nil
}

func runFeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pipe, st, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	items, err := feed.NewReader().Items(ctx, args[0], feedLimitFlag)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("Feed has no items.")
		return nil
	}

	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, item.URL)
	}

	results := pipe.RunAll(ctx, urls, concurrency(cfg))
	return renderResults(os.Stdout, results, jsonFlag, false)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Database: %s\n", cfg.Store.DBPath)
	fmt.Printf("Watch: %s (concurrency %d)\n", cfg.Watch.Schedule, cfg.Watch.Concurrency)
	fmt.Printf("Telegram: enabled=%v\n", cfg.Notify.Telegram.Enabled)

	if _, err := os.Stat(cfg.Store.DBPath); err != nil {
		fmt.Println("Archive: no database yet (run 'linkclaw capture')")
		return nil
	}

	st, err := store.NewStore(cfg.Store.DBPath)
	if err != nil {
		fmt.Printf("Archive: error (%v)\n", err)
		return nil
	}
	defer st.Close()

	stats, err := st.Stats()
	if err != nil {
		fmt.Printf("Archive: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Archive: %d capture(s)\n", stats.Total)
	kinds := make([]string, 0, len(stats.ByKind))
	for kind := range stats.ByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Printf("  %s: %d\n", kind, stats.ByKind[kind])
	}
	if stats.LastCapturedAt != "" {
		if ts, err := time.Parse(time.RFC3339, stats.LastCapturedAt); err == nil {
			fmt.Printf("Last capture: %s\n", humanize.Time(ts))
		}
	}
	return nil
}

// watchSignals is injectable for testing signal handling.
var watchSignals chan os.Signal

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pipe, st, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	w := schedule.NewWatcher(pipe, st, cfg.Watch.Schedule, cfg.Watch.Concurrency)
	if err := w.Start(context.Background()); err != nil {
		return err
	}

	sigCh := watchSignals
	if sigCh == nil {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	}
	<-sigCh

	log.Printf("[watch] shutting down...")
	w.Stop()
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgPath := config.ConfigPath()

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Store.DBPath), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	fmt.Printf("Data dir ready: %s\n", filepath.Dir(cfg.Store.DBPath))

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s if yt-dlp or whisper live outside PATH\n", cfgPath)
	fmt.Println("  2. Run 'linkclaw capture <url>' to archive your first link")
	fmt.Println("  3. Run 'linkclaw watch' to keep engagement stats fresh")

	return nil
}

func renderResults(w io.Writer, results []pipeline.Result, jsonOut, force bool) error {
	if jsonOut {
		return printJSON(w, results)
	}

	ok := 0
	for _, res := range results {
		printResult(w, res, force)
		if res.Status == pipeline.StatusOK {
			ok++
		}
	}
	if len(results) > 1 {
		fmt.Fprintf(w, "\n%d/%d captured\n", ok, len(results))
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printResult(w io.Writer, res pipeline.Result, force bool) {
	if res.Status != pipeline.StatusOK {
		fmt.Fprintf(w, "\n%s\n", res.URL)
		fmt.Fprintf(w, "   error: %s\n", res.Error)
		return
	}

	fmt.Fprintf(w, "\n%s\n", res.Title)
	fmt.Fprintf(w, "   %s\n", res.URL)
	fmt.Fprintf(w, "   %s  importance %.2f\n", hashLabels(res.Labels), res.Importance)

	switch {
	case res.Dedup != nil && res.Dedup.Exists && !force:
		fmt.Fprintf(w, "   already captured as %s\n", res.StoredID)
	case res.Dedup != nil && res.Dedup.Exists:
		fmt.Fprintf(w, "   refreshed %s\n", res.StoredID)
	default:
		fmt.Fprintf(w, "   stored as %s\n", res.StoredID)
	}
}

func printStored(w io.Writer, row store.StoredCapture) {
	fmt.Fprintf(w, "\n%s\n", row.Title)
	fmt.Fprintf(w, "   %s\n", row.URL)

	line := fmt.Sprintf("importance %.2f", row.Importance)
	if len(row.Labels) > 0 {
		line = hashLabels(row.Labels) + "  " + line
	}
	if ts, err := time.Parse(time.RFC3339, row.CapturedAt); err == nil {
		line += ", captured " + humanize.Time(ts)
	}
	fmt.Fprintf(w, "   %s\n", line)
	if row.Summary != "" {
		fmt.Fprintf(w, "   %s\n", row.Summary)
	}
}

func hashLabels(labels []string) string {
	tagged := make([]string, 0, len(labels))
	for _, l := range labels {
		tagged = append(tagged, "#"+l)
	}
	return strings.Join(tagged, " ")
}
