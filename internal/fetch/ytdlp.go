package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/stellarlinkco/linkclaw/internal/capture"
)

// YtDlp runs the yt-dlp binary as the production MediaTool.
type YtDlp struct {
	Path string
}

func NewYtDlp(path string) *YtDlp {
	if path == "" {
		path = "yt-dlp"
	}
	return &YtDlp{Path: path}
}

func (y *YtDlp) Metadata(ctx context.Context, url string) (*VideoMetadata, error) {
	out, err := y.run(ctx, "--dump-json", "--no-download", "--no-warnings", url)
	if err != nil {
		return nil, err
	}
	var probe ytProbe
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("decode yt-dlp metadata: %w", err)
	}

	meta := &VideoMetadata{
		Title:        probe.Title,
		Channel:      probe.Channel,
		Uploader:     probe.Uploader,
		Description:  probe.Description,
		UploadDate:   probe.UploadDate,
		DurationSecs: int64(probe.Duration),
		Views:        probe.ViewCount,
		Likes:        probe.LikeCount,
		Comments:     probe.CommentCount,
		Tags:         probe.Tags,
	}
	for _, ch := range probe.Chapters {
		meta.Chapters = append(meta.Chapters, capture.Chapter{Title: ch.Title, StartSecs: ch.StartTime})
	}
	return meta, nil
}

func (y *YtDlp) Subtitles(ctx context.Context, url string, langs []string, destDir string) (string, error) {
	_, err := y.run(ctx,
		"--write-subs", "--write-auto-subs",
		"--sub-langs", strings.Join(langs, ","),
		"--sub-format", "vtt",
		"--skip-download", "--no-warnings",
		"-o", filepath.Join(destDir, "subs"),
		url,
	)
	if err != nil {
		return "", err
	}

	for _, lang := range langs {
		path := filepath.Join(destDir, "subs."+lang+".vtt")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	// Region-qualified variants (en-US and the like) land here.
	matches, _ := filepath.Glob(filepath.Join(destDir, "subs.*.vtt"))
	if len(matches) > 0 {
		return matches[0], nil
	}
	return "", nil
}

func (y *YtDlp) Audio(ctx context.Context, url string, destDir string) (string, error) {
	_, err := y.run(ctx,
		"-f", "bestaudio/best",
		"-x", "--audio-format", "mp3",
		"--no-warnings",
		"-o", filepath.Join(destDir, "audio.%(ext)s"),
		url,
	)
	if err != nil {
		return "", err
	}
	path := filepath.Join(destDir, "audio.mp3")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("audio file missing after extraction: %w", err)
	}
	return path, nil
}

func (y *YtDlp) run(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, y.Path, args...).Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("yt-dlp: %s", lastLine(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}
	return out, nil
}

// lastLine picks the final non-empty line; yt-dlp and whisper both print
// their actual error last.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

type ytProbe struct {
	Title        string   `json:"title"`
	Channel      string   `json:"channel"`
	Uploader     string   `json:"uploader"`
	Description  string   `json:"description"`
	UploadDate   string   `json:"upload_date"`
	Duration     float64  `json:"duration"`
	ViewCount    int64    `json:"view_count"`
	LikeCount    int64    `json:"like_count"`
	CommentCount int64    `json:"comment_count"`
	Tags         []string `json:"tags"`
	Chapters     []struct {
		Title     string  `json:"title"`
		StartTime float64 `json:"start_time"`
	} `json:"chapters"`
}
