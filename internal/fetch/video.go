package fetch

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/stellarlinkco/linkclaw/internal/capture"
)

// SubtitleLangs is the caption language preference order.
var SubtitleLangs = []string{"en", "zh-Hans", "zh-Hant", "zh"}

// descriptionFallbackLen bounds the tier-3 transcript substitute.
const descriptionFallbackLen = 3000

// VideoMetadata is what the media tool reports for one video.
type VideoMetadata struct {
	Title        string
	Channel      string
	Uploader     string
	Description  string
	UploadDate   string
	DurationSecs int64
	Views        int64
	Likes        int64
	Comments     int64
	Tags         []string
	Chapters     []capture.Chapter
}

// MediaTool is the video download boundary (yt-dlp in production).
// Subtitles returns the path of the best caption file it produced, or ""
// when the video has none in the requested languages.
type MediaTool interface {
	Metadata(ctx context.Context, url string) (*VideoMetadata, error)
	Subtitles(ctx context.Context, url string, langs []string, destDir string) (string, error)
	Audio(ctx context.Context, url string, destDir string) (string, error)
}

// Transcriber is the speech-to-text boundary (whisper in production).
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, model string) (string, error)
}

// VideoTimeouts bounds each acquisition stage separately; transcription is
// orders of magnitude slower than a metadata probe.
type VideoTimeouts struct {
	Metadata   time.Duration
	Subtitles  time.Duration
	Audio      time.Duration
	Transcribe time.Duration
}

func DefaultVideoTimeouts() VideoTimeouts {
	return VideoTimeouts{
		Metadata:   30 * time.Second,
		Subtitles:  30 * time.Second,
		Audio:      120 * time.Second,
		Transcribe: 600 * time.Second,
	}
}

// VideoAdapter acquires spoken content through a three-tier fallback:
// captions, then speech-to-text, then the video's own description. Tiers run
// strictly in order, each only when the previous produced nothing, and the
// description tier always yields a formal result. Only a metadata failure is
// an error.
type VideoAdapter struct {
	Tool        MediaTool
	Transcriber Transcriber
	Model       string
	Langs       []string
	Timeouts    VideoTimeouts
}

func NewVideoAdapter(tool MediaTool, tr Transcriber, model string) *VideoAdapter {
	if model == "" {
		model = "base"
	}
	return &VideoAdapter{
		Tool:        tool,
		Transcriber: tr,
		Model:       model,
		Langs:       append([]string(nil), SubtitleLangs...),
		Timeouts:    DefaultVideoTimeouts(),
	}
}

func (a *VideoAdapter) Kind() capture.SourceKind { return capture.SourceVideo }

func (a *VideoAdapter) Fetch(ctx context.Context, url string) (*capture.RawResult, error) {
	metaCtx, cancel := context.WithTimeout(ctx, a.Timeouts.Metadata)
	meta, err := a.Tool.Metadata(metaCtx, url)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("video metadata: %w", err)
	}

	transcript, method := a.acquireTranscript(ctx, url, meta)
	if meta.Title == "" && transcript == "" {
		return nil, fmt.Errorf("%w: video at %s has no usable content", ErrEmptyResult, url)
	}

	return &capture.RawResult{
		Kind: capture.SourceVideo,
		Video: &capture.VideoData{
			Title:        meta.Title,
			Channel:      meta.Channel,
			Uploader:     meta.Uploader,
			Description:  meta.Description,
			UploadDate:   meta.UploadDate,
			DurationSecs: meta.DurationSecs,
			Views:        meta.Views,
			Likes:        meta.Likes,
			Comments:     meta.Comments,
			Tags:         meta.Tags,
			Chapters:     meta.Chapters,
			Transcript:   transcript,
			Method:       method,
		},
	}, nil
}

// acquireTranscript walks the fallback tiers. A tier that errors or comes
// back empty demotes to the next; that is normal control flow here, not
// error recovery.
func (a *VideoAdapter) acquireTranscript(ctx context.Context, url string, meta *VideoMetadata) (string, string) {
	if text := a.trySubtitles(ctx, url); text != "" {
		return text, capture.TranscriptSubtitles
	}
	if text := a.trySpeech(ctx, url); text != "" {
		return text, capture.TranscriptSpeech
	}
	return clip(strings.TrimSpace(meta.Description), descriptionFallbackLen), capture.TranscriptDescription
}

func (a *VideoAdapter) trySubtitles(ctx context.Context, url string) string {
	dir, err := os.MkdirTemp("", "linkclaw-subs-")
	if err != nil {
		log.Printf("[video] temp dir: %v", err)
		return ""
	}
	defer os.RemoveAll(dir)

	subCtx, cancel := context.WithTimeout(ctx, a.Timeouts.Subtitles)
	defer cancel()
	path, err := a.Tool.Subtitles(subCtx, url, a.Langs, dir)
	if err != nil {
		log.Printf("[video] subtitles for %s: %v", url, err)
		return ""
	}
	if path == "" {
		return ""
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[video] read captions %s: %v", path, err)
		return ""
	}
	return ParseVTT(string(raw))
}

func (a *VideoAdapter) trySpeech(ctx context.Context, url string) string {
	if a.Transcriber == nil {
		return ""
	}
	dir, err := os.MkdirTemp("", "linkclaw-audio-")
	if err != nil {
		log.Printf("[video] temp dir: %v", err)
		return ""
	}
	defer os.RemoveAll(dir)

	audioCtx, cancel := context.WithTimeout(ctx, a.Timeouts.Audio)
	path, err := a.Tool.Audio(audioCtx, url, dir)
	cancel()
	if err != nil {
		log.Printf("[video] audio for %s: %v", url, err)
		return ""
	}

	log.Printf("[video] no captions for %s, transcribing audio (model %s)", url, a.Model)
	trCtx, cancel := context.WithTimeout(ctx, a.Timeouts.Transcribe)
	defer cancel()
	text, err := a.Transcriber.Transcribe(trCtx, path, a.Model)
	if err != nil {
		log.Printf("[video] transcribe %s: %v", url, err)
		return ""
	}
	return strings.TrimSpace(text)
}

var (
	cueTiming = regexp.MustCompile(`\d{2}:\d{2}(:\d{2})?\.\d{3}\s+-->`)
	cueTag    = regexp.MustCompile(`<[^>]+>`)
)

// ParseVTT extracts clean text from WebVTT captions. Auto-generated cues
// repeat lines verbatim across overlapping timing windows, so every distinct
// line is emitted at most once, in first-seen order.
func ParseVTT(raw string) string {
	seen := make(map[string]struct{})
	var out []string
	inBlock := false

	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			inBlock = false
			continue
		case strings.HasPrefix(line, "WEBVTT"),
			strings.HasPrefix(line, "Kind:"),
			strings.HasPrefix(line, "Language:"):
			continue
		case strings.HasPrefix(line, "NOTE"),
			strings.HasPrefix(line, "STYLE"),
			strings.HasPrefix(line, "REGION"):
			inBlock = true
			continue
		case inBlock:
			continue
		case cueTiming.MatchString(line):
			continue
		}
		if _, err := strconv.Atoi(line); err == nil {
			// Bare cue sequence number.
			continue
		}
		text := strings.TrimSpace(cueTag.ReplaceAllString(line, ""))
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return strings.Join(out, " ")
}
