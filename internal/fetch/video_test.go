package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stellarlinkco/linkclaw/internal/capture"
)

type fakeMediaTool struct {
	meta     *VideoMetadata
	metaErr  error
	vtt      string
	subsErr  error
	audioErr error
	calls    []string
}

func (f *fakeMediaTool) Metadata(ctx context.Context, url string) (*VideoMetadata, error) {
	f.calls = append(f.calls, "metadata")
	return f.meta, f.metaErr
}

func (f *fakeMediaTool) Subtitles(ctx context.Context, url string, langs []string, destDir string) (string, error) {
	f.calls = append(f.calls, "subtitles")
	if f.subsErr != nil {
		return "", f.subsErr
	}
	if f.vtt == "" {
		return "", nil
	}
	path := filepath.Join(destDir, "subs.en.vtt")
	if err := os.WriteFile(path, []byte(f.vtt), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeMediaTool) Audio(ctx context.Context, url string, destDir string) (string, error) {
	f.calls = append(f.calls, "audio")
	if f.audioErr != nil {
		return "", f.audioErr
	}
	path := filepath.Join(destDir, "audio.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, model string) (string, error) {
	f.calls++
	return f.text, f.err
}

const sampleVTT = `WEBVTT
Kind: captions
Language: en

00:00:00.000 --> 00:00:02.000
hello

00:00:01.500 --> 00:00:03.000
hello

00:00:03.000 --> 00:00:04.500
world
`

func TestVideoAdapter_SubtitleTier(t *testing.T) {
	tool := &fakeMediaTool{
		meta: &VideoMetadata{Title: "Talk", Channel: "Conf"},
		vtt:  sampleVTT,
	}
	tr := &fakeTranscriber{text: "should not be used"}
	a := NewVideoAdapter(tool, tr, "")

	raw, err := a.Fetch(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if raw.Video.Method != capture.TranscriptSubtitles {
		t.Errorf("method = %q, want subtitles", raw.Video.Method)
	}
	if raw.Video.Transcript != "hello world" {
		t.Errorf("transcript = %q, want hello world", raw.Video.Transcript)
	}
	if tr.calls != 0 {
		t.Errorf("transcriber called %d times, want 0", tr.calls)
	}
}

func TestVideoAdapter_SpeechTier(t *testing.T) {
	tool := &fakeMediaTool{
		meta: &VideoMetadata{Title: "Talk", Description: "desc"},
	}
	tr := &fakeTranscriber{text: " spoken transcription "}
	a := NewVideoAdapter(tool, tr, "small")

	raw, err := a.Fetch(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if raw.Video.Method != capture.TranscriptSpeech {
		t.Errorf("method = %q, want speech-to-text", raw.Video.Method)
	}
	if raw.Video.Transcript != "spoken transcription" {
		t.Errorf("transcript = %q", raw.Video.Transcript)
	}
	want := []string{"metadata", "subtitles", "audio"}
	if strings.Join(tool.calls, ",") != strings.Join(want, ",") {
		t.Errorf("tool calls = %v, want %v", tool.calls, want)
	}
	if tr.calls != 1 {
		t.Errorf("transcriber calls = %d, want 1", tr.calls)
	}
}

func TestVideoAdapter_DescriptionTier(t *testing.T) {
	tool := &fakeMediaTool{
		meta:     &VideoMetadata{Title: "Talk", Description: "the description text"},
		subsErr:  errors.New("no captions endpoint"),
		audioErr: errors.New("audio blocked"),
	}
	a := NewVideoAdapter(tool, &fakeTranscriber{}, "")

	raw, err := a.Fetch(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("description tier must not fail, got: %v", err)
	}
	if raw.Video.Method != capture.TranscriptDescription {
		t.Errorf("method = %q, want description-only", raw.Video.Method)
	}
	if raw.Video.Transcript != "the description text" {
		t.Errorf("transcript = %q", raw.Video.Transcript)
	}
}

func TestVideoAdapter_MetadataFailure(t *testing.T) {
	tool := &fakeMediaTool{metaErr: errors.New("video unavailable")}
	a := NewVideoAdapter(tool, nil, "")

	if _, err := a.Fetch(context.Background(), "https://youtu.be/gone"); err == nil {
		t.Fatal("expected error when metadata is unobtainable")
	}
	if strings.Join(tool.calls, ",") != "metadata" {
		t.Errorf("tool calls = %v, want metadata only", tool.calls)
	}
}

func TestVideoAdapter_EmptyVideo(t *testing.T) {
	tool := &fakeMediaTool{meta: &VideoMetadata{}}
	a := NewVideoAdapter(tool, nil, "")

	_, err := a.Fetch(context.Background(), "https://youtu.be/blank")
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("error = %v, want ErrEmptyResult", err)
	}
}

func TestParseVTT(t *testing.T) {
	if got := ParseVTT(sampleVTT); got != "hello world" {
		t.Errorf("ParseVTT = %q, want hello world", got)
	}
}

func TestParseVTT_TagsNotesAndCueNumbers(t *testing.T) {
	raw := `WEBVTT

NOTE
this block is commentary
and spans lines

1
00:00.000 --> 00:02.000
<c.color>styled</c> words

2
00:02.000 --> 00:04.000
plain line
`
	if got := ParseVTT(raw); got != "styled words plain line" {
		t.Errorf("ParseVTT = %q", got)
	}
}

func TestParseVTT_FirstSeenOrder(t *testing.T) {
	raw := `WEBVTT

00:00.000 --> 00:01.000
b line

00:01.000 --> 00:02.000
a line

00:02.000 --> 00:03.000
b line
`
	if got := ParseVTT(raw); got != "b line a line" {
		t.Errorf("ParseVTT = %q, want first-seen order preserved", got)
	}
}
