package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Whisper shells out to the whisper CLI as the production Transcriber.
type Whisper struct {
	Path string
}

func NewWhisper(path string) *Whisper {
	if path == "" {
		path = "whisper"
	}
	return &Whisper{Path: path}
}

func (w *Whisper) Transcribe(ctx context.Context, audioPath, model string) (string, error) {
	if model == "" {
		model = "base"
	}
	outDir := filepath.Dir(audioPath)
	cmd := exec.CommandContext(ctx, w.Path, audioPath,
		"--model", model,
		"--output_format", "txt",
		"--output_dir", outDir,
		"--fp16", "False",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("whisper: %s", lastLine(string(out)))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".txt"))
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
