// Package audio normalizes uploaded audio to canonical WAV by shelling out
// to ffmpeg. Everything it stages on disk lives for a single call and is
// removed before returning, on every exit path.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedAudio means ffmpeg could not decode the input. The bytes
// were either not audio or in a container/codec the backend rejects.
var ErrUnsupportedAudio = errors.New("unsupported or corrupt audio")

type Converter struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
}

func NewConverter(ffmpegPath, ffprobePath, tempDir string) *Converter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Converter{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		tempDir:     tempDir,
	}
}

// ToWAV decodes the uploaded bytes and re-encodes them as 16-bit mono PCM
// WAV, returned fully in memory. sourceName is only a hint: its extension
// helps ffmpeg probe the container, the actual format detection is ffmpeg's.
//
// Two staging files are created per call, with unique names so concurrent
// uploads never collide. Both are removed before ToWAV returns regardless
// of outcome.
func (c *Converter) ToWAV(ctx context.Context, upload io.Reader, sourceName string) ([]byte, error) {
	id := uuid.NewString()
	inputPath := filepath.Join(c.tempDir, "voxgate-in-"+id+sourceExt(sourceName))
	outputPath := filepath.Join(c.tempDir, "voxgate-out-"+id+".wav")
	defer func() {
		removeStaged(inputPath)
		removeStaged(outputPath)
	}()

	if err := stageInput(inputPath, upload); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath,
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		outputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("convert audio: %w", ctx.Err())
		}
		slog.Info("ffmpeg rejected input", "source", sourceName, "stderr", lastLine(stderr.String()))
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAudio, lastLine(stderr.String()))
	}

	wav, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("read converted audio: %w", err)
	}

	if seconds, err := c.Duration(ctx, outputPath); err == nil {
		slog.Info("audio converted", "source", sourceName, "seconds", seconds, "wav_bytes", len(wav))
	} else {
		slog.Debug("could not probe converted audio", "source", sourceName, "error", err)
	}
	return wav, nil
}

// Duration probes an audio file and reports its length in whole seconds.
func (c *Converter) Duration(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(output)), err)
	}
	return int(seconds + 0.5), nil
}

func stageInput(path string, upload io.Reader) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	_, copyErr := io.Copy(f, upload)
	closeErr := f.Close()
	if copyErr != nil {
		return fmt.Errorf("write staging file: %w", copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("write staging file: %w", closeErr)
	}
	return nil
}

func removeStaged(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Error("failed to remove staging file", "path", path, "error", err)
	}
}

func sourceExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 8 || strings.ContainsAny(ext, "/\\") {
		return ".bin"
	}
	return ext
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
