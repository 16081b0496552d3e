// Package pipeline sequences the upload-to-text flow: authenticated
// subject, audio normalization, remote transcription. Each stage's failure
// domain stays distinct so the web layer can map them to different
// responses.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/voxgate/voxgate/internal/auth"
)

var (
	// ErrNotAuthenticated means the request reached the pipeline without
	// passing the session gate. Mapped to a login redirect upstream.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrConversionFailed wraps any conversion stage failure. It is never
	// folded into the transcription sentinel: a broken upload and a remote
	// service with nothing to say are different outcomes.
	ErrConversionFailed = errors.New("audio conversion failed")
)

// Converter is the audio normalization stage.
type Converter interface {
	ToWAV(ctx context.Context, upload io.Reader, sourceName string) ([]byte, error)
}

// Transcriber is the remote transcription stage.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
	Name() string
}

type Pipeline struct {
	converter   Converter
	transcriber Transcriber
}

func New(converter Converter, transcriber Transcriber) *Pipeline {
	return &Pipeline{converter: converter, transcriber: transcriber}
}

// Run takes an upload through conversion and transcription and returns the
// text, which may be the transcription sentinel. The session gate runs as
// HTTP middleware before this; Run still refuses to touch the upload if no
// authenticated subject made it into the context.
func (p *Pipeline) Run(ctx context.Context, upload io.Reader, filename string) (string, error) {
	subject := auth.SubjectFromContext(ctx)
	if subject == "" {
		return "", ErrNotAuthenticated
	}

	start := time.Now()
	wav, err := p.converter.ToWAV(ctx, upload, filename)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	text, err := p.transcriber.Transcribe(ctx, wav)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	slog.Info("transcription complete",
		"subject", subject,
		"file", filename,
		"wav_bytes", len(wav),
		"backend", p.transcriber.Name(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return text, nil
}
