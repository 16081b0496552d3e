package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxgate/voxgate/internal/auth"
	"github.com/voxgate/voxgate/internal/transcribe"
)

type fakeConverter struct {
	calls int
	wav   []byte
	err   error
}

func (f *fakeConverter) ToWAV(_ context.Context, upload io.Reader, _ string) ([]byte, error) {
	f.calls++
	io.Copy(io.Discard, upload)
	return f.wav, f.err
}

type fakeTranscriber struct {
	calls int
	text  string
	err   error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeTranscriber) Name() string { return "fake" }

func authenticatedCtx() context.Context {
	return auth.WithSubject(context.Background(), "admin")
}

func TestRunHappyPath(t *testing.T) {
	conv := &fakeConverter{wav: []byte("wav")}
	tr := &fakeTranscriber{text: "hello world"}
	p := New(conv, tr)

	text, err := p.Run(authenticatedCtx(), strings.NewReader("audio"), "clip.wma")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, 1, conv.calls)
	assert.Equal(t, 1, tr.calls)
}

func TestRunRefusesUnauthenticated(t *testing.T) {
	conv := &fakeConverter{wav: []byte("wav")}
	tr := &fakeTranscriber{text: "hello"}
	p := New(conv, tr)

	_, err := p.Run(context.Background(), strings.NewReader("audio"), "clip.wma")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, conv.calls, "conversion must not run for unauthenticated requests")
	assert.Zero(t, tr.calls, "transcription must not run for unauthenticated requests")
}

func TestRunConversionFailureStaysDistinct(t *testing.T) {
	conv := &fakeConverter{err: errors.New("ffmpeg: invalid data")}
	tr := &fakeTranscriber{text: transcribe.SentinelNoTranscription}
	p := New(conv, tr)

	_, err := p.Run(authenticatedCtx(), bytes.NewReader([]byte("junk")), "junk.bin")
	assert.ErrorIs(t, err, ErrConversionFailed)
	assert.Zero(t, tr.calls, "a failed conversion must never reach the remote service")
}

func TestRunSentinelIsNotAnError(t *testing.T) {
	conv := &fakeConverter{wav: []byte("wav")}
	tr := &fakeTranscriber{text: transcribe.SentinelNoTranscription}
	p := New(conv, tr)

	text, err := p.Run(authenticatedCtx(), strings.NewReader("audio"), "clip.wma")
	require.NoError(t, err)
	assert.Equal(t, transcribe.SentinelNoTranscription, text)
}

func TestRunTransportErrorPropagates(t *testing.T) {
	conv := &fakeConverter{wav: []byte("wav")}
	tr := &fakeTranscriber{err: errors.New("connection refused")}
	p := New(conv, tr)

	_, err := p.Run(authenticatedCtx(), strings.NewReader("audio"), "clip.wma")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConversionFailed)
}
