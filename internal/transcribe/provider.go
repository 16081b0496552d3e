package transcribe

import (
	"context"

	"github.com/voxgate/voxgate/internal/config"
)

// SentinelNoTranscription is returned as the transcription text when the
// remote service answered but produced no usable text. The user always
// sees some result; transport failures are real errors.
const SentinelNoTranscription = "Error: No transcription available"

// Provider is the interface for remote transcription backends.
type Provider interface {
	// Transcribe sends a WAV buffer to the backend and returns the
	// transcribed text. A backend response without usable text yields
	// SentinelNoTranscription with a nil error.
	Transcribe(ctx context.Context, wav []byte) (string, error)
	Name() string
}

// NewProvider selects the transcription backend from configuration.
// Anything other than "openai" gets the HuggingFace inference client.
func NewProvider(cfg config.TranscribeConfig) Provider {
	if cfg.Backend == "openai" {
		return NewOpenAIProvider(OpenAIConfig{APIKey: cfg.OpenAIKey})
	}
	return NewHuggingFaceProvider(HuggingFaceConfig{
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
		APIToken: cfg.APIToken,
	})
}
