package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HuggingFaceConfig holds configuration for the HuggingFace inference
// backend.
type HuggingFaceConfig struct {
	BaseURL  string // default: "https://api-inference.huggingface.co"
	Model    string // default: "openai/whisper-medium"
	APIToken string
}

// HuggingFaceProvider transcribes audio through the HuggingFace serverless
// inference API. The audio travels base64-encoded inside a JSON body.
type HuggingFaceProvider struct {
	cfg        HuggingFaceConfig
	httpClient *http.Client
}

// NewHuggingFaceProvider creates a HuggingFaceProvider with defaults
// applied.
func NewHuggingFaceProvider(cfg HuggingFaceConfig) *HuggingFaceProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co"
	}
	if cfg.Model == "" {
		cfg.Model = "openai/whisper-medium"
	}
	return &HuggingFaceProvider{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

func (h *HuggingFaceProvider) Name() string { return "huggingface-inference" }

// Transcribe posts the base64-encoded WAV buffer to the model endpoint and
// extracts the "text" field from the JSON response. A single attempt, no
// retry: if the remote answers with anything that lacks usable text (error
// payload, rate-limit notice, malformed JSON), the sentinel is returned so
// the caller still has something to render.
func (h *HuggingFaceProvider) Transcribe(ctx context.Context, wav []byte) (string, error) {
	payload := struct {
		Inputs string `json:"inputs"`
	}{
		Inputs: base64.StdEncoding.EncodeToString(wav),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal inference payload: %w", err)
	}

	url := h.cfg.BaseURL + "/models/" + h.cfg.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIToken)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read inference response: %w", err)
	}

	var result struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || result.Text == nil {
		slog.Warn("inference response had no text",
			"model", h.cfg.Model, "status", resp.StatusCode)
		return SentinelNoTranscription, nil
	}
	return *result.Text, nil
}
