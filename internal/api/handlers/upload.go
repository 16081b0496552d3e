package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voxgate/voxgate/internal/audio"
	"github.com/voxgate/voxgate/internal/pipeline"
	"github.com/voxgate/voxgate/internal/web"
)

type UploadHandler struct {
	pipe        *pipeline.Pipeline
	maxUploadMB int64
}

func NewUploadHandler(pipe *pipeline.Pipeline, maxUploadMB int64) *UploadHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}
	return &UploadHandler{pipe: pipe, maxUploadMB: maxUploadMB}
}

// Form renders the upload page. The session gate runs before this handler.
func (h *UploadHandler) Form(w http.ResponseWriter, r *http.Request) {
	web.Render(w, http.StatusOK, "upload.html", nil)
}

// Upload runs the multipart "file" field through the pipeline and renders
// the transcription. Conversion failures render an error page; a remote
// service with no text still renders a result page carrying the sentinel.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB<<20)
	if err := r.ParseMultipartForm(h.maxUploadMB << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
			web.Render(w, http.StatusRequestEntityTooLarge, "error.html", map[string]string{
				"Message": fmt.Sprintf("The upload exceeds the %d MB limit.", h.maxUploadMB),
			})
			return
		}
		web.Render(w, http.StatusBadRequest, "error.html", map[string]string{
			"Message": "invalid multipart form",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		web.Render(w, http.StatusBadRequest, "error.html", map[string]string{
			"Message": "an audio file is required",
		})
		return
	}
	defer file.Close()

	text, err := h.pipe.Run(r.Context(), file, header.Filename)
	if err != nil {
		h.renderPipelineError(w, r, header.Filename, err)
		return
	}

	web.Render(w, http.StatusOK, "result.html", map[string]string{
		"Transcription": text,
	})
}

func (h *UploadHandler) renderPipelineError(w http.ResponseWriter, r *http.Request, filename string, err error) {
	switch {
	case errors.Is(err, pipeline.ErrNotAuthenticated):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, audio.ErrUnsupportedAudio):
		web.Render(w, http.StatusUnprocessableEntity, "error.html", map[string]string{
			"Message": "The uploaded file could not be decoded as audio.",
		})
	case errors.Is(err, pipeline.ErrConversionFailed):
		slog.Error("conversion stage failed", "file", filename, "error", err)
		web.Render(w, http.StatusInternalServerError, "error.html", map[string]string{
			"Message": "Audio conversion failed.",
		})
	default:
		slog.Error("pipeline failed", "file", filename, "error", err)
		web.Render(w, http.StatusBadGateway, "error.html", map[string]string{
			"Message": "The transcription service could not be reached.",
		})
	}
}
