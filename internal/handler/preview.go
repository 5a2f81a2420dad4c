package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/wilson400hong/slop-museum/internal/apperror"
	"github.com/wilson400hong/slop-museum/internal/preview"
)

// PreviewHandler lets the submission form fetch a preview image before the
// work is submitted, so the user sees what the card will look like.
type PreviewHandler struct {
	fetcher *preview.Fetcher
	logger  *slog.Logger
}

func NewPreviewHandler(fetcher *preview.Fetcher, logger *slog.Logger) *PreviewHandler {
	return &PreviewHandler{fetcher: fetcher, logger: logger}
}

// HandlePreview is GET /api/preview?url=... It answers with the scraped
// og:image URL, or a null imageUrl when the target has none — scrape
// failures are not errors here any more than they are at submission time.
func (h *PreviewHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	parsed, err := url.Parse(rawURL)
	if rawURL == "" || err != nil || !parsed.IsAbs() || parsed.Host == "" {
		writeError(w, apperror.ValidationFailed("url", "an absolute url parameter is required"))
		return
	}

	imageURL, err := h.fetcher.ImageURL(r.Context(), rawURL)
	if err != nil {
		writeError(w, err)
		return
	}

	var result any
	if imageURL != "" {
		result = imageURL
	}
	writeJSON(w, http.StatusOK, map[string]any{"imageUrl": result})
}
