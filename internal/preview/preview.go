// Package preview scrapes Open Graph preview images for link submissions.
//
// Preview fetching is best-effort decoration: a site that is slow, down, or
// has no og:image must never block or fail a submission. Every failure path
// here returns ("", nil) — the only thing the caller loses is the thumbnail.
package preview

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// fetchTimeout bounds the whole scrape. Submissions wait on this, so it is
// deliberately short.
const fetchTimeout = 5 * time.Second

// maxBodyBytes caps how much of the page we read. og:image lives in <head>,
// so the first chunk is plenty.
const maxBodyBytes = 512 * 1024

// og:image can appear with property before content or the other way round.
var ogImagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`<meta[^>]+property=["']og:image["'][^>]+content=["']([^"']+)["']`),
	regexp.MustCompile(`<meta[^>]+content=["']([^"']+)["'][^>]+property=["']og:image["']`),
}

// Fetcher scrapes preview images with a bounded HTTP client.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

func NewFetcher(logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

// ImageURL fetches rawURL and extracts its og:image, resolved to an absolute
// URL. Soft-fails: any error comes back as ("", nil) after a debug log.
func (f *Fetcher) ImageURL(ctx context.Context, rawURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.logger.Debug("preview fetch skipped", "url", rawURL, "error", err)
		return "", nil
	}
	req.Header.Set("User-Agent", "slop-museum-preview/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("preview fetch failed", "url", rawURL, "error", err)
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Debug("preview fetch non-200", "url", rawURL, "status", resp.StatusCode)
		return "", nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		f.logger.Debug("preview body read failed", "url", rawURL, "error", err)
		return "", nil
	}

	image := extractOGImage(string(body))
	if image == "" {
		return "", nil
	}
	return resolveImageURL(rawURL, image), nil
}

func extractOGImage(body string) string {
	for _, pattern := range ogImagePatterns {
		if m := pattern.FindStringSubmatch(body); m != nil {
			return m[1]
		}
	}
	return ""
}

// resolveImageURL makes a scraped image URL absolute against the page URL.
// Unresolvable values pass through untouched rather than getting dropped.
func resolveImageURL(pageURL, image string) string {
	img, err := url.Parse(image)
	if err != nil {
		return image
	}
	if img.IsAbs() {
		return image
	}
	page, err := url.Parse(pageURL)
	if err != nil {
		return image
	}
	return page.ResolveReference(img).String()
}
