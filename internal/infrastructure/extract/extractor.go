package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"CrisisMonitor/internal/ports"
)

const maxBodyBytes = 5 << 20

// Extractor downloads an article page and returns its readable text.
type Extractor struct {
	client    *http.Client
	userAgent string
}

var _ ports.ContentExtractor = (*Extractor)(nil)

// NewExtractor wires an HTTP client; timeout defaults to 15 seconds.
func NewExtractor(client *http.Client, userAgent string, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Extractor{client: client, userAgent: userAgent}
}

// Extract returns the article text. Readability output is preferred; when it
// is empty the page paragraphs are concatenated instead. An empty string with
// a nil error means the page had no usable text.
func (e *Extractor) Extract(ctx context.Context, articleURL string) (string, error) {
	parsed, err := url.Parse(articleURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid article url %q", articleURL)
	}

	body, err := e.download(ctx, articleURL)
	if err != nil {
		return "", err
	}

	if article, err := readability.FromReader(bytes.NewReader(body), parsed); err == nil {
		if text := normalizeSpace(article.TextContent); text != "" {
			return text, nil
		}
	}

	return paragraphText(body)
}

func (e *Extractor) download(ctx context.Context, articleURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}
	return body, nil
}

func paragraphText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	var parts []string
	doc.Find("article p, main p, p").Each(func(_ int, s *goquery.Selection) {
		if text := normalizeSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(dedupe(parts), "\n"), nil
}

// dedupe drops repeated paragraphs produced by overlapping selectors.
func dedupe(parts []string) []string {
	seen := make(map[string]struct{}, len(parts))
	out := parts[:0]
	for _, p := range parts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
