// Package fetch retrieves a target's homepage and extracts the raw material
// detectors work from: headers, HTML, cookies, script sources, and meta tags.
package fetch

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

var (
	titleRegex  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptRegex = regexp.MustCompile(`(?i)<script[^>]*src=["']([^"']+)["']`)
	metaRegex   = regexp.MustCompile(`(?i)<meta[^>]*name=["']([^"']*)["'][^>]*content=["']([^"']*)["']`)
)

// Page is one fetched document plus the response metadata detectors consume.
// All fields are materialized before any detector runs.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	HTML       string
	Title      string
	Cookies    map[string]string
	Scripts    []string
	Meta       map[string]string
	UserAgent  string
}

// Fetcher issues a single GET per target and assembles a Page.
type Fetcher struct {
	client       *http.Client
	maxBodyBytes int64
	agentCursor  atomic.Uint32
}

// NewFetcher builds a fetcher with an optional custom HTTP client.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client, maxBodyBytes: 2 * 1024 * 1024}
}

// Fetch retrieves the target root document. Targets without a scheme default
// to https. Non-2xx responses are still returned as pages since error pages
// carry fingerprints too; only transport failures surface as errors.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Page, error) {
	url := NormalizeTargetURL(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	agent := f.nextUserAgent()
	req.Header.Set("User-Agent", agent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", url, err)
	}

	body := decompressBody(raw, resp.Header.Get("Content-Encoding"))
	html := string(body)

	page := &Page{
		URL:        url,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		HTML:       html,
		Title:      extractTitle(html),
		Cookies:    extractCookies(resp.Header),
		Scripts:    extractScripts(html),
		Meta:       extractMeta(html),
		UserAgent:  agent,
	}
	return page, nil
}

func (f *Fetcher) nextUserAgent() string {
	i := f.agentCursor.Add(1) - 1
	return userAgents[int(i)%len(userAgents)]
}

// decompressBody handles servers that send an encoded body regardless of the
// request's Accept-Encoding. Undecodable bodies fall through unchanged.
func decompressBody(body []byte, encoding string) []byte {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return body
		}
		defer r.Close()
		if decoded, err := io.ReadAll(r); err == nil {
			return decoded
		}
	case "deflate":
		r, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return body
		}
		defer r.Close()
		if decoded, err := io.ReadAll(r); err == nil {
			return decoded
		}
	}
	return body
}

func extractTitle(html string) string {
	if m := titleRegex.FindStringSubmatch(html); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractScripts(html string) []string {
	var scripts []string
	for _, m := range scriptRegex.FindAllStringSubmatch(html, -1) {
		if m[1] != "" {
			scripts = append(scripts, m[1])
		}
	}
	return scripts
}

func extractMeta(html string) map[string]string {
	meta := make(map[string]string)
	for _, m := range metaRegex.FindAllStringSubmatch(html, -1) {
		meta[strings.ToLower(m[1])] = m[2]
	}
	return meta
}

func extractCookies(headers http.Header) map[string]string {
	cookies := make(map[string]string)
	for _, line := range headers.Values("Set-Cookie") {
		parts := strings.SplitN(line, ";", 2)
		if name, value, ok := strings.Cut(parts[0], "="); ok {
			cookies[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}
	return cookies
}

// NormalizeTargetURL prefixes bare hosts with https.
func NormalizeTargetURL(target string) string {
	trimmed := strings.TrimSpace(target)
	if trimmed == "" {
		return target
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return "https://" + trimmed
}

// DomainFromTarget strips scheme, path, and port from a target for use as a
// report key.
func DomainFromTarget(target string) string {
	s := strings.TrimSpace(target)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if host, _, ok := strings.Cut(s, ":"); ok {
		return host
	}
	return s
}
