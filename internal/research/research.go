// Package research gathers optional web context before content generation.
// Everything here is best-effort: a failed search or fetch produces less
// context, never a failed stage.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"lessonforge/internal/logging"
)

const (
	defaultMaxResults        = 5
	defaultMaxCharsPerSource = 4000
	defaultFetchTimeout      = 10 * time.Second
	maxFetchURLs             = 3
	maxFetchBodyBytes        = 1 << 20
)

// Config captures the runtime settings for context gathering.
type Config struct {
	APIKey              string
	BaseURL             string
	MaxResults          int
	MaxCharsPerSource   int
	FetchTimeoutSeconds int
}

// Gatherer collects search results and page excerpts for a lesson topic.
type Gatherer struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGatherer constructs a Gatherer using the supplied configuration.
func NewGatherer(cfg Config, logger *slog.Logger) *Gatherer {
	timeout := defaultFetchTimeout
	if cfg.FetchTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.MaxCharsPerSource <= 0 {
		cfg.MaxCharsPerSource = defaultMaxCharsPerSource
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gatherer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Gather returns concatenated context for the topic: web search results when
// an API key is configured, plus excerpts of up to three caller-supplied
// URLs. Returns an empty string when nothing could be collected.
func (g *Gatherer) Gather(ctx context.Context, topic string, urls []string) string {
	var sections []string

	if search := g.search(ctx, topic); search != "" {
		sections = append(sections, search)
	}

	if len(urls) > maxFetchURLs {
		urls = urls[:maxFetchURLs]
	}
	for _, url := range urls {
		if excerpt := g.fetch(ctx, url); excerpt != "" {
			sections = append(sections, fmt.Sprintf("Source %s:\n%s", url, excerpt))
		}
	}

	return strings.Join(sections, "\n\n")
}

func (g *Gatherer) search(ctx context.Context, topic string) string {
	if strings.TrimSpace(g.cfg.APIKey) == "" || strings.TrimSpace(g.cfg.BaseURL) == "" {
		return ""
	}

	payload, err := json.Marshal(searchRequest{Query: topic, MaxResults: g.cfg.MaxResults})
	if err != nil {
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return ""
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Debug("web search failed", logging.Error(err))
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		g.logger.Debug("web search rejected", logging.Int("status", resp.StatusCode))
		return ""
	}

	var decoded searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFetchBodyBytes)).Decode(&decoded); err != nil {
		g.logger.Debug("web search decode failed", logging.Error(err))
		return ""
	}

	var b strings.Builder
	if answer := strings.TrimSpace(decoded.Answer); answer != "" {
		fmt.Fprintf(&b, "Summary: %s\n", answer)
	}
	for i, result := range decoded.Results {
		if i >= g.cfg.MaxResults {
			break
		}
		content := truncate(strings.TrimSpace(result.Content), g.cfg.MaxCharsPerSource)
		if content == "" {
			continue
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n%s\n", i+1, result.Title, result.URL, content)
	}
	return strings.TrimSpace(b.String())
}

func (g *Gatherer) fetch(ctx context.Context, url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Debug("source fetch failed", logging.String("url", url), logging.Error(err))
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		g.logger.Debug("source fetch rejected", logging.String("url", url), logging.Int("status", resp.StatusCode))
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBodyBytes))
	if err != nil {
		return ""
	}
	return truncate(StripMarkup(string(body)), g.cfg.MaxCharsPerSource)
}

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe         = regexp.MustCompile(`<[^>]+>`)
)

// StripMarkup reduces an HTML document to its visible text, collapsed to
// single spaces.
func StripMarkup(document string) string {
	cleaned := scriptBlockRe.ReplaceAllString(document, " ")
	cleaned = tagRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'").Replace(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
