// Package deepl provides a translation adapter using the DeepL API v2.
package deepl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.TranslationProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.deepl.com/v2"
	DefaultTimeout = 60 * time.Second

	// DefaultRequestsPerSecond keeps the adapter under DeepL's
	// documented per-key request ceiling.
	DefaultRequestsPerSecond = 10

	// usageCacheTTL bounds how often the usage endpoint is hit. Quota
	// numbers move slowly; a minute of staleness is acceptable.
	usageCacheTTL = time.Minute

	// usageCacheKey is the cache key for the quota snapshot.
	usageCacheKey = "deepl.usage"
)

// Glossary build polling bounds. DeepL builds glossaries
// asynchronously; a glossary stuck past the ceiling is reported as an
// upstream failure rather than waited on forever.
const (
	glossaryPollInterval = 2 * time.Second
	glossaryPollLimit    = 30
)

// Config holds configuration for the DeepL provider.
type Config struct {
	// AuthKey is the DeepL API authentication key (required).
	AuthKey string

	// BaseURL is the API base URL (default: https://api.deepl.com/v2).
	// Free-tier keys use https://api-free.deepl.com/v2.
	BaseURL string

	// RequestsPerSecond throttles outgoing calls (default: 10).
	RequestsPerSecond float64

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Provider talks to the DeepL REST API. All calls pass through a
// client-side rate limiter so parallel per-part translation cannot
// trip the provider's request ceiling.
type Provider struct {
	client  *http.Client
	baseURL string
	authKey string
	limiter *rate.Limiter
	cache   driven.Cache

	// pollInterval and pollLimit are overridable for tests.
	pollInterval time.Duration
	pollLimit    int
}

// translateRequest is the POST /translate format.
type translateRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
}

// translateResponse is the POST /translate response format.
type translateResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// glossaryInfo is the glossary metadata format.
type glossaryInfo struct {
	GlossaryID string `json:"glossary_id"`
	Name       string `json:"name"`
	TargetLang string `json:"target_lang"`
	Ready      bool   `json:"ready"`
}

// usageResponse is the GET /usage response format.
type usageResponse struct {
	CharacterCount int64 `json:"character_count"`
	CharacterLimit int64 `json:"character_limit"`
}

// NewProvider creates a new DeepL provider. The cache is optional;
// when nil, every Usage call hits the API.
func NewProvider(cfg Config, cache driven.Cache) (*Provider, error) {
	if cfg.AuthKey == "" {
		return nil, fmt.Errorf("%w: deepl auth key", domain.ErrMissingConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Provider{
		client:       &http.Client{Timeout: cfg.Timeout},
		baseURL:      cfg.BaseURL,
		authKey:      cfg.AuthKey,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cache:        cache,
		pollInterval: glossaryPollInterval,
		pollLimit:    glossaryPollLimit,
	}, nil
}

// Translate converts chunks from sourceLang to targetLang. DeepL
// preserves array order, so chunk i of the response corresponds to
// chunk i of the request.
func (p *Provider) Translate(ctx context.Context, chunks []string, sourceLang, targetLang string) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(translateRequest{
		Text:       chunks,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal translate request: %w", err)
	}

	var resp translateResponse
	if err := p.do(ctx, http.MethodPost, "/translate", body, &resp); err != nil {
		return nil, err
	}

	out := make([]string, len(resp.Translations))
	for i, tr := range resp.Translations {
		out[i] = tr.Text
	}
	return out, nil
}

// UpdateGlossary replaces the glossary for a target language. DeepL
// glossaries are immutable, so replacement means create-new then
// delete-old. The new glossary is polled until DeepL reports it ready;
// a glossary that never becomes ready is an upstream failure.
func (p *Provider) UpdateGlossary(ctx context.Context, targetLang string, terms []driven.GlossaryTerm) error {
	var entries bytes.Buffer
	for _, term := range terms {
		fmt.Fprintf(&entries, "%s\t%s\n", term.Source, term.Target)
	}

	name := glossaryName(targetLang)
	previous, err := p.findGlossary(ctx, name)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{
		"name":           name,
		"source_lang":    "en",
		"target_lang":    targetLang,
		"entries":        entries.String(),
		"entries_format": "tsv",
	})
	if err != nil {
		return fmt.Errorf("marshal glossary request: %w", err)
	}

	var created glossaryInfo
	if err := p.do(ctx, http.MethodPost, "/glossaries", body, &created); err != nil {
		return err
	}

	if err := p.awaitGlossaryReady(ctx, created.GlossaryID); err != nil {
		return err
	}

	if previous != nil {
		if err := p.do(ctx, http.MethodDelete, "/glossaries/"+previous.GlossaryID, nil, nil); err != nil {
			return fmt.Errorf("delete superseded glossary: %w", err)
		}
	}
	return nil
}

// Usage reports the quota snapshot, cached to keep repeated CLI and
// estimate calls off the API.
func (p *Provider) Usage(ctx context.Context) (driven.Usage, error) {
	if p.cache == nil {
		return p.fetchUsage(ctx)
	}

	cached, err := p.cache.GetOrRefresh(ctx, usageCacheKey, usageCacheTTL, func(ctx context.Context) (any, error) {
		return p.fetchUsage(ctx)
	})
	if err != nil {
		return driven.Usage{}, err
	}
	usage, ok := cached.(driven.Usage)
	if !ok {
		return driven.Usage{}, fmt.Errorf("deepl: unexpected cached usage type %T", cached)
	}
	return usage, nil
}

// fetchUsage hits GET /usage directly.
func (p *Provider) fetchUsage(ctx context.Context) (driven.Usage, error) {
	var resp usageResponse
	if err := p.do(ctx, http.MethodGet, "/usage", nil, &resp); err != nil {
		return driven.Usage{}, err
	}
	return driven.Usage{
		CharacterCount: resp.CharacterCount,
		CharacterLimit: resp.CharacterLimit,
	}, nil
}

// findGlossary looks up a glossary by name. Returns nil when absent.
func (p *Provider) findGlossary(ctx context.Context, name string) (*glossaryInfo, error) {
	var resp struct {
		Glossaries []glossaryInfo `json:"glossaries"`
	}
	if err := p.do(ctx, http.MethodGet, "/glossaries", nil, &resp); err != nil {
		return nil, err
	}
	for _, g := range resp.Glossaries {
		if g.Name == name {
			return &g, nil
		}
	}
	return nil, nil
}

// awaitGlossaryReady polls glossary metadata until ready, up to the
// bounded attempt ceiling.
func (p *Provider) awaitGlossaryReady(ctx context.Context, glossaryID string) error {
	for attempt := 0; attempt < p.pollLimit; attempt++ {
		var info glossaryInfo
		if err := p.do(ctx, http.MethodGet, "/glossaries/"+glossaryID, nil, &info); err != nil {
			return err
		}
		if info.Ready {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.pollInterval):
		}
	}
	return &domain.UpstreamError{
		Provider: "deepl",
		Err:      fmt.Errorf("glossary %s not ready after %d polls", glossaryID, p.pollLimit),
	}
}

// do throttles, sends, and decodes one API call. Non-2xx responses
// become UpstreamErrors carrying the status so the retry layer can
// distinguish transient failures.
func (p *Provider) do(ctx context.Context, method, path string, body []byte, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+p.authKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return &domain.UpstreamError{Provider: "deepl", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.UpstreamError{Provider: "deepl", Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.UpstreamError{
			Provider: "deepl",
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s %s: %s", method, path, string(respBody)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// glossaryName is the deterministic per-language glossary name.
func glossaryName(targetLang string) string {
	return "babelkb-" + targetLang
}
