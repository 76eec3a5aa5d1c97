// Package pinecone provides a vector search adapter using the Pinecone
// records API with integrated embedding and reranking.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.VectorSearchProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultRerankModel = "bge-reranker-v2-m3"
	DefaultTimeout     = 30 * time.Second
)

// Config holds configuration for the Pinecone provider.
type Config struct {
	// APIKey is the Pinecone API key (required).
	APIKey string

	// Host is the index host URL (required), e.g.
	// https://my-index-abc123.svc.aped-4627-b74a.pinecone.io.
	Host string

	// RerankModel is the hosted rerank model
	// (default: bge-reranker-v2-m3).
	RerankModel string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Provider talks to one Pinecone index. Each language lives in its own
// namespace within the index.
type Provider struct {
	client      *http.Client
	host        string
	apiKey      string
	rerankModel string
}

// upsertRecord is the Pinecone record wire format. The _id field is
// the record identifier; the rest are stored fields.
type upsertRecord struct {
	ID         string   `json:"_id"`
	ChunkText  string   `json:"chunk_text"`
	AnswerText string   `json:"answer_text"`
	Tags       []string `json:"tags,omitempty"`
	SourceURL  string   `json:"source_url,omitempty"`
	IndexedAt  string   `json:"indexed_at"`
}

// searchRequest is the POST /records/namespaces/{ns}/search format.
type searchRequest struct {
	Query  searchQuery   `json:"query"`
	Rerank *searchRerank `json:"rerank,omitempty"`
	Fields []string      `json:"fields,omitempty"`
}

type searchQuery struct {
	Inputs map[string]string `json:"inputs"`
	TopK   int               `json:"top_k"`
}

type searchRerank struct {
	Model      string   `json:"model"`
	TopN       int      `json:"top_n"`
	RankFields []string `json:"rank_fields"`
}

// searchResponse is the search response format.
type searchResponse struct {
	Result struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Score  float64         `json:"_score"`
			Fields json.RawMessage `json:"fields"`
		} `json:"hits"`
	} `json:"result"`
}

// listResponse is the GET /vectors/list response format.
type listResponse struct {
	Vectors []struct {
		ID string `json:"id"`
	} `json:"vectors"`
	Pagination *struct {
		Next string `json:"next"`
	} `json:"pagination"`
}

// NewProvider creates a new Pinecone provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: pinecone API key", domain.ErrMissingConfig)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: pinecone index host", domain.ErrMissingConfig)
	}
	if cfg.RerankModel == "" {
		cfg.RerankModel = DefaultRerankModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Provider{
		client:      &http.Client{Timeout: cfg.Timeout},
		host:        cfg.Host,
		apiKey:      cfg.APIKey,
		rerankModel: cfg.RerankModel,
	}, nil
}

// UpsertRecords writes records into a namespace. Pinecone embeds the
// chunk_text field server-side; writing an existing _id overwrites.
func (p *Provider) UpsertRecords(ctx context.Context, namespace string, records []domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	// The records endpoint takes NDJSON, one record per line.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, record := range records {
		wire := upsertRecord{
			ID:         record.ID,
			ChunkText:  record.ChunkText,
			AnswerText: record.AnswerText,
			Tags:       record.Tags,
			SourceURL:  record.SourceURL,
			IndexedAt:  record.IndexedAt.UTC().Format(time.RFC3339),
		}
		if err := enc.Encode(wire); err != nil {
			return fmt.Errorf("encode record %s: %w", record.ID, err)
		}
	}

	endpoint := fmt.Sprintf("%s/records/namespaces/%s/upsert", p.host, url.PathEscape(namespace))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	return p.do(req, nil)
}

// DeleteByPrefix lists the record ids under prefix and deletes the
// ones belonging to that entry. The server-side list is a plain string
// prefix match, so it also returns sibling entries whose id extends
// the prefix (t1 vs t10); those are filtered out before the delete.
// Pinecone reports 404 for an unknown namespace; that maps to
// domain.ErrNotFound so callers can treat it as already-deleted.
func (p *Provider) DeleteByPrefix(ctx context.Context, namespace, prefix string) error {
	listed, err := p.listByPrefix(ctx, namespace, prefix)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(listed))
	for _, id := range listed {
		if domain.MatchesPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"ids":       ids,
		"namespace": namespace,
	})
	if err != nil {
		return fmt.Errorf("marshal delete request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/vectors/delete", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return p.do(req, nil)
}

// SearchRecords runs a semantic query with server-side rerank.
func (p *Provider) SearchRecords(ctx context.Context, namespace, query string, topK, rerankTopN int) ([]driven.VectorHit, error) {
	reqBody := searchRequest{
		Query: searchQuery{
			Inputs: map[string]string{"text": query},
			TopK:   topK,
		},
		Rerank: &searchRerank{
			Model:      p.rerankModel,
			TopN:       rerankTopN,
			RankFields: []string{"chunk_text"},
		},
		Fields: []string{"chunk_text", "answer_text", "tags", "source_url", "indexed_at"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/records/namespaces/%s/search", p.host, url.PathEscape(namespace))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var searchResp searchResponse
	if err := p.do(req, &searchResp); err != nil {
		return nil, err
	}

	hits := make([]driven.VectorHit, 0, len(searchResp.Result.Hits))
	for _, hit := range searchResp.Result.Hits {
		record := domain.IndexRecord{ID: hit.ID}
		if len(hit.Fields) > 0 {
			var fields upsertRecord
			if err := json.Unmarshal(hit.Fields, &fields); err != nil {
				return nil, fmt.Errorf("decode hit fields for %s: %w", hit.ID, err)
			}
			record.ChunkText = fields.ChunkText
			record.AnswerText = fields.AnswerText
			record.Tags = fields.Tags
			record.SourceURL = fields.SourceURL
			if fields.IndexedAt != "" {
				if ts, err := time.Parse(time.RFC3339, fields.IndexedAt); err == nil {
					record.IndexedAt = ts
				}
			}
		}
		hits = append(hits, driven.VectorHit{
			ID:     hit.ID,
			Score:  hit.Score,
			Fields: record,
		})
	}
	return hits, nil
}

// listByPrefix pages through GET /vectors/list for a namespace.
func (p *Provider) listByPrefix(ctx context.Context, namespace, prefix string) ([]string, error) {
	var ids []string
	token := ""
	for {
		params := url.Values{}
		params.Set("namespace", namespace)
		params.Set("prefix", prefix)
		if token != "" {
			params.Set("paginationToken", token)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.host+"/vectors/list?"+params.Encode(), http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		var listResp listResponse
		if err := p.do(req, &listResp); err != nil {
			return nil, err
		}

		for _, v := range listResp.Vectors {
			ids = append(ids, v.ID)
		}

		if listResp.Pagination == nil || listResp.Pagination.Next == "" {
			return ids, nil
		}
		token = listResp.Pagination.Next
	}
}

// do sends the request and decodes the response into out when non-nil.
// Non-2xx responses become domain errors: 404 is domain.ErrNotFound,
// everything else an UpstreamError carrying the status.
func (p *Provider) do(req *http.Request, out any) error {
	req.Header.Set("Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return &domain.UpstreamError{Provider: "pinecone", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.UpstreamError{Provider: "pinecone", Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("pinecone: %w", domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.UpstreamError{
			Provider: "pinecone",
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, string(body)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
