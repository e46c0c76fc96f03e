package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	app_errors "lotsawa/internal/errors"
	"lotsawa/internal/httpclient"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// OpenAIEmbedder fetches embeddings from an OpenAI-compatible embeddings
// endpoint.
type OpenAIEmbedder struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenAIEmbedder creates the embeddings provider from configuration.
func NewOpenAIEmbedder(deps Deps) (*OpenAIEmbedder, error) {
	cfg := deps.ConfigManager.GetProviderConfig()
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not configured")
	}
	return &OpenAIEmbedder{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: strings.TrimSuffix(cfg.OpenAIBaseURL, "/"),
		model:   cfg.EmbeddingModel,
		client:  deps.ClientManager.GetClient(httpclient.DefaultConfig()),
	}, nil
}

// Embed returns one vector per input text, in input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := sjson.Set("{}", "model", e.model)
	if err != nil {
		return nil, app_errors.Permanent(err)
	}
	payload, err = sjson.Set(payload, "input", texts)
	if err != nil {
		return nil, app_errors.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/embeddings", strings.NewReader(payload))
	if err != nil {
		return nil, app_errors.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, app_errors.Transient(fmt.Errorf("embeddings request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, app_errors.Transient(fmt.Errorf("failed to read embeddings response: %w", err))
	}
	body, _ = httpclient.DecompressResponse(resp.Header.Get("Content-Encoding"), body)

	if resp.StatusCode != http.StatusOK {
		cause := fmt.Errorf("embeddings endpoint returned status %d: %s", resp.StatusCode, app_errors.ParseUpstreamError(body))
		if app_errors.ShouldRetryHTTPStatus(resp.StatusCode) {
			return nil, app_errors.Transient(cause)
		}
		return nil, app_errors.Permanent(cause)
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, app_errors.Permanent(fmt.Errorf("embeddings response missing data array"))
	}

	// The API may return vectors out of order; index places each one.
	vectors := make([][]float64, len(texts))
	for _, item := range data.Array() {
		idx := int(item.Get("index").Int())
		if idx < 0 || idx >= len(texts) {
			return nil, app_errors.Permanent(fmt.Errorf("embeddings response index %d out of range", idx))
		}
		raw := item.Get("embedding").Array()
		vector := make([]float64, len(raw))
		for i, v := range raw {
			vector[i] = v.Float()
		}
		vectors[idx] = vector
	}
	for i, vector := range vectors {
		if vector == nil {
			return nil, app_errors.Permanent(fmt.Errorf("embeddings response missing vector for input %d", i))
		}
	}
	return vectors, nil
}
