package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	app_errors "lotsawa/internal/errors"
	"lotsawa/internal/httpclient"
	"lotsawa/internal/models"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func init() {
	Register("openai", newOpenAIProvider)
}

const defaultBaseConfidence = 0.8

// OpenAIProvider translates through any OpenAI-compatible chat completions
// endpoint.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func newOpenAIProvider(deps Deps) (Translator, error) {
	cfg := deps.ConfigManager.GetProviderConfig()
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not configured")
	}
	return &OpenAIProvider{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: strings.TrimSuffix(cfg.OpenAIBaseURL, "/"),
		model:   cfg.OpenAIModel,
		client:  deps.ClientManager.GetClient(httpclient.DefaultConfig()),
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Translate sends the chunk through the chat completions API and extracts
// the translation from the first choice.
func (p *OpenAIProvider) Translate(ctx context.Context, chunk models.TranslationChunk, cfg models.TranslationConfig) (*models.TranslationResult, error) {
	start := time.Now()

	payload, err := p.buildPayload(chunk, cfg)
	if err != nil {
		return nil, app_errors.Permanent(fmt.Errorf("failed to build request payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/chat/completions", strings.NewReader(payload))
	if err != nil {
		return nil, app_errors.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, app_errors.Transient(fmt.Errorf("openai request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, app_errors.Transient(fmt.Errorf("failed to read openai response: %w", err))
	}
	body, _ = httpclient.DecompressResponse(resp.Header.Get("Content-Encoding"), body)

	if resp.StatusCode != http.StatusOK {
		cause := fmt.Errorf("openai returned status %d: %s", resp.StatusCode, app_errors.ParseUpstreamError(body))
		if app_errors.ShouldRetryHTTPStatus(resp.StatusCode) {
			return nil, app_errors.Transient(cause)
		}
		return nil, app_errors.Permanent(cause)
	}

	translation := gjson.GetBytes(body, "choices.0.message.content").String()
	if translation == "" {
		return nil, app_errors.Permanent(fmt.Errorf("openai response contained no translation"))
	}

	confidence := cfg.BaseConfidence
	if confidence <= 0 {
		confidence = defaultBaseConfidence
	}

	return &models.TranslationResult{
		Translation:      strings.TrimSpace(translation),
		Confidence:       confidence,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Metadata: map[string]string{
			"provider": p.Name(),
			"model":    p.model,
		},
	}, nil
}

func (p *OpenAIProvider) buildPayload(chunk models.TranslationChunk, cfg models.TranslationConfig) (string, error) {
	payload, err := sjson.Set("{}", "model", p.model)
	if err != nil {
		return "", err
	}
	payload, err = sjson.Set(payload, "temperature", 0.2)
	if err != nil {
		return "", err
	}
	payload, err = sjson.Set(payload, "messages.0.role", "system")
	if err != nil {
		return "", err
	}
	payload, err = sjson.Set(payload, "messages.0.content", p.systemPrompt(cfg))
	if err != nil {
		return "", err
	}
	payload, err = sjson.Set(payload, "messages.1.role", "user")
	if err != nil {
		return "", err
	}
	return sjson.Set(payload, "messages.1.content", p.userPrompt(chunk))
}

func (p *OpenAIProvider) systemPrompt(cfg models.TranslationConfig) string {
	target := cfg.TargetLanguage
	if target == "" {
		target = "English"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert translator. Translate the given text into %s.\n", target)
	b.WriteString("Always reproduce the original source-script text in parentheses immediately after its translation.\n")
	b.WriteString("Respond with the translation only, no commentary.\n")

	if len(cfg.DictionaryTerms) > 0 {
		b.WriteString("Use these glossary terms:\n")
		for _, term := range cfg.DictionaryTerms {
			fmt.Fprintf(&b, "- %s: %s\n", term.Source, term.English)
		}
	}
	if cfg.Instructions != "" {
		b.WriteString(cfg.Instructions)
		b.WriteString("\n")
	}
	return b.String()
}

func (p *OpenAIProvider) userPrompt(chunk models.TranslationChunk) string {
	if chunk.Context == "" {
		return chunk.Content
	}
	return fmt.Sprintf("Context from the preceding text (do not translate):\n%s\n\nTranslate:\n%s", chunk.Context, chunk.Content)
}
