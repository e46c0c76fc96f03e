package provider

import (
	"context"
	"fmt"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	app_errors "lotsawa/internal/errors"
	"lotsawa/internal/models"
)

func init() {
	Register("google", newGoogleProvider)
}

// googleConfidence reflects that Cloud Translate returns no per-call
// confidence; its output is treated as a strong single opinion.
const googleConfidence = 0.9

// GoogleProvider translates through the Google Cloud Translate v2 API.
type GoogleProvider struct {
	opts []option.ClientOption
}

func newGoogleProvider(deps Deps) (Translator, error) {
	cfg := deps.ConfigManager.GetProviderConfig()
	var opts []option.ClientOption
	if cfg.GoogleAPIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.GoogleAPIKey))
	} else if cfg.GoogleCredsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredsFile))
	} else {
		return nil, fmt.Errorf("google provider requires GOOGLE_API_KEY or GOOGLE_APPLICATION_CREDENTIALS")
	}
	return &GoogleProvider{opts: opts}, nil
}

// Name returns the provider name.
func (p *GoogleProvider) Name() string {
	return "google"
}

// Translate sends the chunk content through Cloud Translate.
func (p *GoogleProvider) Translate(ctx context.Context, chunk models.TranslationChunk, cfg models.TranslationConfig) (*models.TranslationResult, error) {
	start := time.Now()

	target := cfg.TargetLanguage
	if target == "" {
		target = "en"
	}
	targetTag, err := language.Parse(target)
	if err != nil {
		return nil, app_errors.Permanent(fmt.Errorf("invalid target language %q: %w", target, err))
	}

	client, err := translate.NewClient(ctx, p.opts...)
	if err != nil {
		return nil, app_errors.Transient(fmt.Errorf("failed to create translate client: %w", err))
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{chunk.Content}, targetTag, nil)
	if err != nil {
		return nil, app_errors.Transient(fmt.Errorf("google translation failed: %w", err))
	}
	if len(translations) == 0 {
		return nil, app_errors.Permanent(fmt.Errorf("google returned no translation"))
	}

	return &models.TranslationResult{
		Translation:      translations[0].Text,
		Confidence:       googleConfidence,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Metadata: map[string]string{
			"provider": p.Name(),
		},
	}, nil
}
