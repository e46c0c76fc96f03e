package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lotsawa/internal/consensus"
	"lotsawa/internal/encryption"
	app_errors "lotsawa/internal/errors"
	"lotsawa/internal/models"
	"lotsawa/internal/provider"
	"lotsawa/internal/quality"
	"lotsawa/internal/types"
	"lotsawa/internal/validation"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maxRetryDelay caps the exponential backoff between attempts.
const maxRetryDelay = 10 * time.Second

// errJobSuperseded reports that a job left its expected status between
// the scheduler's pending scan and the worker's claim, usually because a
// cancel landed first. The attempt is abandoned without touching the row.
var errJobSuperseded = errors.New("job status changed before processing started")

// Worker executes one translation job from validation through
// persistence.
type Worker struct {
	db         *gorm.DB
	encryption encryption.Service
	validator  *validation.Service
	confidence *consensus.ConfidenceCalculator
	builder    *consensus.Builder
	gate       *quality.Gate
	tracker    *ProgressTracker
	providers  []provider.Translator

	pipelineCfg types.PipelineConfig
	callTimeout time.Duration
}

// WorkerParams collects the worker's dependencies.
type WorkerParams struct {
	DB          *gorm.DB
	Encryption  encryption.Service
	Validator   *validation.Service
	Confidence  *consensus.ConfidenceCalculator
	Builder     *consensus.Builder
	Gate        *quality.Gate
	Tracker     *ProgressTracker
	Providers   []provider.Translator
	PipelineCfg types.PipelineConfig
	CallTimeout time.Duration
}

// NewWorker creates a job worker. At least one provider is required.
func NewWorker(params WorkerParams) (*Worker, error) {
	if len(params.Providers) == 0 {
		return nil, consensus.ErrNoProviders
	}
	return &Worker{
		db:          params.DB,
		encryption:  params.Encryption,
		validator:   params.Validator,
		confidence:  params.Confidence,
		builder:     params.Builder,
		gate:        params.Gate,
		tracker:     params.Tracker,
		providers:   params.Providers,
		pipelineCfg: params.PipelineCfg,
		callTimeout: params.CallTimeout,
	}, nil
}

// ProcessWithRetry runs Process with exponential backoff. Transient
// failures are retried up to the configured attempt budget; permanent
// failures stop immediately. The job is marked failed when every attempt
// is exhausted, and the progress tracker is cleaned up regardless of
// outcome.
func (w *Worker) ProcessWithRetry(ctx context.Context, job *models.Job) error {
	defer w.tracker.Cleanup(job.ID)

	attempts := w.pipelineCfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	baseDelay := time.Duration(w.pipelineCfg.RetryBaseDelayMs) * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = w.Process(ctx, job)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, errJobSuperseded) {
			logrus.WithField("job_id", job.ID).Info("Job was cancelled before processing started, skipping")
			return lastErr
		}
		if app_errors.IsPermanent(lastErr) {
			logrus.WithError(lastErr).WithField("job_id", job.ID).Warn("Job failed permanently, not retrying")
			break
		}
		if attempt < attempts {
			delay := baseDelay << (attempt - 1)
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			logrus.WithError(lastErr).WithFields(logrus.Fields{
				"job_id":  job.ID,
				"attempt": attempt,
				"delay":   delay,
			}).Warn("Job attempt failed, retrying")
			w.tracker.Reset(job.ID)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = attempts
			}
		}
	}

	if err := w.failJob(job, lastErr); err != nil {
		logrus.WithError(err).WithField("job_id", job.ID).Error("Failed to mark job as failed")
	}
	return lastErr
}

// Process runs one attempt of a job: input validation, sequential chunk
// translation, output validation, quality gating, and terminal
// persistence. A gate rejection is not an error; the job completes with
// the GateResult attached.
func (w *Worker) Process(ctx context.Context, job *models.Job) error {
	if job.Type != models.JobTypeTranslation {
		return app_errors.Permanent(fmt.Errorf("unsupported job type %q", job.Type))
	}

	// Retry attempts re-enter with the job already processing.
	if job.Status != models.JobStatusProcessing {
		if err := w.markProcessing(job); err != nil {
			return err
		}
	}

	request, err := models.DecodeRequest(job.Request, w.encryption)
	if err != nil {
		return app_errors.Permanent(fmt.Errorf("failed to decode job request: %w", err))
	}

	inputResult := w.validator.Validate(ctx, validation.Input{
		Text:   request.SourceText,
		Config: request.Config,
	}, validation.StageInput)
	if !inputResult.IsValid {
		return app_errors.Permanent(fmt.Errorf("input validation failed: %s", strings.Join(inputResult.Errors, "; ")))
	}

	sourceText := request.SourceText
	if normalized, ok := inputResult.Metadata["normalizedText"]; ok && normalized != "" {
		sourceText = normalized
	}

	chunks := request.Chunks
	if len(chunks) == 0 {
		chunks = SplitChunks(sourceText, w.pipelineCfg.ChunkSizeChars)
	}

	translator, err := w.translatorFor(request.Config)
	if err != nil {
		return app_errors.Permanent(err)
	}

	w.tracker.Init(job.ID, len(chunks))

	start := time.Now()
	translations := make([]string, 0, len(chunks))
	var confidenceSum float64
	var agreementSum float64
	var modelsUsed []string
	allConsensus := true

	for i, chunk := range chunks {
		result, err := translator.Translate(ctx, chunk, request.Config)
		if err != nil {
			return fmt.Errorf("chunk %d failed: %w", chunk.PageNumber, err)
		}

		chunkResult := result.Result
		if !result.Metadata.Consensus {
			// Single-provider results still earn format/preservation/
			// glossary boosts.
			chunkResult.Confidence = w.confidence.Calculate(chunkResult.Translation, consensus.ConfidenceOptions{
				OriginalText:    chunk.Content,
				DictionaryTerms: request.Config.DictionaryTerms,
				BaseConfidence:  chunkResult.Confidence,
			})
			allConsensus = false
		}

		translations = append(translations, chunkResult.Translation)
		confidenceSum += chunkResult.Confidence
		agreementSum += result.Metadata.ModelAgreement
		if modelsUsed == nil {
			modelsUsed = result.Metadata.ModelsUsed
		}

		if err := w.tracker.Update(job.ID, i+1); err != nil {
			logrus.WithError(err).WithField("job_id", job.ID).Debug("Progress update skipped")
		}
	}

	finalTranslation := strings.Join(translations, "\n\n")
	finalResult := models.TranslationResult{
		Translation:      finalTranslation,
		Confidence:       confidenceSum / float64(len(chunks)),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Metadata:         map[string]string{"chunks": fmt.Sprintf("%d", len(chunks))},
	}

	outputResult := w.validator.Validate(ctx, validation.Input{
		Text:         finalTranslation,
		OriginalText: sourceText,
		Config:       request.Config,
	}, validation.StageOutput)
	if !outputResult.IsValid {
		return app_errors.Permanent(fmt.Errorf("output validation failed: %s", strings.Join(outputResult.Errors, "; ")))
	}

	gateResult := w.gate.Check(finalResult, sourceText)
	if !gateResult.Passed {
		logrus.WithField("job_id", job.ID).Warn("Quality gate rejected the translation")
	}

	consensusMeta := models.ConsensusMetadata{
		Consensus:      allConsensus && len(modelsUsed) > 1,
		ModelsUsed:     modelsUsed,
		ModelAgreement: agreementSum / float64(len(chunks)),
	}

	return w.completeJob(job, models.ResultEnvelope{
		Result:    finalResult,
		Consensus: &consensusMeta,
		Quality:   &gateResult.QualityScore,
		Gate:      &gateResult,
	})
}

// translatorFor builds a multi-provider translator honoring the
// request's provider subset selection.
func (w *Worker) translatorFor(cfg models.TranslationConfig) (*consensus.Translator, error) {
	selected := w.providers
	if len(cfg.Providers) > 0 {
		byName := make(map[string]provider.Translator, len(w.providers))
		for _, p := range w.providers {
			byName[p.Name()] = p
		}
		selected = make([]provider.Translator, 0, len(cfg.Providers))
		for _, name := range cfg.Providers {
			p, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s", provider.ErrUnknownProvider, name)
			}
			selected = append(selected, p)
		}
	}
	return consensus.NewTranslator(selected, w.builder, w.callTimeout)
}

func (w *Worker) markProcessing(job *models.Job) error {
	if !models.CanTransition(job.Status, models.JobStatusProcessing) {
		return app_errors.Permanent(fmt.Errorf("cannot start job in status %q", job.Status))
	}
	now := time.Now()
	// The in-memory status is a snapshot from the scheduler scan; the
	// optimistic WHERE refuses the claim when a cancel committed first.
	result := w.db.Model(&models.Job{}).
		Where("id = ? AND status = ?", job.ID, job.Status).
		Updates(map[string]any{
			"status":     models.JobStatusProcessing,
			"started_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark job processing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: job %s", errJobSuperseded, job.ID)
	}
	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	return nil
}

func (w *Worker) completeJob(job *models.Job, envelope models.ResultEnvelope) error {
	encoded, err := models.EncodeResult(envelope, w.encryption)
	if err != nil {
		return app_errors.Permanent(fmt.Errorf("failed to encode job result: %w", err))
	}

	now := time.Now()
	result := w.db.Model(&models.Job{}).
		Where("id = ? AND status = ?", job.ID, models.JobStatusProcessing).
		Updates(map[string]any{
			"status":       models.JobStatusCompleted,
			"result":       encoded,
			"progress":     100,
			"completed_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to persist job result: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: job %s", errJobSuperseded, job.ID)
	}
	job.Status = models.JobStatusCompleted
	job.CompletedAt = &now
	return nil
}

func (w *Worker) failJob(job *models.Job, cause error) error {
	message := "job failed"
	if cause != nil {
		message = cause.Error()
	}
	now := time.Now()
	// Only a row the worker owns may be marked failed; anything else (a
	// claim that was never won, a terminal row) is left untouched.
	result := w.db.Model(&models.Job{}).
		Where("id = ? AND status = ?", job.ID, models.JobStatusProcessing).
		Updates(map[string]any{
			"status":       models.JobStatusFailed,
			"error":        message,
			"completed_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nil
	}
	job.Status = models.JobStatusFailed
	job.Error = message
	job.CompletedAt = &now
	return nil
}
