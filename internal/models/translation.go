package models

import "lotsawa/internal/glossary"

// TranslationConfig carries per-request translation settings.
type TranslationConfig struct {
	SourceLanguage  string          `json:"sourceLanguage,omitempty"`
	TargetLanguage  string          `json:"targetLanguage,omitempty"`
	Providers       []string        `json:"providers,omitempty"`
	DictionaryTerms []glossary.Term `json:"dictionaryTerms,omitempty"`
	BaseConfidence  float64         `json:"baseConfidence,omitempty"`
	Instructions    string          `json:"instructions,omitempty"`
}

// TranslationRequest is the immutable payload of a translation job.
type TranslationRequest struct {
	SourceText string             `json:"sourceText"`
	Config     TranslationConfig  `json:"config"`
	Chunks     []TranslationChunk `json:"chunks,omitempty"`
}

// TranslationChunk is one page/segment of a job's source text. Chunks are
// processed sequentially, in order, within one job.
type TranslationChunk struct {
	PageNumber int    `json:"pageNumber"`
	Content    string `json:"content"`
	Context    string `json:"context,omitempty"`
}

// TranslationResult is the output of one translation, single-provider or
// consensus.
type TranslationResult struct {
	Translation      string            `json:"translation"`
	Confidence       float64           `json:"confidence"`
	ProcessingTimeMs int64             `json:"processingTimeMs"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// ConsensusMetadata describes how a result was reconciled across providers.
// Consensus is false whenever fewer than 2 provider results survived.
type ConsensusMetadata struct {
	Consensus      bool     `json:"consensus"`
	ModelsUsed     []string `json:"modelsUsed"`
	ModelAgreement float64  `json:"modelAgreement"`
}

// QualityScore is the weighted quality breakdown of a translation. All
// fields are in [0,1] and Overall is the weighted sum.
type QualityScore struct {
	Overall      float64 `json:"overall"`
	Confidence   float64 `json:"confidence"`
	Format       float64 `json:"format"`
	Preservation float64 `json:"preservation"`
}

// Gate failure actions.
const (
	GateActionReject = "reject"
	GateActionWarn   = "warn"
)

// GateFailure records one quality gate falling below its threshold.
type GateFailure struct {
	Gate      string  `json:"gate"`
	Threshold float64 `json:"threshold"`
	Actual    float64 `json:"actual"`
	Action    string  `json:"action"`
	Message   string  `json:"message"`
}

// GateResult is the outcome of the quality gate check. Passed is true iff
// no failure carries the reject action; a rejection is data for the caller,
// not an error.
type GateResult struct {
	Passed       bool          `json:"passed"`
	Failures     []GateFailure `json:"failures"`
	QualityScore QualityScore  `json:"qualityScore"`
}

// ProgressSnapshot describes an active job's progress. It exists only while
// the job is processing and is released on completion, failure or
// cancellation.
type ProgressSnapshot struct {
	Progress               int     `json:"progress"`
	ChunksCompleted        int     `json:"chunksCompleted"`
	ChunksTotal            int     `json:"chunksTotal"`
	EstimatedTimeRemaining *int64  `json:"estimatedTimeRemaining,omitempty"` // milliseconds
	Throughput             float64 `json:"throughput"`                       // chunks per minute
}
