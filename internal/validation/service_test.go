package validation

import (
	"context"
	"strings"
	"testing"

	"lotsawa/internal/models"
	"lotsawa/internal/textscript"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tibetanRefuge = "སངས་རྒྱས་ཆོས་དང་ཚོགས་ཀྱི་མཆོག་རྣམས་ལ།"

func newService() *Service {
	return NewService(textscript.NewTibetanAnalyzer())
}

func TestValidateTibetanSourceIsValid(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{Text: tibetanRefuge}, StageInput)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.Metadata["normalizedText"])
}

func TestValidateEnglishSourceRejected(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{Text: "This is plain English text."}, StageInput)

	assert.False(t, result.IsValid)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, strings.Join(result.Errors, " "), "50%")
}

func TestValidateEmptySourceRejected(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{Text: "   \n\t  "}, StageInput)

	assert.False(t, result.IsValid)
	assert.Contains(t, strings.Join(result.Errors, " "), "empty")
}

func TestValidateLongSourceWarns(t *testing.T) {
	svc := newService()

	long := strings.Repeat("ཨ", 50001)
	result := svc.Validate(context.Background(), Input{Text: long}, StageInput)

	assert.True(t, result.IsValid, "length overflow is a warning, not an error")
	assert.NotEmpty(t, result.Warnings)
}

func TestValidateControlCharacterRejected(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{Text: tibetanRefuge + "\x00"}, StageInput)

	assert.False(t, result.IsValid)
	assert.Contains(t, strings.Join(result.Errors, " "), "control character")
}

func TestValidateReplacementCharacterRejected(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{Text: tibetanRefuge + "�"}, StageInput)

	assert.False(t, result.IsValid)
	assert.Contains(t, strings.Join(result.Errors, " "), "replacement character")
}

func TestValidateNormalizationIdempotent(t *testing.T) {
	svc := newService()

	first := svc.Validate(context.Background(), Input{Text: tibetanRefuge}, StageInput)
	normalized := first.Metadata["normalizedText"]
	second := svc.Validate(context.Background(), Input{Text: normalized}, StageInput)

	assert.Equal(t, normalized, second.Metadata["normalizedText"])
}

func TestValidateOutputCompliant(t *testing.T) {
	svc := newService()

	translation := "I take refuge in the Buddha, Dharma and Sangha (" + tibetanRefuge + ")"
	result := svc.Validate(context.Background(), Input{
		Text:         translation,
		OriginalText: tibetanRefuge,
	}, StageOutput)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateOutputMissingParentheses(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{
		Text:         "I take refuge in the Buddha, Dharma and Sangha",
		OriginalText: tibetanRefuge,
	}, StageOutput)

	assert.False(t, result.IsValid)
	joined := strings.Join(result.Errors, " ")
	assert.Contains(t, joined, "parenthes")
}

func TestValidateOutputRefusalRejected(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{
		Text:         "I cannot translate this text (" + tibetanRefuge + ")",
		OriginalText: tibetanRefuge,
	}, StageOutput)

	assert.False(t, result.IsValid)
	assert.Contains(t, strings.Join(result.Errors, " "), "refusal")
}

func TestValidateOutputUnbalancedParens(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{
		Text:         "Refuge (" + tibetanRefuge,
		OriginalText: tibetanRefuge,
	}, StageOutput)

	assert.False(t, result.IsValid)
	assert.Contains(t, strings.Join(result.Errors, " "), "unbalanced")
}

func TestValidateOutputPoorPreservation(t *testing.T) {
	svc := newService()

	// Only a fragment of the source made it into the parentheses.
	result := svc.Validate(context.Background(), Input{
		Text:         "I take refuge (སངས)",
		OriginalText: tibetanRefuge,
	}, StageOutput)

	assert.False(t, result.IsValid)
	assert.Contains(t, strings.Join(result.Errors, " "), "80%")
}

func TestValidateAllValidatorsRun(t *testing.T) {
	svc := newService()

	// Empty AND pure-English: both validators must report.
	result := svc.Validate(context.Background(), Input{Text: ""}, StageInput)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.ValidatorResults, "content_sufficiency")
	assert.Contains(t, result.ValidatorResults, "length")
	assert.Contains(t, result.ValidatorResults, "encoding")
}

func TestRegisterUnregister(t *testing.T) {
	svc := newService()

	custom := &stubValidator{name: "custom", stage: StageInput}
	require.NoError(t, svc.Register(custom))
	assert.Error(t, svc.Register(custom), "duplicate names are rejected")

	result := svc.Validate(context.Background(), Input{Text: tibetanRefuge}, StageInput)
	assert.Contains(t, result.ValidatorResults, "custom")

	require.NoError(t, svc.Unregister("custom"))
	assert.Error(t, svc.Unregister("custom"))

	result = svc.Validate(context.Background(), Input{Text: tibetanRefuge}, StageInput)
	assert.NotContains(t, result.ValidatorResults, "custom")
}

func TestWarningsDoNotAffectValidity(t *testing.T) {
	svc := newService()

	warner := &stubValidator{name: "warner", stage: StageInput, result: Result{Warnings: []string{"heads up"}}}
	require.NoError(t, svc.Register(warner))

	result := svc.Validate(context.Background(), Input{Text: tibetanRefuge}, StageInput)

	assert.True(t, result.IsValid)
	assert.Contains(t, result.Warnings, "heads up")
}

func TestLanguageDetectionNeverErrors(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{
		Text:   tibetanRefuge,
		Config: models.TranslationConfig{TargetLanguage: "en"},
	}, StageInput)

	detection := result.ValidatorResults["language_detection"]
	assert.Empty(t, detection.Errors)
}

// englishProse is long enough for reliable detection.
const englishProse = "The monastery stood at the edge of the valley, and every " +
	"morning the monks would gather in the courtyard to recite their prayers " +
	"before the sun rose over the eastern ridge of the mountains."

func TestLanguageDetectionWarnsOnSourceMismatch(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{
		Text:   englishProse,
		Config: models.TranslationConfig{SourceLanguage: "tibetan", TargetLanguage: "english"},
	}, StageInput)

	detection := result.ValidatorResults["language_detection"]
	assert.Empty(t, detection.Errors)
	require.NotEmpty(t, detection.Warnings)
	assert.Contains(t, detection.Warnings[0], "declared source")
}

func TestLanguageDetectionAcceptsMatchingSource(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{
		Text:   englishProse,
		Config: models.TranslationConfig{SourceLanguage: "english"},
	}, StageInput)

	detection := result.ValidatorResults["language_detection"]
	assert.Empty(t, detection.Warnings)
}

func TestLanguageDetectionWarnsWhenAlreadyTargetLanguage(t *testing.T) {
	svc := newService()

	result := svc.Validate(context.Background(), Input{
		Text:   englishProse,
		Config: models.TranslationConfig{TargetLanguage: "english"},
	}, StageInput)

	detection := result.ValidatorResults["language_detection"]
	require.NotEmpty(t, detection.Warnings)
	assert.Contains(t, detection.Warnings[0], "already appears to be in the target language")
}

type stubValidator struct {
	name   string
	stage  Stage
	result Result
}

func (s *stubValidator) Name() string { return s.name }
func (s *stubValidator) Stage() Stage { return s.stage }
func (s *stubValidator) Validate(context.Context, Input) Result {
	return s.result
}
