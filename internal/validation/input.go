package validation

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"lotsawa/internal/textscript"

	"github.com/abadojack/whatlanggo"
)

// Input-stage thresholds.
const (
	sufficiencyRejectRatio = 0.50
	sufficiencyWarnRatio   = 0.70
	lengthWarnChars        = 50000
)

// contentSufficiencyValidator rejects input whose source-script character
// ratio is too low to be a meaningful translation source.
type contentSufficiencyValidator struct {
	analyzer *textscript.Analyzer
}

func (v *contentSufficiencyValidator) Name() string { return "content_sufficiency" }
func (v *contentSufficiencyValidator) Stage() Stage { return StageInput }

func (v *contentSufficiencyValidator) Validate(_ context.Context, input Input) Result {
	ratio := v.analyzer.ScriptRatio(input.Text)
	if ratio < sufficiencyRejectRatio {
		return Result{Errors: []string{
			fmt.Sprintf("source-script content is %.0f%%, below the required 50%%", ratio*100),
		}}
	}
	if ratio < sufficiencyWarnRatio {
		return Result{Warnings: []string{
			fmt.Sprintf("source-script content is %.0f%%, below the recommended 70%%", ratio*100),
		}}
	}
	return Result{}
}

// lengthValidator rejects empty input and warns on very long input.
type lengthValidator struct{}

func (v *lengthValidator) Name() string { return "length" }
func (v *lengthValidator) Stage() Stage { return StageInput }

func (v *lengthValidator) Validate(_ context.Context, input Input) Result {
	if strings.TrimSpace(input.Text) == "" {
		return Result{Errors: []string{"source text is empty"}}
	}
	if length := utf8.RuneCountInString(input.Text); length > lengthWarnChars {
		return Result{Warnings: []string{
			fmt.Sprintf("source text is %d characters, above the recommended maximum of %d", length, lengthWarnChars),
		}}
	}
	return Result{}
}

// encodingValidator rejects control characters and replacement characters,
// and emits the NFC-normalized text for downstream stages.
type encodingValidator struct{}

func (v *encodingValidator) Name() string { return "encoding" }
func (v *encodingValidator) Stage() Stage { return StageInput }

func (v *encodingValidator) Validate(_ context.Context, input Input) Result {
	var errs []string
	for _, r := range input.Text {
		if r == utf8.RuneError {
			errs = append(errs, "source text contains the Unicode replacement character")
			break
		}
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			errs = append(errs, fmt.Sprintf("source text contains control character U+%04X", r))
			break
		}
	}
	return Result{
		Errors:   errs,
		Metadata: map[string]string{"normalizedText": textscript.NormalizeNFC(input.Text)},
	}
}

// languageDetectionValidator warns when the text outside parentheses is
// reliably detected as a language other than the declared source, or, with
// no source declared, when it already reads as the target language (nothing
// left to translate). Detection is heuristic, so this validator never
// errors.
type languageDetectionValidator struct{}

func (v *languageDetectionValidator) Name() string { return "language_detection" }
func (v *languageDetectionValidator) Stage() Stage { return StageInput }

func (v *languageDetectionValidator) Validate(_ context.Context, input Input) Result {
	remainder := strings.TrimSpace(textscript.StripParenthesized(input.Text))
	if remainder == "" {
		return Result{}
	}

	info := whatlanggo.Detect(remainder)
	if !info.IsReliable() {
		return Result{}
	}

	if source := input.Config.SourceLanguage; source != "" {
		if languageMatches(source, info.Lang) {
			return Result{}
		}
		return Result{Warnings: []string{
			fmt.Sprintf("detected language '%s' does not match declared source '%s'", info.Lang.String(), source),
		}}
	}

	if target := input.Config.TargetLanguage; target != "" && languageMatches(target, info.Lang) {
		return Result{Warnings: []string{
			fmt.Sprintf("source text already appears to be in the target language '%s'", target),
		}}
	}
	return Result{}
}

// languageMatches compares a declared language name or code against a
// detected language, accepting full names and ISO 639-1 prefixes.
func languageMatches(declared string, lang whatlanggo.Lang) bool {
	declared = strings.ToLower(declared)
	if declared == strings.ToLower(lang.String()) {
		return true
	}
	iso := strings.ToLower(lang.Iso6391())
	return iso != "" && (declared == iso || strings.HasPrefix(declared, iso))
}
