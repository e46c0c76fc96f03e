package validation

import (
	"context"
	"fmt"

	"lotsawa/internal/textscript"
)

// Output-stage thresholds.
const (
	preservationRejectRatio = 0.80
	preservationWarnRatio   = 0.95
)

// formatValidator enforces the expected translation shape: source-script
// text parenthesized next to its translation, balanced parentheses, no
// refusal phrases.
type formatValidator struct {
	analyzer *textscript.Analyzer
}

func (v *formatValidator) Name() string { return "format" }
func (v *formatValidator) Stage() Stage { return StageOutput }

func (v *formatValidator) Validate(_ context.Context, input Input) Result {
	var errs []string

	if phrase, refused := textscript.ContainsRefusal(input.Text); refused {
		errs = append(errs, fmt.Sprintf("translation contains refusal phrase %q", phrase))
	}
	if !textscript.BalancedParens(input.Text) {
		errs = append(errs, "translation has unbalanced parentheses")
	}
	if len(textscript.ParenthesizedSpans(input.Text)) == 0 {
		errs = append(errs, "translation has no parenthesized source text")
	} else if !v.analyzer.ScriptInParens(input.Text) {
		errs = append(errs, "no parenthesis contains source-script text")
	}

	return Result{Errors: errs}
}

// preservationValidator checks how much of the source script survived
// into the translation's parentheses.
type preservationValidator struct {
	analyzer *textscript.Analyzer
}

func (v *preservationValidator) Name() string { return "preservation" }
func (v *preservationValidator) Stage() Stage { return StageOutput }

func (v *preservationValidator) Validate(_ context.Context, input Input) Result {
	ratio := v.analyzer.PreservedRatio(input.OriginalText, input.Text)
	if ratio < preservationRejectRatio {
		return Result{Errors: []string{
			fmt.Sprintf("only %.0f%% of source-script characters preserved, below the required 80%%", ratio*100),
		}}
	}
	if ratio < preservationWarnRatio {
		return Result{Warnings: []string{
			fmt.Sprintf("%.0f%% of source-script characters preserved, below the recommended 95%%", ratio*100),
		}}
	}
	return Result{}
}
