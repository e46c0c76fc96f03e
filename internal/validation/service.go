// Package validation runs staged validator lists over translation input
// and output. Validators are ordered tagged variants that can be
// registered and unregistered at runtime; all validators of a stage
// always run, and a result is valid iff no validator produced an error.
package validation

import (
	"context"
	"fmt"
	"sync"

	"lotsawa/internal/models"
	"lotsawa/internal/textscript"

	"github.com/sirupsen/logrus"
)

// Stage tags a validator as input-side or output-side.
type Stage string

const (
	StageInput  Stage = "input"
	StageOutput Stage = "output"
)

// Input is the data handed to each validator.
type Input struct {
	// Text is the text under validation: source text for the input stage,
	// translated text for the output stage.
	Text string
	// OriginalText carries the source text during output-stage validation.
	OriginalText string
	Config       models.TranslationConfig
}

// Result is a single validator's verdict. A validator contributes errors,
// warnings and optional metadata; it never halts the run.
type Result struct {
	Errors   []string
	Warnings []string
	Metadata map[string]string
}

// Validator checks one property of the text for one stage.
type Validator interface {
	Name() string
	Stage() Stage
	Validate(ctx context.Context, input Input) Result
}

// ValidationResult aggregates every validator of a stage.
type ValidationResult struct {
	IsValid          bool              `json:"isValid"`
	Errors           []string          `json:"errors"`
	Warnings         []string          `json:"warnings"`
	ValidatorResults map[string]Result `json:"validatorResults"`
	Metadata         map[string]string `json:"metadata"`
}

// Service holds the ordered validator list.
type Service struct {
	mu         sync.Mutex
	validators []Validator
}

// NewService creates a validation service with the default validators
// for both stages.
func NewService(analyzer *textscript.Analyzer) *Service {
	return &Service{
		validators: []Validator{
			&contentSufficiencyValidator{analyzer: analyzer},
			&lengthValidator{},
			&encodingValidator{},
			&languageDetectionValidator{},
			&formatValidator{analyzer: analyzer},
			&preservationValidator{analyzer: analyzer},
		},
	}
}

// Register appends a validator to the list. Duplicate names are rejected.
func (s *Service) Register(v Validator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.validators {
		if existing.Name() == v.Name() {
			return fmt.Errorf("validator '%s' is already registered", v.Name())
		}
	}
	s.validators = append(s.validators, v)
	return nil
}

// Unregister removes a validator by name. Unknown names are an error.
func (s *Service) Unregister(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.validators {
		if v.Name() == name {
			s.validators = append(s.validators[:i], s.validators[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("validator '%s' is not registered", name)
}

// Validate runs every validator of the stage, in order, without
// short-circuiting. Warnings never affect validity.
func (s *Service) Validate(ctx context.Context, input Input, stage Stage) ValidationResult {
	s.mu.Lock()
	validators := make([]Validator, 0, len(s.validators))
	for _, v := range s.validators {
		if v.Stage() == stage {
			validators = append(validators, v)
		}
	}
	s.mu.Unlock()

	out := ValidationResult{
		ValidatorResults: make(map[string]Result, len(validators)),
		Metadata:         make(map[string]string),
	}
	for _, v := range validators {
		result := v.Validate(ctx, input)
		out.ValidatorResults[v.Name()] = result
		out.Errors = append(out.Errors, result.Errors...)
		out.Warnings = append(out.Warnings, result.Warnings...)
		for k, value := range result.Metadata {
			out.Metadata[k] = value
		}
	}
	out.IsValid = len(out.Errors) == 0

	if !out.IsValid {
		logrus.WithFields(logrus.Fields{
			"stage":  stage,
			"errors": out.Errors,
		}).Debug("Validation failed")
	}
	return out
}
