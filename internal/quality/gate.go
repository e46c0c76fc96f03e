package quality

import (
	"fmt"
	"sync"

	"lotsawa/internal/models"
)

// Default gate thresholds.
const (
	defaultConfidenceThreshold   = 0.7
	defaultFormatThreshold       = 0.8
	defaultPreservationThreshold = 0.7
)

// GateRule is one threshold check over a quality component. Extract pulls
// the component value out of a QualityScore.
type GateRule struct {
	Name      string
	Threshold float64
	Action    string
	Extract   func(models.QualityScore) float64
}

// Gate evaluates quality scores against an ordered rule list. Rules can
// be added and removed at runtime.
type Gate struct {
	scorer *Scorer
	mu     sync.Mutex
	rules  []GateRule
}

// NewGate creates a gate with the default rules: confidence and
// preservation reject below threshold, format only warns.
func NewGate(scorer *Scorer) *Gate {
	return &Gate{
		scorer: scorer,
		rules: []GateRule{
			{
				Name:      "confidence",
				Threshold: defaultConfidenceThreshold,
				Action:    models.GateActionReject,
				Extract:   func(q models.QualityScore) float64 { return q.Confidence },
			},
			{
				Name:      "format",
				Threshold: defaultFormatThreshold,
				Action:    models.GateActionWarn,
				Extract:   func(q models.QualityScore) float64 { return q.Format },
			},
			{
				Name:      "preservation",
				Threshold: defaultPreservationThreshold,
				Action:    models.GateActionReject,
				Extract:   func(q models.QualityScore) float64 { return q.Preservation },
			},
		},
	}
}

// AddRule appends a rule. Duplicate names are rejected.
func (g *Gate) AddRule(rule GateRule) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, existing := range g.rules {
		if existing.Name == rule.Name {
			return fmt.Errorf("gate rule '%s' already exists", rule.Name)
		}
	}
	g.rules = append(g.rules, rule)
	return nil
}

// RemoveRule removes a rule by name. Unknown names are an error.
func (g *Gate) RemoveRule(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, rule := range g.rules {
		if rule.Name == name {
			g.rules = append(g.rules[:i], g.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("gate rule '%s' does not exist", name)
}

// Check scores the result and evaluates every rule. The gate passes iff
// no reject-action rule fails; warn failures are recorded but do not
// block.
func (g *Gate) Check(result models.TranslationResult, originalText string) models.GateResult {
	score := g.scorer.Score(result, originalText)

	g.mu.Lock()
	rules := make([]GateRule, len(g.rules))
	copy(rules, g.rules)
	g.mu.Unlock()

	out := models.GateResult{Passed: true, QualityScore: score}
	for _, rule := range rules {
		actual := rule.Extract(score)
		if actual >= rule.Threshold {
			continue
		}
		out.Failures = append(out.Failures, models.GateFailure{
			Gate:      rule.Name,
			Threshold: rule.Threshold,
			Actual:    actual,
			Action:    rule.Action,
			Message:   fmt.Sprintf("%s %.2f is below the threshold %.2f", rule.Name, actual, rule.Threshold),
		})
		if rule.Action == models.GateActionReject {
			out.Passed = false
		}
	}
	return out
}
