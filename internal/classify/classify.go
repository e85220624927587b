// Package classify infers a KPI's value semantics from its plan
// configuration or, failing that, from keyword heuristics over its
// descriptive text.
package classify

import (
	"fmt"
	"strings"

	"qpro/internal/plan"
)

// TargetType is the inferred value semantics of a KPI target.
type TargetType string

const (
	TypeCount         TargetType = "count"
	TypeSnapshot      TargetType = "snapshot"
	TypeRate          TargetType = "rate"
	TypePercentage    TargetType = "percentage"
	TypeMilestone     TargetType = "milestone"
	TypeFinancial     TargetType = "financial"
	TypeTextCondition TargetType = "text_condition"
)

// Result is a best-effort classification. Classification never fails;
// ambiguity shows up as a low confidence and advisory warnings.
type Result struct {
	Type       TargetType `json:"type"`
	Confidence float64    `json:"confidence"`
	Rule       string     `json:"rule"`
	Warnings   []string   `json:"warnings,omitempty"`
}

// keywordRule is one entry of the ordered heuristic table. Rules are
// evaluated top to bottom, first match wins, so precedence is auditable.
type keywordRule struct {
	name       string
	keywords   []string
	result     TargetType
	confidence float64
}

var keywordRules = []keywordRule{
	{
		name:       "milestone_keywords",
		keywords:   []string{"certified", "compliant", "compliance", "accredited", "accreditation", "audit"},
		result:     TypeMilestone,
		confidence: 0.85,
	},
	{
		name:       "rate_keywords",
		keywords:   []string{"%", "rate", "score", "satisfaction"},
		result:     TypeRate,
		confidence: 0.80,
	},
	{
		name:       "snapshot_keywords",
		keywords:   []string{"faculty", "student population", "enrolled", "active", "existing"},
		result:     TypeSnapshot,
		confidence: 0.75,
	},
	{
		name:       "count_keywords",
		keywords:   []string{"number of", "research", "output", "training", "publication"},
		result:     TypeCount,
		confidence: 0.70,
	},
}

// explicitTypes maps the plan's `type` hints to target types. The hint
// always wins over keyword heuristics.
var explicitTypes = map[string]TargetType{
	"count":          TypeCount,
	"snapshot":       TypeSnapshot,
	"rate":           TypeRate,
	"percentage":     TypePercentage,
	"percent":        TypePercentage,
	"milestone":      TypeMilestone,
	"financial":      TypeFinancial,
	"budget":         TypeFinancial,
	"text_condition": TypeTextCondition,
	"condition":      TypeTextCondition,
}

// Classify infers the target type for an initiative. kraTitle is the parent
// KRA's title; it participates in keyword matching alongside the
// initiative's outputs and outcomes text.
func Classify(init plan.Initiative, kraTitle string) Result {
	if hint := strings.ToLower(strings.TrimSpace(init.Targets.Type)); hint != "" {
		if t, ok := explicitTypes[hint]; ok {
			return Result{Type: t, Confidence: 1.0, Rule: "explicit_type"}
		}
		// Unknown hint: fall through to keywords but tell the operator.
		keyword := classifyText(init, kraTitle)
		keyword.Warnings = append([]string{
			fmt.Sprintf("initiative %s: unknown target type hint %q, falling back to keyword heuristics", init.ID, init.Targets.Type),
		}, keyword.Warnings...)
		return keyword
	}
	return classifyText(init, kraTitle)
}

func classifyText(init plan.Initiative, kraTitle string) Result {
	text := strings.ToLower(strings.Join([]string{init.Outputs, init.Outcomes, kraTitle}, " "))

	for _, rule := range keywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return Result{
					Type:       rule.result,
					Confidence: rule.confidence,
					Rule:       rule.name,
				}
			}
		}
	}

	return Result{
		Type:       TypeCount,
		Confidence: 0.30,
		Rule:       "default",
		Warnings: []string{
			fmt.Sprintf("initiative %s: no keyword match, defaulting to count", init.ID),
		},
	}
}

// ClassifyRecord classifies an initiative record from a loaded plan store.
func ClassifyRecord(rec plan.InitiativeRecord) Result {
	return Classify(rec.Initiative, rec.KRA.Title)
}
