package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// summaryRule is one entry of the ordered extraction table. nameGroup 0
// means the rule carries a fixed metric name; valueGroup 0 means the match
// itself is the signal (milestone rules) and the value is pinned to 1.
type summaryRule struct {
	name       string
	metricType MetricType
	pattern    *regexp.Regexp
	nameGroup  int
	valueGroup int
	fixedName  string
	unit       string
	confidence float64
}

var summaryRules = []summaryRule{
	{
		name:       "total_no_of",
		metricType: MetricTotal,
		pattern:    regexp.MustCompile(`(?i)total\s+(?:no\.?|number)\s+of\s+([A-Za-z][A-Za-z /&-]*?)\s*[:\-]\s*([\d,]+)`),
		nameGroup:  1,
		valueGroup: 2,
		confidence: 0.98,
	},
	{
		name:       "total_label",
		metricType: MetricTotal,
		pattern:    regexp.MustCompile(`(?i)\btotal\s+([A-Za-z][A-Za-z /&-]*?)\s*[:\-]\s*([\d,]+)`),
		nameGroup:  1,
		valueGroup: 2,
		confidence: 0.95,
	},
	{
		name:       "no_of",
		metricType: MetricCount,
		pattern:    regexp.MustCompile(`(?i)(?:no\.?|number)\s+of\s+([A-Za-z][A-Za-z /&-]*?)\s*[:\-]\s*([\d,]+)`),
		nameGroup:  1,
		valueGroup: 2,
		confidence: 0.92,
	},
	{
		name:       "participants_inline",
		metricType: MetricCount,
		pattern:    regexp.MustCompile(`(?i)([\d,]+)\s+(participants|attendees|trainees|graduates|beneficiaries|respondents)\b`),
		nameGroup:  2,
		valueGroup: 1,
		confidence: 0.90,
	},
	{
		name:       "financial_labeled",
		metricType: MetricFinancial,
		pattern:    regexp.MustCompile(`(?i)\b(?:amount|budget|cost|expenses?|funds?)\s*(?:utilized|allocated|spent|disbursed)?\s*[:\-]\s*(?:PhP|PHP|Php|₱|\$)?\s*([\d,]+(?:\.\d+)?)`),
		valueGroup: 1,
		fixedName:  "Amount",
		unit:       "PHP",
		confidence: 0.90,
	},
	{
		name:       "financial_currency",
		metricType: MetricFinancial,
		pattern:    regexp.MustCompile(`(?:PhP|PHP|Php|₱)\s*([\d,]+(?:\.\d+)?)`),
		valueGroup: 1,
		fixedName:  "Amount",
		unit:       "PHP",
		confidence: 0.87,
	},
	{
		name:       "percentage_labeled",
		metricType: MetricPercentage,
		pattern:    regexp.MustCompile(`(?i)([A-Za-z][A-Za-z /&-]*?)\s*(?:rate|percentage)?\s*[:\-]\s*(\d+(?:\.\d+)?)\s*%`),
		nameGroup:  1,
		valueGroup: 2,
		unit:       "%",
		confidence: 0.88,
	},
	{
		name:       "percentage_bare",
		metricType: MetricPercentage,
		pattern:    regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`),
		valueGroup: 1,
		fixedName:  "Percentage",
		unit:       "%",
		confidence: 0.85,
	},
	{
		name:       "milestone_completion",
		metricType: MetricMilestone,
		pattern:    regexp.MustCompile(`(?i)\b(?:fully\s+)?(completed|accomplished|achieved|conducted|implemented|established|operational|certified|accredited)\b`),
		fixedName:  "Milestone",
		confidence: 0.85,
	},
}

// ExtractSummaries scans the text with the full rule table and returns the
// surviving candidates plus the single prioritized value.
func ExtractSummaries(text string) Extraction {
	return extract(text, "")
}

// ExtractFromSection scans a single detected section's content. The section
// type is carried on the result so callers can scope metrics to the section
// that produced them.
func ExtractFromSection(sectionText string, sectionType SectionType) Extraction {
	return extract(sectionText, sectionType)
}

func extract(text string, sectionType SectionType) Extraction {
	if strings.TrimSpace(text) == "" {
		return Extraction{SectionType: sectionType}
	}

	best := make(map[string]Summary)
	var order []string

	for _, rule := range summaryRules {
		matches := rule.pattern.FindAllStringSubmatch(text, -1)
		for _, match := range matches {
			value, ok := parseRuleValue(rule, match)
			if !ok {
				continue
			}

			name := rule.fixedName
			if rule.nameGroup > 0 && rule.nameGroup < len(match) {
				name = normalizeMetricName(match[rule.nameGroup])
			}
			if name == "" {
				continue
			}

			key := string(rule.metricType) + "\x00" + name
			existing, seen := best[key]
			if seen && existing.Confidence >= rule.confidence {
				continue
			}
			if !seen {
				order = append(order, key)
			}
			best[key] = Summary{
				MetricType: rule.metricType,
				MetricName: name,
				Value:      value,
				Unit:       rule.unit,
				Confidence: rule.confidence,
				RawText:    strings.TrimSpace(match[0]),
			}
		}
	}

	summaries := make([]Summary, 0, len(best))
	for _, key := range order {
		summaries = append(summaries, best[key])
	}

	result := Extraction{
		Summaries:      summaries,
		TotalExtracted: len(summaries),
		SectionType:    sectionType,
	}
	result.Prioritized = prioritize(summaries)
	return result
}

func parseRuleValue(rule summaryRule, match []string) (float64, bool) {
	// Milestone rules signal through the match itself.
	if rule.valueGroup == 0 {
		return 1, true
	}
	if rule.valueGroup >= len(match) {
		return 0, false
	}
	raw := strings.TrimSpace(match[rule.valueGroup])
	if raw == "" {
		return 0, false
	}

	switch rule.metricType {
	case MetricFinancial, MetricPercentage:
		cleaned := strings.NewReplacer(",", "", "₱", "", "$", "").Replace(raw)
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		cleaned := strings.ReplaceAll(raw, ",", "")
		n, err := strconv.Atoi(cleaned)
		if err != nil {
			return 0, true
		}
		return float64(n), true
	}
}

// normalizeMetricName trims, strips leading "of"/"no.", and title-cases.
func normalizeMetricName(name string) string {
	name = strings.TrimSpace(name)
	for stripped := true; stripped; {
		stripped = false
		lower := strings.ToLower(name)
		for _, prefix := range []string{"of ", "no. ", "no "} {
			if strings.HasPrefix(lower, prefix) {
				name = strings.TrimSpace(name[len(prefix):])
				stripped = true
				break
			}
		}
	}
	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func prioritize(summaries []Summary) *Summary {
	if len(summaries) == 0 {
		return nil
	}
	ranked := make([]Summary, len(summaries))
	copy(ranked, summaries)
	sort.SliceStable(ranked, func(i, j int) bool {
		pi := typePriority[ranked[i].MetricType]
		pj := typePriority[ranked[j].MetricType]
		if pi != pj {
			return pi < pj
		}
		return ranked[i].Confidence > ranked[j].Confidence
	})
	top := ranked[0]
	return &top
}
