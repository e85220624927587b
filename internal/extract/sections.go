package extract

import (
	"regexp"
	"sort"
	"strings"
)

// sectionRule is one category pattern. Several rules share a section type;
// extra matches inside an accepted span raise its confidence.
type sectionRule struct {
	sectionType SectionType
	pattern     *regexp.Regexp
	confidence  float64
}

var sectionRules = []sectionRule{
	{SectionTraining, regexp.MustCompile(`(?im)^.*\b(?:trainings?|seminars?|workshops?|capacity\s+building)\b.*$`), 0.90},
	{SectionTraining, regexp.MustCompile(`(?i)\bconducted\s+(?:a\s+)?(?:training|seminar|workshop)\b`), 0.85},
	{SectionTraining, regexp.MustCompile(`(?i)\b(?:participants|trainees|attendees)\b`), 0.75},

	{SectionAlumniEmployment, regexp.MustCompile(`(?im)^.*\b(?:alumni|graduates?|tracer\s+study)\b.*$`), 0.90},
	{SectionAlumniEmployment, regexp.MustCompile(`(?i)\bemployment\s+rate\b`), 0.88},
	{SectionAlumniEmployment, regexp.MustCompile(`(?i)\b(?:employed|hired|job\s+placement)\b`), 0.78},

	{SectionResearch, regexp.MustCompile(`(?im)^.*\b(?:research(?:es)?|publications?|journals?)\b.*$`), 0.90},
	{SectionResearch, regexp.MustCompile(`(?i)\b(?:published|presented)\s+(?:in|at)\b`), 0.82},
	{SectionResearch, regexp.MustCompile(`(?i)\b(?:study|studies|paper)\b`), 0.72},

	{SectionCommunityEngagement, regexp.MustCompile(`(?im)^.*\b(?:extension|community\s+(?:engagement|service|outreach))\b.*$`), 0.90},
	{SectionCommunityEngagement, regexp.MustCompile(`(?i)\b(?:beneficiaries|barangay|adopted\s+community)\b`), 0.84},
	{SectionCommunityEngagement, regexp.MustCompile(`(?i)\boutreach\s+(?:program|activity)\b`), 0.80},
}

// headerLine matches an all-caps heading line used to close a section span.
var headerLine = regexp.MustCompile(`(?m)^[^a-z\r\n]*[A-Z][^a-z\r\n]*[A-Z][^a-z\r\n]*$`)

// DetectSections segments a report into labeled sections. Empty input
// yields an unstructured document with zero sections; the detector never
// fails.
func DetectSections(text string) Detection {
	meta := analyzeShape(text)
	detection := Detection{
		DocumentType: classifyShape(meta),
		Metadata:     meta,
	}
	if strings.TrimSpace(text) == "" {
		return detection
	}

	headers := headerBounds(text)

	type candidate struct {
		section Section
	}
	var candidates []candidate

	for _, rule := range sectionRules {
		locs := rule.pattern.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			start := loc[0]
			end := nextHeaderAfter(headers, loc[1], len(text))
			candidates = append(candidates, candidate{
				section: Section{
					Type:       rule.sectionType,
					Title:      firstLine(text[start:end]),
					StartIndex: start,
					EndIndex:   end,
					Content:    text[start:end],
					Confidence: rule.confidence,
				},
			})
		}
	}

	if len(candidates) == 0 {
		return detection
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a := candidates[i].section
		b := candidates[j].section
		if a.StartIndex != b.StartIndex {
			return a.StartIndex < b.StartIndex
		}
		return a.EndIndex < b.EndIndex
	})

	type accepted struct {
		section Section
		base    float64
		bonus   float64
	}
	var spans []accepted
	for _, cand := range candidates {
		overlaps := false
		for i := range spans {
			if cand.section.StartIndex >= spans[i].section.StartIndex && cand.section.StartIndex < spans[i].section.EndIndex {
				// Same-type matches inside an accepted span reinforce it:
				// +0.05 per extra pattern, bonus capped at +0.10.
				if cand.section.Type == spans[i].section.Type {
					if cand.section.Confidence > spans[i].base {
						spans[i].base = cand.section.Confidence
					}
					if spans[i].bonus < 0.10 {
						spans[i].bonus += 0.05
					}
				}
				overlaps = true
				break
			}
		}
		if !overlaps {
			spans = append(spans, accepted{section: cand.section, base: cand.section.Confidence})
		}
	}

	sections := make([]Section, 0, len(spans))
	for _, span := range spans {
		confidence := span.base + span.bonus
		if confidence > 1.0 {
			confidence = 1.0
		}
		span.section.Confidence = confidence
		sections = append(sections, span.section)
	}

	detection.Sections = sections
	detection.TotalSections = len(sections)
	return detection
}

func analyzeShape(text string) AnalysisMetadata {
	meta := AnalysisMetadata{TextLength: len(text)}
	if strings.TrimSpace(text) == "" {
		return meta
	}

	lines := strings.Split(text, "\n")
	nonEmpty := 0
	delimiters := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonEmpty++
		delimiters += strings.Count(line, "\t") + strings.Count(line, "|")
	}
	meta.LineCount = nonEmpty

	sentences := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	if nonEmpty > 0 {
		meta.DelimitersPerLine = float64(delimiters) / float64(nonEmpty)
		meta.SentencesPerLine = float64(sentences) / float64(nonEmpty)
	}
	meta.ParagraphCount = len(regexp.MustCompile(`\n\s*\n`).Split(strings.TrimSpace(text), -1))
	return meta
}

func classifyShape(meta AnalysisMetadata) DocumentType {
	if meta.TextLength == 0 || meta.LineCount == 0 {
		return DocUnstructured
	}
	tabular := meta.DelimitersPerLine >= 1.0
	narrative := meta.SentencesPerLine >= 0.5
	switch {
	case tabular && narrative:
		return DocMixed
	case tabular:
		return DocTable
	case narrative:
		return DocNarrative
	default:
		return DocUnstructured
	}
}

// headerBounds returns the start offsets of all-caps heading lines.
func headerBounds(text string) []int {
	locs := headerLine.FindAllStringIndex(text, -1)
	starts := make([]int, 0, len(locs))
	for _, loc := range locs {
		if strings.TrimSpace(text[loc[0]:loc[1]]) == "" {
			continue
		}
		starts = append(starts, loc[0])
	}
	return starts
}

func nextHeaderAfter(headers []int, offset, textLen int) int {
	for _, h := range headers {
		if h > offset {
			return h
		}
	}
	return textLen
}

func firstLine(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}
