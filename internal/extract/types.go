// Package extract scans free-form accomplishment report text for section
// boundaries and summary metrics using ordered regex rule tables. All
// entry points are total: malformed or empty input degrades to empty
// results, never an error.
package extract

// MetricType categorizes an extracted summary value.
type MetricType string

const (
	MetricTotal      MetricType = "total"
	MetricCount      MetricType = "count"
	MetricPercentage MetricType = "percentage"
	MetricFinancial  MetricType = "financial"
	MetricMilestone  MetricType = "milestone"
)

// typePriority orders metric types for prioritized-value selection. A
// document mentioning both a granular count and a total resolves to the
// total.
var typePriority = map[MetricType]int{
	MetricTotal:      0,
	MetricCount:      1,
	MetricPercentage: 2,
	MetricFinancial:  3,
	MetricMilestone:  4,
}

// Summary is one confidence-scored metric candidate found in report text.
type Summary struct {
	MetricType MetricType `json:"metric_type"`
	MetricName string     `json:"metric_name"`
	Value      float64    `json:"value"`
	Unit       string     `json:"unit,omitempty"`
	Confidence float64    `json:"confidence"`
	RawText    string     `json:"raw_text"`
}

// Extraction is the result of one summary-extraction pass.
type Extraction struct {
	Summaries      []Summary   `json:"summaries"`
	Prioritized    *Summary    `json:"prioritized,omitempty"`
	TotalExtracted int         `json:"total_extracted"`
	SectionType    SectionType `json:"section_type,omitempty"`
}

// DocumentType is the overall shape of a report document.
type DocumentType string

const (
	DocTable        DocumentType = "table"
	DocNarrative    DocumentType = "narrative"
	DocMixed        DocumentType = "mixed"
	DocUnstructured DocumentType = "unstructured"
)

// SectionType labels a detected report section.
type SectionType string

const (
	SectionTraining            SectionType = "training"
	SectionAlumniEmployment    SectionType = "alumni_employment"
	SectionResearch            SectionType = "research"
	SectionCommunityEngagement SectionType = "community_engagement"
)

// Section is one labeled span of report text.
type Section struct {
	Type       SectionType `json:"type"`
	Title      string      `json:"title"`
	StartIndex int         `json:"start_index"`
	EndIndex   int         `json:"end_index"`
	Content    string      `json:"content"`
	Confidence float64     `json:"confidence"`
}

// AnalysisMetadata records the shape heuristics behind a detection pass.
type AnalysisMetadata struct {
	TextLength        int     `json:"text_length"`
	LineCount         int     `json:"line_count"`
	DelimitersPerLine float64 `json:"delimiters_per_line"`
	SentencesPerLine  float64 `json:"sentences_per_line"`
	ParagraphCount    int     `json:"paragraph_count"`
}

// Detection is the result of one section-detection pass.
type Detection struct {
	Sections      []Section        `json:"sections"`
	DocumentType  DocumentType     `json:"document_type"`
	TotalSections int              `json:"total_sections"`
	Metadata      AnalysisMetadata `json:"analysis_metadata"`
}
