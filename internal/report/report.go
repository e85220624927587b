// Package report reads and writes versioned QPRO analysis artifacts.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"qpro/internal/aggregate"
	"qpro/internal/extract"
)

const AnalysisSchemaVersion = 1

// Analysis is the artifact produced by one document-analysis pass.
type Analysis struct {
	SchemaVersion int                  `json:"schema_version"`
	GeneratedAt   string               `json:"generated_at"`
	Source        string               `json:"source"`
	DocumentType  extract.DocumentType `json:"document_type"`
	Sections      []extract.Section    `json:"sections,omitempty"`
	Summaries     []extract.Summary    `json:"summaries,omitempty"`
	Prioritized   *extract.Summary     `json:"prioritized,omitempty"`
	Achievements  []aggregate.Row      `json:"achievements,omitempty"`
	Warnings      []string             `json:"warnings,omitempty"`
}

// WriteAnalysis writes the artifact atomically (temp file + rename).
func WriteAnalysis(path string, analysis Analysis) error {
	if path == "" {
		return fmt.Errorf("analysis path is required")
	}
	if analysis.GeneratedAt == "" {
		return fmt.Errorf("analysis generated_at is required")
	}
	analysis.SchemaVersion = AnalysisSchemaVersion

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure analysis dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp analysis: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp analysis: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename analysis: %w", err)
	}
	return nil
}

// LoadAnalysis reads and validates a previously written artifact.
func LoadAnalysis(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	var analysis Analysis
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if analysis.SchemaVersion != AnalysisSchemaVersion {
		return nil, fmt.Errorf("unsupported analysis schema_version %d", analysis.SchemaVersion)
	}
	if analysis.GeneratedAt == "" {
		return nil, fmt.Errorf("analysis missing generated_at")
	}
	return &analysis, nil
}
