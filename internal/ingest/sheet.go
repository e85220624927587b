package ingest

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SheetProvider reads manually curated contribution sheets from a YAML
// file. Sheets come from many unit offices with inconsistent column
// naming; fieldAliases maps every known spelling to its canonical field
// here, once, so the rest of the pipeline only sees canonical names.
type SheetProvider struct {
	Path string
}

func (p *SheetProvider) Name() string { return "sheet" }

// fieldAliases is the explicit schema-mapping table: canonical field to
// accepted source spellings, tried in order.
var fieldAliases = map[string][]string{
	"initiative_id": {"initiative_id", "kpi_id", "kpi", "initiative"},
	"kra_id":        {"kra_id", "kra"},
	"unit_id":       {"unit_id", "unit", "office", "campus", "department"},
	"year":          {"year"},
	"quarter":       {"quarter", "qtr", "period"},
	"reported":      {"reported", "actual", "accomplishment", "value"},
	"target":        {"target", "target_value"},
	"data_type":     {"data_type", "type"},
}

type sheetFile struct {
	Contributions []map[string]any `yaml:"contributions"`
}

func (p *SheetProvider) Collect(ctx context.Context) ([]Contribution, error) {
	_ = ctx

	if p.Path == "" {
		return nil, fmt.Errorf("sheet path is required")
	}

	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read contribution sheet: %w", err)
	}

	var file sheetFile
	if err := yaml.Unmarshal(data, &file); err == nil && file.Contributions != nil {
		return p.recordsFrom(file.Contributions)
	}

	var list []map[string]any
	if err := yaml.Unmarshal(data, &list); err == nil && list != nil {
		return p.recordsFrom(list)
	}

	return nil, fmt.Errorf("contribution sheet must contain a `contributions:` list or a top-level list")
}

func (p *SheetProvider) recordsFrom(rows []map[string]any) ([]Contribution, error) {
	records := make([]Contribution, 0, len(rows))
	for idx, row := range rows {
		c := Contribution{
			InitiativeID: lookupString(row, "initiative_id"),
			KRAID:        lookupString(row, "kra_id"),
			UnitID:       lookupString(row, "unit_id"),
			Reported:     lookupString(row, "reported"),
			Target:       lookupString(row, "target"),
			DataType:     lookupString(row, "data_type"),
		}
		if c.InitiativeID == "" {
			continue
		}

		year, err := lookupInt(row, "year")
		if err != nil {
			return nil, fmt.Errorf("contributions[%d]: %w", idx, err)
		}
		quarter, err := lookupInt(row, "quarter")
		if err != nil {
			return nil, fmt.Errorf("contributions[%d]: %w", idx, err)
		}
		c.Year = year
		c.Quarter = quarter

		records = append(records, c)
	}
	return records, nil
}

func lookupString(row map[string]any, canonical string) string {
	for _, alias := range fieldAliases[canonical] {
		if value, ok := row[alias]; ok {
			return stringify(value)
		}
	}
	return ""
}

func lookupInt(row map[string]any, canonical string) (int, error) {
	text := lookupString(row, canonical)
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", canonical, text)
	}
	return n, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
