// Package ingest collects contribution records from their sources and
// normalizes upstream field naming before anything downstream sees them.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Contribution is a single unit's reported value for one KPI in one
// period. Reported and Target stay verbatim as submitted; numeric
// interpretation happens in the aggregation engine.
type Contribution struct {
	InitiativeID string `json:"initiative_id"`
	KRAID        string `json:"kra_id"`
	UnitID       string `json:"unit_id"`
	Year         int    `json:"year"`
	Quarter      int    `json:"quarter"`
	Reported     string `json:"reported"`
	Target       string `json:"target"`
	DataType     string `json:"data_type,omitempty"`
}

// Provider collects contributions from a single source.
type Provider interface {
	Name() string
	Collect(ctx context.Context) ([]Contribution, error)
}

// CollectAll runs providers and merges their records.
func CollectAll(ctx context.Context, providers []Provider) ([]Contribution, error) {
	var all []Contribution
	for _, provider := range providers {
		if provider == nil {
			continue
		}
		records, err := provider.Collect(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s provider: %w", provider.Name(), err)
		}
		all = append(all, records...)
	}
	return Canonicalize(all), nil
}

// Canonicalize trims identifier fields, drops records with no initiative
// id, and sorts for deterministic output.
func Canonicalize(contributions []Contribution) []Contribution {
	normalized := make([]Contribution, 0, len(contributions))
	for _, c := range contributions {
		c.InitiativeID = strings.TrimSpace(c.InitiativeID)
		c.KRAID = strings.TrimSpace(c.KRAID)
		c.UnitID = strings.TrimSpace(c.UnitID)
		c.Reported = strings.TrimSpace(c.Reported)
		c.Target = strings.TrimSpace(c.Target)
		c.DataType = strings.ToLower(strings.TrimSpace(c.DataType))
		if c.InitiativeID == "" {
			continue
		}
		normalized = append(normalized, c)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		a := normalized[i]
		b := normalized[j]
		if a.InitiativeID != b.InitiativeID {
			return a.InitiativeID < b.InitiativeID
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Quarter != b.Quarter {
			return a.Quarter < b.Quarter
		}
		if a.UnitID != b.UnitID {
			return a.UnitID < b.UnitID
		}
		return a.Reported < b.Reported
	})

	return normalized
}

// FilterPeriod keeps contributions for one KPI-period.
func FilterPeriod(contributions []Contribution, initiativeID string, year, quarter int) []Contribution {
	var out []Contribution
	for _, c := range contributions {
		if c.InitiativeID != initiativeID {
			continue
		}
		if year != 0 && c.Year != year {
			continue
		}
		if quarter != 0 && c.Quarter != quarter {
			continue
		}
		out = append(out, c)
	}
	return out
}
