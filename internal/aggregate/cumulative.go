package aggregate

import (
	"sort"
	"strings"

	"qpro/internal/classify"
	"qpro/internal/plan"
)

// cumulativeKeywords mark output text describing a maintained state rather
// than an annual deliverable.
var cumulativeKeywords = []string{
	"compliance",
	"accreditation",
	"utilization rate",
	"established",
	"operational",
}

// IsCumulativeTarget reports whether an initiative's contributions
// accumulate across plan years. An explicit target_time_scope wins; the
// heuristics below cover plans prepared before the field existed.
func IsCumulativeTarget(store *plan.Store, kraID, initiativeID string) bool {
	rec, ok := store.InitiativeLookup(initiativeID)
	if !ok || rec.KRA.ID != kraID {
		return false
	}

	targets := rec.Initiative.Targets
	switch targets.TargetTimeScope {
	case plan.TimeScopeCumulative:
		return true
	case plan.TimeScopeAnnual:
		return false
	}

	timeline := targets.Timeline
	if len(timeline) == 0 {
		return false
	}

	// A single entry dated at the plan's terminal year is a range target
	// for the whole period.
	if len(timeline) == 1 && timeline[0].Year == store.TerminalYear() {
		return true
	}

	if allValuesIdentical(timeline) {
		return true
	}

	if classified := classify.ClassifyRecord(rec); classified.Type == classify.TypePercentage || classified.Type == classify.TypeRate {
		if climbsToHundred(timeline) {
			return true
		}
	}

	text := strings.ToLower(rec.Initiative.Outputs + " " + rec.Initiative.Outcomes)
	for _, keyword := range cumulativeKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}

	return false
}

// allValuesIdentical detects "maintained state" targets: the same value
// restated for every plan year.
func allValuesIdentical(timeline []plan.TimelineDatum) bool {
	if len(timeline) < 2 {
		return false
	}
	first := strings.TrimSpace(timeline[0].Value)
	if first == "" {
		return false
	}
	for _, datum := range timeline[1:] {
		if strings.TrimSpace(datum.Value) != first {
			return false
		}
	}
	return true
}

// climbsToHundred detects rate targets that ramp monotonically to exactly
// 100 by the final year.
func climbsToHundred(timeline []plan.TimelineDatum) bool {
	ordered := make([]plan.TimelineDatum, len(timeline))
	copy(ordered, timeline)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Year < ordered[j].Year })

	prev := -1.0
	last := -1.0
	for _, datum := range ordered {
		v, ok := datum.NumericValue()
		if !ok {
			return false
		}
		if v < prev {
			return false
		}
		prev = v
		last = v
	}
	return last == 100
}

// Row is one persisted KPI-period aggregate as read back from storage.
type Row struct {
	KRAID              string   `json:"kra_id"`
	InitiativeID       string   `json:"initiative_id"`
	Year               int      `json:"year"`
	Quarter            int      `json:"quarter"`
	TotalReported      float64  `json:"total_reported"`
	TotalTarget        float64  `json:"total_target"`
	AchievementPercent float64  `json:"achievement_percent"`
	ManualOverride     *float64 `json:"manual_override,omitempty"`
}

// EffectiveValue is the period's value with a manual override, when
// present, taking precedence over the computed total.
func (r Row) EffectiveValue() float64 {
	if r.ManualOverride != nil {
		return *r.ManualOverride
	}
	return r.TotalReported
}

// CumulativeTotal is the folded running total for one KPI-quarter as of a
// query year.
type CumulativeTotal struct {
	KRAID             string  `json:"kra_id"`
	InitiativeID      string  `json:"initiative_id"`
	Quarter           int     `json:"quarter"`
	Year              int     `json:"year"`
	RunningTotal      float64 `json:"running_total"`
	ContributingYears []int   `json:"contributing_years"`
}

// FoldCumulative folds aggregate rows into running totals per
// (KRA, initiative, quarter) as of the query year. Prior years contribute
// their effective value unconditionally, a zero included: the year still
// counts as contributing. The query year itself contributes only when its
// effective value is above zero; a current-year zero means "not yet
// submitted" and must not erase accumulated progress.
func FoldCumulative(rows []Row, year int) []CumulativeTotal {
	type key struct {
		kraID        string
		initiativeID string
		quarter      int
	}

	ordered := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.Year > year {
			continue
		}
		ordered = append(ordered, row)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a := ordered[i]
		b := ordered[j]
		if a.KRAID != b.KRAID {
			return a.KRAID < b.KRAID
		}
		if a.InitiativeID != b.InitiativeID {
			return a.InitiativeID < b.InitiativeID
		}
		if a.Quarter != b.Quarter {
			return a.Quarter < b.Quarter
		}
		return a.Year < b.Year
	})

	totals := make(map[key]*CumulativeTotal)
	var keys []key
	for _, row := range ordered {
		k := key{row.KRAID, row.InitiativeID, row.Quarter}
		total, ok := totals[k]
		if !ok {
			total = &CumulativeTotal{
				KRAID:        row.KRAID,
				InitiativeID: row.InitiativeID,
				Quarter:      row.Quarter,
				Year:         year,
			}
			totals[k] = total
			keys = append(keys, k)
		}

		value := row.EffectiveValue()
		if row.Year < year {
			total.RunningTotal += value
			total.ContributingYears = append(total.ContributingYears, row.Year)
			continue
		}
		if value > 0 {
			total.RunningTotal += value
			total.ContributingYears = append(total.ContributingYears, row.Year)
		}
	}

	results := make([]CumulativeTotal, 0, len(keys))
	for _, k := range keys {
		results = append(results, *totals[k])
	}
	return results
}
