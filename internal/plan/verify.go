package plan

import (
	"fmt"
	"regexp"
	"sort"
)

// Finding is a data-integrity issue discovered by an offline verification
// pass. Findings are advisory: the plan still loads and the pipeline still
// runs, but an operator should correct the source document.
type Finding struct {
	KRAID        string `json:"kra_id"`
	InitiativeID string `json:"initiative_id,omitempty"`
	Kind         string `json:"kind"`
	Message      string `json:"message"`
}

const (
	FindingIDMismatch      = "id_namespace_mismatch"
	FindingNoNumericTarget = "no_numeric_target"
	FindingYearOutOfRange  = "year_outside_horizon"
)

var initiativeIDPattern = regexp.MustCompile(`^KRA(\d+)-KPI(\d+)$`)
var kraIDPattern = regexp.MustCompile(`^KRA(\d+)$`)

// Verify runs the offline integrity checks over a loaded plan: initiative
// ids must be namespaced by their parent KRA, every initiative needs at
// least one numeric target the resolver can use, and timeline years must
// fall inside the plan horizon. The horizon is derived from the data, so the
// year check only fires when callers pass an explicit horizon via
// VerifyWithHorizon.
func Verify(store *Store) []Finding {
	start, end := horizon(store)
	return VerifyWithHorizon(store, start, end)
}

// VerifyWithHorizon runs the same checks against an explicitly declared
// plan period (e.g. 2025-2029).
func VerifyWithHorizon(store *Store, horizonStart, horizonEnd int) []Finding {
	if store == nil {
		return nil
	}

	var findings []Finding

	for _, doc := range store.Documents {
		for _, kra := range doc.KRAs {
			kraNum := ""
			if m := kraIDPattern.FindStringSubmatch(kra.ID); m != nil {
				kraNum = m[1]
			}

			for _, init := range kra.Initiatives {
				if m := initiativeIDPattern.FindStringSubmatch(init.ID); m == nil {
					findings = append(findings, Finding{
						KRAID:        kra.ID,
						InitiativeID: init.ID,
						Kind:         FindingIDMismatch,
						Message:      fmt.Sprintf("initiative id %q does not match KRA{n}-KPI{m}", init.ID),
					})
				} else if kraNum != "" && m[1] != kraNum {
					findings = append(findings, Finding{
						KRAID:        kra.ID,
						InitiativeID: init.ID,
						Kind:         FindingIDMismatch,
						Message:      fmt.Sprintf("initiative %q is filed under %s", init.ID, kra.ID),
					})
				}

				hasNumeric := false
				for _, datum := range init.Targets.Timeline {
					if _, ok := datum.NumericValue(); ok {
						hasNumeric = true
					}
					if datum.Year < horizonStart || datum.Year > horizonEnd {
						findings = append(findings, Finding{
							KRAID:        kra.ID,
							InitiativeID: init.ID,
							Kind:         FindingYearOutOfRange,
							Message:      fmt.Sprintf("timeline year %d outside plan horizon %d-%d", datum.Year, horizonStart, horizonEnd),
						})
					}
				}
				if !hasNumeric {
					findings = append(findings, Finding{
						KRAID:        kra.ID,
						InitiativeID: init.ID,
						Kind:         FindingNoNumericTarget,
						Message:      "timeline has no numeric target values",
					})
				}
			}
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		a := findings[i]
		b := findings[j]
		if a.KRAID != b.KRAID {
			return a.KRAID < b.KRAID
		}
		if a.InitiativeID != b.InitiativeID {
			return a.InitiativeID < b.InitiativeID
		}
		return a.Kind < b.Kind
	})

	return findings
}

// horizon derives the plan's year span from the data itself.
func horizon(store *Store) (int, int) {
	start := 0
	end := 0
	for _, doc := range store.Documents {
		for _, kra := range doc.KRAs {
			for _, init := range kra.Initiatives {
				for _, datum := range init.Targets.Timeline {
					if start == 0 || datum.Year < start {
						start = datum.Year
					}
					if datum.Year > end {
						end = datum.Year
					}
				}
			}
		}
	}
	if start == 0 {
		return 0, 0
	}
	return start, end
}
