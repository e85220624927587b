package aggregate

import (
	"os"
	"path/filepath"
	"testing"

	"qpro/internal/plan"
)

func loadPlanFixture(t *testing.T, doc string) *plan.Store {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := plan.LoadFile(path)
	if err != nil {
		t.Fatalf("load plan fixture: %v", err)
	}
	return store
}

const cumulativePlanJSON = `{
  "kras": [
    {
      "kra_id": "KRA1",
      "title": "Instruction",
      "initiatives": [
        {
          "initiative_id": "KRA1-KPI1",
          "outputs": "Number of curricula revised",
          "targets": {
            "target_time_scope": "cumulative",
            "timeline_data": [
              {"year": 2025, "target_value": 2},
              {"year": 2026, "target_value": 4}
            ]
          }
        },
        {
          "initiative_id": "KRA1-KPI2",
          "outputs": "Number of new programs offered",
          "targets": {
            "timeline_data": [
              {"year": 2029, "target_value": 10}
            ]
          }
        },
        {
          "initiative_id": "KRA1-KPI3",
          "outputs": "Number of laboratories maintained",
          "targets": {
            "timeline_data": [
              {"year": 2025, "target_value": 5},
              {"year": 2026, "target_value": 5},
              {"year": 2027, "target_value": 5}
            ]
          }
        },
        {
          "initiative_id": "KRA1-KPI4",
          "outputs": "Licensure passing rate of graduates",
          "targets": {
            "timeline_data": [
              {"year": 2025, "target_value": 80},
              {"year": 2026, "target_value": 90},
              {"year": 2027, "target_value": 100}
            ]
          }
        },
        {
          "initiative_id": "KRA1-KPI5",
          "outputs": "Number of trainings conducted",
          "targets": {
            "target_time_scope": "annual",
            "timeline_data": [
              {"year": 2025, "target_value": 3},
              {"year": 2026, "target_value": 3}
            ]
          }
        },
        {
          "initiative_id": "KRA1-KPI6",
          "outputs": "ISO-certified quality management system established",
          "targets": {
            "timeline_data": [
              {"year": 2025, "target_value": 1},
              {"year": 2026, "target_value": 2}
            ]
          }
        }
      ]
    }
  ]
}`

func TestIsCumulativeTarget(t *testing.T) {
	store := loadPlanFixture(t, cumulativePlanJSON)

	cases := []struct {
		id   string
		want bool
		why  string
	}{
		{"KRA1-KPI1", true, "explicit cumulative flag"},
		{"KRA1-KPI2", true, "single entry at terminal year"},
		{"KRA1-KPI3", true, "identical values across years"},
		{"KRA1-KPI4", true, "rate climbing to 100"},
		{"KRA1-KPI5", false, "explicit annual flag"},
		{"KRA1-KPI6", true, "cumulative keyword in outputs"},
	}

	for _, tc := range cases {
		if got := IsCumulativeTarget(store, "KRA1", tc.id); got != tc.want {
			t.Fatalf("%s (%s): cumulative = %v, want %v", tc.id, tc.why, got, tc.want)
		}
	}
}

func TestIsCumulativeTargetUnknownInitiative(t *testing.T) {
	store := loadPlanFixture(t, cumulativePlanJSON)
	if IsCumulativeTarget(store, "KRA1", "KRA1-KPI99") {
		t.Fatal("unknown initiative should not be cumulative")
	}
	if IsCumulativeTarget(store, "KRA9", "KRA1-KPI1") {
		t.Fatal("mismatched KRA should not be cumulative")
	}
}

func ptr(v float64) *float64 { return &v }

func TestFoldCumulativePreservesPriorProgress(t *testing.T) {
	rows := []Row{
		{KRAID: "KRA1", InitiativeID: "KRA1-KPI1", Year: 2025, Quarter: 1, ManualOverride: ptr(40)},
		{KRAID: "KRA1", InitiativeID: "KRA1-KPI1", Year: 2026, Quarter: 1, ManualOverride: ptr(0)},
	}

	totals := FoldCumulative(rows, 2026)
	if len(totals) != 1 {
		t.Fatalf("totals len = %d, want 1", len(totals))
	}
	got := totals[0]
	if got.RunningTotal != 40 {
		t.Fatalf("running total = %v, want 40 (current-year zero must not erase prior progress)", got.RunningTotal)
	}
	if len(got.ContributingYears) != 1 || got.ContributingYears[0] != 2025 {
		t.Fatalf("contributing years = %v, want [2025]", got.ContributingYears)
	}
}

func TestFoldCumulativePriorYearZeroStillContributes(t *testing.T) {
	rows := []Row{
		{KRAID: "KRA1", InitiativeID: "KRA1-KPI1", Year: 2025, Quarter: 2, ManualOverride: ptr(0)},
		{KRAID: "KRA1", InitiativeID: "KRA1-KPI1", Year: 2026, Quarter: 2, ManualOverride: ptr(15)},
	}

	totals := FoldCumulative(rows, 2026)
	if len(totals) != 1 {
		t.Fatalf("totals len = %d, want 1", len(totals))
	}
	got := totals[0]
	if got.RunningTotal != 15 {
		t.Fatalf("running total = %v, want 15", got.RunningTotal)
	}
	if len(got.ContributingYears) != 2 {
		t.Fatalf("contributing years = %v, want prior zero year counted", got.ContributingYears)
	}
}

func TestFoldCumulativeGroupsByQuarterAndSkipsFutureYears(t *testing.T) {
	rows := []Row{
		{KRAID: "KRA1", InitiativeID: "KRA1-KPI1", Year: 2025, Quarter: 1, TotalReported: 10},
		{KRAID: "KRA1", InitiativeID: "KRA1-KPI1", Year: 2025, Quarter: 2, TotalReported: 20},
		{KRAID: "KRA1", InitiativeID: "KRA1-KPI1", Year: 2026, Quarter: 1, TotalReported: 5},
		{KRAID: "KRA1", InitiativeID: "KRA1-KPI1", Year: 2027, Quarter: 1, TotalReported: 99},
	}

	totals := FoldCumulative(rows, 2026)
	if len(totals) != 2 {
		t.Fatalf("totals len = %d, want 2", len(totals))
	}
	byQuarter := make(map[int]CumulativeTotal)
	for _, total := range totals {
		byQuarter[total.Quarter] = total
	}
	if got := byQuarter[1].RunningTotal; got != 15 {
		t.Fatalf("Q1 running total = %v, want 15", got)
	}
	if got := byQuarter[2].RunningTotal; got != 20 {
		t.Fatalf("Q2 running total = %v, want 20", got)
	}
}

func TestFoldCumulativeOverrideTakesPrecedence(t *testing.T) {
	rows := []Row{
		{KRAID: "KRA1", InitiativeID: "KRA1-KPI1", Year: 2025, Quarter: 1, TotalReported: 10, ManualOverride: ptr(7)},
		{KRAID: "KRA1", InitiativeID: "KRA1-KPI1", Year: 2026, Quarter: 1, TotalReported: 3},
	}

	totals := FoldCumulative(rows, 2026)
	if got := totals[0].RunningTotal; got != 10 {
		t.Fatalf("running total = %v, want 10 (7 override + 3 computed)", got)
	}
}
