package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validPlanJSON = `{
  "kras": [
    {
      "kra_id": "KRA1",
      "title": "Instruction and Quality Education",
      "guiding_principle": "Quality graduates",
      "initiatives": [
        {
          "initiative_id": "KRA1-KPI1",
          "outputs": "Number of accredited programs",
          "targets": {
            "type": "count",
            "timeline_data": [
              {"year": 2025, "target_value": 5},
              {"year": 2026, "target_value": "7"},
              {"year": 2027, "target_value": "N/A"}
            ]
          }
        }
      ]
    }
  ]
}`

func writePlan(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadFromDir(t *testing.T) {
	dir := writePlan(t, "kra1.json", validPlanJSON)

	store, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	rec, ok := store.InitiativeLookup("KRA1-KPI1")
	if !ok {
		t.Fatal("initiative not found")
	}
	if rec.KRA.ID != "KRA1" {
		t.Fatalf("parent KRA = %q, want KRA1", rec.KRA.ID)
	}
	if got, want := store.TerminalYear(), 2027; got != want {
		t.Fatalf("terminal year = %d, want %d", got, want)
	}
	if got, want := rec.Initiative.Targets.Type, "count"; got != want {
		t.Fatalf("type hint = %q, want %q", got, want)
	}
}

func TestLoadFromDirAggregatesValidationErrors(t *testing.T) {
	dir := writePlan(t, "bad.json", `{
  "kras": [
    {
      "kra_id": "",
      "title": "",
      "initiatives": [
        {"initiative_id": "", "targets": {"timeline_data": []}}
      ]
    }
  ]
}`)

	_, err := LoadFromDir(dir)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	vErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("error type = %T, want ValidationErrors", err)
	}
	if len(vErrs) < 3 {
		t.Fatalf("got %d errors, want several:\n%s", len(vErrs), vErrs.Error())
	}
}

func TestParseAndValidateDocumentRejectsUnknownFields(t *testing.T) {
	_, err := ParseAndValidateDocument([]byte(`{"kras": [], "extra": true}`), "x.json")
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestCrossDocumentDuplicateInitiative(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(validPlanJSON), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	_, err := LoadFromDir(dir)
	if err == nil {
		t.Fatal("expected duplicate id errors")
	}
	if !strings.Contains(err.Error(), "already defined") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTargetValueForYearExactAndFallback(t *testing.T) {
	timeline := []TimelineDatum{
		{Year: 2025, Value: "10"},
		{Year: 2027, Value: "30"},
	}

	if v, ok := TargetValueForYear(timeline, 2025); !ok || v != 10 {
		t.Fatalf("2025 = %v,%v, want 10,true", v, ok)
	}
	// Nearest prior year wins for gaps.
	if v, ok := TargetValueForYear(timeline, 2026); !ok || v != 10 {
		t.Fatalf("2026 = %v,%v, want 10,true", v, ok)
	}
	// Beyond known data falls back to the latest prior year.
	if v, ok := TargetValueForYear(timeline, 2029); !ok || v != 30 {
		t.Fatalf("2029 = %v,%v, want 30,true", v, ok)
	}
}

func TestTargetValueForYearFutureFallback(t *testing.T) {
	timeline := []TimelineDatum{{Year: 2029, Value: "100"}}

	if v, ok := TargetValueForYear(timeline, 2025); !ok || v != 100 {
		t.Fatalf("2025 = %v,%v, want 100,true (future fallback)", v, ok)
	}
	if v, ok := TargetValueForYear(timeline, 2030); !ok || v != 100 {
		t.Fatalf("2030 = %v,%v, want 100,true (past fallback)", v, ok)
	}
}

func TestTargetValueForYearNonNumeric(t *testing.T) {
	timeline := []TimelineDatum{{Year: 2025, Value: "ISO certified"}}
	if _, ok := TargetValueForYear(timeline, 2025); ok {
		t.Fatal("milestone-only timeline should not resolve numerically")
	}
	if _, ok := TargetValueForYear(nil, 2025); ok {
		t.Fatal("empty timeline should not resolve")
	}
}

func TestNumericValueTolerantParsing(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,500", 1500, true},
		{"85%", 85, true},
		{" 12.5 ", 12.5, true},
		{"established", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := TimelineDatum{Value: tc.in}.NumericValue()
		if ok != tc.ok || got != tc.want {
			t.Fatalf("NumericValue(%q) = %v,%v, want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestVerifyFlagsNamespaceMismatch(t *testing.T) {
	dir := writePlan(t, "kra2.json", `{
  "kras": [
    {
      "kra_id": "KRA2",
      "title": "Research",
      "initiatives": [
        {
          "initiative_id": "KRA3-KPI5",
          "outputs": "Number of publications",
          "targets": {
            "timeline_data": [{"year": 2025, "target_value": 4}]
          }
        }
      ]
    }
  ]
}`)

	store, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	findings := Verify(store)
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1: %v", len(findings), findings)
	}
	f := findings[0]
	if f.Kind != FindingIDMismatch {
		t.Fatalf("kind = %q, want %q", f.Kind, FindingIDMismatch)
	}
	if f.InitiativeID != "KRA3-KPI5" || f.KRAID != "KRA2" {
		t.Fatalf("finding = %+v", f)
	}
}

func TestVerifyFlagsTimelineWithoutNumericTargets(t *testing.T) {
	// Every entry is text the target resolver cannot use, so the
	// initiative can never resolve a target for any year.
	dir := writePlan(t, "kra4.json", `{
  "kras": [
    {
      "kra_id": "KRA4",
      "title": "Governance",
      "initiatives": [
        {
          "initiative_id": "KRA4-KPI1",
          "outputs": "ISO certification maintained",
          "targets": {
            "timeline_data": [
              {"year": 2025, "target_value": "N/A"},
              {"year": 2026, "target_value": "N/A"}
            ]
          }
        }
      ]
    }
  ]
}`)

	store, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	findings := Verify(store)
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1: %v", len(findings), findings)
	}
	if findings[0].Kind != FindingNoNumericTarget {
		t.Fatalf("kind = %q, want %q", findings[0].Kind, FindingNoNumericTarget)
	}
	if findings[0].InitiativeID != "KRA4-KPI1" {
		t.Fatalf("finding = %+v", findings[0])
	}
}

func TestVerifyWithHorizonFlagsOutOfRangeYear(t *testing.T) {
	dir := writePlan(t, "kra1.json", validPlanJSON)
	store, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	findings := VerifyWithHorizon(store, 2026, 2029)
	found := false
	for _, f := range findings {
		if f.Kind == FindingYearOutOfRange {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a %s finding, got %v", FindingYearOutOfRange, findings)
	}
}
