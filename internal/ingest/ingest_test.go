package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeSheet(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSheetProviderAliasMapping(t *testing.T) {
	// Three offices, three spellings for the same columns.
	path := writeSheet(t, `contributions:
  - kpi_id: KRA1-KPI1
    kra: KRA1
    office: CAS
    year: 2025
    qtr: 1
    accomplishment: 12
    target_value: 15
  - initiative: KRA1-KPI1
    unit: COE
    year: 2025
    period: 1
    value: "9"
    target: 10
  - initiative_id: KRA1-KPI1
    campus: Main
    year: 2025
    quarter: 1
    reported: done
    type: Milestone
`)

	provider := &SheetProvider{Path: path}
	got, err := provider.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	want := []Contribution{
		{InitiativeID: "KRA1-KPI1", KRAID: "KRA1", UnitID: "CAS", Year: 2025, Quarter: 1, Reported: "12", Target: "15"},
		{InitiativeID: "KRA1-KPI1", UnitID: "COE", Year: 2025, Quarter: 1, Reported: "9", Target: "10"},
		{InitiativeID: "KRA1-KPI1", UnitID: "Main", Year: 2025, Quarter: 1, Reported: "done", DataType: "Milestone"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("contributions mismatch (-want +got):\n%s", diff)
	}
}

func TestSheetProviderBareList(t *testing.T) {
	path := writeSheet(t, `- kpi: KRA2-KPI1
  year: 2026
  quarter: 2
  actual: 4
`)

	got, err := (&SheetProvider{Path: path}).Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 1 || got[0].InitiativeID != "KRA2-KPI1" || got[0].Reported != "4" {
		t.Fatalf("got %+v", got)
	}
}

func TestSheetProviderSkipsRowsWithoutInitiative(t *testing.T) {
	path := writeSheet(t, `contributions:
  - unit: CAS
    year: 2025
    reported: 7
  - kpi_id: KRA1-KPI2
    year: 2025
    reported: 3
`)

	got, err := (&SheetProvider{Path: path}).Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 1 || got[0].InitiativeID != "KRA1-KPI2" {
		t.Fatalf("got %+v, want only the identified row", got)
	}
}

func TestSheetProviderBadYear(t *testing.T) {
	path := writeSheet(t, `contributions:
  - kpi_id: KRA1-KPI1
    year: twenty
`)

	_, err := (&SheetProvider{Path: path}).Collect(context.Background())
	if err == nil {
		t.Fatal("expected error for non-integer year")
	}
}

func TestSheetProviderMissingFileIsEmpty(t *testing.T) {
	got, err := (&SheetProvider{Path: filepath.Join(t.TempDir(), "absent.yml")}).Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil for missing sheet", got)
	}
}

func TestCanonicalizeSortsAndDrops(t *testing.T) {
	in := []Contribution{
		{InitiativeID: " KRA1-KPI2 ", Year: 2025, Quarter: 1, Reported: " 5 "},
		{InitiativeID: "", Reported: "orphan"},
		{InitiativeID: "KRA1-KPI1", Year: 2025, Quarter: 2, Reported: "3"},
		{InitiativeID: "KRA1-KPI1", Year: 2025, Quarter: 1, Reported: "2", DataType: " Count "},
	}

	got := Canonicalize(in)
	want := []Contribution{
		{InitiativeID: "KRA1-KPI1", Year: 2025, Quarter: 1, Reported: "2", DataType: "count"},
		{InitiativeID: "KRA1-KPI1", Year: 2025, Quarter: 2, Reported: "3"},
		{InitiativeID: "KRA1-KPI2", Year: 2025, Quarter: 1, Reported: "5"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("canonicalize mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterPeriod(t *testing.T) {
	rows := []Contribution{
		{InitiativeID: "KRA1-KPI1", Year: 2025, Quarter: 1},
		{InitiativeID: "KRA1-KPI1", Year: 2025, Quarter: 2},
		{InitiativeID: "KRA1-KPI1", Year: 2026, Quarter: 1},
		{InitiativeID: "KRA1-KPI2", Year: 2025, Quarter: 1},
	}

	if got := FilterPeriod(rows, "KRA1-KPI1", 2025, 1); len(got) != 1 {
		t.Fatalf("exact period = %+v, want 1 row", got)
	}
	// Zero means any.
	if got := FilterPeriod(rows, "KRA1-KPI1", 2025, 0); len(got) != 2 {
		t.Fatalf("year only = %+v, want 2 rows", got)
	}
	if got := FilterPeriod(rows, "KRA1-KPI1", 0, 0); len(got) != 3 {
		t.Fatalf("all periods = %+v, want 3 rows", got)
	}
}

type staticProvider struct {
	name string
	rows []Contribution
}

func (p staticProvider) Name() string { return p.name }
func (p staticProvider) Collect(ctx context.Context) ([]Contribution, error) {
	return p.rows, nil
}

func TestCollectAllMergesAndCanonicalizes(t *testing.T) {
	a := staticProvider{name: "a", rows: []Contribution{{InitiativeID: "KRA1-KPI2", Year: 2025}}}
	b := staticProvider{name: "b", rows: []Contribution{{InitiativeID: "KRA1-KPI1", Year: 2025}}}

	got, err := CollectAll(context.Background(), []Provider{a, nil, b})
	if err != nil {
		t.Fatalf("collect all: %v", err)
	}
	if len(got) != 2 || got[0].InitiativeID != "KRA1-KPI1" {
		t.Fatalf("got %+v, want sorted merge of both providers", got)
	}
}
