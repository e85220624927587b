package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qpro/integration/harness"
)

// TestPipelineSmoke walks the full reporting flow against a minimal
// workspace: import contributions, recompute an aggregate, fold cumulative
// progress, set and clear an override, and analyze a report document.
func TestPipelineSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	workspace := t.TempDir()
	runDir := t.TempDir()

	fixture := filepath.Join(harness.RepoRoot(t), "integration", "fixtures", "workspace-min")
	harness.SeedWorkspace(t, fixture, workspace)

	run := func(args ...string) (string, string) {
		t.Helper()
		stdout, stderr, code := harness.Run(t, binPath, runDir, append(args, "--workspace", workspace))
		if code != 0 {
			t.Fatalf("qpro %s exit code %d\nstdout:\n%s\nstderr:\n%s", strings.Join(args, " "), code, stdout, stderr)
		}
		return stdout, stderr
	}

	stdout, _ := run("plan", "validate")
	if !strings.Contains(stdout, "2 KRAs, 3 initiatives") {
		t.Fatalf("plan validate output:\n%s", stdout)
	}

	stdout, _ = run("contrib", "import", "--sheet", "contrib/sheet.yml")
	if !strings.Contains(stdout, "imported 3 contributions") {
		t.Fatalf("contrib import output:\n%s", stdout)
	}

	// Two units reported 3 and 1 against a plan target of 4 for 2025.
	stdout, _ = run("aggregate", "--kpi", "KRA1-KPI1", "--year", "2025", "--quarter", "1")
	if !strings.Contains(stdout, `"total_reported": 4`) {
		t.Fatalf("aggregate output:\n%s", stdout)
	}
	if !strings.Contains(stdout, `"achievement_percent": 100`) {
		t.Fatalf("aggregate output:\n%s", stdout)
	}

	run("aggregate", "--kpi", "KRA2-KPI1", "--year", "2025", "--quarter", "1")

	// KRA2-KPI1 declares a cumulative time scope; 2025 progress carries
	// into the 2026 query.
	stdout, _ = run("cumulative", "--kpi", "KRA2-KPI1", "--year", "2026")
	if !strings.Contains(stdout, `"cumulative": true`) {
		t.Fatalf("cumulative output:\n%s", stdout)
	}
	if !strings.Contains(stdout, `"running_total": 2`) {
		t.Fatalf("cumulative output:\n%s", stdout)
	}

	stdout, _ = run("override", "set", "--kpi", "KRA1-KPI1", "--year", "2025", "--quarter", "1", "--value", "7")
	if !strings.Contains(stdout, "override set") {
		t.Fatalf("override set output:\n%s", stdout)
	}
	stdout, _ = run("override", "clear", "--kpi", "KRA1-KPI1", "--year", "2025", "--quarter", "1")
	if !strings.Contains(stdout, "override cleared") {
		t.Fatalf("override clear output:\n%s", stdout)
	}

	stdout, _ = run("analyze", "--input", "reports/q1.txt")
	if !strings.Contains(stdout, `"document_type": "narrative"`) {
		t.Fatalf("analyze output:\n%s", stdout)
	}
	artifact := filepath.Join(workspace, "artifacts", "analyses", "q1.json")
	if _, err := os.Stat(artifact); err != nil {
		t.Fatalf("analysis artifact not written at %s: %v", artifact, err)
	}

	auditPath := filepath.Join(workspace, "audit", "audit.sqlite")
	requireAuditEvents(t, auditPath, []string{
		"contributions_imported",
		"aggregate_recomputed",
		"override_set",
		"override_cleared",
		"document_analyzed",
	})

	// Nothing may leak into the engine repo itself.
	for _, stray := range []string{
		filepath.Join(harness.RepoRoot(t), "audit", "audit.sqlite"),
		filepath.Join(harness.RepoRoot(t), "artifacts"),
	} {
		if _, err := os.Stat(stray); err == nil {
			t.Fatalf("stray engine repo path: %s", stray)
		} else if !os.IsNotExist(err) {
			t.Fatalf("stat %s: %v", stray, err)
		}
	}
}
