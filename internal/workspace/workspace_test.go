package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitScaffoldsWorkspace(t *testing.T) {
	root := filepath.Join(t.TempDir(), "ws")

	w, err := Init(root)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, path := range []string{
		w.PlanDir,
		w.ReportsDir,
		w.ContribDir,
		filepath.Join(w.ArtifactsDir, "analyses"),
		filepath.Join(w.ArtifactsDir, "proposals"),
		w.AuditDir,
		filepath.Join(w.PlanDir, "kra1.json"),
		filepath.Join(w.ContribDir, "sheet.yml"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing %s: %v", path, err)
		}
	}
}

func TestInitKeepsExistingFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "ws")
	if _, err := Init(root); err != nil {
		t.Fatalf("first init: %v", err)
	}

	seed := filepath.Join(root, "plan", "kra1.json")
	if err := os.WriteFile(seed, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Init(root); err != nil {
		t.Fatalf("second init: %v", err)
	}

	data, err := os.ReadFile(seed)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Fatalf("init overwrote existing plan document")
	}
}

func TestResolveRequiresExistingDir(t *testing.T) {
	if _, err := Resolve(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing workspace root")
	}
}

func TestResolvePathRelativeToRoot(t *testing.T) {
	root := t.TempDir()
	w, err := Resolve(root)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	got, err := w.ResolvePath("reports/q1.txt")
	if err != nil {
		t.Fatalf("resolve path: %v", err)
	}
	want := filepath.Join(root, "reports", "q1.txt")
	if got != want {
		t.Fatalf("resolved %q, want %q", got, want)
	}

	abs := filepath.Join(root, "elsewhere.txt")
	if got, err := w.ResolvePath(abs); err != nil || got != abs {
		t.Fatalf("absolute path = %q,%v, want %q", got, err, abs)
	}
}
