package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace defines workspace-relative paths for QPRO operations.
type Workspace struct {
	Root         string
	PlanDir      string
	ReportsDir   string
	ContribDir   string
	ArtifactsDir string
	AuditDir     string
	AuditDBPath  string
	StateDBPath  string
}

// Resolve expands and validates the workspace root, ensuring it exists.
func Resolve(root string) (*Workspace, error) {
	abs, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", abs)
	}
	return newWorkspace(abs), nil
}

// ResolveRoot resolves the workspace root without requiring it to exist.
func ResolveRoot(root string) (string, error) {
	return resolveRoot(root)
}

// EnsureDirs creates standard workspace directories for artifacts and audit data.
func (w *Workspace) EnsureDirs() error {
	if w == nil {
		return fmt.Errorf("workspace is nil")
	}
	dirs := []string{
		w.ArtifactsDir,
		w.AuditDir,
		filepath.Join(w.ArtifactsDir, "analyses"),
		filepath.Join(w.ArtifactsDir, "proposals"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure %s: %w", dir, err)
		}
	}
	return nil
}

// Starter documents written by Init. Both parse cleanly, so every command
// works against a fresh workspace.
const starterPlan = `{
  "kras": [
    {
      "kra_id": "KRA1",
      "title": "Instruction",
      "initiatives": [
        {
          "initiative_id": "KRA1-KPI1",
          "outputs": "Number of training programs conducted",
          "targets": {
            "type": "count",
            "timeline_data": [
              {"year": 2025, "target_value": 4},
              {"year": 2026, "target_value": 6}
            ]
          }
        }
      ]
    }
  ]
}
`

const starterSheet = `contributions:
  - initiative_id: KRA1-KPI1
    kra_id: KRA1
    unit_id: CAS
    year: 2025
    quarter: 1
    reported: 1
    target: 1
`

// Init scaffolds a new workspace at root, creating the standard directory
// layout and starter documents. Existing files are left untouched.
func Init(root string) (*Workspace, error) {
	abs, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	w := newWorkspace(abs)

	dirs := []string{
		w.Root,
		w.PlanDir,
		w.ReportsDir,
		w.ContribDir,
		w.ArtifactsDir,
		w.AuditDir,
		filepath.Join(w.ArtifactsDir, "analyses"),
		filepath.Join(w.ArtifactsDir, "proposals"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure %s: %w", dir, err)
		}
	}

	seeds := map[string]string{
		filepath.Join(w.PlanDir, "kra1.json"):    starterPlan,
		filepath.Join(w.ContribDir, "sheet.yml"): starterSheet,
	}
	for path, content := range seeds {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
	}

	return w, nil
}

// ResolvePath returns an absolute path, resolving relative paths from the workspace root.
func (w *Workspace) ResolvePath(path string) (string, error) {
	if w == nil {
		return "", fmt.Errorf("workspace is nil")
	}
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded), nil
	}
	return filepath.Abs(filepath.Join(w.Root, expanded))
}

func newWorkspace(root string) *Workspace {
	return &Workspace{
		Root:         root,
		PlanDir:      filepath.Join(root, "plan"),
		ReportsDir:   filepath.Join(root, "reports"),
		ContribDir:   filepath.Join(root, "contrib"),
		ArtifactsDir: filepath.Join(root, "artifacts"),
		AuditDir:     filepath.Join(root, "audit"),
		AuditDBPath:  filepath.Join(root, "audit", "audit.sqlite"),
		StateDBPath:  filepath.Join(root, "audit", "qpro.sqlite"),
	}
}

func resolveRoot(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", fmt.Errorf("workspace root is required")
	}
	expanded, err := expandHome(root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}
	return abs, nil
}

func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:]), nil
	}
	return "", fmt.Errorf("unsupported home expansion: %s", path)
}
