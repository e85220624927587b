package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"qpro/internal/aggregate"
	"qpro/internal/audit"
	"qpro/internal/classify"
	"qpro/internal/extract"
	"qpro/internal/ingest"
	"qpro/internal/plan"
	"qpro/internal/report"
	"qpro/internal/store"
	"qpro/internal/workspace"
)

const appName = "qpro"

func main() {
	flag.String("workspace", "", "Path to workspace root")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s: quarterly physical report of operations toolkit\n\n", appName)
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [command] [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  init        Scaffold a new workspace")
		fmt.Fprintln(os.Stderr, "  plan        Manage the strategic plan")
		fmt.Fprintln(os.Stderr, "  analyze     Analyze a report document")
		fmt.Fprintln(os.Stderr, "  contrib     Manage contributions")
		fmt.Fprintln(os.Stderr, "  aggregate   Recompute a KPI-period aggregate")
		fmt.Fprintln(os.Stderr, "  cumulative  Fold cumulative progress for a KPI")
		fmt.Fprintln(os.Stderr, "  override    Manage manual overrides")
		fmt.Fprintln(os.Stderr, "  help        Show this help")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	workspacePath, remaining, err := extractWorkspaceFlag(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args := remaining
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		flag.Usage()
		return
	}

	var runErr error
	switch args[0] {
	case "init":
		runErr = runInit(args[1:], workspacePath)
	case "plan":
		runErr = runPlan(args[1:], workspacePath)
	case "analyze":
		runErr = runAnalyze(args[1:], workspacePath)
	case "contrib":
		runErr = runContrib(args[1:], workspacePath)
	case "aggregate":
		runErr = runAggregate(args[1:], workspacePath)
	case "cumulative":
		runErr = runCumulative(args[1:], workspacePath)
	case "override":
		runErr = runOverride(args[1:], workspacePath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}

func extractWorkspaceFlag(args []string) (string, []string, error) {
	var workspacePath string
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--workspace" {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--workspace requires a value")
			}
			workspacePath = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--workspace=") {
			workspacePath = strings.TrimPrefix(arg, "--workspace=")
			continue
		}
		remaining = append(remaining, arg)
	}
	return workspacePath, remaining, nil
}

type workspaceOverrides struct {
	PlanDir string
	AuditDB string
	StateDB string
}

type resolvedWorkspace struct {
	Workspace *workspace.Workspace
	PlanDir   string
	AuditDB   string
	StateDB   string
}

func resolveWorkspaceAndOverrides(root string, overrides workspaceOverrides) (*resolvedWorkspace, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("--workspace is required")
	}
	ws, err := workspace.Resolve(root)
	if err != nil {
		return nil, err
	}
	resolved := &resolvedWorkspace{Workspace: ws}
	resolved.PlanDir = ws.PlanDir
	resolved.AuditDB = ws.AuditDBPath
	resolved.StateDB = ws.StateDBPath

	if overrides.PlanDir != "" {
		resolved.PlanDir, err = ws.ResolvePath(overrides.PlanDir)
		if err != nil {
			return nil, fmt.Errorf("resolve --plan-dir: %w", err)
		}
	}
	if overrides.AuditDB != "" {
		resolved.AuditDB, err = ws.ResolvePath(overrides.AuditDB)
		if err != nil {
			return nil, fmt.Errorf("resolve --audit-db: %w", err)
		}
	}
	if overrides.StateDB != "" {
		resolved.StateDB, err = ws.ResolvePath(overrides.StateDB)
		if err != nil {
			return nil, fmt.Errorf("resolve --db: %w", err)
		}
	}
	return resolved, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runInit(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(workspacePath) == "" {
		return fmt.Errorf("--workspace is required")
	}

	ws, err := workspace.Init(workspacePath)
	if err != nil {
		return err
	}

	logger := audit.NewLogger(ws.AuditDBPath)
	if err := logger.LogEvent("cli", "workspace_initialized", map[string]any{
		"root": ws.Root,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	fmt.Printf("initialized workspace at %s\n", ws.Root)
	return nil
}

func runPlan(args []string, workspacePath string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		return fmt.Errorf("%s plan: missing subcommand (validate, verify, propose, apply)", appName)
	}

	switch args[0] {
	case "validate":
		return runPlanValidate(args[1:], workspacePath)
	case "verify":
		return runPlanVerify(args[1:], workspacePath)
	case "propose":
		return runPlanPropose(args[1:], workspacePath)
	case "apply":
		return runPlanApply(args[1:], workspacePath)
	default:
		return fmt.Errorf("%s plan: unknown subcommand %q", appName, args[0])
	}
}

func runPlanValidate(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("plan validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	planDir := fs.String("plan-dir", "", "Strategic plan directory (default: <workspace>/plan)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := resolveWorkspaceAndOverrides(workspacePath, workspaceOverrides{PlanDir: *planDir})
	if err != nil {
		return err
	}

	planStore, err := plan.LoadFromDir(resolved.PlanDir)
	if err != nil {
		return err
	}

	fmt.Printf("plan OK: %d KRAs, %d initiatives, terminal year %d\n",
		len(planStore.ListKRAIDs()), len(planStore.ListInitiativeIDs()), planStore.TerminalYear())
	return nil
}

func runPlanVerify(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("plan verify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	planDir := fs.String("plan-dir", "", "Strategic plan directory (default: <workspace>/plan)")
	horizonStart := fs.Int("horizon-start", 0, "Declared first plan year (default: derived)")
	horizonEnd := fs.Int("horizon-end", 0, "Declared final plan year (default: derived)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := resolveWorkspaceAndOverrides(workspacePath, workspaceOverrides{PlanDir: *planDir})
	if err != nil {
		return err
	}

	planStore, err := plan.LoadFromDir(resolved.PlanDir)
	if err != nil {
		return err
	}

	var findings []plan.Finding
	if *horizonStart != 0 && *horizonEnd != 0 {
		findings = plan.VerifyWithHorizon(planStore, *horizonStart, *horizonEnd)
	} else {
		findings = plan.Verify(planStore)
	}

	logger := audit.NewLogger(resolved.AuditDB)
	if err := logger.LogEvent("cli", "plan_verified", map[string]any{
		"plan_dir": resolved.PlanDir,
		"findings": len(findings),
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	if len(findings) == 0 {
		fmt.Println("no integrity findings")
		return nil
	}
	return printJSON(findings)
}

func runPlanPropose(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("plan propose", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	submitter := fs.String("submitter", "", "Submitter id")
	updatesDir := fs.String("updates", "", "Directory holding updated plan documents")
	planDir := fs.String("plan-dir", "", "Strategic plan directory (default: <workspace>/plan)")
	note := fs.String("note", "", "Optional note")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := resolveWorkspaceAndOverrides(workspacePath, workspaceOverrides{PlanDir: *planDir})
	if err != nil {
		return err
	}
	if err := resolved.Workspace.EnsureDirs(); err != nil {
		return err
	}

	absUpdates, err := resolved.Workspace.ResolvePath(*updatesDir)
	if err != nil {
		return fmt.Errorf("resolve updates dir: %w", err)
	}
	proposalsRoot := filepath.Join(resolved.Workspace.ArtifactsDir, "proposals")

	meta, err := plan.CreateProposal(*submitter, absUpdates, resolved.PlanDir, proposalsRoot, *note)
	if err != nil {
		return err
	}

	logger := audit.NewLogger(resolved.AuditDB)
	if err := logger.LogEvent(*submitter, "plan_proposal_created", map[string]any{
		"proposal_id":  meta.ID,
		"proposal_dir": meta.ProposalDir,
		"files":        meta.Files,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	return printJSON(meta)
}

func runPlanApply(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("plan apply", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	proposalDir := fs.String("proposal", "", "Proposal directory to apply")
	confirm := fs.Bool("i-understand", false, "Confirm applying the proposal to the live plan")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := resolveWorkspaceAndOverrides(workspacePath, workspaceOverrides{})
	if err != nil {
		return err
	}

	absProposal, err := resolved.Workspace.ResolvePath(*proposalDir)
	if err != nil {
		return fmt.Errorf("resolve proposal dir: %w", err)
	}

	meta, err := plan.ApplyProposal(absProposal, *confirm)
	if err != nil {
		return err
	}

	logger := audit.NewLogger(resolved.AuditDB)
	if err := logger.LogEvent(meta.SubmitterID, "plan_proposal_applied", map[string]any{
		"proposal_id": meta.ID,
		"plan_dir":    meta.PlanDir,
		"files":       meta.Files,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	fmt.Printf("applied proposal %s (%d files)\n", meta.ID, len(meta.Files))
	return nil
}

func runAnalyze(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	inputPath := fs.String("input", "", "Report text file to analyze")
	outPath := fs.String("out", "", "Artifact path (default: <workspace>/artifacts/analyses/<input>.json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := resolveWorkspaceAndOverrides(workspacePath, workspaceOverrides{})
	if err != nil {
		return err
	}
	if err := resolved.Workspace.EnsureDirs(); err != nil {
		return err
	}

	if *inputPath == "" {
		return fmt.Errorf("--input is required")
	}
	absInput, err := resolved.Workspace.ResolvePath(*inputPath)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	data, err := os.ReadFile(absInput)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	text := string(data)

	detection := extract.DetectSections(text)
	extraction := extract.ExtractSummaries(text)

	// Per-section passes refine section-scoped metrics; the document-level
	// pass stays authoritative for the prioritized value.
	summaries := extraction.Summaries
	for _, section := range detection.Sections {
		sectionResult := extract.ExtractFromSection(section.Content, section.Type)
		for _, s := range sectionResult.Summaries {
			if !containsSummary(summaries, s) {
				summaries = append(summaries, s)
			}
		}
	}

	analysis := report.Analysis{
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		Source:       absInput,
		DocumentType: detection.DocumentType,
		Sections:     detection.Sections,
		Summaries:    summaries,
		Prioritized:  extraction.Prioritized,
	}

	artifactPath := *outPath
	if artifactPath == "" {
		base := strings.TrimSuffix(filepath.Base(absInput), filepath.Ext(absInput))
		artifactPath = filepath.Join(resolved.Workspace.ArtifactsDir, "analyses", base+".json")
	} else {
		artifactPath, err = resolved.Workspace.ResolvePath(artifactPath)
		if err != nil {
			return fmt.Errorf("resolve artifact path: %w", err)
		}
	}
	if err := report.WriteAnalysis(artifactPath, analysis); err != nil {
		return err
	}

	logger := audit.NewLogger(resolved.AuditDB)
	if err := logger.LogEvent("cli", "document_analyzed", map[string]any{
		"input":          absInput,
		"artifact":       artifactPath,
		"document_type":  detection.DocumentType,
		"total_sections": detection.TotalSections,
		"total_metrics":  len(summaries),
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	return printJSON(analysis)
}

func containsSummary(summaries []extract.Summary, s extract.Summary) bool {
	for _, existing := range summaries {
		if existing.MetricType == s.MetricType && existing.MetricName == s.MetricName {
			return true
		}
	}
	return false
}

func runContrib(args []string, workspacePath string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		return fmt.Errorf("%s contrib: missing subcommand (import)", appName)
	}

	switch args[0] {
	case "import":
		return runContribImport(args[1:], workspacePath)
	default:
		return fmt.Errorf("%s contrib: unknown subcommand %q", appName, args[0])
	}
}

func runContribImport(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("contrib import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sheetPath := fs.String("sheet", "", "Contribution sheet YAML file")
	dbPath := fs.String("db", "", "State database path (default: <workspace>/audit/qpro.sqlite)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := resolveWorkspaceAndOverrides(workspacePath, workspaceOverrides{StateDB: *dbPath})
	if err != nil {
		return err
	}
	if err := resolved.Workspace.EnsureDirs(); err != nil {
		return err
	}

	if *sheetPath == "" {
		return fmt.Errorf("--sheet is required")
	}
	absSheet, err := resolved.Workspace.ResolvePath(*sheetPath)
	if err != nil {
		return fmt.Errorf("resolve sheet path: %w", err)
	}

	ctx := context.Background()
	records, err := ingest.CollectAll(ctx, []ingest.Provider{&ingest.SheetProvider{Path: absSheet}})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no contributions found in %s", absSheet)
	}

	db, err := store.Open(resolved.StateDB)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, record := range records {
		if err := db.InsertContribution(ctx, record); err != nil {
			return err
		}
	}

	logger := audit.NewLogger(resolved.AuditDB)
	if err := logger.LogEvent("cli", "contributions_imported", map[string]any{
		"sheet": absSheet,
		"count": len(records),
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	fmt.Printf("imported %d contributions\n", len(records))
	return nil
}

func runAggregate(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("aggregate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	kpiID := fs.String("kpi", "", "Initiative id (e.g. KRA3-KPI5)")
	year := fs.Int("year", 0, "Reporting year")
	quarter := fs.Int("quarter", 0, "Reporting quarter (1-4)")
	units := fs.Float64("units", 0, "Unit multiplier for per-unit targets")
	planDir := fs.String("plan-dir", "", "Strategic plan directory (default: <workspace>/plan)")
	dbPath := fs.String("db", "", "State database path (default: <workspace>/audit/qpro.sqlite)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := resolveWorkspaceAndOverrides(workspacePath, workspaceOverrides{PlanDir: *planDir, StateDB: *dbPath})
	if err != nil {
		return err
	}
	if err := resolved.Workspace.EnsureDirs(); err != nil {
		return err
	}

	if *kpiID == "" {
		return fmt.Errorf("--kpi is required")
	}
	if *year == 0 {
		return fmt.Errorf("--year is required")
	}
	if *quarter < 1 || *quarter > 4 {
		return fmt.Errorf("--quarter must be 1-4")
	}

	planStore, err := plan.LoadFromDir(resolved.PlanDir)
	if err != nil {
		return err
	}
	rec, ok := planStore.InitiativeLookup(*kpiID)
	if !ok {
		return fmt.Errorf("unknown initiative %s", *kpiID)
	}

	classified := classify.ClassifyRecord(rec)
	for _, warning := range classified.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", warning)
	}

	targetValue, found := plan.TargetValueForYear(rec.Initiative.Targets.Timeline, *year)
	if !found {
		fmt.Fprintf(os.Stderr, "warning: no numeric target for %s in %d, achievement will be zero\n", *kpiID, *year)
	}

	db, err := store.Open(resolved.StateDB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	records, err := ingest.CollectAll(ctx, []ingest.Provider{
		&ingest.StoreProvider{Source: db, InitiativeID: *kpiID, Year: *year, Quarter: *quarter},
	})
	if err != nil {
		return err
	}

	activities := make([]aggregate.Activity, 0, len(records))
	for _, record := range records {
		activities = append(activities, aggregate.Activity{
			Reported: record.Reported,
			Target:   record.Target,
		})
	}

	achievement := aggregate.ComputeAchievement(aggregate.Input{
		TargetType:     string(classified.Type),
		TargetValue:    targetValue,
		TargetScope:    rec.Initiative.Targets.TargetScope,
		UnitMultiplier: *units,
		Activities:     activities,
	})

	row := aggregate.Row{
		KRAID:              rec.KRA.ID,
		InitiativeID:       *kpiID,
		Year:               *year,
		Quarter:            *quarter,
		TotalReported:      achievement.TotalReported,
		TotalTarget:        achievement.TotalTarget,
		AchievementPercent: achievement.AchievementPercent,
	}
	if err := db.UpsertAggregate(ctx, row); err != nil {
		return err
	}

	logger := audit.NewLogger(resolved.AuditDB)
	if err := logger.LogEvent("cli", "aggregate_recomputed", map[string]any{
		"initiative_id":       *kpiID,
		"year":                *year,
		"quarter":             *quarter,
		"target_type":         classified.Type,
		"achievement_percent": achievement.AchievementPercent,
		"activities":          len(activities),
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	return printJSON(row)
}

func runCumulative(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("cumulative", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	kpiID := fs.String("kpi", "", "Initiative id (e.g. KRA3-KPI5)")
	year := fs.Int("year", 0, "Query year")
	planDir := fs.String("plan-dir", "", "Strategic plan directory (default: <workspace>/plan)")
	dbPath := fs.String("db", "", "State database path (default: <workspace>/audit/qpro.sqlite)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := resolveWorkspaceAndOverrides(workspacePath, workspaceOverrides{PlanDir: *planDir, StateDB: *dbPath})
	if err != nil {
		return err
	}

	if *kpiID == "" {
		return fmt.Errorf("--kpi is required")
	}
	if *year == 0 {
		return fmt.Errorf("--year is required")
	}

	planStore, err := plan.LoadFromDir(resolved.PlanDir)
	if err != nil {
		return err
	}
	rec, ok := planStore.InitiativeLookup(*kpiID)
	if !ok {
		return fmt.Errorf("unknown initiative %s", *kpiID)
	}

	cumulative := aggregate.IsCumulativeTarget(planStore, rec.KRA.ID, *kpiID)
	if !cumulative {
		fmt.Fprintf(os.Stderr, "note: %s has annual targets; totals below fold anyway\n", *kpiID)
	}

	db, err := store.Open(resolved.StateDB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	rows, err := db.AggregatesThrough(ctx, rec.KRA.ID, *kpiID, *year)
	if err != nil {
		return err
	}

	totals := aggregate.FoldCumulative(rows, *year)
	return printJSON(map[string]any{
		"initiative_id": *kpiID,
		"cumulative":    cumulative,
		"totals":        totals,
	})
}

func runOverride(args []string, workspacePath string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		return fmt.Errorf("%s override: missing subcommand (set, clear)", appName)
	}

	switch args[0] {
	case "set":
		return runOverrideSet(args[1:], workspacePath)
	case "clear":
		return runOverrideClear(args[1:], workspacePath)
	default:
		return fmt.Errorf("%s override: unknown subcommand %q", appName, args[0])
	}
}

func overrideFlags(fs *flag.FlagSet) (kpi *string, kra *string, year *int, quarter *int, dbPath *string) {
	kpi = fs.String("kpi", "", "Initiative id")
	kra = fs.String("kra", "", "KRA id (default: derived from --kpi)")
	year = fs.Int("year", 0, "Reporting year")
	quarter = fs.Int("quarter", 0, "Reporting quarter (1-4)")
	dbPath = fs.String("db", "", "State database path (default: <workspace>/audit/qpro.sqlite)")
	return
}

func deriveKRAID(kpiID, kraID string) (string, error) {
	if kraID != "" {
		return kraID, nil
	}
	idx := strings.Index(kpiID, "-")
	if idx <= 0 {
		return "", fmt.Errorf("cannot derive KRA id from %q, pass --kra", kpiID)
	}
	return kpiID[:idx], nil
}

func runOverrideSet(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("override set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	kpi, kra, year, quarter, dbPath := overrideFlags(fs)
	value := fs.Float64("value", 0, "Override value")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := resolveWorkspaceAndOverrides(workspacePath, workspaceOverrides{StateDB: *dbPath})
	if err != nil {
		return err
	}
	if *kpi == "" || *year == 0 || *quarter < 1 || *quarter > 4 {
		return fmt.Errorf("--kpi, --year and --quarter are required")
	}
	kraID, err := deriveKRAID(*kpi, *kra)
	if err != nil {
		return err
	}

	db, err := store.Open(resolved.StateDB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.SetManualOverride(ctx, kraID, *kpi, *year, *quarter, *value); err != nil {
		return err
	}

	logger := audit.NewLogger(resolved.AuditDB)
	if err := logger.LogEvent("cli", "override_set", map[string]any{
		"initiative_id": *kpi,
		"year":          *year,
		"quarter":       *quarter,
		"value":         *value,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	fmt.Printf("override set: %s %d Q%d = %v\n", *kpi, *year, *quarter, *value)
	return nil
}

func runOverrideClear(args []string, workspacePath string) error {
	fs := flag.NewFlagSet("override clear", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	kpi, kra, year, quarter, dbPath := overrideFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolved, err := resolveWorkspaceAndOverrides(workspacePath, workspaceOverrides{StateDB: *dbPath})
	if err != nil {
		return err
	}
	if *kpi == "" || *year == 0 || *quarter < 1 || *quarter > 4 {
		return fmt.Errorf("--kpi, --year and --quarter are required")
	}
	kraID, err := deriveKRAID(*kpi, *kra)
	if err != nil {
		return err
	}

	db, err := store.Open(resolved.StateDB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.ClearManualOverride(ctx, kraID, *kpi, *year, *quarter); err != nil {
		return err
	}

	logger := audit.NewLogger(resolved.AuditDB)
	if err := logger.LogEvent("cli", "override_cleared", map[string]any{
		"initiative_id": *kpi,
		"year":          *year,
		"quarter":       *quarter,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "audit log failed:", err)
	}

	fmt.Printf("override cleared: %s %d Q%d\n", *kpi, *year, *quarter)
	return nil
}
