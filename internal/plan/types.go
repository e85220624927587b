package plan

// TargetScope says whether a target is institution-wide or multiplied per
// contributing unit.
type TargetScope string

const (
	ScopeInstitutional TargetScope = "institutional"
	ScopePerUnit       TargetScope = "per_unit"
)

// TimeScope says whether achievement accumulates across plan years or
// resets annually.
type TimeScope string

const (
	TimeScopeAnnual     TimeScope = "annual"
	TimeScopeCumulative TimeScope = "cumulative"
)

// TimelineDatum is one year's configured target. Value is kept verbatim:
// numeric targets parse via NumericValue, milestone/condition targets stay
// as text.
type TimelineDatum struct {
	Year  int
	Value string
}

// Targets is the target configuration block of an initiative.
type Targets struct {
	Type            string
	UnitBasis       string
	TargetScope     TargetScope
	TargetTimeScope TimeScope
	Timeline        []TimelineDatum
}

// Initiative is a single KPI within a KRA.
type Initiative struct {
	ID       string
	Outputs  string
	Outcomes string
	Targets  Targets
}

// KRA is a key result area and its ordered initiatives.
type KRA struct {
	ID               string
	Title            string
	GuidingPrinciple string
	Initiatives      []Initiative
}

// Document is a normalized strategic-plan document loaded from JSON.
type Document struct {
	KRAs   []KRA
	Source string
}

// KRARecord maps a KRA id to its normalized data and source.
type KRARecord struct {
	KRA    KRA
	Source string
}

// InitiativeRecord maps an initiative id to its data and parent KRA.
type InitiativeRecord struct {
	Initiative Initiative
	KRA        KRA
	Source     string
}

// Store is the in-memory representation of the loaded strategic plan.
type Store struct {
	Documents []Document

	kras         map[string]KRARecord
	initiatives  map[string]InitiativeRecord
	terminalYear int
}

// KRALookup returns the KRA record for the given id, if present.
func (s *Store) KRALookup(id string) (KRARecord, bool) {
	if s == nil {
		return KRARecord{}, false
	}
	rec, ok := s.kras[id]
	return rec, ok
}

// InitiativeLookup returns the initiative record for the given id, if present.
func (s *Store) InitiativeLookup(id string) (InitiativeRecord, bool) {
	if s == nil {
		return InitiativeRecord{}, false
	}
	rec, ok := s.initiatives[id]
	return rec, ok
}

// TerminalYear returns the latest year present in any timeline, or 0 for an
// empty plan.
func (s *Store) TerminalYear() int {
	if s == nil {
		return 0
	}
	return s.terminalYear
}
