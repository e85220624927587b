package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LoadFromDir loads and validates all strategic-plan JSON files from the
// provided directory.
func LoadFromDir(planDir string) (*Store, error) {
	if planDir == "" {
		planDir = "plan"
	}

	files, err := filepath.Glob(filepath.Join(planDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan plan dir: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no plan JSON files found in %s", planDir)
	}
	sort.Strings(files)

	var docs []Document
	var vErrs ValidationErrors

	for _, path := range files {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		doc, parseErr := ParseAndValidateDocument(data, path)
		if parseErr != nil {
			if ve, ok := parseErr.(ValidationErrors); ok {
				vErrs = append(vErrs, ve...)
				continue
			}
			return nil, parseErr
		}
		docs = append(docs, doc)
	}

	if len(vErrs) > 0 {
		return nil, vErrs
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no plan documents found in %s", planDir)
	}

	duplicateErrs := validateCrossDocumentUniqueness(docs)
	if len(duplicateErrs) > 0 {
		return nil, duplicateErrs
	}

	return buildStore(docs), nil
}

// LoadFile loads and validates a single strategic-plan JSON file.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := ParseAndValidateDocument(data, path)
	if err != nil {
		return nil, err
	}
	return buildStore([]Document{doc}), nil
}

func validateCrossDocumentUniqueness(docs []Document) ValidationErrors {
	var errs ValidationErrors

	type origin struct {
		file  string
		kraID string
	}
	kraSeen := make(map[string]string)
	initSeen := make(map[string]origin)

	for _, doc := range docs {
		for kraIdx, kra := range doc.KRAs {
			if kra.ID != "" {
				if file, exists := kraSeen[kra.ID]; exists {
					errs = append(errs, ValidationError{
						File:    doc.Source,
						Field:   fmt.Sprintf("kras[%d].kra_id", kraIdx),
						Message: fmt.Sprintf("kra_id %q already defined in %s", kra.ID, file),
					})
				} else {
					kraSeen[kra.ID] = doc.Source
				}
			}

			for initIdx, init := range kra.Initiatives {
				if init.ID == "" {
					continue
				}
				if prev, exists := initSeen[init.ID]; exists {
					errs = append(errs, ValidationError{
						File:    doc.Source,
						Field:   fmt.Sprintf("kras[%d].initiatives[%d].initiative_id", kraIdx, initIdx),
						Message: fmt.Sprintf("initiative_id %q already defined in %s (KRA %s)", init.ID, prev.file, prev.kraID),
					})
					continue
				}
				initSeen[init.ID] = origin{file: doc.Source, kraID: kra.ID}
			}
		}
	}

	return errs
}

func buildStore(docs []Document) *Store {
	store := &Store{
		kras:        make(map[string]KRARecord),
		initiatives: make(map[string]InitiativeRecord),
	}

	for _, doc := range docs {
		store.Documents = append(store.Documents, doc)

		for _, kra := range doc.KRAs {
			store.kras[kra.ID] = KRARecord{KRA: kra, Source: doc.Source}

			for _, init := range kra.Initiatives {
				store.initiatives[init.ID] = InitiativeRecord{
					Initiative: init,
					KRA:        kra,
					Source:     doc.Source,
				}
				for _, datum := range init.Targets.Timeline {
					if datum.Year > store.terminalYear {
						store.terminalYear = datum.Year
					}
				}
			}
		}
	}

	return store
}

// ListKRAIDs returns all KRA ids in sorted order.
func (s *Store) ListKRAIDs() []string {
	ids := make([]string, 0, len(s.kras))
	for id := range s.kras {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListInitiativeIDs returns all initiative ids in sorted order.
func (s *Store) ListInitiativeIDs() []string {
	ids := make([]string, 0, len(s.initiatives))
	for id := range s.initiatives {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
