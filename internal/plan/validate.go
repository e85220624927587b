package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type rawDocument struct {
	KRAs []rawKRA `json:"kras"`
}

type rawKRA struct {
	ID               string          `json:"kra_id"`
	Title            string          `json:"title"`
	GuidingPrinciple string          `json:"guiding_principle"`
	Initiatives      []rawInitiative `json:"initiatives"`
}

type rawInitiative struct {
	ID       string      `json:"initiative_id"`
	Outputs  string      `json:"outputs"`
	Outcomes string      `json:"outcomes"`
	Targets  *rawTargets `json:"targets"`
}

type rawTargets struct {
	Type            string             `json:"type"`
	UnitBasis       string             `json:"unit_basis"`
	TargetScope     string             `json:"target_scope"`
	TargetTimeScope string             `json:"target_time_scope"`
	Timeline        []rawTimelineDatum `json:"timeline_data"`
}

type rawTimelineDatum struct {
	Year  *int      `json:"year"`
	Value flexValue `json:"target_value"`
}

// flexValue accepts a JSON number, string, or bool and keeps it as text.
// Upstream plan documents are inconsistent about quoting numeric targets.
type flexValue struct {
	Text string
	Set  bool
}

func (f *flexValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.Text = s
		f.Set = true
		return nil
	}
	if string(data) == "true" || string(data) == "false" {
		f.Text = string(data)
		f.Set = true
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	f.Text = n.String()
	f.Set = true
	return nil
}

// ValidationError captures a single field-specific validation issue.
type ValidationError struct {
	File    string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
}

// ValidationErrors aggregates multiple validation problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// ParseAndValidateDocument unmarshals and validates a JSON plan document.
func ParseAndValidateDocument(data []byte, source string) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var raw rawDocument
	if err := dec.Decode(&raw); err != nil {
		return Document{}, ValidationErrors{{
			File:    source,
			Field:   "json",
			Message: err.Error(),
		}}
	}
	return validateRawDocument(raw, source)
}

func validateRawDocument(raw rawDocument, source string) (Document, error) {
	var errs ValidationErrors

	if len(raw.KRAs) == 0 {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   "kras",
			Message: "must contain at least one KRA",
		})
	}

	kraIDs := make(map[string]struct{})
	var normalized []KRA

	for idx, rawK := range raw.KRAs {
		kraPath := fmt.Sprintf("kras[%d]", idx)
		kra, kraErrs := validateKRA(rawK, kraPath, source)
		errs = append(errs, kraErrs...)

		if kra.ID != "" {
			if _, exists := kraIDs[kra.ID]; exists {
				errs = append(errs, ValidationError{
					File:    source,
					Field:   kraPath + ".kra_id",
					Message: fmt.Sprintf("duplicate kra_id %q within document", kra.ID),
				})
			} else {
				kraIDs[kra.ID] = struct{}{}
			}
		}
		normalized = append(normalized, kra)
	}

	if len(errs) > 0 {
		return Document{}, errs
	}

	return Document{KRAs: normalized, Source: source}, nil
}

func validateKRA(raw rawKRA, path, source string) (KRA, ValidationErrors) {
	var errs ValidationErrors

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   path + ".kra_id",
			Message: "is required",
		})
	}
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   path + ".title",
			Message: "is required",
		})
	}
	if len(raw.Initiatives) == 0 {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   path + ".initiatives",
			Message: "must contain at least one initiative",
		})
	}

	initIDs := make(map[string]struct{})
	var initiatives []Initiative
	for idx, rawInit := range raw.Initiatives {
		initPath := fmt.Sprintf("%s.initiatives[%d]", path, idx)
		init, initErrs := validateInitiative(rawInit, initPath, source)
		errs = append(errs, initErrs...)

		if init.ID != "" {
			if _, exists := initIDs[init.ID]; exists {
				errs = append(errs, ValidationError{
					File:    source,
					Field:   initPath + ".initiative_id",
					Message: fmt.Sprintf("duplicate initiative_id %q within KRA", init.ID),
				})
			} else {
				initIDs[init.ID] = struct{}{}
			}
		}
		initiatives = append(initiatives, init)
	}

	return KRA{
		ID:               id,
		Title:            title,
		GuidingPrinciple: strings.TrimSpace(raw.GuidingPrinciple),
		Initiatives:      initiatives,
	}, errs
}

func validateInitiative(raw rawInitiative, path, source string) (Initiative, ValidationErrors) {
	var errs ValidationErrors

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   path + ".initiative_id",
			Message: "is required",
		})
	}
	if strings.TrimSpace(raw.Outputs) == "" && strings.TrimSpace(raw.Outcomes) == "" {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   path,
			Message: "outputs or outcomes text is required",
		})
	}

	targets, targetErrs := validateTargets(raw.Targets, path+".targets", source)
	errs = append(errs, targetErrs...)

	return Initiative{
		ID:       id,
		Outputs:  strings.TrimSpace(raw.Outputs),
		Outcomes: strings.TrimSpace(raw.Outcomes),
		Targets:  targets,
	}, errs
}

func validateTargets(raw *rawTargets, path, source string) (Targets, ValidationErrors) {
	var errs ValidationErrors

	if raw == nil {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   path,
			Message: "is required",
		})
		return Targets{}, errs
	}

	scope, scopeErr := parseTargetScope(raw.TargetScope)
	if scopeErr != nil {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   path + ".target_scope",
			Message: scopeErr.Error(),
		})
	}
	timeScope, timeErr := parseTimeScope(raw.TargetTimeScope)
	if timeErr != nil {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   path + ".target_time_scope",
			Message: timeErr.Error(),
		})
	}

	if len(raw.Timeline) == 0 {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   path + ".timeline_data",
			Message: "must contain at least one entry",
		})
	}

	years := make(map[int]struct{})
	var timeline []TimelineDatum
	for idx, datum := range raw.Timeline {
		datumPath := fmt.Sprintf("%s.timeline_data[%d]", path, idx)
		if datum.Year == nil {
			errs = append(errs, ValidationError{
				File:    source,
				Field:   datumPath + ".year",
				Message: "is required",
			})
			continue
		}
		year := *datum.Year
		if year < 1990 || year > 2100 {
			errs = append(errs, ValidationError{
				File:    source,
				Field:   datumPath + ".year",
				Message: fmt.Sprintf("implausible year %d", year),
			})
			continue
		}
		if _, exists := years[year]; exists {
			errs = append(errs, ValidationError{
				File:    source,
				Field:   datumPath + ".year",
				Message: fmt.Sprintf("duplicate year %d", year),
			})
			continue
		}
		years[year] = struct{}{}
		if !datum.Value.Set {
			errs = append(errs, ValidationError{
				File:    source,
				Field:   datumPath + ".target_value",
				Message: "is required",
			})
			continue
		}
		timeline = append(timeline, TimelineDatum{
			Year:  year,
			Value: strings.TrimSpace(datum.Value.Text),
		})
	}

	return Targets{
		Type:            strings.ToLower(strings.TrimSpace(raw.Type)),
		UnitBasis:       strings.TrimSpace(raw.UnitBasis),
		TargetScope:     scope,
		TargetTimeScope: timeScope,
		Timeline:        timeline,
	}, errs
}

func parseTargetScope(value string) (TargetScope, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "institutional":
		return ScopeInstitutional, nil
	case "per_unit":
		return ScopePerUnit, nil
	default:
		return "", fmt.Errorf("must be institutional or per_unit, got %q", value)
	}
}

func parseTimeScope(value string) (TimeScope, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return "", nil
	case "annual":
		return TimeScopeAnnual, nil
	case "cumulative":
		return TimeScopeCumulative, nil
	default:
		return "", fmt.Errorf("must be annual or cumulative, got %q", value)
	}
}

// NumericValue parses the datum's target value as a number. Milestone and
// condition targets return false.
func (d TimelineDatum) NumericValue() (float64, bool) {
	return parseNumeric(d.Value)
}

func parseNumeric(text string) (float64, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
