package plan

// TargetValueForYear resolves the numeric target in force for the requested
// year. An exact year match wins; otherwise the most recent numeric entry at
// or before the year; otherwise the earliest numeric entry after it. The
// fallbacks let a single-year range target (e.g. only 2029) answer queries
// across the whole plan horizon.
func TargetValueForYear(timeline []TimelineDatum, year int) (float64, bool) {
	for _, datum := range timeline {
		if datum.Year != year {
			continue
		}
		if v, ok := datum.NumericValue(); ok {
			return v, true
		}
	}

	bestPastYear := 0
	bestPast := 0.0
	foundPast := false
	bestFutureYear := 0
	bestFuture := 0.0
	foundFuture := false

	for _, datum := range timeline {
		v, ok := datum.NumericValue()
		if !ok {
			continue
		}
		switch {
		case datum.Year <= year:
			if !foundPast || datum.Year > bestPastYear {
				bestPastYear = datum.Year
				bestPast = v
				foundPast = true
			}
		default:
			if !foundFuture || datum.Year < bestFutureYear {
				bestFutureYear = datum.Year
				bestFuture = v
				foundFuture = true
			}
		}
	}

	if foundPast {
		return bestPast, true
	}
	if foundFuture {
		return bestFuture, true
	}
	return 0, false
}

// TargetValueForInitiative resolves the target for an initiative by id.
func (s *Store) TargetValueForInitiative(initiativeID string, year int) (float64, bool) {
	rec, ok := s.InitiativeLookup(initiativeID)
	if !ok {
		return 0, false
	}
	return TargetValueForYear(rec.Initiative.Targets.Timeline, year)
}
