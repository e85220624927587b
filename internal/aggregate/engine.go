// Package aggregate reconciles per-unit reported values into one
// achievement figure per KPI per period, and resolves cumulative target
// semantics across plan years. Everything here is a pure function of its
// inputs; recomputing with the same arguments gives the same answer.
package aggregate

import (
	"strconv"
	"strings"

	"qpro/internal/plan"
)

// Activity is one unit's reported value paired with the unit's own target,
// both kept verbatim as submitted. Non-numeric text is tolerated: it reads
// as absent for averaging and as zero for sums.
type Activity struct {
	Reported string
	Target   string
}

// Input selects the reducer and target semantics for one KPI-period.
type Input struct {
	TargetType     string
	TargetValue    float64
	TargetScope    plan.TargetScope
	UnitMultiplier float64
	Activities     []Activity
}

// Achievement is the reconciled figure for one KPI-period.
type Achievement struct {
	TotalReported      float64 `json:"total_reported"`
	TotalTarget        float64 `json:"total_target"`
	AchievementPercent float64 `json:"achievement_percent"`
}

// ComputeAchievement reduces the activities with the reducer matching the
// target type. A target value of zero or below always yields zero percent,
// never a division error.
func ComputeAchievement(in Input) Achievement {
	target := effectiveTarget(in)

	switch strings.ToLower(strings.TrimSpace(in.TargetType)) {
	case "percentage":
		return reducePercentage(in.Activities, target)
	case "rate", "snapshot":
		// Point-in-time figures (headcounts, scores). Summing across
		// periods would double-count a population that merely persisted.
		return reduceLatest(in.Activities, target)
	case "milestone", "text_condition":
		return reduceAnyTrue(in.Activities, target)
	default:
		// count, financial, and anything unrecognized are additive.
		return reduceSum(in.Activities, target)
	}
}

// effectiveTarget applies the per-unit multiplier only when the plan
// explicitly scopes the target per unit. The engine never infers per-unit
// scope from the activity count: several units submitting against one
// institution-wide KPI must not inflate its target.
func effectiveTarget(in Input) float64 {
	if in.TargetScope != plan.ScopePerUnit {
		return in.TargetValue
	}
	multiplier := in.UnitMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	return in.TargetValue * multiplier
}

func reducePercentage(activities []Activity, target float64) Achievement {
	var sum float64
	var n int
	for _, act := range activities {
		reported, ok := numeric(act.Reported)
		if !ok {
			continue
		}
		value := reported
		if value < 0 || value > 100 {
			// Try a count-over-denominator conversion before giving up.
			denom, ok := numeric(act.Target)
			if !ok || denom <= 0 {
				continue
			}
			value = reported / denom * 100
			if value < 0 || value > 100 {
				continue
			}
		}
		sum += value
		n++
	}

	if n == 0 {
		return Achievement{TotalTarget: target}
	}
	avg := sum / float64(n)
	result := Achievement{TotalReported: avg, TotalTarget: target}
	if target > 0 {
		result.AchievementPercent = avg / target * 100
	}
	return result
}

// reduceLatest keeps the most recently submitted numeric value. Activities
// arrive in period order, so the last parseable entry is the one in force.
func reduceLatest(activities []Activity, target float64) Achievement {
	var latest float64
	found := false
	for _, act := range activities {
		if v, ok := numeric(act.Reported); ok {
			latest = v
			found = true
		}
	}

	if !found {
		return Achievement{TotalTarget: target}
	}
	result := Achievement{TotalReported: latest, TotalTarget: target}
	if target > 0 {
		result.AchievementPercent = latest / target * 100
	}
	return result
}

func reduceSum(activities []Activity, target float64) Achievement {
	var sum float64
	for _, act := range activities {
		if v, ok := numeric(act.Reported); ok {
			sum += v
		}
	}
	result := Achievement{TotalReported: sum, TotalTarget: target}
	if target > 0 {
		result.AchievementPercent = sum / target * 100
	}
	return result
}

func reduceAnyTrue(activities []Activity, target float64) Achievement {
	done := false
	for _, act := range activities {
		if v, ok := numeric(act.Reported); ok {
			if v > 0 {
				done = true
				break
			}
			continue
		}
		if strings.TrimSpace(act.Reported) != "" {
			done = true
			break
		}
	}

	if !done {
		return Achievement{TotalTarget: 1}
	}
	result := Achievement{TotalReported: 1, TotalTarget: 1}
	if target > 0 {
		result.AchievementPercent = 100
	}
	return result
}

// numeric parses a submitted value, tolerating thousands separators, a
// trailing percent sign, and currency prefixes.
func numeric(text string) (float64, bool) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return 0, false
	}
	cleaned = strings.TrimPrefix(cleaned, "PhP")
	cleaned = strings.TrimPrefix(cleaned, "PHP")
	cleaned = strings.TrimPrefix(cleaned, "₱")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
