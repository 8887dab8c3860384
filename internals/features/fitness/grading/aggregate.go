package grading

import (
	"schoolfit_backend/internals/constants"
)

// MeasureResult is one scored attempt for a single measure.
type MeasureResult struct {
	Measure         string
	NormalizedScore float64
	BonusScore      float64
}

// Weight returns the contribution of a measure to the weighted total
// for students of the given school type and year. Only primary-school
// weight tables are defined; measures not tested in that year, and
// any non-primary school type, weigh zero.
func Weight(measure, schoolType, year string) float64 {
	if schoolType != constants.SchoolTypePrimary {
		return 0
	}
	order := constants.YearOrder(year)

	switch measure {
	case constants.MeasureBMI:
		return 0.15
	case constants.MeasureVitalCap:
		return 0.15
	case constants.MeasureDash50m:
		return 0.20
	case constants.MeasureSitAndReach:
		switch {
		case order <= 2:
			return 0.30
		case order <= 4:
			return 0.20
		default:
			return 0.10
		}
	case constants.MeasureRopeSkipping:
		if order <= 4 {
			return 0.20
		}
		return 0.10
	case constants.MeasureSitUps:
		switch {
		case order <= 2:
			return 0
		case order <= 4:
			return 0.10
		default:
			return 0.20
		}
	case constants.MeasureShuttle50x8:
		if order >= 5 {
			return 0.10
		}
		return 0
	}
	return 0
}

// Aggregate reduces a student's scored attempts to a weighted total.
// When a measure was attempted more than once only the attempt with
// the highest normalized score counts; ties on the normalized score
// keep the attempt with the higher bonus. The winning bonus rides
// along unweighted. Input order never changes the result.
func Aggregate(results []MeasureResult, schoolType, year string) float64 {
	best := make(map[string]MeasureResult, len(results))
	for _, r := range results {
		cur, ok := best[r.Measure]
		if !ok || r.NormalizedScore > cur.NormalizedScore ||
			(r.NormalizedScore == cur.NormalizedScore && r.BonusScore > cur.BonusScore) {
			best[r.Measure] = r
		}
	}

	var total float64
	for measure, r := range best {
		total += Weight(measure, schoolType, year)*r.NormalizedScore + r.BonusScore
	}
	return total
}
