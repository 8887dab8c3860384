package grading

import (
	"errors"
	"fmt"
)

// Compare direction of a measure. Fixed by configuration per measure,
// never inferred from data.
type Direction string

const (
	DirectionLower  Direction = "lower"  // lower raw score is better (dashes)
	DirectionHigher Direction = "higher" // higher raw score is better (jumps, counts)
	DirectionAny    Direction = "any"    // not gradeable directly (height, weight, BMI)
)

const (
	BonusMoreThanMax = "more_than_max"
	BonusLessThanMin = "less_than_min"
)

// Both errors indicate bad seed data, not bad row data. They are
// never retried and never swallowed.
var (
	ErrTableNotFound = errors.New("grading: bracket table not found")
	ErrGradeNotFound = errors.New("grading: no BMI category matched")
)

// Key addresses one bracket table. The field order mirrors the
// original nested lookup (measure → gender → schoolType → year) and is
// load-bearing: all four parts must match exactly, a miss is fatal.
type Key struct {
	Measure    string
	Gender     string
	SchoolType string
	Year       string
}

func (k Key) String() string {
	return fmt.Sprintf("%s, %s, %s, %s", k.Measure, k.Gender, k.SchoolType, k.Year)
}

// BMIKey addresses a categorical BMI table (no measure part).
type BMIKey struct {
	Gender     string
	SchoolType string
	Year       string
}

// Bracket is one [normalizedScore, thresholdValue] pair. Arrays are
// stored best-first in their configured order.
type Bracket struct {
	NormalizedScore float64
	Threshold       float64
}

// BonusEntry is one [bonusPoints, offsetThreshold] pair, consulted
// only when a raw score betters the best bracket.
type BonusEntry struct {
	Bonus  float64
	Offset float64
}

// BMICategory is one labeled inclusive range. A nil bound is open
// (±infinity).
type BMICategory struct {
	Grade           string
	NormalizedScore float64
	Min             *float64
	Max             *float64
}

// RankStep is one rung of the overall-grade ladder, descending by
// threshold; the last entry is the catch-all.
type RankStep struct {
	Grade string
	Min   float64
}

// MeasureType describes one measure's catalog entry: applicability
// filters and compare direction.
type MeasureType struct {
	Name             string              `json:"name"`
	Unit             string              `json:"unit"`
	IsExercise       bool                `json:"isExercise"`
	IsReported       bool                `json:"isReported"`
	Gender           string              `json:"gender"`
	ApplicableTo     map[string][]string `json:"applicableTo"`
	CompareDirection Direction           `json:"compareDirection"`
}

// ApplicableToGender reports whether the measure applies to a student
// of the given gender.
func (m MeasureType) ApplicableToGender(gender string) bool {
	return m.Gender == "全部" || m.Gender == gender
}

// ApplicableToSchoolYear reports whether the measure applies to the
// given school type and year. An empty map means everywhere; an empty
// year list means every year of that school type.
func (m MeasureType) ApplicableToSchoolYear(schoolType, year string) bool {
	if len(m.ApplicableTo) == 0 {
		return true
	}
	years, ok := m.ApplicableTo[schoolType]
	if !ok {
		return false
	}
	if len(years) == 0 {
		return true
	}
	for _, y := range years {
		if y == year {
			return true
		}
	}
	return false
}

// Score is the result of resolving a raw measurement.
type Score struct {
	NormalizedScore float64
	BonusScore      float64
}

// BMIScore is the result of the categorical BMI resolver.
type BMIScore struct {
	NormalizedScore float64
	Grade           string
}
