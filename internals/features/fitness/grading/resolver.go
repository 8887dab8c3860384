package grading

import (
	"fmt"
	"math"
)

// ResolveScore maps a raw measurement onto its bracket table and
// returns the normalized score plus any boundary bonus.
//
// The bracket array is scanned in its fixed order, best bracket
// first. For lower-is-better measures the first bracket whose
// threshold is >= raw wins; for higher-is-better the first whose
// threshold is <= raw wins (boundaries inclusive). A bonus is
// consulted only when the winning bracket is the first element AND
// the raw score strictly betters its threshold.
func (s *Store) ResolveScore(raw float64, measure, gender, schoolType, year string, direction Direction) (Score, error) {
	if direction == DirectionAny {
		return Score{}, fmt.Errorf("grading: compareDirection cannot be any, %s, %s, %s, %s", measure, gender, schoolType, year)
	}

	key := Key{Measure: measure, Gender: gender, SchoolType: schoolType, Year: year}
	brackets, ok := s.brackets[key]
	if !ok {
		return Score{}, fmt.Errorf("%w: %s", ErrTableNotFound, key)
	}

	for i, bracket := range brackets {
		won := false
		switch direction {
		case DirectionLower:
			won = raw <= bracket.Threshold
		case DirectionHigher:
			won = raw >= bracket.Threshold
		}
		if !won {
			continue
		}

		result := Score{NormalizedScore: bracket.NormalizedScore}
		offset := raw - bracket.Threshold

		// Bonus only beyond the best tabulated bracket, and only in
		// the favorable direction.
		if i == 0 {
			switch {
			case direction == DirectionLower && offset < 0:
				bonus, err := s.resolveBonus(key, BonusLessThanMin, offset)
				if err != nil {
					return Score{}, err
				}
				result.BonusScore = bonus
			case direction == DirectionHigher && offset > 0:
				bonus, err := s.resolveBonus(key, BonusMoreThanMax, offset)
				if err != nil {
					return Score{}, err
				}
				result.BonusScore = bonus
			}
		}
		return result, nil
	}

	// Worse than the worst bracket: score stays zero.
	return Score{}, nil
}

// resolveBonus scans the measure's ordered offset array and awards
// the first compatible bonus. A measure without a bonus table yields
// zero; a measure WITH a table but missing this key is a seed error.
func (s *Store) resolveBonus(key Key, wantDirection string, offset float64) (float64, error) {
	table, ok := s.bonus[key.Measure]
	if !ok || table.direction != wantDirection {
		return 0, nil
	}
	entries, ok := table.entries[key]
	if !ok {
		return 0, fmt.Errorf("%w: bonus table for %s", ErrTableNotFound, key)
	}
	for _, entry := range entries {
		if wantDirection == BonusMoreThanMax && entry.Offset <= offset {
			return entry.Bonus, nil
		}
		if wantDirection == BonusLessThanMin && entry.Offset >= offset {
			return entry.Bonus, nil
		}
	}
	return 0, nil
}

// ResolveBMI maps a BMI value onto its categorical table: the first
// category whose inclusive range contains the score wins. With
// well-formed tables every value matches some range; a miss is a
// fatal misconfiguration, never swallowed.
func (s *Store) ResolveBMI(raw float64, gender, schoolType, year string) (BMIScore, error) {
	key := BMIKey{Gender: gender, SchoolType: schoolType, Year: year}
	categories, ok := s.bmi[key]
	if !ok {
		return BMIScore{}, fmt.Errorf("%w: BMI %s, %s, %s", ErrTableNotFound, gender, schoolType, year)
	}

	for _, category := range categories {
		min := math.Inf(-1)
		if category.Min != nil {
			min = *category.Min
		}
		max := math.Inf(1)
		if category.Max != nil {
			max = *category.Max
		}
		if raw >= min && raw <= max {
			return BMIScore{NormalizedScore: category.NormalizedScore, Grade: category.Grade}, nil
		}
	}
	return BMIScore{}, fmt.Errorf("%w: BMI %.1f, %s, %s, %s", ErrGradeNotFound, raw, gender, schoolType, year)
}

// Classify walks the overall-grade ladder best-first and returns the
// first grade whose minimum is <= total. Falls back to the worst
// grade (covers negative or zero totals).
func (s *Store) Classify(total float64) string {
	for _, step := range s.ranking {
		if total >= step.Min {
			return step.Grade
		}
	}
	return s.ranking[len(s.ranking)-1].Grade
}
