package grading

import (
	"embed"
	"fmt"

	"github.com/bytedance/sonic"
)

//go:embed data/*.json
var dataFS embed.FS

// Store holds the grading tables, loaded once at startup. It is
// immutable afterwards and safe for unsynchronized concurrent reads.
type Store struct {
	brackets map[Key][]Bracket
	bonus    map[string]bonusTable // keyed by measure
	bmi      map[BMIKey][]BMICategory
	ranking  []RankStep
	measures map[string]MeasureType
}

type bonusTable struct {
	direction string
	entries   map[Key][]BonusEntry
}

type gradingFileEntry struct {
	Measure    string      `json:"measure"`
	Gender     string      `json:"gender"`
	SchoolType string      `json:"schoolType"`
	Year       string      `json:"year"`
	Brackets   [][]float64 `json:"brackets"`
}

type bonusFileEntry struct {
	Measure    string      `json:"measure"`
	Direction  string      `json:"direction"`
	Gender     string      `json:"gender"`
	SchoolType string      `json:"schoolType"`
	Year       string      `json:"year"`
	Entries    [][]float64 `json:"entries"`
}

type bmiFileEntry struct {
	Gender     string `json:"gender"`
	SchoolType string `json:"schoolType"`
	Year       string `json:"year"`
	Categories []struct {
		Grade string   `json:"grade"`
		Score float64  `json:"score"`
		Min   *float64 `json:"min"`
		Max   *float64 `json:"max"`
	} `json:"categories"`
}

// Load parses the embedded grading tables into flat, strongly keyed
// maps. Errors here are configuration errors: the process should not
// start without a consistent table set.
func Load() (*Store, error) {
	s := &Store{
		brackets: make(map[Key][]Bracket),
		bonus:    make(map[string]bonusTable),
		bmi:      make(map[BMIKey][]BMICategory),
		measures: make(map[string]MeasureType),
	}

	var gradingEntries []gradingFileEntry
	if err := readData("data/grading.json", &gradingEntries); err != nil {
		return nil, err
	}
	for _, e := range gradingEntries {
		key := Key{Measure: e.Measure, Gender: e.Gender, SchoolType: e.SchoolType, Year: e.Year}
		if _, dup := s.brackets[key]; dup {
			return nil, fmt.Errorf("grading: duplicate bracket table for %s", key)
		}
		brackets := make([]Bracket, 0, len(e.Brackets))
		for _, pair := range e.Brackets {
			if len(pair) != 2 {
				return nil, fmt.Errorf("grading: malformed bracket pair for %s", key)
			}
			brackets = append(brackets, Bracket{NormalizedScore: pair[0], Threshold: pair[1]})
		}
		s.brackets[key] = brackets
	}

	var bonusEntries []bonusFileEntry
	if err := readData("data/additional_score.json", &bonusEntries); err != nil {
		return nil, err
	}
	for _, e := range bonusEntries {
		table, ok := s.bonus[e.Measure]
		if !ok {
			table = bonusTable{direction: e.Direction, entries: make(map[Key][]BonusEntry)}
		} else if table.direction != e.Direction {
			return nil, fmt.Errorf("grading: conflicting bonus direction for %s", e.Measure)
		}
		key := Key{Measure: e.Measure, Gender: e.Gender, SchoolType: e.SchoolType, Year: e.Year}
		entries := make([]BonusEntry, 0, len(e.Entries))
		for _, pair := range e.Entries {
			if len(pair) != 2 {
				return nil, fmt.Errorf("grading: malformed bonus pair for %s", key)
			}
			entries = append(entries, BonusEntry{Bonus: pair[0], Offset: pair[1]})
		}
		table.entries[key] = entries
		s.bonus[e.Measure] = table
	}

	var bmiEntries []bmiFileEntry
	if err := readData("data/bmi_grading.json", &bmiEntries); err != nil {
		return nil, err
	}
	for _, e := range bmiEntries {
		key := BMIKey{Gender: e.Gender, SchoolType: e.SchoolType, Year: e.Year}
		categories := make([]BMICategory, 0, len(e.Categories))
		for _, c := range e.Categories {
			categories = append(categories, BMICategory{
				Grade:           c.Grade,
				NormalizedScore: c.Score,
				Min:             c.Min,
				Max:             c.Max,
			})
		}
		s.bmi[key] = categories
	}

	var ranking [][]any
	if err := readData("data/grading_ranking.json", &ranking); err != nil {
		return nil, err
	}
	for _, pair := range ranking {
		if len(pair) != 2 {
			return nil, fmt.Errorf("grading: malformed ranking entry %v", pair)
		}
		grade, gok := pair[0].(string)
		min, mok := pair[1].(float64)
		if !gok || !mok {
			return nil, fmt.Errorf("grading: malformed ranking entry %v", pair)
		}
		s.ranking = append(s.ranking, RankStep{Grade: grade, Min: min})
	}
	if len(s.ranking) == 0 {
		return nil, fmt.Errorf("grading: empty ranking ladder")
	}

	var measures []MeasureType
	if err := readData("data/measure_types.json", &measures); err != nil {
		return nil, err
	}
	for _, m := range measures {
		s.measures[m.Name] = m
	}

	return s, nil
}

func readData(name string, out any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("grading: read %s: %w", name, err)
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("grading: parse %s: %w", name, err)
	}
	return nil
}

// MeasureType looks up a measure's catalog entry by name.
func (s *Store) MeasureType(name string) (MeasureType, bool) {
	m, ok := s.measures[name]
	return m, ok
}

// MeasureTypes returns the full measure catalog.
func (s *Store) MeasureTypes() []MeasureType {
	out := make([]MeasureType, 0, len(s.measures))
	for _, m := range s.measures {
		out = append(out, m)
	}
	return out
}
