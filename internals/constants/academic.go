package constants

import (
	"strings"
	"time"
)

// The academic year rolls over at the end of August: a classification
// for the 2024-2025 year runs Sep 1 2024 .. Aug 30 2025.
const (
	AcademicYearEndMonth = time.August
	AcademicYearEndDay   = 31
)

// AcademicYearBoundary returns the Aug 31 instant that closes the given
// calendar year's academic intake.
func AcademicYearBoundary(year int) time.Time {
	return time.Date(year, AcademicYearEndMonth, AcademicYearEndDay, 0, 0, 0, 0, time.Local)
}

// AcademicWindow computes the validity window for a classification that
// spans the academic years fromYear..toYear.
func AcademicWindow(fromYear, toYear int) (time.Time, time.Time) {
	from := AcademicYearBoundary(fromYear).AddDate(0, 0, 1)
	to := AcademicYearBoundary(toYear).AddDate(0, 0, -1)
	return from, to
}

// Canonical year labels, ordered. Grading tables and classification
// maps key on these exact strings.
var YearLabels = []string{"一年级", "二年级", "三年级", "四年级", "五年级", "六年级"}

var yearAliases = map[string]string{
	"1": "一年级", "一": "一年级", "一年级": "一年级",
	"2": "二年级", "二": "二年级", "二年级": "二年级",
	"3": "三年级", "三": "三年级", "三年级": "三年级",
	"4": "四年级", "四": "四年级", "四年级": "四年级",
	"5": "五年级", "五": "五年级", "五年级": "五年级",
	"6": "六年级", "六": "六年级", "六年级": "六年级",
}

// MapYearLabel normalizes a year cell from an upload ("3", "三", "三年级")
// to the canonical label. Unknown inputs come back unchanged so the row
// fails downstream rather than silently landing in the wrong year.
func MapYearLabel(raw string) string {
	s := strings.TrimSpace(raw)
	if mapped, ok := yearAliases[s]; ok {
		return mapped
	}
	if mapped, ok := yearAliases[strings.TrimSuffix(s, "年级")]; ok {
		return mapped
	}
	return s
}

// YearOrder returns the 1-based position of a canonical year label, 0
// when unknown.
func YearOrder(label string) int {
	for i, l := range YearLabels {
		if l == label {
			return i + 1
		}
	}
	return 0
}
