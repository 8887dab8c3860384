package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"schoolfit_backend/internals/constants"
)

func window(fromYear, toYear int) (time.Time, time.Time) {
	return constants.AcademicWindow(fromYear, toYear)
}

func TestActiveAt(t *testing.T) {
	from, to := window(2024, 2025)
	bounded := ClassificationModel{ClassificationValidFrom: from, ClassificationValidTo: &to}

	assert.False(t, bounded.ActiveAt(from.Add(-time.Second)))
	assert.True(t, bounded.ActiveAt(from))
	assert.True(t, bounded.ActiveAt(from.AddDate(0, 4, 0)))
	assert.True(t, bounded.ActiveAt(to))
	assert.False(t, bounded.ActiveAt(to.Add(time.Second)))

	open := ClassificationModel{ClassificationValidFrom: from}
	assert.True(t, open.ActiveAt(from))
	assert.True(t, open.ActiveAt(from.AddDate(10, 0, 0)))
	assert.False(t, open.ActiveAt(from.Add(-time.Second)))
}

func TestCovers(t *testing.T) {
	from, to := window(2024, 2025)
	bounded := ClassificationModel{ClassificationValidFrom: from, ClassificationValidTo: &to}

	// Exactly the same window.
	assert.True(t, bounded.Covers(from, to))

	// A window strictly inside.
	assert.True(t, bounded.Covers(from.AddDate(0, 1, 0), to.AddDate(0, -1, 0)))

	// Starts before the classification opens.
	earlier, _ := window(2023, 2024)
	assert.False(t, bounded.Covers(earlier, to))

	// Runs past the classification's end.
	_, later := window(2025, 2026)
	assert.False(t, bounded.Covers(from, later))

	// Open-ended windows cover any future end.
	open := ClassificationModel{ClassificationValidFrom: from}
	assert.True(t, open.Covers(from, later))
	assert.False(t, open.Covers(earlier, to))
}
