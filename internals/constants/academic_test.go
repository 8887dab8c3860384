package constants

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcademicWindow(t *testing.T) {
	from, to := AcademicWindow(2024, 2025)

	assert.Equal(t, time.Date(2024, time.September, 1, 0, 0, 0, 0, time.Local), from)
	assert.Equal(t, time.Date(2025, time.August, 30, 0, 0, 0, 0, time.Local), to)
}

func TestAcademicYearBoundary(t *testing.T) {
	boundary := AcademicYearBoundary(2024)
	assert.Equal(t, time.August, boundary.Month())
	assert.Equal(t, 31, boundary.Day())
}

func TestMapYearLabel(t *testing.T) {
	assert.Equal(t, "三年级", MapYearLabel("3"))
	assert.Equal(t, "三年级", MapYearLabel("三"))
	assert.Equal(t, "三年级", MapYearLabel("三年级"))
	assert.Equal(t, "三年级", MapYearLabel(" 三年级 "))
	// Unknown inputs pass through so the bad value surfaces downstream.
	assert.Equal(t, "初一", MapYearLabel("初一"))
}

func TestYearOrder(t *testing.T) {
	assert.Equal(t, 1, YearOrder("一年级"))
	assert.Equal(t, 6, YearOrder("六年级"))
	assert.Zero(t, YearOrder("3"))
}
