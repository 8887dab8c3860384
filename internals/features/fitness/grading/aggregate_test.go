package grading

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfit_backend/internals/constants"
)

func TestWeightBands(t *testing.T) {
	assert.Equal(t, 0.30, Weight(constants.MeasureSitAndReach, constants.SchoolTypePrimary, "一年级"))
	assert.Equal(t, 0.30, Weight(constants.MeasureSitAndReach, constants.SchoolTypePrimary, "二年级"))
	assert.Equal(t, 0.20, Weight(constants.MeasureSitAndReach, constants.SchoolTypePrimary, "三年级"))
	assert.Equal(t, 0.10, Weight(constants.MeasureSitAndReach, constants.SchoolTypePrimary, "五年级"))

	assert.Equal(t, 0.20, Weight(constants.MeasureRopeSkipping, constants.SchoolTypePrimary, "四年级"))
	assert.Equal(t, 0.10, Weight(constants.MeasureRopeSkipping, constants.SchoolTypePrimary, "六年级"))

	assert.Zero(t, Weight(constants.MeasureSitUps, constants.SchoolTypePrimary, "一年级"))
	assert.Equal(t, 0.10, Weight(constants.MeasureSitUps, constants.SchoolTypePrimary, "三年级"))
	assert.Equal(t, 0.20, Weight(constants.MeasureSitUps, constants.SchoolTypePrimary, "五年级"))

	assert.Zero(t, Weight(constants.MeasureShuttle50x8, constants.SchoolTypePrimary, "四年级"))
	assert.Equal(t, 0.10, Weight(constants.MeasureShuttle50x8, constants.SchoolTypePrimary, "五年级"))

	assert.Zero(t, Weight(constants.MeasureHeight, constants.SchoolTypePrimary, "一年级"))
	assert.Zero(t, Weight(constants.MeasureSitAndReach, "初中", "一年级"))
}

// The weighted measures of every year must add up to a full score.
func TestWeightsSumToOne(t *testing.T) {
	measures := []string{
		constants.MeasureBMI,
		constants.MeasureVitalCap,
		constants.MeasureDash50m,
		constants.MeasureSitAndReach,
		constants.MeasureRopeSkipping,
		constants.MeasureSitUps,
		constants.MeasureShuttle50x8,
	}
	for _, year := range constants.YearLabels {
		var sum float64
		for _, m := range measures {
			sum += Weight(m, constants.SchoolTypePrimary, year)
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "year %s", year)
	}
}

func TestAggregateBestOf(t *testing.T) {
	results := []MeasureResult{
		{Measure: constants.MeasureVitalCap, NormalizedScore: 80},
		{Measure: constants.MeasureVitalCap, NormalizedScore: 95},
		{Measure: constants.MeasureDash50m, NormalizedScore: 100},
	}

	total := Aggregate(results, constants.SchoolTypePrimary, "一年级")
	assert.InDelta(t, 0.15*95+0.20*100, total, 1e-9)
}

func TestAggregateOrderInvariant(t *testing.T) {
	results := []MeasureResult{
		{Measure: constants.MeasureBMI, NormalizedScore: 100},
		{Measure: constants.MeasureVitalCap, NormalizedScore: 95},
		{Measure: constants.MeasureVitalCap, NormalizedScore: 60},
		{Measure: constants.MeasureDash50m, NormalizedScore: 85},
		{Measure: constants.MeasureSitAndReach, NormalizedScore: 78},
		{Measure: constants.MeasureRopeSkipping, NormalizedScore: 100, BonusScore: 6},
	}
	want := Aggregate(results, constants.SchoolTypePrimary, "二年级")
	require.NotZero(t, want)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := make([]MeasureResult, len(results))
		copy(shuffled, results)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.InDelta(t, want, Aggregate(shuffled, constants.SchoolTypePrimary, "二年级"), 1e-9)
	}
}

// Two attempts with the same normalized score but different bonuses
// must settle on the higher bonus no matter which comes first.
func TestAggregateTieKeepsHigherBonus(t *testing.T) {
	low := MeasureResult{Measure: constants.MeasureRopeSkipping, NormalizedScore: 100, BonusScore: 2}
	high := MeasureResult{Measure: constants.MeasureRopeSkipping, NormalizedScore: 100, BonusScore: 20}

	want := Weight(constants.MeasureRopeSkipping, constants.SchoolTypePrimary, "一年级")*100 + 20
	assert.InDelta(t, want, Aggregate([]MeasureResult{low, high}, constants.SchoolTypePrimary, "一年级"), 1e-9)
	assert.InDelta(t, want, Aggregate([]MeasureResult{high, low}, constants.SchoolTypePrimary, "一年级"), 1e-9)
}

func TestAggregateBonusUnweighted(t *testing.T) {
	withBonus := Aggregate([]MeasureResult{
		{Measure: constants.MeasureRopeSkipping, NormalizedScore: 100, BonusScore: 10},
	}, constants.SchoolTypePrimary, "一年级")
	withoutBonus := Aggregate([]MeasureResult{
		{Measure: constants.MeasureRopeSkipping, NormalizedScore: 100},
	}, constants.SchoolTypePrimary, "一年级")

	assert.InDelta(t, 10, withBonus-withoutBonus, 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Zero(t, Aggregate(nil, constants.SchoolTypePrimary, "一年级"))
}
