package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_RateTimesSurface(t *testing.T) {
	rec := testRecord(t, "Halles", 2, 40)
	c := testCriteria()

	est, err := Estimate(rec, c)
	require.NoError(t, err)

	assert.InDelta(t, 40*30.0, est.EstimatedRent, 1e-9)
	assert.True(t, est.WithinBudget) // 1200 <= 1500
	assert.InDelta(t, 40, est.RentPerM2, 1e-9)
}

func TestEstimate_SurfaceProportionality(t *testing.T) {
	rec := testRecord(t, "Halles", 2, 40)
	c := testCriteria()

	small, err := Estimate(rec, c)
	require.NoError(t, err)

	c.Surface = 60
	large, err := Estimate(rec, c)
	require.NoError(t, err)

	assert.InDelta(t, small.EstimatedRent*2, large.EstimatedRent, 1e-9)
	assert.False(t, large.WithinBudget) // 2400 > 1500
}

func TestEstimate_TierSelectionNoCrossContamination(t *testing.T) {
	rec := testRecord(t, "Halles", 2, 40) // reference 34, floor 28
	c := testCriteria()

	byTier := map[RentTier]float64{}
	for _, tier := range Tiers {
		c.Tier = tier
		est, err := Estimate(rec, c)
		require.NoError(t, err)
		byTier[tier] = est.EstimatedRent
	}

	assert.InDelta(t, 40*30.0, byTier[TierCapped], 1e-9)
	assert.InDelta(t, 34*30.0, byTier[TierReference], 1e-9)
	assert.InDelta(t, 28*30.0, byTier[TierFloor], 1e-9)
}

func TestEstimate_UnknownTierIsInterfaceError(t *testing.T) {
	rec := testRecord(t, "Halles", 2, 40)
	c := testCriteria()
	c.Tier = RentTier("discount")

	_, err := Estimate(rec, c)
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestEstimate_NonFiniteInput(t *testing.T) {
	rec := testRecord(t, "Halles", 2, 40)
	rec.RentCapped = math.Inf(1)

	_, err := Estimate(rec, testCriteria())
	assert.ErrorIs(t, err, ErrComputation)

	rec.RentCapped = math.NaN()
	_, err = Estimate(rec, testCriteria())
	assert.ErrorIs(t, err, ErrComputation)
}

func TestEstimate_BudgetBoundaryInclusive(t *testing.T) {
	rec := testRecord(t, "Halles", 2, 50) // 50 × 30 = exactly 1500
	est, err := Estimate(rec, testCriteria())
	require.NoError(t, err)
	assert.True(t, est.WithinBudget)
}
