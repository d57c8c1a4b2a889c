package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeItemCostsSingleLot(t *testing.T) {
	got := computeItemCosts(800, 10, []lineMargin{{Quantity: 10, UnitCost: 500}})

	assert.Equal(t, int64(5000), got.TotalCost)
	assert.Equal(t, int64(3000), got.TotalMargin)
	assert.InDelta(t, 37.5, got.AvgMarginRate, 1e-9)
	assert.Len(t, got.Lines, 1)
	assert.Equal(t, int64(3000), got.Lines[0].MarginAmount)
	assert.InDelta(t, 37.5, got.Lines[0].MarginRate, 1e-9)
}

func TestComputeItemCostsWeightsByQuantity(t *testing.T) {
	// 2 units at cost 500 (50%) and 8 units at cost 900 (10%)
	got := computeItemCosts(1000, 10, []lineMargin{
		{Quantity: 2, UnitCost: 500},
		{Quantity: 8, UnitCost: 900},
	})

	assert.Equal(t, int64(2*500+8*900), got.TotalCost)
	assert.Equal(t, int64(2*500+8*100), got.TotalMargin)
	// weighted (50×2 + 10×8) / 10 = 18, not the simple mean 30
	assert.InDelta(t, 18.0, got.AvgMarginRate, 1e-9)
}

func TestMarginRateFreeItem(t *testing.T) {
	assert.True(t, marginRate(0, 500).IsZero())
	got := computeItemCosts(0, 3, []lineMargin{{Quantity: 3, UnitCost: 500}})
	assert.Equal(t, int64(-1500), got.TotalMargin)
	assert.Equal(t, 0.0, got.AvgMarginRate)
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 33.33, percentOf(1, 3, 2))
	assert.Equal(t, 66.7, percentOf(2, 3, 1))
	assert.Equal(t, 0.0, percentOf(5, 0, 2))
}
