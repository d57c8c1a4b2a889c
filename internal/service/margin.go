package service

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// lineMargin is the cost and margin of one allocation at the item's unit price.
type lineMargin struct {
	Quantity     int
	UnitCost     int64
	MarginAmount int64
	MarginRate   float64
}

type itemCosts struct {
	TotalCost     int64
	TotalMargin   int64
	AvgMarginRate float64
	Lines         []lineMargin
}

// marginRate is (price - unitCost) / price × 100, and 0 for a free item.
func marginRate(price, unitCost int64) decimal.Decimal {
	if price == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(price - unitCost).Mul(hundred).Div(decimal.NewFromInt(price))
}

// computeItemCosts prices each allocation and derives the item totals. The average
// rate is weighted by allocated quantity over the ordered quantity.
func computeItemCosts(price int64, quantity int, allocs []lineMargin) itemCosts {
	var out itemCosts
	weighted := decimal.Zero
	for _, a := range allocs {
		rate := marginRate(price, a.UnitCost)
		line := lineMargin{
			Quantity:     a.Quantity,
			UnitCost:     a.UnitCost,
			MarginAmount: (price - a.UnitCost) * int64(a.Quantity),
			MarginRate:   rate.InexactFloat64(),
		}
		out.TotalCost += a.UnitCost * int64(a.Quantity)
		out.TotalMargin += line.MarginAmount
		weighted = weighted.Add(rate.Mul(decimal.NewFromInt(int64(a.Quantity))))
		out.Lines = append(out.Lines, line)
	}
	if quantity > 0 {
		out.AvgMarginRate = weighted.Div(decimal.NewFromInt(int64(quantity))).InexactFloat64()
	}
	return out
}

// percentOf returns part / whole × 100 rounded to places, or 0 when whole is 0.
func percentOf(part, whole int64, places int32) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).Round(places).InexactFloat64()
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
