// Package loyalty implements the points programme: points accrue on every order
// and are converted to a fixed discount in steps of PointsPerStep.
package loyalty

import "github.com/shopspring/decimal"

var (
	// AccrualRate is the number of points earned per currency unit spent
	AccrualRate = decimal.NewFromFloat(1.5)
	// PointsPerStep points are exchanged for one DiscountPerStep
	PointsPerStep   = decimal.NewFromInt(1000)
	DiscountPerStep = decimal.NewFromInt(10)
)

// Redemption is the outcome of applying a user's points to an order total
type Redemption struct {
	FinalTotal      decimal.Decimal `json:"finalTotal"`
	Discount        decimal.Decimal `json:"discount"`
	EarnedPoints    decimal.Decimal `json:"earnedPoints"`
	RemainingPoints decimal.Decimal `json:"remainingPoints"`
}

// Earned returns the points accrued for spending total
func Earned(total decimal.Decimal) decimal.Decimal {
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Mul(AccrualRate)
}

// Apply accrues points for total, then converts whole steps of the combined
// balance into a discount. The discount never exceeds the total; every full step
// is consumed even when the discount is capped.
func Apply(points, total decimal.Decimal) Redemption {
	earned := Earned(total)
	combined := points.Add(earned)
	steps := combined.Div(PointsPerStep).Floor()

	discount := steps.Mul(DiscountPerStep)
	if discount.GreaterThan(total) {
		discount = total
	}
	return Redemption{
		FinalTotal:      total.Sub(discount).Round(2),
		Discount:        discount.Round(2),
		EarnedPoints:    earned,
		RemainingPoints: combined.Sub(steps.Mul(PointsPerStep)),
	}
}
