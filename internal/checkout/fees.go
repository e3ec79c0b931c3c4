package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/Makepad-fr/till/internal/model"
)

// DefaultShippingFee is charged once when anything in the basket ships.
var DefaultShippingFee = decimal.NewFromInt(30)

// FeeSchedule prices shipping for the lines that passed validation.
// Implementations return zero when none of the lines ships.
type FeeSchedule interface {
	Fee(lines []model.BasketLine) decimal.Decimal
}

// FlatFee charges Amount once if at least one line ships.
type FlatFee struct {
	Amount decimal.Decimal
}

func (f FlatFee) Fee(lines []model.BasketLine) decimal.Decimal {
	if shippableLines(lines) == 0 {
		return decimal.Zero
	}
	return f.Amount
}

// PerShippableLine charges Amount for every line that ships.
type PerShippableLine struct {
	Amount decimal.Decimal
}

func (f PerShippableLine) Fee(lines []model.BasketLine) decimal.Decimal {
	return f.Amount.Mul(decimal.NewFromInt(int64(shippableLines(lines))))
}

func shippableLines(lines []model.BasketLine) int {
	n := 0
	for _, ln := range lines {
		if ln.Item.RequiresShipping() {
			n++
		}
	}
	return n
}
