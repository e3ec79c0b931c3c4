package checkout

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptLine is one settled basket line.
type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// SkippedLine is a line the skip policy left out of the checkout.
type SkippedLine struct {
	Name     string
	Quantity int
	Reason   Reason
}

func (s SkippedLine) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Reason)
}

// Result is the structured outcome of one checkout call. Rendering it is the
// caller's business.
//
// Amounts are filled in once pricing ran, so an InsufficientFunds result still
// says what the basket would have cost. Balance is the account balance when the
// call returned. Lines and Shipment are only set when the checkout settled.
type Result struct {
	ID      uuid.UUID
	Account string
	Policy  Policy
	Outcome Outcome

	// Item names the line that ended an aborted checkout.
	Item string

	Lines    []ReceiptLine
	Skipped  []SkippedLine
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
	Balance  decimal.Decimal
	Shipment ShipmentNotice
}

func (r *Result) Settled() bool { return r.Outcome == OutcomeSettled }

// Err maps a refused checkout onto its sentinel error; nil when settled.
func (r *Result) Err() error {
	switch r.Outcome {
	case OutcomeSettled:
		return nil
	case OutcomeEmptyCart:
		return ErrEmptyCart
	case OutcomeOutOfStock:
		return fmt.Errorf("%s: %w", r.Item, ErrOutOfStock)
	case OutcomeExpired:
		return fmt.Errorf("%s: %w", r.Item, ErrExpired)
	case OutcomeNoValidItems:
		return ErrNoValidItems
	case OutcomeInsufficientFunds:
		return fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, r.Total, r.Balance)
	default:
		return fmt.Errorf("unknown checkout outcome %d", r.Outcome)
	}
}

// Units is the number of units settled across all receipt lines.
func (r *Result) Units() int {
	n := 0
	for _, ln := range r.Lines {
		n += ln.Quantity
	}
	return n
}
