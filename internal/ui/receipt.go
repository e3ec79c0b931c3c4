package ui

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Makepad-fr/till/internal/checkout"
)

const rule = "----------------------"

// Money prints whole currency units, rounding half away from zero.
func Money(d decimal.Decimal) string { return d.StringFixed(0) }

func grams(kg float64) string { return fmt.Sprintf("%.0fg", kg*1000) }

func kilos(kg float64) string { return fmt.Sprintf("%.1fkg", kg) }

// ShipmentNotice lists the package contents, one entry per item name.
func ShipmentNotice(n checkout.ShipmentNotice) []string {
	if n.Empty() {
		return nil
	}
	t := Current()
	lines := []string{t.Title.Render("** Shipment notice **")}
	for _, e := range n.Entries {
		lines = append(lines, fmt.Sprintf("%dx %-14s %s", e.Count, e.Name, grams(e.UnitWeight)))
	}
	lines = append(lines, "Total package weight "+kilos(n.TotalWeight))
	return lines
}

// Receipt prints a settled checkout: lines, totals, then anything skipped.
func Receipt(r *checkout.Result) []string {
	t := Current()
	lines := []string{t.Title.Render("** Checkout receipt **")}
	for _, ln := range r.Lines {
		lines = append(lines, fmt.Sprintf("%dx %-14s %s", ln.Quantity, ln.Name, Money(ln.Total)))
	}
	lines = append(lines,
		t.Muted.Render(rule),
		summary("Subtotal", r.Subtotal),
		summary("Shipping", r.Shipping),
		t.Accent.Render(summary("Amount", r.Total)),
		summary("Balance left", r.Balance),
	)
	if len(r.Skipped) > 0 {
		lines = append(lines, "", t.Pending.Render("Skipped items:"))
		for _, s := range r.Skipped {
			lines = append(lines, "- "+s.String())
		}
	}
	return lines
}

func summary(label string, d decimal.Decimal) string {
	return fmt.Sprintf("%-17s %s", label, Money(d))
}

// Checkout returns the panel body for a settled result: the shipment notice,
// when anything ships, followed by the receipt.
func Checkout(r *checkout.Result) []string {
	var lines []string
	if notice := ShipmentNotice(r.Shipment); notice != nil {
		lines = append(lines, notice...)
		lines = append(lines, "")
	}
	return append(lines, Receipt(r)...)
}

// Failure is the one-line message for a refused checkout.
func Failure(r *checkout.Result) string {
	switch r.Outcome {
	case checkout.OutcomeEmptyCart:
		return "Cart is empty"
	case checkout.OutcomeOutOfStock:
		return r.Item + " is out of stock"
	case checkout.OutcomeExpired:
		return r.Item + " is expired"
	case checkout.OutcomeNoValidItems:
		return "No valid products in cart to proceed with checkout"
	case checkout.OutcomeInsufficientFunds:
		return fmt.Sprintf("Insufficient balance: need %s, have %s", Money(r.Total), Money(r.Balance))
	default:
		return "checkout " + r.Outcome.String()
	}
}
