package checkout

import (
	"fmt"
	"strings"
)

// Policy decides what an invalid basket line does to the checkout.
type Policy int

const (
	// AbortOnFirstInvalid refuses the whole checkout at the first invalid line.
	AbortOnFirstInvalid Policy = iota
	// SkipInvalidLines drops invalid lines and settles the rest.
	SkipInvalidLines
)

func (p Policy) String() string {
	switch p {
	case AbortOnFirstInvalid:
		return "abort"
	case SkipInvalidLines:
		return "skip"
	default:
		return "unknown"
	}
}

// ParsePolicy accepts "abort" or "skip".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort":
		return AbortOnFirstInvalid, nil
	case "skip":
		return SkipInvalidLines, nil
	default:
		return 0, fmt.Errorf("unknown checkout policy %q (want abort or skip)", s)
	}
}

// Outcome is how a checkout call ended.
type Outcome int

const (
	OutcomeSettled Outcome = iota
	OutcomeEmptyCart
	OutcomeOutOfStock
	OutcomeExpired
	OutcomeNoValidItems
	OutcomeInsufficientFunds
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSettled:
		return "settled"
	case OutcomeEmptyCart:
		return "empty_cart"
	case OutcomeOutOfStock:
		return "out_of_stock"
	case OutcomeExpired:
		return "expired"
	case OutcomeNoValidItems:
		return "no_valid_items"
	case OutcomeInsufficientFunds:
		return "insufficient_funds"
	default:
		return "unknown"
	}
}

// Reason is why a single line was refused.
type Reason int

const (
	ReasonOutOfStock Reason = iota + 1
	ReasonExpired
)

func (r Reason) String() string {
	switch r {
	case ReasonOutOfStock:
		return "out of stock"
	case ReasonExpired:
		return "expired"
	default:
		return "valid"
	}
}

func (r Reason) outcome() Outcome {
	if r == ReasonExpired {
		return OutcomeExpired
	}
	return OutcomeOutOfStock
}
