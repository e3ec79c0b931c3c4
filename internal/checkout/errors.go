package checkout

import "errors"

// Sentinels for refused checkouts. Result.Err maps an outcome onto these;
// Checkout itself reports them as outcomes, not as errors.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOutOfStock        = errors.New("out of stock")
	ErrExpired           = errors.New("expired")
	ErrNoValidItems      = errors.New("no valid products in cart")
	ErrInsufficientFunds = errors.New("insufficient balance")
)
