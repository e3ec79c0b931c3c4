package model

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Account holds a customer's funds. Like Item, Balance and Debit are
// unsynchronized; concurrent users hold the account lock.
type Account struct {
	mu sync.Mutex

	name    string
	balance decimal.Decimal
}

func NewAccount(name string, balance decimal.Decimal) *Account {
	return &Account{name: name, balance: balance}
}

func (a *Account) Name() string             { return a.name }
func (a *Account) Balance() decimal.Decimal { return a.balance }

// Debit takes amount off the balance. The balance never goes negative.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if a.balance.LessThan(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, a.name, a.balance, amount)
	}
	a.balance = a.balance.Sub(amount)
	return nil
}

func (a *Account) Lock()   { a.mu.Lock() }
func (a *Account) Unlock() { a.mu.Unlock() }
