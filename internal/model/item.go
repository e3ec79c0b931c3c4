package model

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Perishable is the trait of items that can go past their date.
type Perishable struct {
	Expired bool `json:"expired"`
}

// Shippable is the trait of items that leave the shop in a package.
// Weight is in kilograms.
type Shippable struct {
	Weight float64 `json:"weight"`
}

// Item is a catalog entry. Traits are optional records rather than subtypes,
// so asking a non-shippable item for its weight is not expressible.
//
// Stock is the only mutable field. Reads of Stock and calls to ReduceStock are
// not synchronized; callers sharing an Item across goroutines hold its lock.
type Item struct {
	mu sync.Mutex

	id         uuid.UUID
	name       string
	price      decimal.Decimal
	stock      int
	perishable *Perishable
	shippable  *Shippable
}

// ItemOption configures an Item at construction.
type ItemOption func(*Item)

// WithID pins the item identity, e.g. when restoring from storage.
func WithID(id uuid.UUID) ItemOption {
	return func(it *Item) { it.id = id }
}

func WithPerishable(expired bool) ItemOption {
	return func(it *Item) { it.perishable = &Perishable{Expired: expired} }
}

func WithShippable(weight float64) ItemOption {
	return func(it *Item) { it.shippable = &Shippable{Weight: weight} }
}

func NewItem(name string, price decimal.Decimal, stock int, opts ...ItemOption) (*Item, error) {
	it := &Item{
		id:    uuid.New(),
		name:  strings.TrimSpace(name),
		price: price,
		stock: stock,
	}
	for _, opt := range opts {
		opt(it)
	}
	switch {
	case it.name == "":
		return nil, fmt.Errorf("%w: empty name", ErrInvalidItem)
	case it.price.IsNegative():
		return nil, fmt.Errorf("%w: %s has negative price", ErrInvalidItem, it.name)
	case it.stock < 0:
		return nil, fmt.Errorf("%w: %s has negative stock", ErrInvalidItem, it.name)
	case it.shippable != nil && it.shippable.Weight <= 0:
		return nil, fmt.Errorf("%w: %s must weigh more than zero", ErrInvalidItem, it.name)
	}
	return it, nil
}

func (i *Item) ID() uuid.UUID          { return i.id }
func (i *Item) Name() string           { return i.name }
func (i *Item) Price() decimal.Decimal { return i.price }
func (i *Item) Stock() int             { return i.stock }

// IsExpired is false unless the item is perishable and past its date.
func (i *Item) IsExpired() bool {
	return i.perishable != nil && i.perishable.Expired
}

func (i *Item) RequiresShipping() bool {
	return i.shippable != nil
}

// Perishable returns the perishable trait, if the item carries one.
func (i *Item) Perishable() (Perishable, bool) {
	if i.perishable == nil {
		return Perishable{}, false
	}
	return *i.perishable, true
}

// Shippable returns the shipping trait, if the item carries one.
func (i *Item) Shippable() (Shippable, bool) {
	if i.shippable == nil {
		return Shippable{}, false
	}
	return *i.shippable, true
}

// ReduceStock takes n units out of stock. The caller validates n beforehand;
// asking for more than is in stock is a defect and leaves stock unchanged.
func (i *Item) ReduceStock(n int) error {
	if n < 0 || n > i.stock {
		return fmt.Errorf("%w: reduce %s stock %d by %d", ErrInvariantViolation, i.name, i.stock, n)
	}
	i.stock -= n
	return nil
}

func (i *Item) Lock()   { i.mu.Lock() }
func (i *Item) Unlock() { i.mu.Unlock() }
