package jsonstore

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Makepad-fr/till/internal/model"
)

// Shop is everything the till keeps between runs: the catalog, the customer
// accounts and one basket per account.
type Shop struct {
	items    []*model.Item
	accounts []*model.Account
	baskets  map[string]*model.Basket
}

func NewShop() *Shop {
	return &Shop{baskets: make(map[string]*model.Basket)}
}

// Items returns the catalog in the order items were added.
func (s *Shop) Items() []*model.Item {
	return append([]*model.Item(nil), s.items...)
}

func (s *Shop) Accounts() []*model.Account {
	return append([]*model.Account(nil), s.accounts...)
}

// Item finds a catalog item by name, or nil.
func (s *Shop) Item(name string) *model.Item {
	for _, it := range s.items {
		if it.Name() == name {
			return it
		}
	}
	return nil
}

// Account finds an account by name, or nil.
func (s *Shop) Account(name string) *model.Account {
	for _, a := range s.accounts {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

// Basket returns the account's basket, creating an empty one on first use.
func (s *Shop) Basket(owner string) *model.Basket {
	b, ok := s.baskets[owner]
	if !ok {
		b = model.NewBasket()
		s.baskets[owner] = b
	}
	return b
}

// BasketOwners lists accounts with a non-empty basket, sorted.
func (s *Shop) BasketOwners() []string {
	var out []string
	for owner, b := range s.baskets {
		if !b.IsEmpty() {
			out = append(out, owner)
		}
	}
	sort.Strings(out)
	return out
}

// AddItem appends an item; names are unique within a catalog.
func (s *Shop) AddItem(it *model.Item) error {
	if s.Item(it.Name()) != nil {
		return fmt.Errorf("%w: duplicate item %q", ErrCorrupt, it.Name())
	}
	s.items = append(s.items, it)
	return nil
}

// AddAccount appends an account; names are unique.
func (s *Shop) AddAccount(a *model.Account) error {
	if s.Account(a.Name()) != nil {
		return fmt.Errorf("%w: duplicate account %q", ErrCorrupt, a.Name())
	}
	s.accounts = append(s.accounts, a)
	return nil
}

// Seed returns the demo shop: a small grocery-and-electronics catalog and
// two customers, one of them short of money.
func Seed() *Shop {
	shop := NewShop()
	must := func(it *model.Item, err error) *model.Item {
		if err != nil {
			panic(fmt.Errorf("jsonstore: seed item: %w", err))
		}
		return it
	}
	price := decimal.NewFromInt
	for _, it := range []*model.Item{
		must(model.NewItem("Cheese", price(100), 10, model.WithPerishable(false), model.WithShippable(0.2))),
		must(model.NewItem("Biscuits", price(150), 5, model.WithPerishable(false))),
		must(model.NewItem("TV", price(500), 2, model.WithShippable(2.5))),
		must(model.NewItem("ScratchCard", price(50), 20)),
		must(model.NewItem("Expired Cheese", price(100), 5, model.WithPerishable(true), model.WithShippable(0.2))),
	} {
		_ = shop.AddItem(it)
	}
	_ = shop.AddAccount(model.NewAccount("Ahmed", price(1000)))
	_ = shop.AddAccount(model.NewAccount("Poor", price(50)))
	return shop
}
