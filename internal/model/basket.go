package model

import "fmt"

// BasketLine is one selection: a shared catalog item and a requested quantity.
type BasketLine struct {
	Item     *Item
	Quantity int
}

// Basket accumulates lines in insertion order. It does not reserve stock, so
// stock is checked again at checkout.
type Basket struct {
	lines []BasketLine
}

func NewBasket() *Basket {
	return &Basket{}
}

// Add appends a line, refusing quantities the item cannot currently cover.
func (b *Basket) Add(item *Item, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	item.Lock()
	stock := item.Stock()
	item.Unlock()
	if quantity > stock {
		return fmt.Errorf("%w: %s has %d, asked for %d", ErrInsufficientStock, item.Name(), stock, quantity)
	}
	b.lines = append(b.lines, BasketLine{Item: item, Quantity: quantity})
	return nil
}

// Restore appends a previously accepted line without the add-time stock check.
// Used when reading baskets back from storage; checkout validates again.
func (b *Basket) Restore(line BasketLine) {
	b.lines = append(b.lines, line)
}

func (b *Basket) IsEmpty() bool { return len(b.lines) == 0 }
func (b *Basket) Len() int      { return len(b.lines) }

// Lines returns a copy of the lines in insertion order.
func (b *Basket) Lines() []BasketLine {
	out := make([]BasketLine, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *Basket) Clear() {
	b.lines = nil
}
