package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/Makepad-fr/till/internal/model"
)

// Traits is the short marker column for an item: shipping weight and
// perishable state.
func Traits(it *model.Item) string {
	t := Current()
	out := ""
	if s, ok := it.Shippable(); ok {
		out += t.SymShip + " " + grams(s.Weight)
	}
	if p, ok := it.Perishable(); ok {
		if out != "" {
			out += "  "
		}
		if p.Expired {
			out += t.Error.Render(t.SymPerishable + " expired")
		} else {
			out += t.SymPerishable
		}
	}
	return out
}

// Catalog renders the items as a table.
func Catalog(items []*model.Item) string {
	t := Current()
	tbl := table.New().
		Border(t.Border).
		BorderStyle(lipgloss.NewStyle().Foreground(t.BorderColor)).
		Headers("Item", "Price", "Stock", "Traits").
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Inherit(t.Title)
			}
			if col == 1 || col == 2 {
				return s.Align(lipgloss.Right)
			}
			return s
		})
	for _, it := range items {
		tbl.Row(it.Name(), Money(it.Price()), strconv.Itoa(it.Stock()), Traits(it))
	}
	return tbl.Render()
}

// Accounts lists account names with their balances.
func Accounts(accts []*model.Account) []string {
	lines := make([]string, 0, len(accts))
	for _, a := range accts {
		lines = append(lines, fmt.Sprintf("%-14s %s", a.Name(), Money(a.Balance())))
	}
	return lines
}

// BasketLines prints one line per basket entry with its line price.
func BasketLines(lines []model.BasketLine) []string {
	if len(lines) == 0 {
		return []string{Current().Muted.Render("basket is empty")}
	}
	out := make([]string, 0, len(lines))
	for i, ln := range lines {
		total := ln.Item.Price().Mul(decimal.NewFromInt(int64(ln.Quantity)))
		out = append(out, fmt.Sprintf("%2d. %dx %-14s %s", i+1, ln.Quantity, ln.Item.Name(), Money(total)))
	}
	return out
}
