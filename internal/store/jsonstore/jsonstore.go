package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Makepad-fr/till/internal/model"
)

// JSON-backed storage. Single file, human-readable, portable.
// No file locking; fine for a local single-user till.

const dataFileName = "till.json"

var ErrCorrupt = errors.New("inconsistent shop data")

type itemRecord struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	Price      decimal.Decimal   `json:"price"`
	Stock      int               `json:"stock"`
	Perishable *model.Perishable `json:"perishable,omitempty"`
	Shippable  *model.Shippable  `json:"shippable,omitempty"`
}

type accountRecord struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type lineRecord struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

type fileRecord struct {
	Items    []itemRecord            `json:"items"`
	Accounts []accountRecord         `json:"accounts"`
	Baskets  map[string][]lineRecord `json:"baskets,omitempty"`
}

// Path is where the shop lives inside dir.
func Path(dir string) string {
	return filepath.Join(dir, dataFileName)
}

// Exists reports whether dir already holds a shop file.
func Exists(dir string) bool {
	_, err := os.Stat(Path(dir))
	return err == nil
}

// Load reads the shop from dir. A missing file is an empty shop.
func Load(dir string) (*Shop, error) {
	b, err := os.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewShop(), nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var rec fileRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return fromRecord(rec)
}

// Save writes the shop to dir, creating dir if needed.
func Save(dir string, shop *Shop) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(toRecord(shop), "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(Path(dir), b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func fromRecord(rec fileRecord) (*Shop, error) {
	shop := NewShop()
	ids := make(map[uuid.UUID]string, len(rec.Items))
	for _, r := range rec.Items {
		var opts []model.ItemOption
		if r.ID != uuid.Nil {
			if other, dup := ids[r.ID]; dup {
				return nil, fmt.Errorf("%w: %s and %s share id %s", ErrCorrupt, other, r.Name, r.ID)
			}
			ids[r.ID] = r.Name
			opts = append(opts, model.WithID(r.ID))
		}
		if r.Perishable != nil {
			opts = append(opts, model.WithPerishable(r.Perishable.Expired))
		}
		if r.Shippable != nil {
			opts = append(opts, model.WithShippable(r.Shippable.Weight))
		}
		it, err := model.NewItem(r.Name, r.Price, r.Stock, opts...)
		if err != nil {
			return nil, err
		}
		if err := shop.AddItem(it); err != nil {
			return nil, err
		}
	}
	for _, r := range rec.Accounts {
		if err := shop.AddAccount(model.NewAccount(r.Name, r.Balance)); err != nil {
			return nil, err
		}
	}
	for owner, lines := range rec.Baskets {
		if shop.Account(owner) == nil {
			return nil, fmt.Errorf("%w: basket for unknown account %q", ErrCorrupt, owner)
		}
		basket := shop.Basket(owner)
		for _, ln := range lines {
			it := shop.Item(ln.Item)
			if it == nil {
				return nil, fmt.Errorf("%w: basket %q names unknown item %q", ErrCorrupt, owner, ln.Item)
			}
			if ln.Quantity <= 0 {
				return nil, fmt.Errorf("%w: basket %q has %d of %q", ErrCorrupt, owner, ln.Quantity, ln.Item)
			}
			// Stock may have moved since the line was added; checkout re-validates.
			basket.Restore(model.BasketLine{Item: it, Quantity: ln.Quantity})
		}
	}
	return shop, nil
}

func toRecord(shop *Shop) fileRecord {
	rec := fileRecord{
		Items:    make([]itemRecord, 0, len(shop.items)),
		Accounts: make([]accountRecord, 0, len(shop.accounts)),
		Baskets:  make(map[string][]lineRecord),
	}
	for _, it := range shop.items {
		r := itemRecord{ID: it.ID(), Name: it.Name(), Price: it.Price(), Stock: it.Stock()}
		if p, ok := it.Perishable(); ok {
			r.Perishable = &p
		}
		if s, ok := it.Shippable(); ok {
			r.Shippable = &s
		}
		rec.Items = append(rec.Items, r)
	}
	for _, a := range shop.accounts {
		rec.Accounts = append(rec.Accounts, accountRecord{Name: a.Name(), Balance: a.Balance()})
	}
	for owner, b := range shop.baskets {
		if b.IsEmpty() {
			continue
		}
		lines := make([]lineRecord, 0, b.Len())
		for _, ln := range b.Lines() {
			lines = append(lines, lineRecord{Item: ln.Item.Name(), Quantity: ln.Quantity})
		}
		rec.Baskets[owner] = lines
	}
	return rec
}
