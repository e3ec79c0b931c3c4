package checkout

import "github.com/Makepad-fr/till/internal/model"

// ShippableUnit is one physical unit going into the package.
type ShippableUnit struct {
	Name   string
	Weight float64
}

// ShipmentEntry aggregates the units of one item name.
type ShipmentEntry struct {
	Name       string
	Count      int
	UnitWeight float64
}

// Weight is the entry's contribution to the package.
func (e ShipmentEntry) Weight() float64 {
	return e.UnitWeight * float64(e.Count)
}

// ShipmentNotice lists what ships, per item name, in first-seen order.
type ShipmentNotice struct {
	Entries     []ShipmentEntry
	TotalWeight float64
}

func (n ShipmentNotice) Empty() bool { return len(n.Entries) == 0 }

// BuildShipmentNotice groups units by name. The unit weight recorded for a
// name is the first one seen; the total sums every unit as given.
func BuildShipmentNotice(units []ShippableUnit) ShipmentNotice {
	var notice ShipmentNotice
	index := make(map[string]int, len(units))
	for _, u := range units {
		notice.TotalWeight += u.Weight
		if i, ok := index[u.Name]; ok {
			notice.Entries[i].Count++
			continue
		}
		index[u.Name] = len(notice.Entries)
		notice.Entries = append(notice.Entries, ShipmentEntry{Name: u.Name, Count: 1, UnitWeight: u.Weight})
	}
	return notice
}

// shippableUnits expands each shippable line into one unit per quantity.
func shippableUnits(lines []model.BasketLine) []ShippableUnit {
	var units []ShippableUnit
	for _, ln := range lines {
		s, ok := ln.Item.Shippable()
		if !ok {
			continue
		}
		for range ln.Quantity {
			units = append(units, ShippableUnit{Name: ln.Item.Name(), Weight: s.Weight})
		}
	}
	return units
}
