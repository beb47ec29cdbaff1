package resolver

import "github.com/nebel/CurrencyWatchdog/internal/database"

// FakeCatalog serves items from a map.
type FakeCatalog struct {
	Items map[uint32]database.Item
	Tomes database.Tomestones
}

func (f *FakeCatalog) Item(itemID uint32) (database.Item, bool) {
	item, ok := f.Items[itemID]
	return item, ok
}

func (f *FakeCatalog) Tomestones() database.Tomestones {
	return f.Tomes
}
