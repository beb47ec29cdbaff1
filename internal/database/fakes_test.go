package database

import "context"

// FakeSource serves a fixed catalog and counts loads.
type FakeSource struct {
	Items      []Item
	Tomestones Tomestones
	Err        error
	Loads      int
}

func (f *FakeSource) ListItems(ctx context.Context) ([]Item, error) {
	f.Loads++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Items, nil
}

func (f *FakeSource) ListTomestones(ctx context.Context) (Tomestones, error) {
	if f.Err != nil {
		return Tomestones{}, f.Err
	}
	return f.Tomestones, nil
}
