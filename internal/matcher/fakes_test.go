package matcher

import (
	"github.com/nebel/CurrencyWatchdog/internal/subject"
)

// FakeResolver resolves item subjects from a fixed table keyed by item id.
type FakeResolver struct {
	Items    map[uint32]subject.Details
	Resolved []subject.Subject
}

func (f *FakeResolver) Resolve(s subject.Subject) (subject.Details, bool) {
	f.Resolved = append(f.Resolved, s)
	d, ok := f.Items[s.ID]
	if !ok {
		return subject.Details{}, false
	}
	return d.WithAlias(s.Alias), true
}
