package sender

import (
	"context"
	"sync"

	"github.com/nebel/CurrencyWatchdog/internal/database"
	"github.com/nebel/CurrencyWatchdog/internal/payload"
)

// FakeChatSender records delivered batches and fails with the queued errors
// first.
type FakeChatSender struct {
	mu       sync.Mutex
	SendType string
	Errs     []error
	Calls    int
	Batches  []*payload.ChatBatch
	Values   []string
}

func (f *FakeChatSender) Type() string { return f.SendType }

func (f *FakeChatSender) Send(_ context.Context, endpointValue string, batch *payload.ChatBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if len(f.Errs) > 0 {
		err := f.Errs[0]
		f.Errs = f.Errs[1:]
		if err != nil {
			return err
		}
	}
	f.Batches = append(f.Batches, batch)
	f.Values = append(f.Values, endpointValue)
	return nil
}

// FakeHistory collects inserted history entries.
type FakeHistory struct {
	Entries []*database.HistoryEntry
	Err     error
}

func (f *FakeHistory) InsertAlertHistory(_ context.Context, entry *database.HistoryEntry) (*int64, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.Entries = append(f.Entries, entry)
	id := int64(len(f.Entries))
	return &id, nil
}

// FakeDeliverer records delivered jobs. When Block is set each delivery
// announces itself on Started and waits for Block to be closed.
type FakeDeliverer struct {
	mu      sync.Mutex
	Jobs    []Job
	Err     error
	Block   chan struct{}
	Started chan string
}

func (f *FakeDeliverer) Deliver(_ context.Context, job Job) error {
	if f.Started != nil {
		f.Started <- job.Batch.ID
	}
	if f.Block != nil {
		<-f.Block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Jobs = append(f.Jobs, job)
	return nil
}

func (f *FakeDeliverer) Delivered() []Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Job(nil), f.Jobs...)
}

// FakeRecorder counts errors and custom increments.
type FakeRecorder struct {
	mu     sync.Mutex
	Errors int
	Custom map[string]int
}

func (f *FakeRecorder) RecordError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors++
}

func (f *FakeRecorder) IncrementCustom(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Custom == nil {
		f.Custom = map[string]int{}
	}
	f.Custom[name]++
}
