package provider

import (
	"context"
	"errors"
)

// FakeProvider records the requests it is asked to send.
type FakeProvider struct {
	ProviderName string
	Configured   bool
	Err          error
	Sent         []*EmailRequest
}

func (f *FakeProvider) Name() string       { return f.ProviderName }
func (f *FakeProvider) IsConfigured() bool { return f.Configured }

func (f *FakeProvider) Send(_ context.Context, req *EmailRequest) error {
	if f.Err != nil {
		return f.Err
	}
	f.Sent = append(f.Sent, req)
	return nil
}

var errProviderDown = errors.New("provider down")
