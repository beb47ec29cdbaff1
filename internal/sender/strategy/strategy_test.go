package strategy

import (
	"context"
	"testing"

	"github.com/nebel/CurrencyWatchdog/internal/payload"
)

type stubSender struct{ kind string }

func (s stubSender) Send(ctx context.Context, endpointValue string, batch *payload.ChatBatch) error {
	return nil
}

func (s stubSender) Type() string { return s.kind }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if len(r.List()) != 0 {
		t.Fatalf("List() = %v, want empty", r.List())
	}

	r.Register(stubSender{kind: "webhook"})
	r.Register(stubSender{kind: "slack"})
	r.Register(stubSender{kind: "slack"})

	if got := r.List(); len(got) != 2 || got[0] != "slack" || got[1] != "webhook" {
		t.Errorf("List() = %v, want [slack webhook]", got)
	}
	if _, ok := r.Get("slack"); !ok {
		t.Error("Get(slack) not found")
	}
	if _, ok := r.Get("email"); ok {
		t.Error("Get(email) found, want miss")
	}
}
