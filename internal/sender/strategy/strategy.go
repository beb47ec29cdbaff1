// Package strategy defines the interface for chat delivery channels.
package strategy

import (
	"context"
	"sort"

	"github.com/nebel/CurrencyWatchdog/internal/payload"
)

// ChatSender delivers a rendered chat batch over one channel.
type ChatSender interface {
	// Send delivers batch to one endpoint. The endpoint value format depends
	// on the channel:
	//   - kafka: partition key (profile name)
	//   - slack: incoming webhook URL
	//   - webhook: URL
	//   - email: comma-separated addresses
	//   - log: slog level name
	Send(ctx context.Context, endpointValue string, batch *payload.ChatBatch) error

	// Type returns the endpoint type this sender handles.
	Type() string
}

// Registry manages chat sender strategies.
type Registry struct {
	senders map[string]ChatSender
}

// NewRegistry creates a new sender registry.
func NewRegistry() *Registry {
	return &Registry{
		senders: make(map[string]ChatSender),
	}
}

// Register registers a sender strategy, replacing any sender of the same type.
func (r *Registry) Register(sender ChatSender) {
	r.senders[sender.Type()] = sender
}

// Get retrieves a sender strategy by type.
func (r *Registry) Get(senderType string) (ChatSender, bool) {
	sender, ok := r.senders[senderType]
	return sender, ok
}

// List returns all registered sender types in sorted order.
func (r *Registry) List() []string {
	types := make([]string, 0, len(r.senders))
	for t := range r.senders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
