// Package provider defines the email backends the email sender can deliver
// through and a registry that picks one with fallback.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
)

// EmailRequest is one email to deliver.
type EmailRequest struct {
	From    string
	To      []string
	Subject string
	Body    string // plain text
	HTML    string // optional
}

// Provider is an email backend.
type Provider interface {
	Name() string
	Send(ctx context.Context, req *EmailRequest) error
	// IsConfigured reports whether credentials were found at construction.
	IsConfigured() bool
}

// Registry manages email providers with fallback support.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	primary   string
	fallback  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider, replacing any with the same name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	slog.Info("Registered email provider", "name", p.Name(), "configured", p.IsConfigured())
}

// SetPrimary sets the preferred provider.
func (r *Registry) SetPrimary(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("provider %q not registered", name)
	}
	r.primary = name
	return nil
}

// SetFallback sets the providers tried, in order, when the primary is
// unconfigured or fails.
func (r *Registry) SetFallback(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, ok := r.providers[name]; !ok {
			return fmt.Errorf("provider %q not registered", name)
		}
	}
	r.fallback = names
	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// GetPrimary returns the primary provider if configured, else the first
// configured fallback, else any configured provider in name order.
func (r *Registry) GetPrimary() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.providers[r.primary]; ok && p.IsConfigured() {
		return p, nil
	}

	for _, name := range r.fallback {
		if p, ok := r.providers[name]; ok && p.IsConfigured() {
			slog.Warn("Primary email provider not configured, using fallback",
				"primary", r.primary,
				"fallback", name,
			)
			return p, nil
		}
	}

	for _, name := range r.sortedNames() {
		if p := r.providers[name]; p.IsConfigured() {
			slog.Warn("Using first available email provider", "name", name)
			return p, nil
		}
	}

	return nil, fmt.Errorf("no configured email provider available")
}

// Send delivers req through the best available provider. When it fails the
// configured fallbacks are tried in order; the original error is returned if
// all of them fail too.
func (r *Registry) Send(ctx context.Context, req *EmailRequest) error {
	primary, err := r.GetPrimary()
	if err != nil {
		return err
	}

	err = primary.Send(ctx, req)
	if err == nil {
		return nil
	}

	r.mu.RLock()
	fallbacks := r.fallback
	r.mu.RUnlock()

	for _, name := range fallbacks {
		p, ok := r.Get(name)
		if !ok || !p.IsConfigured() || p.Name() == primary.Name() {
			continue
		}

		slog.Warn("Email provider failed, trying fallback",
			"primary", primary.Name(),
			"fallback", name,
			"error", err,
		)
		if fallbackErr := p.Send(ctx, req); fallbackErr == nil {
			return nil
		}
	}
	return err
}

// List returns the registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetEnvOrDefault returns the environment variable value or defaultValue.
func GetEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
