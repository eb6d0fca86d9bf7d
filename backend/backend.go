package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Client answers a single prompt. Implementations wrap one provider SDK and
// must honor context cancellation and deadlines.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)

	// Info returns metadata about the client implementation.
	Info() Info
}

// Info contains metadata about a backend implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "gemini", etc.
}

// Gateway is the capability the council engine requires from its
// environment: ask a named backend a prompt, get text or a failure.
type Gateway interface {
	Submit(ctx context.Context, backendID, prompt string) (string, error)
}

// Registry maps backend ids to clients and implements Gateway. Registration
// happens at wiring time; afterwards the registry is read-only and safe for
// concurrent Submit calls.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register adds a client under id. Registering the same id twice is a
// configuration error.
func (r *Registry) Register(id string, client Client) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("backend id is required")
	}
	if client == nil {
		return fmt.Errorf("backend client for %q is nil", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[id]; exists {
		return fmt.Errorf("backend %q already registered", id)
	}
	r.clients[id] = client
	return nil
}

// IDs returns the registered backend ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Submit implements Gateway by delegating to the registered client.
func (r *Registry) Submit(ctx context.Context, backendID, prompt string) (string, error) {
	r.mu.RLock()
	client, ok := r.clients[backendID]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown backend %q", backendID)
	}
	return client.Complete(ctx, prompt)
}
