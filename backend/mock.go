package backend

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Mock is a lightweight in-memory Client useful for tests & examples.
// Responses can be keyed by prompt; unknown prompts get a deterministic
// echo. Err, if set, makes every call fail; Delay simulates latency so
// timeout behavior can be exercised.
type Mock struct {
	info      Info
	mu        sync.Mutex
	responses map[string]string
	calls     int

	Err   error
	Delay time.Duration
}

// NewMock constructs a Mock client.
func NewMock(name string) *Mock {
	return &Mock{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *Mock) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Calls returns how many times Complete has been invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Complete implements Client.
func (m *Mock) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	response, ok := m.responses[prompt]
	err := m.Err
	delay := m.Delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !ok {
		response = fmt.Sprintf("Mock response to: %s", prompt)
	}
	return response, nil
}

// Info implements Client.
func (m *Mock) Info() Info { return m.info }
