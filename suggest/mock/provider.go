// Package mock provides test doubles for suggestion providers.
package mock

import (
	"context"
	"sync"
)

// MockProvider is a test double for suggest.Provider. Behavior is injected
// via the function field; without one it returns canned alternatives.
type MockProvider struct {
	// AlternativesFunc is called by Alternatives if set.
	AlternativesFunc func(ctx context.Context, terms []string) ([]string, error)

	// Canned is returned when AlternativesFunc is nil.
	Canned []string

	mu        sync.Mutex
	callCount int
	lastTerms []string
}

// NewMockProvider creates a mock provider with the given canned output.
func NewMockProvider(canned ...string) *MockProvider {
	return &MockProvider{Canned: canned}
}

func (m *MockProvider) Alternatives(ctx context.Context, terms []string) ([]string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastTerms = append([]string(nil), terms...)
	m.mu.Unlock()

	if m.AlternativesFunc != nil {
		return m.AlternativesFunc(ctx, terms)
	}
	return append([]string(nil), m.Canned...), nil
}

// CallCount returns the number of times Alternatives was called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastTerms returns the terms of the most recent call.
func (m *MockProvider) LastTerms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTerms
}
