package provider

import (
	"context"
	"sync"

	"github.com/evyataryagoni/ipscope/internal/geo"
	"github.com/evyataryagoni/ipscope/internal/models"
)

// MockProvider is a test double for the Provider interface
type MockProvider struct {
	mu sync.Mutex

	// Responses maps addresses to payloads; "" is the self-lookup answer
	Responses map[string]*models.GeoResponse

	// Track method calls for verification in tests
	FetchCalls  []string
	CloseCalled bool

	// Control behavior for error scenarios
	FetchError error
}

// NewMockProvider creates a mock provider with sample payloads
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Responses: map[string]*models.GeoResponse{
			"8.8.8.8": {
				IP:       "8.8.8.8",
				City:     "Mountain View",
				Region:   "California",
				Country:  "US",
				Loc:      "37.4056,-122.0775",
				Org:      "AS15169 Google LLC",
				Postal:   "94043",
				Timezone: "America/Los_Angeles",
			},
			"1.1.1.1": {
				IP:       "1.1.1.1",
				City:     "Brisbane",
				Region:   "Queensland",
				Country:  "AU",
				Loc:      "-27.4816,153.0175",
				Org:      "AS13335 Cloudflare, Inc.",
				Postal:   "4101",
				Timezone: "Australia/Brisbane",
			},
			"10.0.0.1": {IP: "10.0.0.1", Bogon: true},
			"": {
				IP:      "203.0.113.7",
				Country: "NL",
				Org:     "AS64500",
			},
		},
		FetchCalls: []string{},
	}
}

func (m *MockProvider) Name() string {
	return "mock"
}

// Fetch returns the configured payload, or a 404 transport error for unknown addresses
func (m *MockProvider) Fetch(ctx context.Context, address string) (*models.GeoResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCalls = append(m.FetchCalls, address)

	if m.FetchError != nil {
		return nil, m.FetchError
	}

	resp, ok := m.Responses[address]
	if !ok {
		return nil, &geo.TransportError{StatusCode: 404}
	}

	copied := *resp
	return &copied, nil
}

func (m *MockProvider) Close() error {
	m.CloseCalled = true
	return nil
}
