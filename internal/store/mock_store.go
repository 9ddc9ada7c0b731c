package store

import (
	"context"
	"sync"

	"github.com/evyataryagoni/ipscope/internal/models"
)

// MockStore is a test double for the Store interface
// It allows tests to control behavior and verify interactions
type MockStore struct {
	mu sync.Mutex

	// Data holds the cached payloads (IP address -> response)
	Data map[string]*models.GeoResponse

	// Track method calls for verification in tests
	FindByIPCalls []string
	SaveCalls     []string
	CloseCalled   bool

	// Control behavior for error scenarios
	FindByIPError error
	SaveError     error
	CloseError    error
}

// NewMockStore creates an empty mock cache
func NewMockStore() *MockStore {
	return &MockStore{
		Data:          map[string]*models.GeoResponse{},
		FindByIPCalls: []string{},
		SaveCalls:     []string{},
	}
}

func (m *MockStore) FindByIP(ctx context.Context, ip string) (*models.GeoResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FindByIPCalls = append(m.FindByIPCalls, ip)

	if m.FindByIPError != nil {
		return nil, m.FindByIPError
	}

	resp, exists := m.Data[ip]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *resp
	return &copied, nil
}

func (m *MockStore) Save(ctx context.Context, resp *models.GeoResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls = append(m.SaveCalls, resp.IP)

	if m.SaveError != nil {
		return m.SaveError
	}

	copied := *resp
	m.Data[resp.IP] = &copied
	return nil
}

func (m *MockStore) Close() error {
	m.CloseCalled = true
	return m.CloseError
}
