package store

import (
	"context"
	"errors"

	"github.com/evyataryagoni/ipscope/internal/models"
)

// ErrNotFound is returned on a cache miss (absent or expired entry)
var ErrNotFound = errors.New("IP address not found in cache")

// Store caches provider payloads by address
// Allows multiple implementations (CSV-seeded memory, MySQL, Redis) and easy testing with mocks
type Store interface {
	// FindByIP returns the cached payload for ip, or ErrNotFound
	FindByIP(ctx context.Context, ip string) (*models.GeoResponse, error)

	// Save stores a payload under its IP field
	Save(ctx context.Context, resp *models.GeoResponse) error

	// Close cleans up resources (database connections, etc.)
	Close() error
}

var errNoAddress = errors.New("cannot cache a response without an IP address")
