package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evyataryagoni/ipscope/internal/models"
)

// Provider fetches a geolocation payload for an address
// An empty address asks for the caller's own address.
type Provider interface {
	Fetch(ctx context.Context, address string) (*models.GeoResponse, error)

	// Name identifies the provider in logs and metrics
	Name() string

	Close() error
}

// Config selects and configures a provider
type Config struct {
	Type string // "ipinfo" or "mmdb"

	// ipinfo
	BaseURL string
	Token   string
	Timeout time.Duration

	// mmdb
	CityDBPath string
	ASNDBPath  string // optional
}

// NewProvider builds the provider named by cfg.Type
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "ipinfo", "":
		return NewIPInfoProvider(cfg.BaseURL, cfg.Token, cfg.Timeout), nil

	case "mmdb":
		p, err := NewMMDBProvider(cfg.CityDBPath, cfg.ASNDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open MaxMind databases: %w", err)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: 'ipinfo', 'mmdb')", cfg.Type)
	}
}
