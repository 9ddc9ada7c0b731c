package service

import (
	"context"
	"errors"
	"testing"

	"github.com/evyataryagoni/ipscope/internal/geo"
	"github.com/evyataryagoni/ipscope/internal/logger"
	"github.com/evyataryagoni/ipscope/internal/metrics"
	"github.com/evyataryagoni/ipscope/internal/models"
	"github.com/evyataryagoni/ipscope/internal/provider"
	"github.com/evyataryagoni/ipscope/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestService() (*LookupService, *store.MockStore, *provider.MockProvider) {
	mockStore := store.NewMockStore()
	mockProvider := provider.NewMockProvider()
	return NewLookupService(mockStore, mockProvider, nil, logger.Nop()), mockStore, mockProvider
}

// TestLookupService_LookupAddress_Success tests successful lookups
func TestLookupService_LookupAddress_Success(t *testing.T) {
	tests := []struct {
		name            string
		address         string
		expectedCity    string
		expectedCountry string
		expectedISP     string
	}{
		{
			name:            "Google DNS",
			address:         "8.8.8.8",
			expectedCity:    "Mountain View",
			expectedCountry: "US",
			expectedISP:     "Google LLC",
		},
		{
			name:            "Cloudflare DNS",
			address:         "1.1.1.1",
			expectedCity:    "Brisbane",
			expectedCountry: "AU",
			expectedISP:     "Cloudflare, Inc.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockStore, mockProvider := newTestService()

			record, err := service.LookupAddress(context.Background(), tt.address)

			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if record.City != tt.expectedCity {
				t.Errorf("expected city %s, got %s", tt.expectedCity, record.City)
			}
			if record.Country != tt.expectedCountry {
				t.Errorf("expected country %s, got %s", tt.expectedCountry, record.Country)
			}
			if record.ISP != tt.expectedISP {
				t.Errorf("expected ISP %s, got %s", tt.expectedISP, record.ISP)
			}

			if len(mockProvider.FetchCalls) != 1 || mockProvider.FetchCalls[0] != tt.address {
				t.Errorf("expected one provider call for %s, got %v", tt.address, mockProvider.FetchCalls)
			}
			if len(mockStore.SaveCalls) != 1 || mockStore.SaveCalls[0] != tt.address {
				t.Errorf("expected payload cached under %s, got %v", tt.address, mockStore.SaveCalls)
			}
		})
	}
}

// TestLookupService_LookupAddress_InvalidInput tests validation errors
func TestLookupService_LookupAddress_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected error
	}{
		{"empty string", "", geo.ErrEmptyInput},
		{"hostname", "google.com", geo.ErrInvalidFormat},
		{"incomplete IPv4", "192.168.1", geo.ErrInvalidFormat},
		{"invalid characters", "192.168.1.abc", geo.ErrInvalidFormat},
		{"too many octets", "192.168.1.1.1", geo.ErrInvalidFormat},
		{"out of range", "300.300.300.300", geo.ErrInvalidFormat},
		{"four digit octet", "1000.1.1.1", geo.ErrInvalidFormat},
		{"IPv6", "2001:4860:4860::8888", geo.ErrInvalidFormat},
		{"just dots", "...", geo.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockStore, mockProvider := newTestService()

			record, err := service.LookupAddress(context.Background(), tt.address)

			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
			if record != nil {
				t.Error("expected nil record on validation failure")
			}
			// Validation failures never reach the cache or the network
			if len(mockStore.FindByIPCalls) != 0 {
				t.Errorf("expected no store calls, got %d", len(mockStore.FindByIPCalls))
			}
			if len(mockProvider.FetchCalls) != 0 {
				t.Errorf("expected no provider calls, got %d", len(mockProvider.FetchCalls))
			}
		})
	}
}

// TestLookupService_LookupAddress_CacheHit tests that cached payloads skip the provider
func TestLookupService_LookupAddress_CacheHit(t *testing.T) {
	service, mockStore, mockProvider := newTestService()
	mockStore.Data["9.9.9.9"] = &models.GeoResponse{
		IP:      "9.9.9.9",
		City:    "Berkeley",
		Country: "US",
		Org:     "AS19281 Quad9",
	}

	record, err := service.LookupAddress(context.Background(), "9.9.9.9")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.City != "Berkeley" {
		t.Errorf("expected city Berkeley, got %s", record.City)
	}
	if len(mockProvider.FetchCalls) != 0 {
		t.Errorf("expected no provider calls on cache hit, got %d", len(mockProvider.FetchCalls))
	}
	if len(mockStore.SaveCalls) != 0 {
		t.Errorf("expected no save on cache hit, got %d", len(mockStore.SaveCalls))
	}
}

// TestLookupService_LookupAddress_SecondQueryCached tests the miss-then-hit path
func TestLookupService_LookupAddress_SecondQueryCached(t *testing.T) {
	service, _, mockProvider := newTestService()
	ctx := context.Background()

	if _, err := service.LookupAddress(ctx, "8.8.8.8"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.LookupAddress(ctx, "8.8.8.8"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mockProvider.FetchCalls) != 1 {
		t.Errorf("expected 1 provider call, got %d", len(mockProvider.FetchCalls))
	}
}

// TestLookupService_LookupAddress_Bogon tests reserved addresses
func TestLookupService_LookupAddress_Bogon(t *testing.T) {
	service, mockStore, _ := newTestService()

	record, err := service.LookupAddress(context.Background(), "10.0.0.1")

	if !errors.Is(err, geo.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
	if record != nil {
		t.Error("expected nil record for bogon")
	}
	if len(mockStore.SaveCalls) != 0 {
		t.Error("expected bogon payload not to be cached")
	}
}

// TestLookupService_LookupAddress_TransportError tests provider failures
func TestLookupService_LookupAddress_TransportError(t *testing.T) {
	service, mockStore, _ := newTestService()

	// Not in the mock's table, so the mock answers 404
	_, err := service.LookupAddress(context.Background(), "192.0.2.1")

	if !errors.Is(err, geo.ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
	var te *geo.TransportError
	if !errors.As(err, &te) || te.StatusCode != 404 {
		t.Errorf("expected 404 TransportError, got %v", err)
	}
	if len(mockStore.SaveCalls) != 0 {
		t.Error("expected failed lookup not to be cached")
	}
}

// TestLookupService_LookupAddress_StoreErrorsIgnored tests that a broken cache does not fail lookups
func TestLookupService_LookupAddress_StoreErrorsIgnored(t *testing.T) {
	service, mockStore, mockProvider := newTestService()
	mockStore.FindByIPError = errors.New("connection refused")
	mockStore.SaveError = errors.New("connection refused")

	record, err := service.LookupAddress(context.Background(), "8.8.8.8")

	if err != nil {
		t.Fatalf("expected cache errors to be ignored, got %v", err)
	}
	if record.Address != "8.8.8.8" {
		t.Errorf("expected address 8.8.8.8, got %s", record.Address)
	}
	if len(mockProvider.FetchCalls) != 1 {
		t.Errorf("expected provider fallback, got %d calls", len(mockProvider.FetchCalls))
	}
}

// TestLookupService_LookupSelf tests the own-address lookup
func TestLookupService_LookupSelf(t *testing.T) {
	service, mockStore, mockProvider := newTestService()

	record, err := service.LookupSelf(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Address != "203.0.113.7" {
		t.Errorf("expected echoed address 203.0.113.7, got %s", record.Address)
	}
	if record.Type != "public" {
		t.Errorf("expected public type, got %s", record.Type)
	}
	if len(mockProvider.FetchCalls) != 1 || mockProvider.FetchCalls[0] != "" {
		t.Errorf("expected one self fetch, got %v", mockProvider.FetchCalls)
	}
	if _, ok := mockStore.Data["203.0.113.7"]; !ok {
		t.Error("expected self payload cached under the echoed address")
	}
}

// TestLookupService_LookupSelf_TransportError tests self lookup failures
func TestLookupService_LookupSelf_TransportError(t *testing.T) {
	service, _, mockProvider := newTestService()
	mockProvider.FetchError = &geo.TransportError{Err: errors.New("no route to host")}

	_, err := service.LookupSelf(context.Background())

	if !errors.Is(err, geo.ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

// TestLookupService_Metrics tests lookup and cache counters
func TestLookupService_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	mockStore := store.NewMockStore()
	service := NewLookupService(mockStore, provider.NewMockProvider(), m, logger.Nop())
	ctx := context.Background()

	service.LookupAddress(ctx, "8.8.8.8")
	service.LookupAddress(ctx, "8.8.8.8")
	service.LookupAddress(ctx, "not-an-ip")
	service.LookupAddress(ctx, "10.0.0.1")

	if got := testutil.ToFloat64(m.LookupsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("expected 2 successful lookups, got %v", got)
	}
	if got := testutil.ToFloat64(m.LookupsTotal.WithLabelValues("error")); got != 2 {
		t.Errorf("expected 2 failed lookups, got %v", got)
	}
	if got := testutil.ToFloat64(m.LookupErrors.WithLabelValues("invalid_format")); got != 1 {
		t.Errorf("expected 1 format error, got %v", got)
	}
	if got := testutil.ToFloat64(m.LookupErrors.WithLabelValues("invalid_address")); got != 1 {
		t.Errorf("expected 1 bogon error, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheResultsTotal.WithLabelValues("hit")); got != 1 {
		t.Errorf("expected 1 cache hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheResultsTotal.WithLabelValues("miss")); got != 2 {
		t.Errorf("expected 2 cache misses, got %v", got)
	}
	if got := testutil.ToFloat64(m.ProviderRequestsTotal.WithLabelValues("mock", "success")); got != 2 {
		t.Errorf("expected 2 provider requests, got %v", got)
	}
}

// TestLookupService_Close tests closing both collaborators
func TestLookupService_Close(t *testing.T) {
	service, mockStore, mockProvider := newTestService()
	mockStore.CloseError = errors.New("close failed")

	if err := service.Close(); err == nil {
		t.Error("expected store close error to be returned")
	}
	if !mockStore.CloseCalled || !mockProvider.CloseCalled {
		t.Error("expected both store and provider to be closed")
	}
}
