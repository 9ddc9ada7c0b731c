package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evyataryagoni/ipscope/internal/geo"
	"github.com/evyataryagoni/ipscope/internal/models"
)

// DefaultIPInfoURL is the public ipinfo endpoint
const DefaultIPInfoURL = "https://ipinfo.io/"

// IPInfoProvider queries an ipinfo-compatible HTTP API
//
//	GET {base}json            own address
//	GET {base}{address}/json  explicit address
type IPInfoProvider struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewIPInfoProvider creates an ipinfo client
// An empty baseURL selects DefaultIPInfoURL; a zero timeout means no timeout.
func NewIPInfoProvider(baseURL, token string, timeout time.Duration) *IPInfoProvider {
	if baseURL == "" {
		baseURL = DefaultIPInfoURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &IPInfoProvider{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *IPInfoProvider) Name() string {
	return "ipinfo"
}

// URL returns the request URL for address
func (p *IPInfoProvider) URL(address string) string {
	u := p.baseURL + "json"
	if address != "" {
		u = p.baseURL + url.PathEscape(address) + "/json"
	}
	if p.token != "" {
		u += "?token=" + url.QueryEscape(p.token)
	}
	return u
}

// Fetch performs one GET; it never retries
func (p *IPInfoProvider) Fetch(ctx context.Context, address string) (*models.GeoResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(address), nil)
	if err != nil {
		return nil, &geo.TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &geo.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &geo.TransportError{StatusCode: resp.StatusCode}
	}

	var payload models.GeoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &geo.TransportError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return &payload, nil
}

// Close is a no-op; idle connections belong to the shared transport
func (p *IPInfoProvider) Close() error {
	return nil
}
