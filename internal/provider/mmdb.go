package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/evyataryagoni/ipscope/internal/geo"
	"github.com/evyataryagoni/ipscope/internal/ipv4"
	"github.com/evyataryagoni/ipscope/internal/models"
	"github.com/oschwald/geoip2-golang"
)

var errSelfLookupOffline = errors.New("self lookup needs a network provider")

// CityReader is the part of *geoip2.Reader used for location data
type CityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// ASNReader is the part of *geoip2.Reader used for network owner data
type ASNReader interface {
	ASN(ip net.IP) (*geoip2.ASN, error)
	Close() error
}

// MMDBProvider answers lookups from local MaxMind GeoLite2 databases
// The payload it builds has the same shape as an ipinfo response.
type MMDBProvider struct {
	city CityReader
	asn  ASNReader // nil when no ASN database is configured
}

// NewMMDBProviderFromReaders wraps already opened databases; asn may be nil
func NewMMDBProviderFromReaders(city CityReader, asn ASNReader) *MMDBProvider {
	return &MMDBProvider{city: city, asn: asn}
}

// NewMMDBProvider opens the City database and, if asnPath is set, the ASN database
func NewMMDBProvider(cityPath, asnPath string) (*MMDBProvider, error) {
	city, err := geoip2.Open(cityPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open city database: %w", err)
	}

	p := &MMDBProvider{city: city}
	if asnPath != "" {
		asn, err := geoip2.Open(asnPath)
		if err != nil {
			city.Close()
			return nil, fmt.Errorf("failed to open ASN database: %w", err)
		}
		p.asn = asn
	}
	return p, nil
}

func (p *MMDBProvider) Name() string {
	return "mmdb"
}

func (p *MMDBProvider) Fetch(ctx context.Context, address string) (*models.GeoResponse, error) {
	if address == "" {
		return nil, &geo.TransportError{Err: errSelfLookupOffline}
	}

	// net.ParseIP rejects leading zeros, which the validator lets through
	octets, ok := ipv4.Parse(address)
	if !ok {
		return nil, fmt.Errorf("%w: %s", geo.ErrInvalidFormat, address)
	}
	ip := net.IPv4(byte(octets[0]), byte(octets[1]), byte(octets[2]), byte(octets[3]))
	if IsReserved(ip) {
		return &models.GeoResponse{IP: address, Bogon: true}, nil
	}

	record, err := p.city.City(ip)
	if err != nil {
		return nil, &geo.TransportError{Err: err}
	}
	resp := FromCity(address, record)

	if p.asn != nil {
		asn, err := p.asn.ASN(ip)
		if err == nil && asn.AutonomousSystemNumber != 0 {
			resp.Org = FormatOrg(asn.AutonomousSystemNumber, asn.AutonomousSystemOrganization)
		}
	}

	return resp, nil
}

func (p *MMDBProvider) Close() error {
	err := p.city.Close()
	if p.asn != nil {
		if asnErr := p.asn.Close(); err == nil {
			err = asnErr
		}
	}
	return err
}

// FromCity maps a GeoLite2 City record to the ipinfo payload shape
func FromCity(address string, record *geoip2.City) *models.GeoResponse {
	resp := &models.GeoResponse{
		IP:       address,
		City:     record.City.Names["en"],
		Country:  record.Country.IsoCode,
		Postal:   record.Postal.Code,
		Timezone: record.Location.TimeZone,
	}
	if len(record.Subdivisions) > 0 {
		resp.Region = record.Subdivisions[0].Names["en"]
	}
	// MaxMind leaves both coordinates at zero when the location is unknown
	if record.Location.Latitude != 0 || record.Location.Longitude != 0 {
		resp.Loc = strconv.FormatFloat(record.Location.Latitude, 'f', 4, 64) + "," +
			strconv.FormatFloat(record.Location.Longitude, 'f', 4, 64)
	}
	return resp
}

// FormatOrg renders an ASN the way ipinfo does: "AS<number> <organization>"
func FormatOrg(number uint, organization string) string {
	if organization == "" {
		return fmt.Sprintf("AS%d", number)
	}
	return fmt.Sprintf("AS%d %s", number, organization)
}

// IsReserved reports addresses a geolocation database has nothing to say about
func IsReserved(ip net.IP) bool {
	return ip.IsPrivate() ||
		ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified()
}
