package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evyataryagoni/ipscope/internal/ipv4"
	"github.com/evyataryagoni/ipscope/internal/models"
)

const (
	// Placeholder fills every display field the provider left out
	Placeholder = "-"

	// NoLocationNote replaces the map links when coordinates are unknown
	NoLocationNote = "No location information available"

	googleMapsURL     = "https://www.google.com/maps?q=%s,%s"
	openStreetMapURL  = "https://www.openstreetmap.org/?mlat=%s&mlon=%s&zoom=%d"
	openStreetMapZoom = 12
)

// Interpret derives a DisplayRecord from a provider payload
//
// A bogon payload is a failure, never a partial result. The output depends
// only on the payload; fields are derived independently of each other.
func Interpret(payload *models.GeoResponse) (*models.DisplayRecord, error) {
	if payload == nil || payload.Bogon {
		return nil, ErrInvalidAddress
	}

	orgID, isp := SplitOrg(payload.Org)

	record := &models.DisplayRecord{
		Address:  payload.IP,
		Type:     string(ipv4.Classify(payload.IP)),
		Country:  orPlaceholder(payload.Country),
		Region:   orPlaceholder(payload.Region),
		City:     orPlaceholder(payload.City),
		Postal:   orPlaceholder(payload.Postal),
		ISP:      isp,
		Org:      orgID,
		Location: Placeholder,
		Timezone: orPlaceholder(payload.Timezone),
		MapNote:  NoLocationNote,
	}

	if lat, lon, ok := ParseLoc(payload.Loc); ok {
		latStr, lonStr := formatCoord(lat), formatCoord(lon)

		record.Latitude = &lat
		record.Longitude = &lon
		record.Location = latStr + ", " + lonStr
		record.MapLinks = &models.MapLinks{
			GoogleMaps:    fmt.Sprintf(googleMapsURL, latStr, lonStr),
			OpenStreetMap: fmt.Sprintf(openStreetMapURL, latStr, lonStr, openStreetMapZoom),
		}
		record.MapNote = ""
	}

	return record, nil
}

// ParseLoc splits a "lat,lon" string; ok is false unless both halves parse
func ParseLoc(loc string) (lat, lon float64, ok bool) {
	if loc == "" {
		return 0, 0, false
	}

	parts := strings.Split(loc, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// SplitOrg splits an "<ASN> <ISP name>" organization string
//
// Without a space both values are the whole string; an empty string yields
// the placeholder for both.
func SplitOrg(org string) (orgID, isp string) {
	if org == "" {
		return Placeholder, Placeholder
	}
	if !strings.Contains(org, " ") {
		return org, org
	}

	parts := strings.Split(org, " ")
	return parts[0], strings.Join(parts[1:], " ")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
