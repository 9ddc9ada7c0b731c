package models

// GeoResponse is the payload returned by an ipinfo-compatible provider
// Empty strings mean the provider did not send the field
type GeoResponse struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname,omitempty"`
	City     string `json:"city,omitempty"`
	Region   string `json:"region,omitempty"`
	Country  string `json:"country,omitempty"`
	Loc      string `json:"loc,omitempty"`      // "latitude,longitude"
	Org      string `json:"org,omitempty"`      // "<ASN> <ISP name>"
	Postal   string `json:"postal,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Bogon    bool   `json:"bogon,omitempty"` // reserved or non-routable address
}

// MapLinks holds the external map URLs for a located address
type MapLinks struct {
	GoogleMaps    string `json:"google_maps"`
	OpenStreetMap string `json:"openstreetmap"`
}

// DisplayRecord is the normalized, render-ready view of a GeoResponse
// Every string field carries a placeholder instead of being empty
type DisplayRecord struct {
	Address   string    `json:"address"`
	Type      string    `json:"type"` // "private" or "public"
	Country   string    `json:"country"`
	Region    string    `json:"region"`
	City      string    `json:"city"`
	Postal    string    `json:"postal"`
	ISP       string    `json:"isp"`
	Org       string    `json:"org"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Location  string    `json:"location"`
	Timezone  string    `json:"timezone"`
	MapLinks  *MapLinks `json:"map_links,omitempty"`
	MapNote   string    `json:"map_note,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are known
func (d *DisplayRecord) HasCoordinates() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// ViewMode is the tri-state display mode of a lookup
type ViewMode string

const (
	ModeLoading ViewMode = "loading"
	ModeError   ViewMode = "error"
	ModeResult  ViewMode = "result"
)

// ViewState is what a rendering collaborator shows after a query
type ViewState struct {
	Mode   ViewMode       `json:"mode"`
	Input  string         `json:"input,omitempty"`
	Error  string         `json:"error,omitempty"`
	Record *DisplayRecord `json:"record,omitempty"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"`
}
