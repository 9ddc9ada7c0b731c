package view

import (
	"fmt"
	"io"

	"github.com/evyataryagoni/ipscope/internal/models"
	"github.com/fatih/color"
)

// Terminal renders lookups as a coloured key/value table
type Terminal struct {
	out    io.Writer // results
	status io.Writer // loading indicator and errors

	label *color.Color
	value *color.Color
	fail  *color.Color
	link  *color.Color

	input   string
	loading bool // "Looking up..." is on screen without a newline
}

// NewTerminal creates a terminal renderer
// Results go to out; the loading indicator and errors go to status.
func NewTerminal(out, status io.Writer) *Terminal {
	return &Terminal{
		out:    out,
		status: status,
		label:  color.New(color.FgCyan, color.Bold),
		value:  color.New(color.FgWhite),
		fail:   color.New(color.FgRed, color.Bold),
		link:   color.New(color.FgBlue, color.Underline),
	}
}

func (t *Terminal) ShowLoading() {
	fmt.Fprint(t.status, "Looking up...")
	t.loading = true
}

// HideLoading erases the loading line if nothing has replaced it yet
func (t *Terminal) HideLoading() {
	t.clearLoading()
}

// clearLoading must run before any output so results start on a clean line
func (t *Terminal) clearLoading() {
	if !t.loading {
		return
	}
	fmt.Fprint(t.status, "\r\033[K")
	t.loading = false
}

func (t *Terminal) ShowError(message string) {
	t.clearLoading()
	t.fail.Fprintf(t.status, "✗ %s\n", message)
}

func (t *Terminal) ShowResult(record *models.DisplayRecord) {
	t.clearLoading()

	rows := []struct {
		name  string
		value string
	}{
		{"IP address", record.Address},
		{"Type", record.Type},
		{"Country", record.Country},
		{"Region", record.Region},
		{"City", record.City},
		{"Postal code", record.Postal},
		{"ISP", record.ISP},
		{"Organization", record.Org},
		{"Location", record.Location},
		{"Timezone", record.Timezone},
	}

	for _, row := range rows {
		t.label.Fprintf(t.out, "%-14s", row.name)
		t.value.Fprintln(t.out, row.value)
	}

	if record.MapLinks == nil {
		fmt.Fprintln(t.out, record.MapNote)
		return
	}
	t.label.Fprintf(t.out, "%-14s", "Google Maps")
	t.link.Fprintln(t.out, record.MapLinks.GoogleMaps)
	t.label.Fprintf(t.out, "%-14s", "OpenStreetMap")
	t.link.Fprintln(t.out, record.MapLinks.OpenStreetMap)
}

func (t *Terminal) SetInput(address string) {
	t.input = address
}

// Input returns the last address echoed by a self lookup
func (t *Terminal) Input() string {
	return t.input
}
