package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/evyataryagoni/ipscope/internal/models"
)

// csvColumns is the expected header of a seed file
var csvColumns = []string{"ip", "city", "region", "country", "loc", "org", "postal", "timezone"}

// CSVStore is an in-memory cache, optionally seeded from a CSV file
// Seeded rows never expire; saved rows live for ttl (zero = forever).
type CSVStore struct {
	mu   sync.RWMutex
	data map[string]csvEntry
	ttl  time.Duration
	now  func() time.Time
}

type csvEntry struct {
	resp    models.GeoResponse
	expires time.Time // zero = never
}

// NewCSVStore creates a memory store, loading filePath when it is not empty
//
// CSV Format: ip,city,region,country,loc,org,postal,timezone
// Example: 8.8.8.8,Mountain View,California,US,"37.4056,-122.0775",AS15169 Google LLC,94043,America/Los_Angeles
func NewCSVStore(filePath string, ttl time.Duration) (*CSVStore, error) {
	store := &CSVStore{
		data: make(map[string]csvEntry),
		ttl:  ttl,
		now:  time.Now,
	}
	if filePath == "" {
		return store, nil
	}

	rows, err := ReadCSV(filePath)
	if err != nil {
		return nil, err
	}
	for _, resp := range rows {
		store.data[resp.IP] = csvEntry{resp: *resp}
	}
	return store, nil
}

// ReadCSV parses a seed file into provider payloads
// Rows with the wrong number of columns or no IP are skipped.
func ReadCSV(filePath string) ([]*models.GeoResponse, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // column count is checked per row below

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	var rows []*models.GeoResponse
	for i, record := range records {
		// Skip header row
		if i == 0 {
			continue
		}
		if len(record) != len(csvColumns) || record[0] == "" {
			continue
		}

		rows = append(rows, &models.GeoResponse{
			IP:       record[0],
			City:     record[1],
			Region:   record[2],
			Country:  record[3],
			Loc:      record[4],
			Org:      record[5],
			Postal:   record[6],
			Timezone: record[7],
		})
	}
	return rows, nil
}

func (e csvEntry) expiredAt(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

func (s *CSVStore) FindByIP(ctx context.Context, ip string) (*models.GeoResponse, error) {
	s.mu.RLock()
	entry, exists := s.data[ip]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}
	now := s.now()
	if entry.expiredAt(now) {
		s.mu.Lock()
		// A Save may have landed since RUnlock
		if current, ok := s.data[ip]; ok && current.expiredAt(now) {
			delete(s.data, ip)
		}
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	resp := entry.resp
	return &resp, nil
}

func (s *CSVStore) Save(ctx context.Context, resp *models.GeoResponse) error {
	if resp == nil || resp.IP == "" {
		return errNoAddress
	}

	entry := csvEntry{resp: *resp}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.data[resp.IP] = entry
	s.mu.Unlock()
	return nil
}

// Len returns the number of cached entries, expired ones included
func (s *CSVStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close is a no-op; all data is in memory
func (s *CSVStore) Close() error {
	return nil
}
