package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evyataryagoni/ipscope/internal/geo"
	"github.com/evyataryagoni/ipscope/internal/ipv4"
	"github.com/evyataryagoni/ipscope/internal/logger"
	"github.com/evyataryagoni/ipscope/internal/metrics"
	"github.com/evyataryagoni/ipscope/internal/models"
	"github.com/evyataryagoni/ipscope/internal/provider"
	"github.com/evyataryagoni/ipscope/internal/store"
	"github.com/go-playground/validator/v10"
)

// LookupService resolves addresses to display records
// It sits between the controller and the provider:
//
//   - Validate input (dotted-quad IPv4)
//   - Serve repeated queries from the cache store
//   - Fetch from the provider on a miss
//   - Interpret the payload
type LookupService struct {
	store     store.Store
	provider  provider.Provider
	validator *validator.Validate
	metrics   *metrics.Metrics // optional
	logger    *logger.Logger
}

// NewLookupService creates a lookup service
// m and log may be nil.
func NewLookupService(s store.Store, p provider.Provider, m *metrics.Metrics, log *logger.Logger) *LookupService {
	if log == nil {
		log = logger.NewDefault()
	}

	v := validator.New()
	if err := ipv4.RegisterValidation(v); err != nil {
		// Only fails on a malformed tag name
		panic(fmt.Sprintf("register %s validation: %v", ipv4.ValidationTag, err))
	}

	return &LookupService{
		store:     s,
		provider:  p,
		validator: v,
		metrics:   m,
		logger:    log.WithComponent("LookupService"),
	}
}

// LookupAddress validates address and resolves it to a display record
func (s *LookupService) LookupAddress(ctx context.Context, address string) (*models.DisplayRecord, error) {
	if err := s.validator.Var(address, "required"); err != nil {
		return nil, s.fail(address, geo.ErrEmptyInput)
	}
	if err := s.validator.Var(address, ipv4.ValidationTag); err != nil {
		return nil, s.fail(address, fmt.Errorf("%w: %q", geo.ErrInvalidFormat, address))
	}

	log := s.logger.WithAddress(address)

	if resp, ok := s.fromCache(ctx, address); ok {
		return s.interpret(resp)
	}

	log.Debug().Str("provider", s.provider.Name()).Msg("Fetching from provider")
	resp, err := s.fetch(ctx, address)
	if err != nil {
		return nil, s.fail(address, err)
	}

	record, err := s.interpret(resp)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, resp)
	return record, nil
}

// LookupSelf resolves the caller's own address
// No validation runs; the provider decides which address that is.
func (s *LookupService) LookupSelf(ctx context.Context) (*models.DisplayRecord, error) {
	s.logger.Debug().Str("provider", s.provider.Name()).Msg("Fetching own address")

	resp, err := s.fetch(ctx, "")
	if err != nil {
		return nil, s.fail("", err)
	}

	record, err := s.interpret(resp)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, resp)
	return record, nil
}

// Close releases the provider and the store
func (s *LookupService) Close() error {
	return errors.Join(s.provider.Close(), s.store.Close())
}

func (s *LookupService) fetch(ctx context.Context, address string) (*models.GeoResponse, error) {
	start := time.Now()
	resp, err := s.provider.Fetch(ctx, address)

	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.ProviderRequestsTotal.WithLabelValues(s.provider.Name(), status).Inc()
		s.metrics.ProviderRequestDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())
	}
	return resp, err
}

func (s *LookupService) interpret(resp *models.GeoResponse) (*models.DisplayRecord, error) {
	record, err := geo.Interpret(resp)
	if err != nil {
		address := ""
		if resp != nil {
			address = resp.IP
		}
		return nil, s.fail(address, err)
	}

	s.logger.Info().
		Str("address", record.Address).
		Str("city", record.City).
		Str("country", record.Country).
		Msg("Lookup successful")
	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues("success").Inc()
	}
	return record, nil
}

// fromCache reports a hit; every store error counts as a miss
func (s *LookupService) fromCache(ctx context.Context, address string) (*models.GeoResponse, bool) {
	resp, err := s.store.FindByIP(ctx, address)
	switch {
	case err == nil:
		s.logger.Debug().Str("address", address).Msg("Cache hit")
		s.countCache("hit")
		return resp, true
	case errors.Is(err, store.ErrNotFound):
		s.countCache("miss")
	default:
		s.logger.Warn().Err(err).Str("address", address).Msg("Cache read failed, continuing without cache")
		s.countCache("error")
	}
	return nil, false
}

// toCache stores a successful payload; bogons and addressless payloads are skipped
func (s *LookupService) toCache(ctx context.Context, resp *models.GeoResponse) {
	if resp == nil || resp.Bogon || resp.IP == "" {
		return
	}
	if err := s.store.Save(ctx, resp); err != nil {
		s.logger.Warn().Err(err).Str("address", resp.IP).Msg("Cache write failed")
	}
}

func (s *LookupService) countCache(result string) {
	if s.metrics != nil {
		s.metrics.CacheResultsTotal.WithLabelValues(result).Inc()
	}
}

// fail logs and counts a failed lookup, returning err unchanged
func (s *LookupService) fail(address string, err error) error {
	kind := geo.Kind(err)

	event := s.logger.Warn()
	if kind == "transport" || kind == "unexpected" {
		event = s.logger.Error()
	}
	event.Err(err).Str("address", address).Str("kind", kind).Msg("Lookup failed")

	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues("error").Inc()
		s.metrics.LookupErrors.WithLabelValues(kind).Inc()
	}
	return err
}
