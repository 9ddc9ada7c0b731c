package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/evyataryagoni/ipscope/internal/geo"
	"github.com/evyataryagoni/ipscope/internal/ipv4"
	"github.com/evyataryagoni/ipscope/internal/logger"
	"github.com/evyataryagoni/ipscope/internal/lookup"
	"github.com/evyataryagoni/ipscope/internal/middleware"
	"github.com/evyataryagoni/ipscope/internal/view"
	"github.com/go-chi/render"
)

// LookupHandler serves lookups over HTTP
// Each request drives its own controller and recorder; the recorded
// view state is the response body.
type LookupHandler struct {
	resolver lookup.Resolver
	logger   *logger.Logger
}

// NewLookupHandler creates a handler backed by resolver
func NewLookupHandler(resolver lookup.Resolver, log *logger.Logger) *LookupHandler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &LookupHandler{
		resolver: resolver,
		logger:   log.WithComponent("LookupHandler"),
	}
}

// Lookup handles GET /v1/lookup?ip=<address>
func (h *LookupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("ip"))

	rec := view.NewRecorder()
	rec.SetInput(address)

	err := lookup.NewController(h.resolver, rec).SubmitQuery(r.Context(), address)
	h.respond(w, r, rec, err)
}

// LookupSelf handles GET /v1/lookup/self
//
// A browser asking for "my address" means the client, not this server.
// When the client's address is a public IPv4 it is looked up explicitly;
// otherwise (loopback, LAN, IPv6) the provider's own-address lookup runs.
func (h *LookupHandler) LookupSelf(w http.ResponseWriter, r *http.Request) {
	rec := view.NewRecorder()
	ctrl := lookup.NewController(h.resolver, rec)

	var err error
	if client := middleware.ClientIP(r); ipv4.IsValid(client) && ipv4.Classify(client) == ipv4.Public {
		rec.SetInput(client)
		err = ctrl.SubmitQuery(r.Context(), client)
	} else {
		h.logger.Debug().Str("client", client).Msg("Client address not routable, using provider self lookup")
		err = ctrl.SubmitSelfQuery(r.Context())
	}

	h.respond(w, r, rec, err)
}

func (h *LookupHandler) respond(w http.ResponseWriter, r *http.Request, rec *view.Recorder, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("Unexpected lookup failure")
	}

	render.Status(r, status)
	render.JSON(w, r, rec.State())
}

// statusFor maps a lookup error kind to an HTTP status
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, geo.ErrEmptyInput), errors.Is(err, geo.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, geo.ErrInvalidAddress):
		return http.StatusUnprocessableEntity
	case errors.Is(err, geo.ErrTransport):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
