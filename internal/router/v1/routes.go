package v1

import (
	"github.com/evyataryagoni/ipscope/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures the /v1 API
//
//	GET /v1/lookup?ip=<address>
//	GET /v1/lookup/self
func SetupRoutes(h *handler.LookupHandler) chi.Router {
	r := chi.NewRouter()

	r.Get("/lookup", h.Lookup)
	r.Get("/lookup/self", h.LookupSelf)

	return r
}
