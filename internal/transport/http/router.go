// Package http exposes the vault subsystem over a JSON REST API.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	identityservice "vaultnet/internal/identity/service"
	lifecycleservice "vaultnet/internal/lifecycle/service"
	"vaultnet/internal/platform/middleware"
	platformredis "vaultnet/internal/platform/redis"
	settlementservice "vaultnet/internal/settlement/service"
	vaultservice "vaultnet/internal/vault/service"
)

// Deps carries everything the router wires together.
type Deps struct {
	Vaults     *vaultservice.Service
	Lifecycle  *lifecycleservice.Service
	Identity   *identityservice.Service
	Settlement *settlementservice.Service

	TokenValidator middleware.TokenValidator
	Redis          *platformredis.Client
	RateLimit      int
	Logger         *slog.Logger
}

// NewRouter builds the chi router with the full middleware chain.
func NewRouter(deps Deps) http.Handler {
	h := &handler{
		vaults:     deps.Vaults,
		lifecycle:  deps.Lifecycle,
		identity:   deps.Identity,
		settlement: deps.Settlement,
		logger:     deps.Logger,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Device)
	r.Use(middleware.RateLimit(deps.Redis, deps.RateLimit, deps.Logger))
	r.Use(middleware.CapabilityAuth(deps.TokenValidator, deps.Logger))

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/vaults", func(r chi.Router) {
			r.Post("/", h.registerVault)
			r.Get("/", h.listVaults)
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", h.getVault)
				r.Post("/deposits", h.deposit)
				r.Post("/sovereignty", h.signSovereignty)
				r.Get("/lifecycle", h.lifecycleStatus)
				r.Post("/activate", h.activate)
				r.Post("/flush", h.flush)
				r.Get("/swaps", h.listSwapsByTenant)
			})
		})
		r.Post("/flush-expired", h.flushExpired)
		r.Get("/pool", h.poolBalance)

		r.Route("/bindings", func(r chi.Router) {
			r.Post("/", h.bind)
			r.Get("/{principal}", h.lookupBinding)
		})

		r.Route("/swaps", func(r chi.Router) {
			r.Post("/", h.executeSwap)
			r.Get("/{id}", h.getSwap)
		})
	})

	return r
}

type handler struct {
	vaults     *vaultservice.Service
	lifecycle  *lifecycleservice.Service
	identity   *identityservice.Service
	settlement *settlementservice.Service
	logger     *slog.Logger
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
