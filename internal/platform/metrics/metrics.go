package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the vault subsystem.
type Metrics struct {
	VaultsRegistered     prometheus.Counter
	Deposits             prometheus.Counter
	DepositedUnits       prometheus.Counter
	SovereigntySigned    prometheus.Counter
	TenantsActivated     prometheus.Counter
	TenantsFlushed       prometheus.Counter
	FlushedReserveUnits  prometheus.Counter
	CitizensBound        prometheus.Counter
	SwapsSettled         prometheus.Counter
	SwappedUnits         prometheus.Counter
	IsolationViolations  prometheus.Counter
	SettlementRejections *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on a specific registerer. Tests pass a fresh
// registry so repeated setup does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		VaultsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultnet_vaults_registered_total",
			Help: "Total number of national vaults registered",
		}),
		Deposits: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultnet_deposits_total",
			Help: "Total number of base-asset deposits",
		}),
		DepositedUnits: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultnet_deposited_units_total",
			Help: "Total base-asset minor units deposited across all vaults",
		}),
		SovereigntySigned: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultnet_sovereignty_signed_total",
			Help: "Total number of sovereignty signatures recorded",
		}),
		TenantsActivated: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultnet_tenants_activated_total",
			Help: "Total number of tenants transitioned Pending to Active",
		}),
		TenantsFlushed: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultnet_tenants_flushed_total",
			Help: "Total number of tenants flushed after the deadline",
		}),
		FlushedReserveUnits: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultnet_flushed_reserve_units_total",
			Help: "Total reserve minor units moved to the global citizen pool",
		}),
		CitizensBound: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultnet_citizens_bound_total",
			Help: "Total number of principal-to-tenant bindings created",
		}),
		SwapsSettled: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultnet_swaps_settled_total",
			Help: "Total number of cross-tenant swaps settled",
		}),
		SwappedUnits: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultnet_swapped_units_total",
			Help: "Total minor units moved between liquidity pools",
		}),
		IsolationViolations: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaultnet_isolation_violations_total",
			Help: "Total number of settlement attempts rejected by the isolation firewall",
		}),
		SettlementRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultnet_settlement_rejections_total",
			Help: "Settlement rejections by error code",
		}, []string{"code"}),
	}
}
