package http_test

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultnet/internal/audit"
	"vaultnet/internal/captoken"
	identityservice "vaultnet/internal/identity/service"
	identitystore "vaultnet/internal/identity/store"
	"vaultnet/internal/ledger"
	lifecycleservice "vaultnet/internal/lifecycle/service"
	lifecyclestore "vaultnet/internal/lifecycle/store"
	"vaultnet/internal/platform/metrics"
	settlementservice "vaultnet/internal/settlement/service"
	settlementstore "vaultnet/internal/settlement/store"
	transporthttp "vaultnet/internal/transport/http"
	vaultservice "vaultnet/internal/vault/service"
	vaultstore "vaultnet/internal/vault/store"
	"vaultnet/pkg/capability"
	"vaultnet/pkg/domain"
	"vaultnet/pkg/platform/tx"
	"vaultnet/pkg/testutil"
)

type env struct {
	router http.Handler
	tokens *captoken.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewWith(prometheus.NewRegistry())
	auditor := audit.NewPublisher(audit.NewMemorySink())
	vaults := vaultstore.NewMemory()
	pool := vaultstore.NewMemoryPool()
	runner := tx.Passthrough{}

	lifecycleSvc := lifecycleservice.New(lifecyclestore.NewMemory(), vaults, pool, runner, auditor, m, logger)
	vaultSvc := vaultservice.New(vaults, pool, lifecycleSvc, ledger.NewMemoryLedger(), runner, auditor, m, logger)
	identitySvc := identityservice.New(identitystore.NewMemory(), vaults, lifecycleSvc, auditor, m, logger)
	settlementSvc := settlementservice.New(settlementstore.NewMemory(), vaults, identitySvc,
		ledger.NewMemoryLedger(), runner, auditor, m, logger)

	tokens := captoken.New("handler-test-signing-key", "vaultnet")
	router := transporthttp.NewRouter(transporthttp.Deps{
		Vaults:         vaultSvc,
		Lifecycle:      lifecycleSvc,
		Identity:       identitySvc,
		Settlement:     settlementSvc,
		TokenValidator: tokens,
		Logger:         logger,
	})
	return &env{router: router, tokens: tokens}
}

func (e *env) authorize(t *testing.T, req *http.Request, caps ...capability.Capability) *http.Request {
	t.Helper()
	token, err := e.tokens.Mint("test-caller", capability.NewSet(caps...), time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (e *env) registerVault(t *testing.T, code string) {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/vaults", map[string]any{
		"tenant_code":     code,
		"name":            "Tenant " + code,
		"reserve_ref":     "acct:" + code + ":reserve",
		"liquidity_ref":   "acct:" + code + ":liquidity",
		"stable_unit_ref": "unit:" + code,
	})
	rr := testutil.DoRequest(e.router, e.authorize(t, req, capability.VaultAdmin))
	testutil.AssertStatus(t, rr, http.StatusCreated)
}

func (e *env) bindPrincipal(t *testing.T, code string) domain.PrincipalID {
	t.Helper()
	principal := domain.NewPrincipalID()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/bindings", map[string]any{
		"principal_id": principal.String(),
		"tenant_code":  code,
		"proof_ref":    "proof:kyc:" + principal.String(),
	})
	rr := testutil.DoRequest(e.router, e.authorize(t, req, capability.BindingRouter))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return principal
}

func (e *env) deposit(t *testing.T, code string, amount int64) {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/vaults/"+code+"/deposits", map[string]any{
		"amount":     amount,
		"source_ref": "acct:external:src",
	})
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "status", "ok")
}

func TestVaultEndpoints(t *testing.T) {
	t.Run("register requires a capability token", func(t *testing.T) {
		e := newEnv(t)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/vaults", map[string]any{
			"tenant_code": "NG", "name": "Nigeria",
			"reserve_ref": "r", "liquidity_ref": "l", "stable_unit_ref": "s",
		})
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("register and fetch", func(t *testing.T) {
		e := newEnv(t)
		e.registerVault(t, "NG")

		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/vaults/NG"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "tenant_code", "NG")
		testutil.AssertJSONContains(t, rr, "active", true)
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		e := newEnv(t)
		e.registerVault(t, "NG")

		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/vaults", map[string]any{
			"tenant_code": "NG", "name": "Nigeria Again",
			"reserve_ref": "r2", "liquidity_ref": "l2", "stable_unit_ref": "s2",
		})
		rr := testutil.DoRequest(e.router, e.authorize(t, req, capability.VaultAdmin))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "duplicate_tenant")
	})

	t.Run("lowercase tenant codes are rejected", func(t *testing.T) {
		e := newEnv(t)
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/vaults/ng"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("unknown vault is 404", func(t *testing.T) {
		e := newEnv(t)
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/vaults/ZZ"))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "vault_not_found")
	})

	t.Run("deposit is permissionless and updates balances", func(t *testing.T) {
		e := newEnv(t)
		e.registerVault(t, "NG")
		e.deposit(t, "NG", 1000)

		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/vaults/NG"))
		resp := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Equal(t, float64(1000), (*resp)["liquidity_balance"], "a pending tenant keeps everything liquid")
		assert.Equal(t, float64(0), (*resp)["reserve_balance"])
	})

	t.Run("zero deposit is a bad request", func(t *testing.T) {
		e := newEnv(t)
		e.registerVault(t, "NG")
		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/vaults/NG/deposits", map[string]any{
			"amount": 0, "source_ref": "acct:external:src",
		})
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_amount")
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		e := newEnv(t)
		req := testutil.NewRequest(t, http.MethodPost, "/v1/vaults/NG/deposits")
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})
}

func TestSovereigntyAndLifecycleEndpoints(t *testing.T) {
	t.Run("signing activates the tenant", func(t *testing.T) {
		e := newEnv(t)
		e.registerVault(t, "NG")
		e.bindPrincipal(t, "NG") // starts the clock

		req := testutil.NewRequest(t, http.MethodPost, "/v1/vaults/NG/sovereignty")
		rr := testutil.DoRequest(e.router, e.authorize(t, req, capability.VaultAdmin))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "sovereignty_signed", true)

		rr = testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/vaults/NG/lifecycle"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "state", "active")
	})

	t.Run("lifecycle status for a pending tenant", func(t *testing.T) {
		e := newEnv(t)
		e.registerVault(t, "NG")
		e.bindPrincipal(t, "NG")

		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/vaults/NG/lifecycle"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "state", "pending")
		testutil.AssertJSONContains(t, rr, "eligible_for_flush", false)
	})

	t.Run("activate requires governance or admin", func(t *testing.T) {
		e := newEnv(t)
		e.registerVault(t, "NG")
		e.bindPrincipal(t, "NG")

		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodPost, "/v1/vaults/NG/activate"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")

		req := testutil.NewRequest(t, http.MethodPost, "/v1/vaults/NG/activate")
		rr = testutil.DoRequest(e.router, e.authorize(t, req, capability.GovernanceCaller))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "state", "active")
	})

	t.Run("flush before the deadline is rejected", func(t *testing.T) {
		e := newEnv(t)
		e.registerVault(t, "NG")
		e.bindPrincipal(t, "NG")

		// No token at all: the flush route is permissionless, the rejection
		// comes from the deadline.
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodPost, "/v1/vaults/NG/flush"))
		testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "deadline_not_reached")
	})

	t.Run("flush-expired sweeps nothing on a fresh system", func(t *testing.T) {
		e := newEnv(t)
		e.registerVault(t, "NG")
		e.bindPrincipal(t, "NG")

		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodPost, "/v1/flush-expired"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "scanned", float64(1))
		testutil.AssertJSONContains(t, rr, "moved_units", float64(0))
	})

	t.Run("pool balance starts at zero", func(t *testing.T) {
		e := newEnv(t)
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/pool"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "balance", float64(0))
	})
}

func TestBindingEndpoints(t *testing.T) {
	t.Run("bind and look up", func(t *testing.T) {
		e := newEnv(t)
		e.registerVault(t, "NG")
		principal := e.bindPrincipal(t, "NG")

		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/bindings/"+principal.String()))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "tenant_code", "NG")
	})

	t.Run("rebinding conflicts", func(t *testing.T) {
		e := newEnv(t)
		e.registerVault(t, "NG")
		e.registerVault(t, "GH")
		principal := e.bindPrincipal(t, "NG")

		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/bindings", map[string]any{
			"principal_id": principal.String(),
			"tenant_code":  "GH",
			"proof_ref":    "proof:kyc:again",
		})
		rr := testutil.DoRequest(e.router, e.authorize(t, req, capability.BindingRouter))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "already_bound")
	})

	t.Run("unknown principal is 404", func(t *testing.T) {
		e := newEnv(t)
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/bindings/"+domain.NewPrincipalID().String()))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "principal_not_bound")
	})

	t.Run("malformed principal id is a bad request", func(t *testing.T) {
		e := newEnv(t)
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/bindings/not-a-uuid"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})
}

func TestSwapEndpoints(t *testing.T) {
	seed := func(t *testing.T, e *env) (sender, recipient domain.PrincipalID) {
		t.Helper()
		e.registerVault(t, "NG")
		e.registerVault(t, "GH")
		sender = e.bindPrincipal(t, "NG")
		recipient = e.bindPrincipal(t, "GH")
		e.deposit(t, "NG", 1000)
		e.deposit(t, "GH", 500)
		return sender, recipient
	}

	t.Run("swap then fetch by id", func(t *testing.T) {
		e := newEnv(t)
		sender, recipient := seed(t, e)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/swaps", map[string]any{
			"sender":    sender.String(),
			"recipient": recipient.String(),
			"amount":    200,
		})
		rr := testutil.DoRequest(e.router, e.authorize(t, req, capability.BindingRouter))
		testutil.AssertStatus(t, rr, http.StatusCreated)

		created := testutil.UnmarshalResponse[map[string]any](t, rr)
		swapID, ok := (*created)["swap_id"].(string)
		require.True(t, ok)
		require.Len(t, swapID, 64)

		rr = testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/swaps/"+swapID))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "from_tenant", "NG")
		testutil.AssertJSONContains(t, rr, "amount", float64(200))

		rr = testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/vaults/GH/swaps"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[map[string][]map[string]any](t, rr)
		require.Len(t, (*resp)["swaps"], 1)
	})

	t.Run("swap requires the binding-router capability", func(t *testing.T) {
		e := newEnv(t)
		sender, recipient := seed(t, e)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/swaps", map[string]any{
			"sender":    sender.String(),
			"recipient": recipient.String(),
			"amount":    200,
		})
		rr := testutil.DoRequest(e.router, e.authorize(t, req, capability.VaultAdmin))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("insufficient liquidity is unprocessable", func(t *testing.T) {
		e := newEnv(t)
		sender, recipient := seed(t, e)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/swaps", map[string]any{
			"sender":    sender.String(),
			"recipient": recipient.String(),
			"amount":    5000,
		})
		rr := testutil.DoRequest(e.router, e.authorize(t, req, capability.BindingRouter))
		testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "insufficient_liquidity")
	})

	t.Run("malformed swap id is a bad request", func(t *testing.T) {
		e := newEnv(t)
		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/v1/swaps/zzz"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})
}

func TestCapabilityTokenRejection(t *testing.T) {
	t.Run("garbage token is rejected at the middleware", func(t *testing.T) {
		e := newEnv(t)
		req := testutil.NewRequest(t, http.MethodGet, "/v1/pool")
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		e := newEnv(t)
		token, err := e.tokens.Mint("test-caller", capability.NewSet(capability.VaultAdmin), -time.Minute)
		require.NoError(t, err)

		req := testutil.NewRequest(t, http.MethodGet, "/v1/pool")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		e := newEnv(t)
		other := captoken.New("some-other-key", "vaultnet")
		token, err := other.Mint("test-caller", capability.NewSet(capability.VaultAdmin), time.Hour)
		require.NoError(t, err)

		req := testutil.NewRequest(t, http.MethodGet, "/v1/pool")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})
}
