package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vaultnet/internal/vault/models"
	"vaultnet/pkg/domain"
)

type vaultResponse struct {
	TenantCode        string     `json:"tenant_code"`
	Name              string     `json:"name"`
	ReserveRef        string     `json:"reserve_ref"`
	LiquidityRef      string     `json:"liquidity_ref"`
	StableUnitRef     string     `json:"stable_unit_ref"`
	ReserveBalance    int64      `json:"reserve_balance"`
	LiquidityBalance  int64      `json:"liquidity_balance"`
	LockExpiry        *time.Time `json:"lock_expiry,omitempty"`
	Active            bool       `json:"active"`
	SovereigntySigned bool       `json:"sovereignty_signed"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toVaultResponse(v *models.Vault) vaultResponse {
	resp := vaultResponse{
		TenantCode:        v.TenantCode.String(),
		Name:              v.Name,
		ReserveRef:        v.ReserveRef,
		LiquidityRef:      v.LiquidityRef,
		StableUnitRef:     v.StableUnitRef,
		ReserveBalance:    v.ReserveBalance,
		LiquidityBalance:  v.LiquidityBalance,
		Active:            v.Active,
		SovereigntySigned: v.SovereigntySigned,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
	if !v.LockExpiry.IsZero() {
		t := v.LockExpiry
		resp.LockExpiry = &t
	}
	return resp
}

type registerVaultRequest struct {
	TenantCode    string `json:"tenant_code"`
	Name          string `json:"name"`
	ReserveRef    string `json:"reserve_ref"`
	LiquidityRef  string `json:"liquidity_ref"`
	StableUnitRef string `json:"stable_unit_ref"`
}

func (h *handler) registerVault(w http.ResponseWriter, r *http.Request) {
	var req registerVaultRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	code, err := domain.ParseTenantCode(req.TenantCode)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	vault, err := h.vaults.Register(r.Context(), code, req.Name, req.ReserveRef, req.LiquidityRef, req.StableUnitRef)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVaultResponse(vault))
}

func (h *handler) listVaults(w http.ResponseWriter, r *http.Request) {
	vaults, err := h.vaults.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]vaultResponse, 0, len(vaults))
	for _, v := range vaults {
		out = append(out, toVaultResponse(v))
	}
	writeJSON(w, http.StatusOK, map[string]any{"vaults": out})
}

func (h *handler) getVault(w http.ResponseWriter, r *http.Request) {
	code, err := domain.ParseTenantCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	vault, err := h.vaults.Get(r.Context(), code)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toVaultResponse(vault))
}

type depositRequest struct {
	Amount    int64  `json:"amount"`
	SourceRef string `json:"source_ref"`
}

func (h *handler) deposit(w http.ResponseWriter, r *http.Request) {
	code, err := domain.ParseTenantCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	vault, err := h.vaults.Deposit(r.Context(), code, req.Amount, req.SourceRef)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toVaultResponse(vault))
}

func (h *handler) signSovereignty(w http.ResponseWriter, r *http.Request) {
	code, err := domain.ParseTenantCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	vault, err := h.vaults.SignSovereignty(r.Context(), code)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toVaultResponse(vault))
}

func (h *handler) poolBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.vaults.PoolBalance(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}
