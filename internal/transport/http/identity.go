package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vaultnet/internal/identity/models"
	"vaultnet/pkg/domain"
)

type bindingResponse struct {
	PrincipalID string    `json:"principal_id"`
	TenantCode  string    `json:"tenant_code"`
	ProofRef    string    `json:"proof_ref"`
	LatE7       int64     `json:"lat_e7"`
	LonE7       int64     `json:"lon_e7"`
	BoundAt     time.Time `json:"bound_at"`
}

func toBindingResponse(b *models.Binding) bindingResponse {
	return bindingResponse{
		PrincipalID: b.PrincipalID.String(),
		TenantCode:  b.TenantCode.String(),
		ProofRef:    b.ProofRef,
		LatE7:       b.LatE7,
		LonE7:       b.LonE7,
		BoundAt:     b.BoundAt,
	}
}

type bindRequest struct {
	PrincipalID string `json:"principal_id"`
	TenantCode  string `json:"tenant_code"`
	ProofRef    string `json:"proof_ref"`
	LatE7       int64  `json:"lat_e7"`
	LonE7       int64  `json:"lon_e7"`
}

func (h *handler) bind(w http.ResponseWriter, r *http.Request) {
	var req bindRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	principal, err := domain.ParsePrincipalID(req.PrincipalID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	code, err := domain.ParseTenantCode(req.TenantCode)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	binding, err := h.identity.Bind(r.Context(), principal, code, req.ProofRef, req.LatE7, req.LonE7)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBindingResponse(binding))
}

func (h *handler) lookupBinding(w http.ResponseWriter, r *http.Request) {
	principal, err := domain.ParsePrincipalID(chi.URLParam(r, "principal"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	binding, err := h.identity.Lookup(r.Context(), principal)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBindingResponse(binding))
}
