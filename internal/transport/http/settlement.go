package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vaultnet/internal/settlement/models"
	"vaultnet/pkg/domain"
)

type swapResponse struct {
	SwapID     string    `json:"swap_id"`
	Seq        int64     `json:"seq"`
	Sender     string    `json:"sender"`
	Recipient  string    `json:"recipient"`
	FromTenant string    `json:"from_tenant"`
	ToTenant   string    `json:"to_tenant"`
	Amount     int64     `json:"amount"`
	ExecutedAt time.Time `json:"executed_at"`
}

func toSwapResponse(s *models.CrossSwapRecord) swapResponse {
	return swapResponse{
		SwapID:     s.SwapID.String(),
		Seq:        s.Seq,
		Sender:     s.Sender.String(),
		Recipient:  s.Recipient.String(),
		FromTenant: s.FromTenant.String(),
		ToTenant:   s.ToTenant.String(),
		Amount:     s.Amount,
		ExecutedAt: s.ExecutedAt,
	}
}

type executeSwapRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
}

func (h *handler) executeSwap(w http.ResponseWriter, r *http.Request) {
	var req executeSwapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	sender, err := domain.ParsePrincipalID(req.Sender)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	recipient, err := domain.ParsePrincipalID(req.Recipient)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	record, err := h.settlement.ExecuteCrossSwap(r.Context(), sender, recipient, req.Amount)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSwapResponse(record))
}

func (h *handler) getSwap(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseSwapID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	record, err := h.settlement.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toSwapResponse(record))
}

func (h *handler) listSwapsByTenant(w http.ResponseWriter, r *http.Request) {
	code, err := domain.ParseTenantCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	records, err := h.settlement.ListByTenant(r.Context(), code)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]swapResponse, 0, len(records))
	for _, s := range records {
		out = append(out, toSwapResponse(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"swaps": out})
}
