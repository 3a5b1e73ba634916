package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vaultnet/pkg/domain"
	"vaultnet/pkg/requestcontext"
)

type lifecycleResponse struct {
	TenantCode       string    `json:"tenant_code"`
	State            string    `json:"state"`
	ClockStart       time.Time `json:"clock_start"`
	Expiry           time.Time `json:"expiry"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	EligibleForFlush bool      `json:"eligible_for_flush"`
}

func (h *handler) lifecycleStatus(w http.ResponseWriter, r *http.Request) {
	code, err := domain.ParseTenantCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	record, err := h.lifecycle.Get(r.Context(), code)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	now := requestcontext.Now(r.Context())
	writeJSON(w, http.StatusOK, lifecycleResponse{
		TenantCode:       record.TenantCode.String(),
		State:            record.State.String(),
		ClockStart:       record.ClockStart,
		Expiry:           record.Expiry,
		RemainingSeconds: int64(record.TimeRemaining(now) / time.Second),
		EligibleForFlush: record.IsEligibleForFlush(now),
	})
}

func (h *handler) activate(w http.ResponseWriter, r *http.Request) {
	code, err := domain.ParseTenantCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	record, err := h.lifecycle.Activate(r.Context(), code)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"tenant_code": record.TenantCode.String(),
		"state":       record.State.String(),
	})
}

func (h *handler) flush(w http.ResponseWriter, r *http.Request) {
	code, err := domain.ParseTenantCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	moved, err := h.lifecycle.ExecuteFlush(r.Context(), code)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tenant_code": code.String(),
		"moved_units": moved,
	})
}

func (h *handler) flushExpired(w http.ResponseWriter, r *http.Request) {
	sweep, err := h.lifecycle.AutoFlushExpired(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	flushed := make([]string, 0, len(sweep.Flushed))
	for _, code := range sweep.Flushed {
		flushed = append(flushed, code.String())
	}
	failed := make(map[string]string, len(sweep.Failed))
	for code, reason := range sweep.Failed {
		failed[code.String()] = reason
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scanned":     sweep.Scanned,
		"flushed":     flushed,
		"moved_units": sweep.MovedUnits,
		"failed":      failed,
	})
}
