package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "vaultnet/pkg/domain-errors"
	"vaultnet/pkg/requestcontext"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError maps domain error codes onto HTTP statuses. Internal errors are
// logged with the request id and surfaced without detail.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := dErrors.CodeOf(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
			"path", r.URL.Path,
		)
		writeJSON(w, status, errorBody{Error: string(dErrors.CodeInternal)})
		return
	}

	msg := ""
	var de *dErrors.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	writeJSON(w, status, errorBody{Error: string(code), Message: msg})
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeIsolationViolation:
		return http.StatusForbidden
	case dErrors.CodeNotFound, dErrors.CodeVaultNotFound,
		dErrors.CodeTenantNotFound, dErrors.CodePrincipalNotBound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeDuplicateTenant, dErrors.CodeAlreadySigned,
		dErrors.CodeAlreadyInitialized, dErrors.CodeAlreadyBound:
		return http.StatusConflict
	case dErrors.CodeInvalidInput, dErrors.CodeInvalidAmount,
		dErrors.CodeInvalidReference, dErrors.CodeInvalidProof:
		return http.StatusBadRequest
	case dErrors.CodeVaultInactive, dErrors.CodeNotPending,
		dErrors.CodeDeadlineNotReached, dErrors.CodeInsufficientLiquidity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "malformed JSON body")
	}
	return nil
}
