// Package httputil centralizes JSON encoding and domain error translation for
// HTTP handlers so every endpoint speaks the same envelope.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "nameledger/pkg/domain-errors"
)

// Validatable is implemented by request structs that validate and parse their
// own fields after decoding.
type Validatable interface {
	Validate() error
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a coded domain error into an HTTP response. Internal
// errors omit the description so server details never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := statusOf(code)

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		var coded *dErrors.Error
		if errors.As(err, &coded) {
			body["error_description"] = coded.Message
		}
	}
	WriteJSON(w, status, body)
}

// DecodeAndPrepare decodes the request body into T and runs its Validate
// method, writing the error response itself on failure. Returns false when
// the handler should stop.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (PT, bool) {
	req := PT(new(T))
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logger.WarnContext(ctx, "request decode failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return req, true
}

func statusOf(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput,
		dErrors.CodeInvalidLength, dErrors.CodeInvalidName,
		dErrors.CodeLabelTooLong, dErrors.CodeLengthMismatch:
		return http.StatusBadRequest
	case dErrors.CodeValidation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeAlreadyExists, dErrors.CodeConflict,
		dErrors.CodeConfigNotSet, dErrors.CodeNothingStaked,
		dErrors.CodeInvalidState, dErrors.CodeAlreadyInitialized:
		return http.StatusConflict
	case dErrors.CodeUnauthorized, dErrors.CodeNotCertificateOwner,
		dErrors.CodeNotBothOwner, dErrors.CodeNotMintlisted,
		dErrors.CodeDistributionLocked:
		return http.StatusForbidden
	case dErrors.CodeInsufficientFunds, dErrors.CodeInsufficientAllowance:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
