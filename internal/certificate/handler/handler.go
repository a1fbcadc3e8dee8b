// Package handler exposes certificate transfer and lookup. Transfer moves
// only the certificate; the domain record is deliberately untouched.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nameledger/internal/certificate"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/requestcontext"
)

type Handler struct {
	certificates *certificate.Service
	logger       *slog.Logger
}

func New(certs *certificate.Service, logger *slog.Logger) *Handler {
	return &Handler{certificates: certs, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/certificates/{id}/transfer", h.handleTransfer)
	r.Get("/v1/certificates/{id}", h.handleGet)
}

// TransferRequest names the certificate's new holder.
type TransferRequest struct {
	To string `json:"to"`

	to id.Address
}

func (t *TransferRequest) Validate() error {
	addr, err := id.ParseAddress(t.To)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "recipient address is malformed")
	}
	t.to = addr
	return nil
}

// CertificateResponse is the certificate read model.
type CertificateResponse struct {
	DomainID string `json:"domain_id"`
	Owner    string `json:"owner"`
	TokenURI string `json:"token_uri,omitempty"`
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	addr, err := caller.Require(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	domainID, err := id.ParseDomainID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "domain id is malformed"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.certificates.Transfer(ctx, addr, domainID, req.to); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	domainID, err := id.ParseDomainID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "domain id is malformed"))
		return
	}
	cert, err := h.certificates.Get(r.Context(), domainID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CertificateResponse{
		DomainID: cert.DomainID.String(),
		Owner:    cert.Owner.String(),
		TokenURI: cert.TokenURI,
	})
}
