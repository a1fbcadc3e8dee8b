// Package handler exposes payment routing: which token children of a domain
// pay with and who receives direct proceeds.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nameledger/internal/treasury"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/requestcontext"
)

type Handler struct {
	treasury *treasury.Service
	logger   *slog.Logger
}

func New(treas *treasury.Service, logger *slog.Logger) *Handler {
	return &Handler{treasury: treas, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Put("/v1/domains/{id}/payment-config", h.handleSetPaymentConfig)
	r.Get("/v1/domains/{id}/payment-config", h.handleGetPaymentConfig)
	r.Get("/v1/domains/{id}/stake", h.handleGetStake)
}

// SetPaymentConfigRequest routes child payments for a domain.
type SetPaymentConfigRequest struct {
	Token       string `json:"token"`
	Beneficiary string `json:"beneficiary"`

	parsed treasury.PaymentConfig
}

func (s *SetPaymentConfigRequest) Validate() error {
	token, err := id.ParseAddress(s.Token)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "payment token address is malformed")
	}
	beneficiary, err := id.ParseAddress(s.Beneficiary)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "beneficiary address is malformed")
	}
	s.parsed = treasury.PaymentConfig{Token: token, Beneficiary: beneficiary}
	return nil
}

// PaymentConfigResponse mirrors the stored routing.
type PaymentConfigResponse struct {
	Token       string `json:"token"`
	Beneficiary string `json:"beneficiary"`
}

// StakeResponse reports the escrow locked for a domain.
type StakeResponse struct {
	Amount string `json:"amount"`
	Token  string `json:"token"`
}

func (h *Handler) handleSetPaymentConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	addr, err := caller.Require(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	domainID, ok := domainIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetPaymentConfigRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.treasury.SetPaymentConfig(ctx, addr, domainID, req.parsed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetPaymentConfig(w http.ResponseWriter, r *http.Request) {
	domainID, ok := domainIDParam(w, r)
	if !ok {
		return
	}
	cfg, err := h.treasury.PaymentConfigFor(r.Context(), domainID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !cfg.IsSet() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeConfigNotSet, "domain has no payment config"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PaymentConfigResponse{
		Token:       cfg.Token.String(),
		Beneficiary: cfg.Beneficiary.String(),
	})
}

func (h *Handler) handleGetStake(w http.ResponseWriter, r *http.Request) {
	domainID, ok := domainIDParam(w, r)
	if !ok {
		return
	}
	stake, err := h.treasury.Staked(r.Context(), domainID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StakeResponse{
		Amount: stake.Amount.String(),
		Token:  stake.Token.String(),
	})
}

func domainIDParam(w http.ResponseWriter, r *http.Request) (id.DomainID, bool) {
	domainID, err := id.ParseDomainID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "domain id is malformed"))
		return id.DomainID{}, false
	}
	return domainID, true
}
