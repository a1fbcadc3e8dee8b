// Package handler exposes a domain's child-distribution policy: the combined
// config, the individual pricer / payment-type / access-type setters, and
// mintlist management including the admin emergency clear-and-lock.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nameledger/internal/distribution"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/requestcontext"
)

type Handler struct {
	distribution *distribution.Service
	logger       *slog.Logger
}

func New(dist *distribution.Service, logger *slog.Logger) *Handler {
	return &Handler{distribution: dist, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Put("/v1/domains/{id}/distribution", h.handleSetConfig)
	r.Put("/v1/domains/{id}/pricer", h.handleSetPricer)
	r.Put("/v1/domains/{id}/payment-type", h.handleSetPaymentType)
	r.Put("/v1/domains/{id}/access-type", h.handleSetAccessType)
	r.Put("/v1/domains/{id}/mintlist", h.handleUpdateMintlist)
	r.Get("/v1/domains/{id}/mintlist", h.handleGetMintlist)
	r.Delete("/v1/domains/{id}/mintlist", h.handleClearMintlist)
}

// SetConfigRequest replaces the whole distribution config in one shot.
type SetConfigRequest struct {
	Pricer      string `json:"pricer"`
	PaymentType string `json:"payment_type"`
	AccessType  string `json:"access_type"`

	parsed distribution.Config
}

func (s *SetConfigRequest) Validate() error {
	pt, err := distribution.ParsePaymentType(s.PaymentType)
	if err != nil {
		return err
	}
	at, err := distribution.ParseAccessType(s.AccessType)
	if err != nil {
		return err
	}
	s.parsed = distribution.Config{
		Pricer:      s.Pricer,
		PaymentType: pt,
		AccessType:  at,
		IsSet:       true,
	}
	return nil
}

// SetPricerRequest swaps only the pricing engine name.
type SetPricerRequest struct {
	Pricer string `json:"pricer"`
}

func (s *SetPricerRequest) Validate() error {
	if s.Pricer == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "pricer name is required")
	}
	return nil
}

// SetPaymentTypeRequest switches only how children pay.
type SetPaymentTypeRequest struct {
	PaymentType string `json:"payment_type"`

	parsed distribution.PaymentType
}

func (s *SetPaymentTypeRequest) Validate() error {
	pt, err := distribution.ParsePaymentType(s.PaymentType)
	if err != nil {
		return err
	}
	s.parsed = pt
	return nil
}

// SetAccessTypeRequest switches only who may register children.
type SetAccessTypeRequest struct {
	AccessType string `json:"access_type"`

	parsed distribution.AccessType
}

func (s *SetAccessTypeRequest) Validate() error {
	at, err := distribution.ParseAccessType(s.AccessType)
	if err != nil {
		return err
	}
	s.parsed = at
	return nil
}

// UpdateMintlistRequest carries parallel address/allowed slices.
type UpdateMintlistRequest struct {
	Addresses []string `json:"addresses"`
	Allowed   []bool   `json:"allowed"`

	parsed []id.Address
}

func (u *UpdateMintlistRequest) Validate() error {
	if len(u.Addresses) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one address is required")
	}
	if len(u.Addresses) != len(u.Allowed) {
		return dErrors.New(dErrors.CodeLengthMismatch, "addresses and allowed flags differ in length")
	}
	parsed := make([]id.Address, 0, len(u.Addresses))
	for _, raw := range u.Addresses {
		addr, err := id.ParseAddress(raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "mintlist address is malformed")
		}
		parsed = append(parsed, addr)
	}
	u.parsed = parsed
	return nil
}

// MintlistResponse lists the currently-allowed addresses.
type MintlistResponse struct {
	Addresses []string `json:"addresses"`
}

func (h *Handler) handleSetConfig(w http.ResponseWriter, r *http.Request) {
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
	req, ok := httputil.DecodeAndPrepare[SetConfigRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.distribution.SetConfig(ctx, addr, domainID, req.parsed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetPricer(w http.ResponseWriter, r *http.Request) {
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
	req, ok := httputil.DecodeAndPrepare[SetPricerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.distribution.SetPricer(ctx, addr, domainID, req.Pricer); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetPaymentType(w http.ResponseWriter, r *http.Request) {
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
	req, ok := httputil.DecodeAndPrepare[SetPaymentTypeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.distribution.SetPaymentType(ctx, addr, domainID, req.parsed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetAccessType(w http.ResponseWriter, r *http.Request) {
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
	req, ok := httputil.DecodeAndPrepare[SetAccessTypeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.distribution.SetAccessType(ctx, addr, domainID, req.parsed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateMintlist(w http.ResponseWriter, r *http.Request) {
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
	req, ok := httputil.DecodeAndPrepare[UpdateMintlistRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.distribution.UpdateMintlist(ctx, addr, domainID, req.parsed, req.Allowed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetMintlist(w http.ResponseWriter, r *http.Request) {
	domainID, ok := domainIDParam(w, r)
	if !ok {
		return
	}
	addrs, err := h.distribution.Mintlist(r.Context(), domainID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.String())
	}
	httputil.WriteJSON(w, http.StatusOK, MintlistResponse{Addresses: out})
}

// handleClearMintlist clears the mintlist; with ?lock=true it also forces the
// access type to LOCKED, the emergency brake admins can pull on any domain.
func (h *Handler) handleClearMintlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	addr, err := caller.Require(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	domainID, ok := domainIDParam(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("lock") == "true" {
		err = h.distribution.ClearMintlistAndLock(ctx, addr, domainID)
	} else {
		err = h.distribution.ClearMintlist(ctx, addr, domainID)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func domainIDParam(w http.ResponseWriter, r *http.Request) (id.DomainID, bool) {
	domainID, err := id.ParseDomainID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "domain id is malformed"))
		return id.DomainID{}, false
	}
	return domainID, true
}
