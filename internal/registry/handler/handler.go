// Package handler exposes record mutation: owner and resolver updates by the
// record owner or an operator, and per-owner operator approval.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nameledger/internal/registry"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/requestcontext"
)

type Handler struct {
	registry *registry.Service
	logger   *slog.Logger
}

func New(reg *registry.Service, logger *slog.Logger) *Handler {
	return &Handler{registry: reg, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Put("/v1/domains/{id}/owner", h.handleUpdateOwner)
	r.Put("/v1/domains/{id}/resolver", h.handleUpdateResolver)
	r.Put("/v1/operators/{address}", h.handleSetOperator)
}

// UpdateAddressRequest carries a single address field; used by both owner and
// resolver updates.
type UpdateAddressRequest struct {
	Address string `json:"address"`

	parsed id.Address
}

func (u *UpdateAddressRequest) Validate() error {
	addr, err := id.ParseAddress(u.Address)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "address is malformed")
	}
	u.parsed = addr
	return nil
}

// SetOperatorRequest toggles an operator approval for the caller.
type SetOperatorRequest struct {
	Allowed bool `json:"allowed"`
}

func (s *SetOperatorRequest) Validate() error { return nil }

func (h *Handler) handleUpdateOwner(w http.ResponseWriter, r *http.Request) {
	h.handleUpdate(w, r, h.registry.UpdateOwner)
}

func (h *Handler) handleUpdateResolver(w http.ResponseWriter, r *http.Request) {
	h.handleUpdate(w, r, h.registry.UpdateResolver)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, update func(ctx context.Context, caller id.Address, domainID id.DomainID, addr id.Address) error) {
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
	req, ok := httputil.DecodeAndPrepare[UpdateAddressRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := update(ctx, addr, domainID, req.parsed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetOperator(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	addr, err := caller.Require(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	operator, err := id.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "operator address is malformed"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetOperatorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.registry.SetOperator(ctx, addr, operator, req.Allowed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
