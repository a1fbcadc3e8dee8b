package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/requestcontext"
)

// PricerSwitcher is the admin slice of the registrar.
type PricerSwitcher interface {
	SetRootPricer(ctx context.Context, caller id.Address, name string) error
	RootPricer() string
}

// AdminHandler carries the admin-token routes for the registrar.
type AdminHandler struct {
	handler  *Handler
	switcher PricerSwitcher
}

func NewAdmin(h *Handler, switcher PricerSwitcher) *AdminHandler {
	return &AdminHandler{handler: h, switcher: switcher}
}

// Register mounts the root-pricer routes; the router places them behind the
// admin token middleware.
func (h *AdminHandler) Register(r chi.Router) {
	r.Put("/root-pricer", h.handleSetRootPricer)
	r.Get("/root-pricer", h.handleGetRootPricer)
}

// SetRootPricerRequest names the engine root registrations use.
type SetRootPricerRequest struct {
	Pricer string `json:"pricer"`
}

func (s *SetRootPricerRequest) Validate() error {
	if s.Pricer == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "pricer name is required")
	}
	return nil
}

func (h *AdminHandler) handleSetRootPricer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	addr, err := caller.Require(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetRootPricerRequest](w, r, h.handler.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.switcher.SetRootPricer(ctx, addr, req.Pricer); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleGetRootPricer(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"pricer": h.switcher.RootPricer()})
}
