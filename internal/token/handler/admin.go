package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/requestcontext"
)

// RegisterAdmin mounts the mint route; the router places it behind the admin
// token middleware. Minting is additionally role-gated on the caller.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/tokens/{token}/mint", h.handleMint)
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	addr, err := caller.Require(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	tokenAddr, ok := addressParam(w, r, "token")
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AmountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.tokens.Mint(ctx, addr, tokenAddr, req.to, req.amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
