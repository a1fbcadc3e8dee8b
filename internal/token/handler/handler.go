// Package handler exposes the payment token ledger: balance reads, transfers
// and allowance approvals. Minting is an admin route wired separately.
package handler

import (
	"log/slog"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nameledger/internal/token"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/requestcontext"
)

type Handler struct {
	tokens *token.Service
	logger *slog.Logger
}

func New(tokens *token.Service, logger *slog.Logger) *Handler {
	return &Handler{tokens: tokens, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/tokens/{token}/balances/{address}", h.handleBalance)
	r.Post("/v1/tokens/{token}/transfer", h.handleTransfer)
	r.Post("/v1/tokens/{token}/approve", h.handleApprove)
}

// AmountRequest moves or approves an amount toward a counterparty.
type AmountRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`

	to     id.Address
	amount *big.Int
}

func (a *AmountRequest) Validate() error {
	addr, err := id.ParseAddress(a.To)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "recipient address is malformed")
	}
	amount, ok := new(big.Int).SetString(a.Amount, 10)
	if !ok || amount.Sign() < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount is not a valid token amount")
	}
	a.to = addr
	a.amount = amount
	return nil
}

// BalanceResponse reports one holder's balance in base units.
type BalanceResponse struct {
	Token   string `json:"token"`
	Address string `json:"address"`
	Balance string `json:"balance"`
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	tokenAddr, ok := addressParam(w, r, "token")
	if !ok {
		return
	}
	holder, ok := addressParam(w, r, "address")
	if !ok {
		return
	}
	balance, err := h.tokens.BalanceOf(r.Context(), tokenAddr, holder)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BalanceResponse{
		Token:   tokenAddr.String(),
		Address: holder.String(),
		Balance: balance.String(),
	})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
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
	if err := h.tokens.Transfer(ctx, tokenAddr, addr, req.to, req.amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
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
	if err := h.tokens.Approve(ctx, tokenAddr, addr, req.to, req.amount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func addressParam(w http.ResponseWriter, r *http.Request, name string) (id.Address, bool) {
	addr, err := id.ParseAddress(chi.URLParam(r, name))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, name+" address is malformed"))
		return id.ZeroAddress, false
	}
	return addr, true
}
