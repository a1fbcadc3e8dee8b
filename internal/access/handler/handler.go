// Package handler exposes role membership management. All routes sit behind
// the admin token; the caller address still decides which grants the access
// matrix permits.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nameledger/internal/access"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/requestcontext"
)

type Handler struct {
	access *access.Service
	logger *slog.Logger
}

func New(acc *access.Service, logger *slog.Logger) *Handler {
	return &Handler{access: acc, logger: logger}
}

// Register mounts the role routes; the router places them behind the admin
// token middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/roles/{role}", h.handleGrant)
	r.Delete("/roles/{role}/{address}", h.handleRevoke)
	r.Get("/roles/{role}", h.handleList)
}

// GrantRequest names the address receiving the role.
type GrantRequest struct {
	Address string `json:"address"`

	parsed id.Address
}

func (g *GrantRequest) Validate() error {
	addr, err := id.ParseAddress(g.Address)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "address is malformed")
	}
	g.parsed = addr
	return nil
}

// RoleMembersResponse lists a role's membership.
type RoleMembersResponse struct {
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	addr, err := caller.Require(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	role, ok := roleParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[GrantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.access.GrantRole(ctx, addr, role, req.parsed); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	addr, err := caller.Require(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	role, ok := roleParam(w, r)
	if !ok {
		return
	}
	target, err := id.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "address is malformed"))
		return
	}
	if err := h.access.RevokeRole(r.Context(), addr, role, target); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(w, r)
	if !ok {
		return
	}
	members, err := h.access.ListRole(r.Context(), role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.String())
	}
	httputil.WriteJSON(w, http.StatusOK, RoleMembersResponse{Role: string(role), Members: out})
}

func roleParam(w http.ResponseWriter, r *http.Request) (access.Role, bool) {
	role, err := access.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return role, true
}
