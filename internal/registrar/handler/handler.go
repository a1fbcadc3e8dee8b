// Package handler exposes the domain lifecycle over HTTP: registration under
// the root, subdomain registration, reclaim, revocation and the combined
// domain read model.
package handler

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nameledger/internal/certificate"
	"nameledger/internal/distribution"
	"nameledger/internal/registrar"
	"nameledger/internal/registry"
	"nameledger/internal/treasury"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/requestcontext"
)

// RootRegistrar is the slice of the registrar the lifecycle endpoints need.
type RootRegistrar interface {
	RegisterRoot(ctx context.Context, caller id.Address, params registrar.RegisterParams) (id.DomainID, error)
	Reclaim(ctx context.Context, caller id.Address, domainID id.DomainID) error
	Revoke(ctx context.Context, caller id.Address, domainID id.DomainID) (*big.Int, error)
}

// SubRegistrar registers under existing parents.
type SubRegistrar interface {
	RegisterSubdomain(ctx context.Context, caller id.Address, parent id.DomainID, params registrar.RegisterParams) (id.DomainID, error)
}

// Reader aggregates the read side of the domain view.
type Reader interface {
	GetRecord(ctx context.Context, domainID id.DomainID) (registry.DomainRecord, error)
}

// Handler wires the lifecycle routes.
type Handler struct {
	root         RootRegistrar
	sub          SubRegistrar
	records      Reader
	certificates *certificate.Service
	treasury     *treasury.Service
	distribution *distribution.Service
	logger       *slog.Logger
}

func New(root RootRegistrar, sub SubRegistrar, records Reader, certs *certificate.Service, treas *treasury.Service, dist *distribution.Service, logger *slog.Logger) *Handler {
	return &Handler{
		root:         root,
		sub:          sub,
		records:      records,
		certificates: certs,
		treasury:     treas,
		distribution: dist,
		logger:       logger,
	}
}

// Register mounts the lifecycle routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/domains", h.handleRegisterRoot)
	r.Post("/v1/domains/{id}/subdomains", h.handleRegisterSubdomain)
	r.Post("/v1/domains/{id}/reclaim", h.handleReclaim)
	r.Delete("/v1/domains/{id}", h.handleRevoke)
	r.Get("/v1/domains/{id}", h.handleGetDomain)
}

func (h *Handler) handleRegisterRoot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	addr, err := caller.Require(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterDomainRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	domainID, err := h.root.RegisterRoot(ctx, addr, req.params())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, RegisterDomainResponse{DomainID: domainID.String()})
}

func (h *Handler) handleRegisterSubdomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	addr, err := caller.Require(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	parent, ok := domainIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterDomainRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	domainID, err := h.sub.RegisterSubdomain(ctx, addr, parent, req.params())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, RegisterDomainResponse{DomainID: domainID.String()})
}

func (h *Handler) handleReclaim(w http.ResponseWriter, r *http.Request) {
	addr, err := caller.Require(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	domainID, ok := domainIDParam(w, r)
	if !ok {
		return
	}
	if err := h.root.Reclaim(r.Context(), addr, domainID); err != nil {
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
	domainID, ok := domainIDParam(w, r)
	if !ok {
		return
	}
	refunded, err := h.root.Revoke(r.Context(), addr, domainID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RevokeResponse{Refunded: bigString(refunded)})
}

func (h *Handler) handleGetDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domainID, ok := domainIDParam(w, r)
	if !ok {
		return
	}

	record, err := h.records.GetRecord(ctx, domainID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := DomainResponse{
		DomainID: domainID.String(),
		Owner:    record.Owner.String(),
		Resolver: record.Resolver.String(),
	}
	if cert, err := h.certificates.Get(ctx, domainID); err == nil {
		resp.CertificateOwner = cert.Owner.String()
		resp.TokenURI = cert.TokenURI
	}
	if stake, err := h.treasury.Staked(ctx, domainID); err == nil {
		resp.Staked = stake.Amount.String()
	}
	if cfg, err := h.distribution.ConfigFor(ctx, domainID); err == nil && cfg.IsSet {
		resp.Distribution = &DistributionConfigBody{
			Pricer:      cfg.Pricer,
			PaymentType: string(cfg.PaymentType),
			AccessType:  string(cfg.AccessType),
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// params converts the validated request into registrar parameters.
func (r *RegisterDomainRequest) params() registrar.RegisterParams {
	return registrar.RegisterParams{
		Label:         r.Label,
		TokenURI:      r.TokenURI,
		Resolver:      r.resolver,
		DistConfig:    r.distConfig,
		PaymentConfig: r.paymentConfig,
	}
}

// domainIDParam parses the {id} route parameter, writing the error response
// on failure.
func domainIDParam(w http.ResponseWriter, r *http.Request) (id.DomainID, bool) {
	raw := chi.URLParam(r, "id")
	domainID, err := id.ParseDomainID(raw)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "domain id is malformed"))
		return id.DomainID{}, false
	}
	return domainID, true
}
