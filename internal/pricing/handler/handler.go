// Package handler exposes per-parent price configuration and read-only
// quoting. Curve and fixed configs are set through one endpoint discriminated
// by kind; quotes run the engine the parent's distribution config names.
package handler

import (
	"log/slog"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nameledger/internal/distribution"
	"nameledger/internal/pricing"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/requestcontext"
)

type Handler struct {
	pricing      *pricing.Service
	distribution *distribution.Service
	logger       *slog.Logger
}

func New(prices *pricing.Service, dist *distribution.Service, logger *slog.Logger) *Handler {
	return &Handler{pricing: prices, distribution: dist, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Put("/v1/domains/{id}/price-config", h.handleSetPriceConfig)
	r.Get("/v1/domains/{id}/price", h.handleQuote)
}

// SetPriceConfigRequest sets either engine's config depending on Kind.
// Amounts are decimal strings in token base units.
type SetPriceConfigRequest struct {
	Kind string `json:"kind"`

	// Curve fields.
	MaxPrice            string `json:"max_price,omitempty"`
	MinPrice            string `json:"min_price,omitempty"`
	MaxLength           int    `json:"max_length,omitempty"`
	BaseLength          int    `json:"base_length,omitempty"`
	PrecisionMultiplier string `json:"precision_multiplier,omitempty"`

	// Fixed fields.
	Price string `json:"price,omitempty"`

	FeeBps int64 `json:"fee_bps"`

	curve *pricing.CurveConfig
	fixed *pricing.FixedConfig
}

func (s *SetPriceConfigRequest) Validate() error {
	switch s.Kind {
	case pricing.PricerCurve:
		maxPrice, ok := parseAmount(s.MaxPrice)
		if !ok {
			return dErrors.New(dErrors.CodeInvalidInput, "max_price is not a valid amount")
		}
		minPrice, ok := parseAmount(s.MinPrice)
		if !ok {
			return dErrors.New(dErrors.CodeInvalidInput, "min_price is not a valid amount")
		}
		precision, ok := parseAmount(s.PrecisionMultiplier)
		if !ok {
			return dErrors.New(dErrors.CodeInvalidInput, "precision_multiplier is not a valid amount")
		}
		s.curve = &pricing.CurveConfig{
			MaxPrice:            maxPrice,
			MinPrice:            minPrice,
			MaxLength:           s.MaxLength,
			BaseLength:          s.BaseLength,
			PrecisionMultiplier: precision,
			FeeBps:              s.FeeBps,
			IsSet:               true,
		}
		return nil
	case pricing.PricerFixed:
		price, ok := parseAmount(s.Price)
		if !ok {
			return dErrors.New(dErrors.CodeInvalidInput, "price is not a valid amount")
		}
		s.fixed = &pricing.FixedConfig{
			Price:  price,
			FeeBps: s.FeeBps,
			IsSet:  true,
		}
		return nil
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "kind must be curve or fixed")
	}
}

// QuoteResponse is the price and protocol fee for registering a label.
type QuoteResponse struct {
	Label  string `json:"label"`
	Pricer string `json:"pricer"`
	Price  string `json:"price"`
	Fee    string `json:"fee"`
}

func (h *Handler) handleSetPriceConfig(w http.ResponseWriter, r *http.Request) {
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
	req, ok := httputil.DecodeAndPrepare[SetPriceConfigRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if req.curve != nil {
		err = h.pricing.SetCurveConfig(ctx, addr, domainID, *req.curve)
	} else {
		err = h.pricing.SetFixedConfig(ctx, addr, domainID, *req.fixed)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleQuote prices a label under a parent without registering it. The
// engine comes from the parent's distribution config.
func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domainID, ok := domainIDParam(w, r)
	if !ok {
		return
	}
	label := id.NormalizeLabel(r.URL.Query().Get("label"))
	if label == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "label query parameter is required"))
		return
	}

	cfg, err := h.distribution.ConfigFor(ctx, domainID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pricer, err := h.pricing.Pricers().Get(cfg.Pricer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	price, fee, err := pricer.PriceAndFee(ctx, domainID, label)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, QuoteResponse{
		Label:  label,
		Pricer: pricer.Name(),
		Price:  price.String(),
		Fee:    fee.String(),
	})
}

func parseAmount(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}

func domainIDParam(w http.ResponseWriter, r *http.Request) (id.DomainID, bool) {
	domainID, err := id.ParseDomainID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "domain id is malformed"))
		return id.DomainID{}, false
	}
	return domainID, true
}
