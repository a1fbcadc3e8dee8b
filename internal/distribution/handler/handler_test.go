package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nameledger/internal/access"
	"nameledger/internal/distribution"
	"nameledger/internal/registry"
	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/testutil"
)

const (
	ownerCaller    = "0x0000000000000000000000000000000000000002"
	strangerCaller = "0x0000000000000000000000000000000000000009"
)

func addr(b byte) id.Address {
	var a id.Address
	a[19] = b
	return a
}

type fixture struct {
	svc      *distribution.Service
	router   http.Handler
	domainID id.DomainID
}

// newFixture backs the handler with a real service over a registered domain
// owned by the owner caller, so the ownership gate runs for real.
func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	admin, owner, registrarAcct := addr(1), addr(2), addr(50)

	accessSvc, err := access.New(access.NewInMemory())
	require.NoError(t, err)
	require.NoError(t, accessSvc.Seed(ctx,
		[]id.Address{admin}, []id.Address{admin}, []id.Address{registrarAcct}))

	records, err := registry.New(registry.NewInMemory(), accessSvc, nil)
	require.NoError(t, err)
	domainID := id.ChildID(id.RootID(), "wilder")
	require.NoError(t, records.CreateRecord(ctx, registrarAcct, registry.DomainRecord{
		ID:    domainID,
		Owner: owner,
	}))

	svc, err := distribution.New(distribution.NewInMemoryConfigs(),
		distribution.NewInMemoryMintlist(), records, accessSvc, nil, nil)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Use(caller.Middleware(logger))
	New(svc, logger).Register(r)
	return fixture{svc: svc, router: r, domainID: domainID}
}

func (f fixture) put(t *testing.T, path, callerAddr string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPut, path, body)
	if callerAddr != "" {
		req = testutil.WithCaller(req, callerAddr)
	}
	return testutil.Do(f.router, req)
}

func TestSetPaymentType(t *testing.T) {
	ctx := context.Background()

	t.Run("owner switches to stake", func(t *testing.T) {
		f := newFixture(t)
		rec := f.put(t, "/v1/domains/"+f.domainID.String()+"/payment-type", ownerCaller,
			map[string]string{"payment_type": "STAKE"})
		require.Equal(t, http.StatusNoContent, rec.Code)

		cfg, err := f.svc.ConfigFor(ctx, f.domainID)
		require.NoError(t, err)
		assert.Equal(t, distribution.PaymentStake, cfg.PaymentType)
		// The rest of the policy keeps its previous values.
		assert.Equal(t, distribution.AccessLocked, cfg.AccessType)
	})

	t.Run("unknown payment type", func(t *testing.T) {
		f := newFixture(t)
		rec := f.put(t, "/v1/domains/"+f.domainID.String()+"/payment-type", ownerCaller,
			map[string]string{"payment_type": "LAYAWAY"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("stranger is refused", func(t *testing.T) {
		f := newFixture(t)
		rec := f.put(t, "/v1/domains/"+f.domainID.String()+"/payment-type", strangerCaller,
			map[string]string{"payment_type": "DIRECT"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestSetAccessType(t *testing.T) {
	ctx := context.Background()

	t.Run("owner opens the domain", func(t *testing.T) {
		f := newFixture(t)
		rec := f.put(t, "/v1/domains/"+f.domainID.String()+"/access-type", ownerCaller,
			map[string]string{"access_type": "OPEN"})
		require.Equal(t, http.StatusNoContent, rec.Code)

		cfg, err := f.svc.ConfigFor(ctx, f.domainID)
		require.NoError(t, err)
		assert.Equal(t, distribution.AccessOpen, cfg.AccessType)
	})

	t.Run("unknown access type", func(t *testing.T) {
		f := newFixture(t)
		rec := f.put(t, "/v1/domains/"+f.domainID.String()+"/access-type", ownerCaller,
			map[string]string{"access_type": "SECRET"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing caller header", func(t *testing.T) {
		f := newFixture(t)
		rec := f.put(t, "/v1/domains/"+f.domainID.String()+"/access-type", "",
			map[string]string{"access_type": "OPEN"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
