package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nameledger/internal/registrar"
	"nameledger/internal/registry"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/middleware/caller"
	"nameledger/pkg/testutil"
)

type stubRegistrar struct {
	lastCaller id.Address
	lastParams registrar.RegisterParams
	lastParent id.DomainID
	err        error
	refund     *big.Int
}

func (s *stubRegistrar) RegisterRoot(_ context.Context, c id.Address, params registrar.RegisterParams) (id.DomainID, error) {
	s.lastCaller, s.lastParams = c, params
	if s.err != nil {
		return id.DomainID{}, s.err
	}
	return id.ChildID(id.RootID(), params.Label), nil
}

func (s *stubRegistrar) Reclaim(_ context.Context, c id.Address, _ id.DomainID) error {
	s.lastCaller = c
	return s.err
}

func (s *stubRegistrar) Revoke(_ context.Context, c id.Address, _ id.DomainID) (*big.Int, error) {
	s.lastCaller = c
	return s.refund, s.err
}

func (s *stubRegistrar) RegisterSubdomain(_ context.Context, c id.Address, parent id.DomainID, params registrar.RegisterParams) (id.DomainID, error) {
	s.lastCaller, s.lastParent, s.lastParams = c, parent, params
	if s.err != nil {
		return id.DomainID{}, s.err
	}
	return id.ChildID(parent, params.Label), nil
}

type stubReader struct{ record registry.DomainRecord }

func (s stubReader) GetRecord(context.Context, id.DomainID) (registry.DomainRecord, error) {
	return s.record, nil
}

func newTestRouter(stub *stubRegistrar) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(stub, stub, stubReader{}, nil, nil, nil, logger)

	r := chi.NewRouter()
	r.Use(caller.Middleware(logger))
	h.Register(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, callerAddr string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, path, body)
	if callerAddr != "" {
		req = testutil.WithCaller(req, callerAddr)
	}
	return testutil.Do(router, req)
}

const testCaller = "0x0000000000000000000000000000000000000002"

func TestHandleRegisterRoot(t *testing.T) {
	t.Run("creates and returns the id", func(t *testing.T) {
		stub := &stubRegistrar{}
		rec := doJSON(t, newTestRouter(stub), http.MethodPost, "/v1/domains", testCaller,
			map[string]string{"label": "wild", "token_uri": "ipfs://wild"})

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp RegisterDomainResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, id.ChildID(id.RootID(), "wild").String(), resp.DomainID)
		assert.Equal(t, "wild", stub.lastParams.Label)
		assert.Equal(t, "ipfs://wild", stub.lastParams.TokenURI)
		assert.Equal(t, testCaller, stub.lastCaller.String())
	})

	t.Run("missing caller header", func(t *testing.T) {
		rec := doJSON(t, newTestRouter(&stubRegistrar{}), http.MethodPost, "/v1/domains", "",
			map[string]string{"label": "wild"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed caller header", func(t *testing.T) {
		rec := doJSON(t, newTestRouter(&stubRegistrar{}), http.MethodPost, "/v1/domains", "not-an-address",
			map[string]string{"label": "wild"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty label fails validation", func(t *testing.T) {
		rec := doJSON(t, newTestRouter(&stubRegistrar{}), http.MethodPost, "/v1/domains", testCaller,
			map[string]string{"token_uri": "ipfs://x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, string(dErrors.CodeInvalidLength), body["error"])
	})

	t.Run("bad distribution body", func(t *testing.T) {
		rec := doJSON(t, newTestRouter(&stubRegistrar{}), http.MethodPost, "/v1/domains", testCaller,
			map[string]any{
				"label":        "wild",
				"distribution": map[string]string{"payment_type": "IOU", "access_type": "OPEN"},
			})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service errors map to status codes", func(t *testing.T) {
		stub := &stubRegistrar{err: dErrors.New(dErrors.CodeAlreadyExists, "taken")}
		rec := doJSON(t, newTestRouter(stub), http.MethodPost, "/v1/domains", testCaller,
			map[string]string{"label": "wild"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandleRegisterSubdomain(t *testing.T) {
	stub := &stubRegistrar{}
	parent := id.ChildID(id.RootID(), "wild")

	rec := doJSON(t, newTestRouter(stub), http.MethodPost,
		"/v1/domains/"+parent.String()+"/subdomains", testCaller,
		map[string]string{"label": "shop"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, parent, stub.lastParent)
	assert.Equal(t, "shop", stub.lastParams.Label)
}

func TestHandleRevoke(t *testing.T) {
	t.Run("reports the refund", func(t *testing.T) {
		stub := &stubRegistrar{refund: big.NewInt(975)}
		domainID := id.ChildID(id.RootID(), "wild")

		req := testutil.WithCaller(httptest.NewRequest(http.MethodDelete, "/v1/domains/"+domainID.String(), nil), testCaller)
		rec := testutil.Do(newTestRouter(stub), req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp RevokeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "975", resp.Refunded)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := testutil.WithCaller(httptest.NewRequest(http.MethodDelete, "/v1/domains/zzz", nil), testCaller)
		rec := testutil.Do(newTestRouter(&stubRegistrar{}), req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not both owner", func(t *testing.T) {
		stub := &stubRegistrar{err: dErrors.New(dErrors.CodeNotBothOwner, "nope")}
		domainID := id.ChildID(id.RootID(), "wild")

		req := testutil.WithCaller(httptest.NewRequest(http.MethodDelete, "/v1/domains/"+domainID.String(), nil), testCaller)
		rec := testutil.Do(newTestRouter(stub), req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandleReclaim(t *testing.T) {
	stub := &stubRegistrar{}
	domainID := id.ChildID(id.RootID(), "wild")

	req := testutil.WithCaller(httptest.NewRequest(http.MethodPost, "/v1/domains/"+domainID.String()+"/reclaim", nil), testCaller)
	rec := testutil.Do(newTestRouter(stub), req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testCaller, stub.lastCaller.String())
}
