package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nameledger/internal/access"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

type fixture struct {
	svc       *Service
	registrar id.Address
	owner     id.Address
	stranger  id.Address
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	governor, registrarAcct := addr(1), addr(50)
	accessSvc, err := access.New(access.NewInMemory())
	require.NoError(t, err)
	require.NoError(t, accessSvc.Seed(context.Background(),
		[]id.Address{governor}, nil, []id.Address{registrarAcct}))

	svc, err := New(NewInMemory(), accessSvc, nil)
	require.NoError(t, err)
	return fixture{svc: svc, registrar: registrarAcct, owner: addr(2), stranger: addr(3)}
}

func (f fixture) create(t *testing.T, label string) DomainRecord {
	t.Helper()
	rec := DomainRecord{
		ID:       id.ChildID(id.RootID(), label),
		Owner:    f.owner,
		Resolver: addr(9),
	}
	require.NoError(t, f.svc.CreateRecord(context.Background(), f.registrar, rec))
	return rec
}

func TestCreateRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("registrar creates records", func(t *testing.T) {
		rec := f.create(t, "wilder")
		found, err := f.svc.GetRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec, found)
	})

	t.Run("non-registrar is refused", func(t *testing.T) {
		rec := DomainRecord{ID: id.ChildID(id.RootID(), "nope"), Owner: f.owner}
		err := f.svc.CreateRecord(ctx, f.stranger, rec)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("duplicate create conflicts", func(t *testing.T) {
		rec := f.create(t, "dup")
		err := f.svc.CreateRecord(ctx, f.registrar, rec)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestUpdateOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec := f.create(t, "wilder")

	t.Run("owner updates owner", func(t *testing.T) {
		require.NoError(t, f.svc.UpdateOwner(ctx, f.owner, rec.ID, addr(7)))
		found, err := f.svc.GetRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, addr(7), found.Owner)
		// restore for the following subtests
		require.NoError(t, f.svc.UpdateOwner(ctx, addr(7), rec.ID, f.owner))
	})

	t.Run("stranger cannot update", func(t *testing.T) {
		err := f.svc.UpdateOwner(ctx, f.stranger, rec.ID, f.stranger)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("operator can update", func(t *testing.T) {
		operator := addr(8)
		require.NoError(t, f.svc.SetOperator(ctx, f.owner, operator, true))
		require.NoError(t, f.svc.UpdateResolver(ctx, operator, rec.ID, addr(41)))
	})
}

func TestUpdateResolver(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec := f.create(t, "wilder")

	require.NoError(t, f.svc.UpdateResolver(ctx, f.owner, rec.ID, addr(40)))
	found, err := f.svc.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, addr(40), found.Resolver)
}

func TestSetOwnerAsRegistrar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec := f.create(t, "wilder")

	t.Run("registrar re-points ownership", func(t *testing.T) {
		require.NoError(t, f.svc.SetOwnerAsRegistrar(ctx, f.registrar, rec.ID, addr(7)))
		found, err := f.svc.GetRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, addr(7), found.Owner)
	})

	t.Run("non-registrar is refused", func(t *testing.T) {
		err := f.svc.SetOwnerAsRegistrar(ctx, f.stranger, rec.ID, f.stranger)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestIsOwnerOrOperator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec := f.create(t, "wilder")

	ok, err := f.svc.IsOwnerOrOperator(ctx, rec.ID, f.owner)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.IsOwnerOrOperator(ctx, rec.ID, f.stranger)
	require.NoError(t, err)
	assert.False(t, ok)

	operator := addr(8)
	require.NoError(t, f.svc.SetOperator(ctx, f.owner, operator, true))
	ok, err = f.svc.IsOwnerOrOperator(ctx, rec.ID, operator)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rec := f.create(t, "wilder")

	t.Run("non-registrar refused", func(t *testing.T) {
		err := f.svc.DeleteRecord(ctx, f.owner, rec.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	require.NoError(t, f.svc.DeleteRecord(ctx, f.registrar, rec.ID))
	_, err := f.svc.GetRecord(ctx, rec.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
