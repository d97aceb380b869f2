package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopsphere-client/domain/catalog"
	"github.com/example/shopsphere-client/domain/identity"
	"github.com/example/shopsphere-client/modules/gateway"
	"github.com/example/shopsphere-client/modules/gateway/gatewaytest"
)

type fakeSession struct {
	ident identity.Identity
	ok    bool
}

func (f *fakeSession) Current() (identity.Identity, bool) {
	return f.ident, f.ok
}

func newTestStore(t *testing.T) (*Store, *fakeSession, *gatewaytest.Server) {
	t.Helper()
	srv := gatewaytest.NewServer()
	t.Cleanup(srv.Close)
	gw, err := gateway.NewClient(srv.URL(), nil, 5*time.Second)
	require.NoError(t, err)

	ident := srv.SeedUser("Alice", "alice@example.com", "secret", identity.RoleUser)
	require.NoError(t, gw.SetToken(srv.TokenFor("alice@example.com")))

	sess := &fakeSession{ident: ident, ok: true}
	return NewStore(gw, sess), sess, srv
}

func seedProduct(t *testing.T, srv *gatewaytest.Server, name, price string) catalog.Product {
	t.Helper()
	return srv.SeedProduct(catalog.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: 10,
	})
}

func TestAnonymousMutationsSkipNetwork(t *testing.T) {
	store, sess, srv := newTestStore(t)
	sess.ok = false
	ctx := context.Background()

	assert.ErrorIs(t, store.Add(ctx, 1, 1), ErrLoginRequired)
	assert.ErrorIs(t, store.SetQuantity(ctx, 1, 2), ErrLoginRequired)
	assert.ErrorIs(t, store.Remove(ctx, 1), ErrLoginRequired)
	assert.ErrorIs(t, store.Clear(ctx), ErrLoginRequired)

	assert.Zero(t, srv.TotalRequests(), "anonymous mutations must not reach the server")
}

func TestAddReloadsHeldCollection(t *testing.T) {
	store, _, srv := newTestStore(t)
	p := seedProduct(t, srv, "Widget", "19.99")

	require.NoError(t, store.Add(context.Background(), p.ID, 2))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, p.ID, lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, lines[0].TotalPrice.Equal(decimal.RequireFromString("39.98")))
	assert.Equal(t, 2, store.ItemCount())

	// Every mutation is followed by a full re-fetch.
	assert.Equal(t, 1, srv.Requests("POST", "/cart/add"))
	assert.Equal(t, 1, srv.Requests("GET", "/cart"))
}

func TestAddRejectsBadQuantityLocally(t *testing.T) {
	store, _, srv := newTestStore(t)

	assert.ErrorIs(t, store.Add(context.Background(), 1, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, store.Add(context.Background(), 1, -3), ErrInvalidQuantity)
	assert.Zero(t, srv.TotalRequests())
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	store, _, srv := newTestStore(t)
	p := seedProduct(t, srv, "Widget", "5.00")
	require.NoError(t, store.Add(context.Background(), p.ID, 3))

	require.NoError(t, store.SetQuantity(context.Background(), p.ID, 0))

	assert.Empty(t, store.Lines())
	removePath := fmt.Sprintf("/cart/remove/%d", p.ID)
	assert.Equal(t, 1, srv.Requests("DELETE", removePath), "zero quantity becomes a removal")
	assert.Zero(t, srv.Requests("PUT", "/cart/update"))
}

func TestSetQuantityUpdatesLine(t *testing.T) {
	store, _, srv := newTestStore(t)
	p := seedProduct(t, srv, "Widget", "5.00")
	require.NoError(t, store.Add(context.Background(), p.ID, 1))

	require.NoError(t, store.SetQuantity(context.Background(), p.ID, 4))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, 1, srv.Requests("PUT", "/cart/update"))
}

func TestSetQuantityRejectsNegativeLocally(t *testing.T) {
	store, _, srv := newTestStore(t)

	assert.ErrorIs(t, store.SetQuantity(context.Background(), 1, -1), ErrInvalidQuantity)
	assert.Zero(t, srv.TotalRequests())
}

func TestRemoveAndClear(t *testing.T) {
	store, _, srv := newTestStore(t)
	a := seedProduct(t, srv, "Widget", "5.00")
	b := seedProduct(t, srv, "Gadget", "7.50")
	require.NoError(t, store.Add(context.Background(), a.ID, 1))
	require.NoError(t, store.Add(context.Background(), b.ID, 2))

	require.NoError(t, store.Remove(context.Background(), a.ID))
	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, b.ID, lines[0].ProductID)

	require.NoError(t, store.Clear(context.Background()))
	assert.Empty(t, store.Lines())
	assert.Zero(t, store.ItemCount())
}

func TestTotalSumsLineTotals(t *testing.T) {
	store, _, srv := newTestStore(t)
	a := seedProduct(t, srv, "Widget", "19.99")
	b := seedProduct(t, srv, "Gadget", "0.01")
	require.NoError(t, store.Add(context.Background(), a.ID, 2))
	require.NoError(t, store.Add(context.Background(), b.ID, 3))

	assert.True(t, store.Total().Equal(decimal.RequireFromString("40.01")),
		"got %s", store.Total())
	assert.Equal(t, 5, store.ItemCount())
}

func TestReloadWhileAnonymousForcesEmpty(t *testing.T) {
	store, sess, srv := newTestStore(t)
	p := seedProduct(t, srv, "Widget", "5.00")
	require.NoError(t, store.Add(context.Background(), p.ID, 1))
	require.Len(t, store.Lines(), 1)

	sess.ok = false
	before := srv.TotalRequests()

	require.NoError(t, store.Reload(context.Background()))

	assert.Empty(t, store.Lines())
	assert.Equal(t, before, srv.TotalRequests(), "anonymous reload is purely local")
}

func TestReloadFailureClearsHeldCollection(t *testing.T) {
	store, _, srv := newTestStore(t)
	p := seedProduct(t, srv, "Widget", "5.00")
	require.NoError(t, store.Add(context.Background(), p.ID, 1))

	srv.ForceStatus("GET", "/cart", 500)
	err := store.Reload(context.Background())
	require.Error(t, err)
	assert.True(t, gateway.IsStatus(err, 500))
	assert.Empty(t, store.Lines(), "a failed reload leaves no stale lines behind")
}
