package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopsphere-client/domain/identity"
	"github.com/example/shopsphere-client/modules/gateway"
	"github.com/example/shopsphere-client/modules/gateway/gatewaytest"
)

func newTestStore(t *testing.T) (*Store, *gateway.Client, *gatewaytest.Server) {
	t.Helper()
	srv := gatewaytest.NewServer()
	t.Cleanup(srv.Close)
	gw, err := gateway.NewClient(srv.URL(), nil, 5*time.Second)
	require.NoError(t, err)
	return NewStore(gw), gw, srv
}

func TestLogin(t *testing.T) {
	store, gw, srv := newTestStore(t)
	srv.SeedUser("Alice", "alice@example.com", "secret", identity.RoleUser)

	ident, err := store.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "Alice", ident.Name)
	assert.Equal(t, "alice@example.com", ident.Email)
	assert.Equal(t, identity.RoleUser, ident.Role)
	assert.True(t, gw.HasToken())

	current, ok := store.Current()
	assert.True(t, ok)
	assert.Equal(t, ident, current)
}

func TestLoginWrongPassword(t *testing.T) {
	store, gw, srv := newTestStore(t)
	srv.SeedUser("Alice", "alice@example.com", "secret", identity.RoleUser)

	_, err := store.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.False(t, gw.HasToken())
	_, ok := store.Current()
	assert.False(t, ok)
}

func TestLoginMissingFieldsSkipsNetwork(t *testing.T) {
	store, _, srv := newTestStore(t)

	_, err := store.Login(context.Background(), "", "secret")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = store.Login(context.Background(), "alice@example.com", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	assert.Zero(t, srv.TotalRequests(), "local rejection must not reach the server")
}

func TestRegister(t *testing.T) {
	store, gw, srv := newTestStore(t)

	err := store.Register(context.Background(), "Bob", "bob@example.com", "secret")
	require.NoError(t, err)

	// Registration never logs in.
	assert.False(t, gw.HasToken())
	_, ok := store.Current()
	assert.False(t, ok)

	// The account exists: login works now.
	_, err = store.Login(context.Background(), "bob@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Requests("POST", "/auth/register"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store, _, srv := newTestStore(t)
	srv.SeedUser("Alice", "alice@example.com", "secret", identity.RoleUser)

	err := store.Register(context.Background(), "Imposter", "alice@example.com", "other")
	require.Error(t, err)
	assert.True(t, gateway.IsStatus(err, 409))
}

func TestRegisterMissingFieldsSkipsNetwork(t *testing.T) {
	store, _, srv := newTestStore(t)

	assert.ErrorIs(t, store.Register(context.Background(), "", "a@b.com", "pw"), ErrMissingName)
	assert.ErrorIs(t, store.Register(context.Background(), "Bob", "", "pw"), ErrMissingCredentials)
	assert.Zero(t, srv.TotalRequests())
}

func TestLogout(t *testing.T) {
	store, gw, srv := newTestStore(t)
	srv.SeedUser("Alice", "alice@example.com", "secret", identity.RoleUser)
	_, err := store.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, store.Logout())

	assert.False(t, gw.HasToken())
	_, ok := store.Current()
	assert.False(t, ok)
}

func TestInitRestoresSession(t *testing.T) {
	store, gw, srv := newTestStore(t)
	srv.SeedUser("Alice", "alice@example.com", "secret", identity.RoleAdmin)
	require.NoError(t, gw.SetToken(srv.TokenFor("alice@example.com")))

	store.Init(context.Background())

	current, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", current.Email)
	assert.True(t, current.IsAdmin())
}

func TestInitWithRejectedTokenGoesAnonymous(t *testing.T) {
	store, gw, _ := newTestStore(t)
	require.NoError(t, gw.SetToken("garbage"))

	store.Init(context.Background())

	_, ok := store.Current()
	assert.False(t, ok)
	assert.False(t, gw.HasToken(), "rejected token must not linger")
}

func TestInitWithoutTokenStaysAnonymous(t *testing.T) {
	store, _, srv := newTestStore(t)

	store.Init(context.Background())

	_, ok := store.Current()
	assert.False(t, ok)
	assert.Zero(t, srv.TotalRequests())
}

func TestUnauthorizedAnywhereResetsSession(t *testing.T) {
	store, gw, srv := newTestStore(t)
	srv.SeedUser("Alice", "alice@example.com", "secret", identity.RoleUser)
	_, err := store.Login(context.Background(), "alice@example.com", "secret")
	require.NoError(t, err)

	// Any later call hitting a 401 drops the session, not just auth calls.
	srv.ForceStatus("GET", "/cart", 401)
	_, err = gw.CartItems(context.Background())
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)

	_, ok := store.Current()
	assert.False(t, ok)
	assert.False(t, gw.HasToken())
}
