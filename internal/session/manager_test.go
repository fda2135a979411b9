package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkarpova/pokedeck/pkg/domain"
)

// fakeAuthAPI records the token install/uninstall calls and serves canned
// auth responses.
type fakeAuthAPI struct {
	resp    *domain.AuthResponse
	err     error
	token   string
	cleared int
}

func (f *fakeAuthAPI) Login(_ context.Context, _, _ string) (*domain.AuthResponse, error) {
	return f.resp, f.err
}

func (f *fakeAuthAPI) Register(_ context.Context, _, _, _ string) (*domain.AuthResponse, error) {
	return f.resp, f.err
}

func (f *fakeAuthAPI) SetToken(tok string) { f.token = tok }

func (f *fakeAuthAPI) ClearToken() {
	f.token = ""
	f.cleared++
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T, api *fakeAuthAPI) (*Manager, *Store) {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() }) //nolint:errcheck
	return NewManager(store, api, discardLogger()), store
}

func authResponse() *domain.AuthResponse {
	return &domain.AuthResponse{
		AccessToken: "tok-abc",
		User:        domain.User{ID: uuid.New(), Email: "ash@example.com", Username: "ash"},
	}
}

func TestBootstrapEmptyStore(t *testing.T) {
	api := &fakeAuthAPI{}
	mgr, _ := newTestManager(t, api)

	assert.Equal(t, PhaseInitializing, mgr.Phase())
	mgr.Bootstrap()

	assert.Equal(t, PhaseReady, mgr.Phase())
	assert.False(t, mgr.IsAuthenticated())
	assert.Nil(t, mgr.CurrentUser())
	assert.Empty(t, api.token)
}

func TestBootstrapRestoresSession(t *testing.T) {
	api := &fakeAuthAPI{}
	mgr, store := newTestManager(t, api)

	user := &domain.User{ID: uuid.New(), Username: "ash"}
	require.NoError(t, store.Save("tok-persisted", user))

	mgr.Bootstrap()

	assert.True(t, mgr.IsAuthenticated())
	assert.Equal(t, "tok-persisted", mgr.Token())
	require.NotNil(t, mgr.CurrentUser())
	assert.Equal(t, "ash", mgr.CurrentUser().Username)
	assert.Equal(t, "tok-persisted", api.token, "restored token installed on the client")
}

func TestBootstrapDiscardsTokenWithoutUser(t *testing.T) {
	api := &fakeAuthAPI{}
	mgr, store := newTestManager(t, api)

	// Token present but no user snapshot: an incomplete session.
	require.NoError(t, store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(tokenKey, []byte("orphan"))
	}))

	mgr.Bootstrap()

	assert.Equal(t, PhaseReady, mgr.Phase())
	assert.False(t, mgr.IsAuthenticated())
	assert.Empty(t, api.token)

	token, user, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token, "incomplete session purged from disk")
	assert.Nil(t, user)
}

func TestLoginEstablishesSession(t *testing.T) {
	api := &fakeAuthAPI{resp: authResponse()}
	mgr, store := newTestManager(t, api)
	mgr.Bootstrap()

	require.NoError(t, mgr.Login(context.Background(), "ash@example.com", "pikapika"))

	assert.True(t, mgr.IsAuthenticated())
	assert.Equal(t, "tok-abc", mgr.Token())
	assert.Equal(t, "tok-abc", api.token)

	token, user, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
	require.NotNil(t, user)
	assert.Equal(t, "ash", user.Username)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	api := &fakeAuthAPI{err: errors.New("invalid credentials")}
	mgr, _ := newTestManager(t, api)
	mgr.Bootstrap()

	err := mgr.Login(context.Background(), "ash@example.com", "wrong")
	require.Error(t, err)
	assert.False(t, mgr.IsAuthenticated())
	assert.Empty(t, api.token)
}

func TestRegisterEstablishesSession(t *testing.T) {
	api := &fakeAuthAPI{resp: authResponse()}
	mgr, _ := newTestManager(t, api)
	mgr.Bootstrap()

	require.NoError(t, mgr.Register(context.Background(), "ash@example.com", "ash", "pikapika"))
	assert.True(t, mgr.IsAuthenticated())
	assert.Equal(t, "tok-abc", api.token)
}

func TestLogoutClearsEverything(t *testing.T) {
	api := &fakeAuthAPI{resp: authResponse()}
	mgr, store := newTestManager(t, api)
	mgr.Bootstrap()
	require.NoError(t, mgr.Login(context.Background(), "ash@example.com", "pikapika"))

	mgr.Logout()

	assert.False(t, mgr.IsAuthenticated())
	assert.Nil(t, mgr.CurrentUser())
	assert.Empty(t, api.token)

	token, user, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)

	// Logout is idempotent.
	mgr.Logout()
	assert.False(t, mgr.IsAuthenticated())
}

func TestInvalidateActsLikeLogout(t *testing.T) {
	api := &fakeAuthAPI{resp: authResponse()}
	mgr, store := newTestManager(t, api)
	mgr.Bootstrap()
	require.NoError(t, mgr.Login(context.Background(), "ash@example.com", "pikapika"))

	mgr.Invalidate()

	assert.False(t, mgr.IsAuthenticated())
	token, _, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}
