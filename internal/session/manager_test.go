// AngelaMos | 2026
// manager_test.go

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoplagas/backend/internal/config"
	"github.com/ecoplagas/backend/internal/core"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	store, _ := newTestStore(t, time.Hour)
	signer, err := NewTokenSigner(testSecret, "ecoplagas")
	require.NoError(t, err)

	return NewManager(store, signer, config.SessionConfig{
		CookieName: "ecoplagas_session",
	}, false)
}

func withCookies(r *http.Request, cookies []*http.Cookie) *http.Request {
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestManager_StartLoad(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	identity := Identity{UserID: 1, Name: "Ana", Email: "ana@example.com"}

	sess, err := m.Start(ctx, rec, req, identity)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "ecoplagas_session", c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)

	next := withCookies(httptest.NewRequest(http.MethodGet, "/api/check_auth", nil), cookies)
	got, err := m.Load(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, identity, got.Identity)
}

func TestManager_LoadWithoutCookie(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, core.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "ecoplagas_session", Value: "forged"})
	_, err = m.Load(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestManager_StartRotatesExistingSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	first, err := m.Start(ctx, rec, httptest.NewRequest(http.MethodPost, "/", nil), Identity{UserID: 1})
	require.NoError(t, err)

	req := withCookies(httptest.NewRequest(http.MethodPost, "/", nil), rec.Result().Cookies())
	second, err := m.Start(ctx, httptest.NewRecorder(), req, Identity{UserID: 2})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = m.Store().Get(ctx, first.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestManager_Destroy(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	sess, err := m.Start(ctx, rec, httptest.NewRequest(http.MethodPost, "/", nil), Identity{UserID: 1})
	require.NoError(t, err)

	out := httptest.NewRecorder()
	req := withCookies(httptest.NewRequest(http.MethodGet, "/logout", nil), rec.Result().Cookies())
	require.NoError(t, m.Destroy(ctx, out, req))

	cleared := out.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)

	_, err = m.Store().Get(ctx, sess.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, m.Destroy(ctx, httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/logout", nil)))
}
