// AngelaMos | 2026
// manager.go

package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ecoplagas/backend/internal/config"
	"github.com/ecoplagas/backend/internal/core"
)

// Manager ties the Redis store to the browser cookie.
type Manager struct {
	store      *Store
	signer     *TokenSigner
	cookieName string
	secure     bool
}

func NewManager(
	store *Store,
	signer *TokenSigner,
	cfg config.SessionConfig,
	secure bool,
) *Manager {
	return &Manager{
		store:      store,
		signer:     signer,
		cookieName: cfg.CookieName,
		secure:     secure,
	}
}

func (m *Manager) Store() *Store {
	return m.store
}

// Start creates a session for identity and writes its cookie. Any session
// the request already carried is destroyed first.
func (m *Manager) Start(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	identity Identity,
) (*Session, error) {
	if id, err := m.sessionID(r); err == nil {
		if delErr := m.store.Delete(ctx, id); delErr != nil {
			return nil, fmt.Errorf("rotate session: %w", delErr)
		}
	}

	sess, err := m.store.Create(ctx, identity)
	if err != nil {
		return nil, err
	}

	token, err := m.signer.Sign(sess.ID, sess.ExpiresAt)
	if err != nil {
		//nolint:errcheck // best-effort cleanup of an unusable session
		_ = m.store.Delete(ctx, sess.ID)
		return nil, err
	}

	http.SetCookie(w, m.cookie(token, sess.ExpiresAt))

	return sess, nil
}

// Load resolves the request's cookie to a live session. Missing, tampered or
// expired cookies yield core.ErrNotFound.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	id, err := m.sessionID(r)
	if err != nil {
		return nil, err
	}

	return m.store.Get(ctx, id)
}

// Destroy removes the request's session, if any, and expires the cookie.
func (m *Manager) Destroy(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
) error {
	http.SetCookie(w, m.expiredCookie())

	id, err := m.sessionID(r)
	if err != nil {
		return nil
	}

	return m.store.Delete(ctx, id)
}

// DestroyAllForUser removes every session of a user except keep and, when
// keep is empty, expires the caller's cookie.
func (m *Manager) DestroyAllForUser(
	ctx context.Context,
	w http.ResponseWriter,
	userID int64,
	keep string,
) error {
	if keep == "" {
		http.SetCookie(w, m.expiredCookie())
	}
	return m.store.DeleteAllForUser(ctx, userID, keep)
}

func (m *Manager) Refresh(ctx context.Context, identity Identity) error {
	return m.store.UpdateForUser(ctx, identity)
}

func (m *Manager) sessionID(r *http.Request) (string, error) {
	c, err := r.Cookie(m.cookieName)
	if errors.Is(err, http.ErrNoCookie) || (err == nil && c.Value == "") {
		return "", fmt.Errorf("session cookie: %w", core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("session cookie: %w", err)
	}

	id, err := m.signer.Verify(c.Value)
	if err != nil {
		return "", fmt.Errorf("session cookie: %w: %w", core.ErrNotFound, err)
	}

	return id, nil
}

func (m *Manager) cookie(value string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
