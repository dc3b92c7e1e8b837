// AngelaMos | 2026
// handler_test.go

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoplagas/backend/internal/core"
	"github.com/ecoplagas/backend/internal/middleware"
	"github.com/ecoplagas/backend/internal/session"
)

type fakeUsers struct {
	byEmail   map[string]*UserInfo
	nextID    int64
	rehashed  map[int64]string
	lookupErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byEmail:  map[string]*UserInfo{},
		nextID:   1,
		rehashed: map[int64]string{},
	}
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*UserInfo, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(
	ctx context.Context,
	name, email, passwordHash string,
) (*UserInfo, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, core.ErrDuplicateKey
	}
	u := &UserInfo{
		ID:           f.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	f.nextID++
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	f.rehashed[userID] = hash
	return nil
}

type fakeSessions struct {
	started   []session.Identity
	destroyed int
}

func (f *fakeSessions) Start(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	identity session.Identity,
) (*session.Session, error) {
	f.started = append(f.started, identity)
	http.SetCookie(w, &http.Cookie{Name: "ecoplagas_session", Value: "token"})
	return &session.Session{ID: "sid", Identity: identity}, nil
}

func (f *fakeSessions) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	f.destroyed++
	return nil
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(users UserProvider, sessions SessionManager) http.Handler {
	r := chi.NewRouter()
	NewHandler(NewService(users), sessions).RegisterRoutes(r, passthrough)
	return r
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing fields",
			body:       `{"nombre":"Ana","correo":"","contrasena":""}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Todos los campos son obligatorios",
		},
		{
			name:       "blank name",
			body:       `{"nombre":"   ","correo":"ana@example.com","contrasena":"secreta"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Todos los campos son obligatorios",
		},
		{
			name:       "short password",
			body:       `{"nombre":"Ana","correo":"ana@example.com","contrasena":"12345"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "La contraseña debe tener al menos 6 caracteres",
		},
		{
			name:       "bad email",
			body:       `{"nombre":"Ana","correo":"ana@example","contrasena":"secreta"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Formato de correo electrónico inválido",
		},
		{
			name:       "malformed json",
			body:       `{"nombre":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Datos inválidos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessions{}
			h := newTestRouter(newFakeUsers(), sessions)

			rec := do(h, jsonRequest(http.MethodPost, "/api/registro", tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body core.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
			assert.Empty(t, sessions.started)
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	users := newFakeUsers()
	sessions := &fakeSessions{}
	h := newTestRouter(users, sessions)

	rec := do(h, jsonRequest(http.MethodPost, "/api/registro",
		`{"nombre":" Ana ","correo":" Ana@Example.com ","contrasena":"secreta"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var reg AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.True(t, reg.Success)
	assert.Equal(t, "Usuario registrado exitosamente", reg.Message)
	assert.Equal(t, "/usuario", reg.Redirect)
	assert.Equal(t, "Ana", reg.User.Name)
	assert.Equal(t, "ana@example.com", reg.User.Email)
	assert.NotEmpty(t, rec.Result().Cookies())
	require.Len(t, sessions.started, 1)

	rec = do(h, jsonRequest(http.MethodPost, "/api/registro",
		`{"nombre":"Otra","correo":"ana@example.com","contrasena":"secreta"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "El correo electrónico ya está registrado")

	rec = do(h, jsonRequest(http.MethodPost, "/api/login",
		`{"correo":"ana@example.com","contrasena":"secreta"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var login AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "Inicio de sesión exitoso", login.Message)
	assert.Equal(t, reg.User.ID, login.User.ID)

	rec = do(h, jsonRequest(http.MethodPost, "/api/login",
		`{"correo":"ana@example.com","contrasena_hash":"secreta"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, jsonRequest(http.MethodPost, "/api/login",
		`{"correo":"ana@example.com","contrasena":"incorrecta"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Credenciales incorrectas")

	rec = do(h, jsonRequest(http.MethodPost, "/api/login",
		`{"correo":"nadie@example.com","contrasena":"secreta"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, jsonRequest(http.MethodPost, "/api/login", `{"correo":"ana@example.com"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Correo y contraseña son obligatorios")

	assert.Len(t, sessions.started, 3)
}

func TestLogin_UpgradesWerkzeugHash(t *testing.T) {
	users := newFakeUsers()
	users.byEmail["old@example.com"] = &UserInfo{
		ID:    4,
		Name:  "Olga",
		Email: "old@example.com",
		PasswordHash: "pbkdf2:sha256:600000$Xk3vP9qLm2Rt8WzA$" +
			"09fcf66d283c9a612c7b9a3d553fe7cf2022b3d7f0392f7c3e67140a3ed22228",
	}
	users.byEmail["broken@example.com"] = &UserInfo{
		ID:           5,
		Email:        "broken@example.com",
		PasswordHash: "pbkdf2:sha256:260000$salt$abcdef",
	}
	sessions := &fakeSessions{}
	h := newTestRouter(users, sessions)

	rec := do(h, jsonRequest(http.MethodPost, "/api/login",
		`{"correo":"old@example.com","contrasena":"otra-clave"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, users.rehashed)

	rec = do(h, jsonRequest(http.MethodPost, "/api/login",
		`{"correo":"old@example.com","contrasena_hash":"riego-semanal-2024"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sessions.started, 1)
	assert.Equal(t, int64(4), sessions.started[0].UserID)

	upgraded, ok := users.rehashed[4]
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(upgraded, "$argon2id$"))

	valid, err := core.VerifyPassword("riego-semanal-2024", upgraded)
	require.NoError(t, err)
	assert.True(t, valid)

	rec = do(h, jsonRequest(http.MethodPost, "/api/login",
		`{"correo":"broken@example.com","contrasena":"secreta"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func withIdentity(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), "sid", session.Identity{
		UserID: 7,
		Name:   "Ana",
		Email:  "ana@example.com",
	}))
}

func TestIdentityEndpoints(t *testing.T) {
	h := newTestRouter(newFakeUsers(), &fakeSessions{})

	tests := []struct {
		name     string
		path     string
		authed   bool
		status   int
		wantJSON string
	}{
		{
			name:     "login status anonymous",
			path:     "/api/login",
			status:   http.StatusOK,
			wantJSON: `{"logged_in":false}`,
		},
		{
			name:     "login status authenticated",
			path:     "/api/login",
			authed:   true,
			status:   http.StatusOK,
			wantJSON: `{"logged_in":true,"usuario":{"id":7,"nombre":"Ana","correo":"ana@example.com"}}`,
		},
		{
			name:     "current user anonymous",
			path:     "/api/usuario_actual",
			status:   http.StatusUnauthorized,
			wantJSON: `{"error":"No autenticado","code":"UNAUTHORIZED"}`,
		},
		{
			name:     "current user authenticated",
			path:     "/api/usuario_actual",
			authed:   true,
			status:   http.StatusOK,
			wantJSON: `{"id":7,"nombre":"Ana","correo":"ana@example.com"}`,
		},
		{
			name:     "check auth anonymous",
			path:     "/api/check_auth",
			status:   http.StatusOK,
			wantJSON: `{"authenticated":false}`,
		},
		{
			name:     "check auth authenticated",
			path:     "/api/check_auth",
			authed:   true,
			status:   http.StatusOK,
			wantJSON: `{"authenticated":true,"usuario":{"id":7,"nombre":"Ana","correo":"ana@example.com"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authed {
				req = withIdentity(req)
			}

			rec := do(h, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.wantJSON, rec.Body.String())
		})
	}
}

func TestLogout(t *testing.T) {
	sessions := &fakeSessions{}
	h := newTestRouter(newFakeUsers(), sessions)

	rec := do(h, withIdentity(httptest.NewRequest(http.MethodGet, "/logout", nil)))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = do(h, withIdentity(httptest.NewRequest(http.MethodPost, "/api/logout", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Sesión cerrada correctamente"}`, rec.Body.String())

	assert.Equal(t, 2, sessions.destroyed)
}
