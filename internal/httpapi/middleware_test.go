package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketon/ticketon/internal/domain/user"
	"github.com/ticketon/ticketon/internal/token"
)

var mwKeys = token.Keys{
	Access:  []byte("access-secret-at-least-32-bytes-long!"),
	Refresh: []byte("refresh-secret-at-least-32-bytes-ok!!"),
}

func principalProbe(t *testing.T) (http.Handler, *Principal, *bool) {
	t.Helper()
	var got Principal
	var present bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, present = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return BearerAuth(token.NewCodec(nil), mwKeys)(h), &got, &present
}

func bearerFor(t *testing.T, login string, role user.Role, at time.Time) string {
	t.Helper()
	gen := token.NewGenerator(token.NewCodec(nil), mwKeys, "ticketon").
		WithNow(func() time.Time { return at })
	issued, err := gen.AccessToken(&user.User{ID: 1, Login: login, Role: role})
	require.NoError(t, err)
	return "Bearer " + issued.Token
}

func TestBearerAuthValidToken(t *testing.T) {
	h, got, present := principalProbe(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/tickets/purchased", nil)
	req.Header.Set("Authorization", bearerFor(t, "alice", user.RoleBuyer, time.Now().UTC()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, *present)
	assert.Equal(t, "alice", got.Login)
	assert.Equal(t, user.RoleBuyer, got.Role)
}

func TestBearerAuthAnonymousPassThrough(t *testing.T) {
	cases := map[string]string{
		"missing header":  "",
		"no bearer":       "Basic abc",
		"garbage token":   "Bearer not.a.jwt",
		"truncated token": "Bearer eyJhbGciOiJIUzI1NiJ9",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			h, _, present := principalProbe(t)

			req := httptest.NewRequest(http.MethodGet, "/v1/tickets", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code, "request flows through anonymously")
			assert.False(t, *present)
		})
	}
}

func TestBearerAuthExpiredToken(t *testing.T) {
	h, _, present := principalProbe(t)

	stale := time.Now().UTC().Add(-2 * time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/v1/tickets", nil)
	req.Header.Set("Authorization", bearerFor(t, "alice", user.RoleBuyer, stale))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, *present)
}
