package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/levelup/internal/ctxutil"
)

func TestParseToken(t *testing.T) {
	secret := []byte("s3cret")

	valid, err := SignToken(secret, 42, time.Minute)
	require.NoError(t, err)

	id, err := ParseToken(secret, valid)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = ParseToken([]byte("other"), valid)
	assert.Error(t, err, "wrong secret")

	expired, err := SignToken(secret, 42, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(secret, expired)
	assert.Error(t, err, "expired")

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "42"}).SignedString(secret)
	require.NoError(t, err)
	_, err = ParseToken(secret, noExpiry)
	assert.Error(t, err, "missing exp")

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alex",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = ParseToken(secret, badSubject)
	assert.Error(t, err, "non-numeric subject")

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = ParseToken(secret, hs512)
	assert.Error(t, err, "unexpected algorithm")
}

func TestAuthenticate(t *testing.T) {
	secret := []byte("s3cret")
	var seen int64
	h := Authenticate(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ctxutil.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := SignToken(secret, 7, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"basic auth", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusNoContent},
		{"lowercase scheme", "bearer " + token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, int64(7), seen)
			} else {
				assert.Zero(t, seen)
				assert.Contains(t, rec.Body.String(), "error")
			}
		})
	}
}

func TestSignTokenSubject(t *testing.T) {
	token, err := SignToken([]byte("k"), 99, time.Minute)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(99), claims.Subject)
}
