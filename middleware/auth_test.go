package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/models"
)

const testSecret = "test-secret"

func signed(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": 42,
		"role":    "organizer",
		"email":   "org@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func TestParseToken(t *testing.T) {
	auth := NewAuthenticator(testSecret, nil)

	actor, err := auth.ParseToken(signed(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()))
	require.NoError(t, err)
	assert.Equal(t, models.Actor{UserID: 42, Email: "org@example.com", Role: models.RoleOrganizer}, actor)

	stringID := validClaims()
	stringID["user_id"] = "7"
	actor, err = auth.ParseToken(signed(t, jwt.SigningMethodHS256, []byte(testSecret), stringID))
	require.NoError(t, err)
	assert.Equal(t, 7, actor.UserID)
}

func TestParseToken_Rejects(t *testing.T) {
	auth := NewAuthenticator(testSecret, nil)

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	badRole := validClaims()
	badRole["role"] = "referee"
	noUser := validClaims()
	delete(noUser, "user_id")
	fraction := validClaims()
	fraction["user_id"] = 1.5

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signed(t, jwt.SigningMethodHS256, []byte("other"), validClaims())},
		{"expired", signed(t, jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"unknown role", signed(t, jwt.SigningMethodHS256, []byte(testSecret), badRole)},
		{"missing user", signed(t, jwt.SigningMethodHS256, []byte(testSecret), noUser)},
		{"fractional user id", signed(t, jwt.SigningMethodHS256, []byte(testSecret), fraction)},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ParseToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthenticator(testSecret, nil)
	var seen models.Actor
	h := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 42, seen.UserID)
}

func TestOptional(t *testing.T) {
	auth := NewAuthenticator(testSecret, nil)
	var authenticated bool
	h := auth.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, authenticated = ActorFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, authenticated)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer broken")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorize(t *testing.T) {
	h := Authorize(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithActor(req.Context(), models.Actor{UserID: 1, Role: models.RolePlayer})))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithActor(req.Context(), models.Actor{UserID: 1, Role: models.RoleAdmin})))
	assert.Equal(t, http.StatusOK, rec.Code)
}
