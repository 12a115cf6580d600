package middle

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/boolpred/server/dao"
	"github.com/dekarrin/boolpred/server/dao/inmem"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggedIn(r.Context()) {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusTeapot)
	})
}

func Test_RequireAuth_rejectsMissingToken(t *testing.T) {
	db := inmem.NewPublisherRepository()
	h := RequireAuth(db, []byte("secret"), 0, okHandler())

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_RequireAuth_acceptsValidToken(t *testing.T) {
	db := inmem.NewPublisherRepository()
	pub, err := db.Create(req(t).Context(), dao.Publisher{Name: "acme", APIKeyHash: "hash"})
	require.NoError(t, err)

	secret := []byte("secret")
	tok, err := GenerateToken(secret, pub, time.Hour)
	require.NoError(t, err)

	h := RequireAuth(db, secret, 0, okHandler())
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_RequireAuth_rejectsTokenForDeletedPublisher(t *testing.T) {
	db := inmem.NewPublisherRepository()
	pub, err := db.Create(req(t).Context(), dao.Publisher{Name: "acme", APIKeyHash: "hash"})
	require.NoError(t, err)

	secret := []byte("secret")
	tok, err := GenerateToken(secret, pub, time.Hour)
	require.NoError(t, err)

	_, err = db.Delete(req(t).Context(), pub.ID)
	require.NoError(t, err)

	h := RequireAuth(db, secret, 0, okHandler())
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_OptionalAuth_passesThroughWithoutToken(t *testing.T) {
	db := inmem.NewPublisherRepository()
	h := OptionalAuth(db, []byte("secret"), 0, okHandler())

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func Test_GenerateToken_rotatedAPIKeyChangesSigningKey(t *testing.T) {
	secret := []byte("secret")
	pub := dao.Publisher{APIKeyHash: "old-hash"}
	rotated := pub
	rotated.APIKeyHash = "new-hash"

	assert.NotEqual(t, signingKey(secret, pub), signingKey(secret, rotated),
		"rotating a publisher's API key must change the token signing key")
}

func req(t *testing.T) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodGet, "/", nil)
}
