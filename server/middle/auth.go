// Package middle provides HTTP middleware for the subscription server,
// namely bearer-token authentication of publishers, mirroring the
// teacher's own request-scoped AuthHandler approach but targeting
// dao.Publisher instead of dao.User.
package middle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dekarrin/boolpred/server/dao"
)

const jwtIssuer = "boolpred"

// ctxKey is an unexported type for context keys defined in this package,
// so they can't collide with keys from other packages.
type ctxKey int

const (
	keyLoggedIn ctxKey = iota
	keyPublisher
)

// LoggedIn reports whether the request that produced ctx carried a
// validated publisher bearer token.
func LoggedIn(ctx context.Context) bool {
	v, _ := ctx.Value(keyLoggedIn).(bool)
	return v
}

// Publisher returns the publisher a request's bearer token was validated
// against, if any.
func Publisher(ctx context.Context) (dao.Publisher, bool) {
	pub, ok := ctx.Value(keyPublisher).(dao.Publisher)
	return pub, ok
}

// AuthHandler extracts a bearer token from an incoming request, validates
// it against a publisher looked up via db, and stores the result in the
// request context before handing off to next. If required is set and
// the token is absent or invalid, an HTTP 401 is written and next is
// never called.
type AuthHandler struct {
	db            dao.PublisherRepository
	secret        []byte
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

// RequireAuth builds an AuthHandler that rejects requests lacking a
// valid bearer token.
func RequireAuth(db dao.PublisherRepository, secret []byte, unauthDelay time.Duration, next http.Handler) *AuthHandler {
	return &AuthHandler{db: db, secret: secret, unauthedDelay: unauthDelay, required: true, next: next}
}

// OptionalAuth builds an AuthHandler that attaches publisher identity to
// the request context when a valid token is present, but passes the
// request through regardless.
func OptionalAuth(db dao.PublisherRepository, secret []byte, unauthDelay time.Duration, next http.Handler) *AuthHandler {
	return &AuthHandler{db: db, secret: secret, unauthedDelay: unauthDelay, required: false, next: next}
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool
	var pub dao.Publisher

	tok, err := bearerToken(req)
	if err != nil {
		if ah.required {
			writeUnauthorized(w, req, err.Error(), ah.unauthedDelay)
			return
		}
	} else {
		lookup, vErr := validateAndLookupPublisher(req.Context(), tok, ah.secret, ah.db)
		if vErr != nil {
			if ah.required {
				writeUnauthorized(w, req, vErr.Error(), ah.unauthedDelay)
				return
			}
		} else {
			pub = lookup
			loggedIn = true
		}
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, keyLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, keyPublisher, pub)
	ah.next.ServeHTTP(w, req.WithContext(ctx))
}

func bearerToken(req *http.Request) (string, error) {
	header := strings.TrimSpace(req.Header.Get("Authorization"))
	if header == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}
	if strings.ToLower(strings.TrimSpace(parts[0])) != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return strings.TrimSpace(parts[1]), nil
}

func validateAndLookupPublisher(ctx context.Context, tok string, secret []byte, db dao.PublisherRepository) (dao.Publisher, error) {
	var pub dao.Publisher

	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}

		id, err := uuid.Parse(subj)
		if err != nil {
			return nil, fmt.Errorf("cannot parse subject UUID: %w", err)
		}

		pub, err = db.GetByID(ctx, id)
		if err != nil {
			if err == dao.ErrNotFound {
				return nil, fmt.Errorf("subject does not exist")
			}
			return nil, fmt.Errorf("subject could not be validated")
		}

		return signingKey(secret, pub), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(jwtIssuer), jwt.WithLeeway(time.Minute))

	if err != nil {
		return dao.Publisher{}, err
	}
	return pub, nil
}

// GenerateToken issues a bearer token asserting pub's identity, signed
// with a key derived from secret and pub's current API key hash.
//
// Rotating a publisher's API key changes this signing key, which is the
// only revocation mechanism this domain needs: there is no session or
// logout concept for publishers the way there is for the teacher's
// interactive users.
func GenerateToken(secret []byte, pub dao.Publisher, validFor time.Duration) (string, error) {
	claims := &jwt.MapClaims{
		"iss": jwtIssuer,
		"exp": time.Now().Add(validFor).Unix(),
		"sub": pub.ID.String(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(signingKey(secret, pub))
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

func signingKey(secret []byte, pub dao.Publisher) []byte {
	key := make([]byte, 0, len(secret)+len(pub.APIKeyHash))
	key = append(key, secret...)
	key = append(key, []byte(pub.APIKeyHash)...)
	return key
}

func writeUnauthorized(w http.ResponseWriter, req *http.Request, internalMsg string, delay time.Duration) {
	log.Printf("AUTH  %s %s %s: HTTP-401 %s", req.RemoteAddr, req.Method, req.URL.Path, internalMsg)
	time.Sleep(delay)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="boolpred server", charset="utf-8"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":  "You are not authorized to do that",
		"status": http.StatusUnauthorized,
	})
}
