// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName carries the session token.
const CookieName = "auth_token"

var ErrNoToken = errors.New("no auth token")

// Sessions issues and verifies EdDSA-signed tokens whose subject is a user id.
type Sessions struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
	expiry  time.Duration
}

// NewSessions generates a fresh key pair. Tokens from a previous process will not verify.
// An expiry of zero issues tokens without an exp claim.
func NewSessions(expiry time.Duration) (*Sessions, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key pair: %w", err)
	}
	return &Sessions{private: priv, public: pub, expiry: expiry}, nil
}

// NewSessionsFromPath loads a raw ed25519 key pair from disk.
func NewSessionsFromPath(privatePath, publicPath string, expiry time.Duration) (*Sessions, error) {
	priv, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	pub, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(priv) != ed25519.PrivateKeySize || len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("unexpected ed25519 key sizes %d/%d", len(priv), len(pub))
	}
	return &Sessions{private: priv, public: pub, expiry: expiry}, nil
}

// Issue signs a token for userID.
func (s *Sessions) Issue(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
	}
	if s.expiry > 0 {
		claims["exp"] = time.Now().Add(s.expiry).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.private)
}

// Verify checks the signature and expiry of token and returns its subject.
func (s *Sessions) Verify(token string) (string, error) {
	t, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return s.public, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}

	sub, err := t.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("missing sub in jwt")
	}
	return sub, nil
}

// SetCookie attaches token to the response as an HttpOnly cookie.
func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   int(s.expiry.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest returns the verified user id carried by r's auth cookie.
func (s *Sessions) FromRequest(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", ErrNoToken
	}
	return s.Verify(c.Value)
}
