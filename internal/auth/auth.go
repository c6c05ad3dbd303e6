// Package auth issues the placeholder tokens handed out by the mock login and
// checks the shape of Authorization headers. Tokens are not signed and are
// never verified: any "Bearer <something>" header passes.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const TokenType = "bearer"

const bearerPrefix = "Bearer "

type Claims struct {
	Subject   string `json:"sub"`
	ExpiresAt int64  `json:"exp"`
}

type Issuer struct {
	TTL time.Duration
	Now func() time.Time
}

func NewIssuer(ttl time.Duration) *Issuer {
	return &Issuer{TTL: ttl, Now: time.Now}
}

// Issue returns base64(JSON claims) for username.
func (i *Issuer) Issue(username string) (string, error) {
	b, err := json.Marshal(Claims{
		Subject:   username,
		ExpiresAt: i.Now().Add(i.TTL).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("encode claims: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode reads the claims back out of a token. It does not check expiry.
func Decode(token string) (Claims, error) {
	var c Claims
	b, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return c, fmt.Errorf("decode token: %w", err)
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("decode claims: %w", err)
	}
	if c.Subject == "" {
		return c, errors.New("token has no subject")
	}
	return c, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(bearerPrefix):])
	if tok == "" {
		return "", false
	}
	return tok, true
}
