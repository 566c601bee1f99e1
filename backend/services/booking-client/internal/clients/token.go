package clients

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is the caller's bearer token. Claims are read without verification: the booking
// server verifies, the client only needs the expiry and the user id.
type Token struct {
	raw       string
	expiresAt time.Time
	userID    string
}

// NewToken wraps raw. Tokens that are not JWTs are sent as-is and never expire locally.
func NewToken(raw string) *Token {
	raw = strings.TrimSpace(raw)
	t := &Token{raw: raw}
	if raw == "" {
		return t
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return t
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t.expiresAt = exp.Time
	}
	t.userID = extractUserID(claims)
	return t
}

// Empty reports whether no token was configured.
func (t *Token) Empty() bool {
	return t == nil || t.raw == ""
}

// Expired reports whether the token's exp claim lies before now.
func (t *Token) Expired(now time.Time) bool {
	if t == nil || t.expiresAt.IsZero() {
		return false
	}
	return !now.Before(t.expiresAt)
}

// UserID returns the user_id claim, falling back to sub. Empty when unknown.
func (t *Token) UserID() string {
	if t == nil {
		return ""
	}
	return t.userID
}

// AuthHeader is the Authorization header value.
func (t *Token) AuthHeader() string {
	return "Bearer " + t.raw
}

func extractUserID(claims jwt.MapClaims) string {
	switch v := claims["user_id"].(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case string:
		return v
	}
	if sub, err := claims.GetSubject(); err == nil {
		return sub
	}
	return ""
}
