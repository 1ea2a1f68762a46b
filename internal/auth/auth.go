// Package auth resolves the session credential used to authenticate
// the realtime connection. The chat client reads the token but never
// manages it: issuing and refreshing belong to the web front-end and
// the backend.
package auth

import (
	"os"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Source resolves an access token from, in order: an inline configured
// token (env override included), a configured token file, the profile's
// default token file, and finally the profile's cookie file. An empty
// result is not an error — the connection manager connects
// unauthenticated and lets the server decide.
type Source struct {
	inline     string
	tokenFile  string
	cookieFile string
}

// NewSource builds a resolver over the given locations. Any of them may
// be empty.
func NewSource(inline, tokenFile, cookieFile string) *Source {
	return &Source{inline: inline, tokenFile: tokenFile, cookieFile: cookieFile}
}

// Token returns the access token, or "" when no credential is present.
func (s *Source) Token() string {
	if s == nil {
		return ""
	}
	if s.inline != "" {
		return s.inline
	}
	for _, path := range []string{s.tokenFile} {
		if path == "" {
			continue
		}
		if data, err := os.ReadFile(path); err == nil {
			if tok := strings.TrimSpace(string(data)); tok != "" {
				return tok
			}
		}
	}
	if s.cookieFile != "" {
		if data, err := os.ReadFile(s.cookieFile); err == nil {
			if tok := TokenFromCookies(string(data)); tok != "" {
				return tok
			}
		}
	}
	return ""
}

// TokenFromCookies extracts the access_token value from ";"-separated
// cookie pairs, the same format the web client stores.
func TokenFromCookies(cookies string) string {
	for _, part := range strings.Split(cookies, ";") {
		part = strings.TrimSpace(part)
		if after, ok := strings.CutPrefix(part, "access_token="); ok {
			return after
		}
	}
	return ""
}

// UserIDFromToken extracts the numeric user id from a JWT access token
// without verifying the signature. Verification is the server's job;
// the id is only used to tell own messages from the peer's in views.
// Returns 0 when the token is absent or carries no usable claim.
func UserIDFromToken(token string) int64 {
	if token == "" {
		return 0
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return 0
	}
	if v, ok := claims["user_id"]; ok {
		if id := claimToInt64(v); id > 0 {
			return id
		}
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		if id, err := strconv.ParseInt(sub, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 0
}

func claimToInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case string:
		id, _ := strconv.ParseInt(n, 10, 64)
		return id
	default:
		return 0
	}
}
