package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the interesting parts of a JWT session token. They are read
// without verifying the signature; only the backend can do that.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	Role      string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	All       map[string]any
}

// ParseClaims decodes token as an unverified JWT. Opaque tokens fail.
func ParseClaims(token string) (*Claims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, fmt.Errorf("opaque token (cannot introspect locally)")
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser(jwt.WithJSONNumber()).ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("decode jwt: %w", err)
	}
	c := &Claims{All: map[string]any(mc)}
	c.Subject = subject(mc["sub"])
	c.Email, _ = mc["email"].(string)
	c.Name, _ = mc["name"].(string)
	c.Role, _ = mc["role"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		c.ExpiresAt = &t
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		c.IssuedAt = &t
	}
	return c, nil
}

// subject accepts the numeric user ids some backends put in "sub".
func subject(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	}
	return fmt.Sprint(v)
}

func expiryOf(token string) *time.Time {
	c, err := ParseClaims(token)
	if err != nil {
		return nil
	}
	return c.ExpiresAt
}
