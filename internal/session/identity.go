package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the operator profile carried in the token's claims. It is read
// without verifying the signature and is only fit for display.
type Identity struct {
	Subject   string     `json:"subject,omitempty"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ParseIdentity decodes the claims of a JWT bearer token. Opaque tokens
// report false.
func ParseIdentity(token string) (Identity, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, false
	}

	var identity Identity
	identity.Subject, _ = claims.GetSubject()
	identity.Name = stringClaim(claims, "name")
	identity.Email = stringClaim(claims, "email")
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		at := exp.Time.UTC()
		identity.ExpiresAt = &at
	}
	return identity, true
}

func stringClaim(claims jwt.MapClaims, name string) string {
	value, _ := claims[name].(string)
	return value
}
