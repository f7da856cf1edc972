package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GatewayClaims are the claims the rental API puts in its admin tokens
type GatewayClaims struct {
	UserID string `json:"id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser()

// Inspect decodes the token claims without verifying the signature.
// The signing key belongs to the rental API; the admin backend only needs
// the claims to avoid sending tokens that are known to be expired.
func Inspect(tokenString string) (*GatewayClaims, error) {
	claims := &GatewayClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Expired reports whether the token carries an exp claim before now+leeway.
// Opaque or undecodable tokens are never reported as expired; the rental API
// remains the authority and answers 401 for them.
func Expired(tokenString string, now time.Time, leeway time.Duration) bool {
	claims, err := Inspect(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now.Add(leeway))
}

// ExpiresAt returns the expiry of the token, if it has one
func ExpiresAt(tokenString string) (time.Time, bool) {
	claims, err := Inspect(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
