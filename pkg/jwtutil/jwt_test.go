package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, GatewayClaims{
		UserID: "u1",
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := token.SignedString([]byte("gateway-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	if Expired(signed(t, now.Add(time.Hour)), now, time.Minute) {
		t.Error("token valid for an hour reported expired")
	}
	if !Expired(signed(t, now.Add(-time.Minute)), now, 0) {
		t.Error("past token not reported expired")
	}
	if !Expired(signed(t, now.Add(30*time.Second)), now, time.Minute) {
		t.Error("token inside leeway not reported expired")
	}
	if Expired("opaque-token", now, 0) {
		t.Error("opaque token must not be reported expired")
	}
}

func TestInspect(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	claims, err := Inspect(signed(t, exp))
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
	got, ok := ExpiresAt(signed(t, exp))
	if !ok || !got.Equal(exp) {
		t.Errorf("ExpiresAt = %v %v", got, ok)
	}
}
