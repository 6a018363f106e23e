package main

import (
	"testing"
	"time"

	"osoulapi/models"

	"github.com/golang-jwt/jwt/v5"
)

func testServer() *Server {
	return &Server{cfg: Config{
		JWTSecret: []byte("test-secret"),
		TokenTTL:  24 * time.Hour,
	}}
}

func TestSignTokenRoundTrip(t *testing.T) {
	s := testServer()
	user := models.User{ID: 42, Email: "admin@osoul.com", Role: models.RoleAdmin}

	signed, err := s.signToken(user)
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}

	token, err := jwt.Parse(signed, func(tk *jwt.Token) (interface{}, error) {
		return s.cfg.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse signed token: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["email"] != "admin@osoul.com" {
		t.Errorf("email claim=%v", claims["email"])
	}
	if claims["role"] != models.RoleAdmin {
		t.Errorf("role claim=%v want %q", claims["role"], models.RoleAdmin)
	}
	if uint(claims["id"].(float64)) != user.ID {
		t.Errorf("id claim=%v want %d", claims["id"], user.ID)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		t.Fatalf("exp claim: %v", err)
	}
	if until := time.Until(exp.Time); until < 23*time.Hour || until > 25*time.Hour {
		t.Errorf("token expiry %v away, want about 24h", until)
	}
}

func TestSignTokenRejectedWithWrongSecret(t *testing.T) {
	s := testServer()
	signed, err := s.signToken(models.User{ID: 1, Email: "viewer@osoul.com", Role: models.RoleViewer})
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}
	_, err = jwt.Parse(signed, func(tk *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	if err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{"admin", "manager", "collector", "viewer"} {
		if !models.ValidRole(r) {
			t.Errorf("ValidRole(%q)=false", r)
		}
	}
	for _, r := range []string{"", "root", "Admin"} {
		if models.ValidRole(r) {
			t.Errorf("ValidRole(%q)=true", r)
		}
	}
}

func TestCaseNumberFormat(t *testing.T) {
	cases := map[uint]string{
		1:      "CASE00001",
		123:    "CASE00123",
		99999:  "CASE99999",
		123456: "CASE123456",
	}
	for id, want := range cases {
		if got := caseNumber(id); got != want {
			t.Errorf("caseNumber(%d)=%q want %q", id, got, want)
		}
	}
}
