package utils

import (
	"testing"

	"github.com/dgrijalva/jwt-go"
)

func TestJwtRoundTrip(t *testing.T) {
	signed, err := JwtGenerate(7, "biz-123", "owner", true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	token, err := JwtValidate(signed)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !token.Valid {
		t.Fatal("expected token to be valid")
	}

	claims, ok := token.Claims.(*JwtCustomClaim)
	if !ok {
		t.Fatalf("unexpected claims type %T", token.Claims)
	}
	if claims.UserId != 7 {
		t.Errorf("expected user id 7, got %d", claims.UserId)
	}
	if claims.BusinessId != "biz-123" {
		t.Errorf("expected business id biz-123, got %q", claims.BusinessId)
	}
	if claims.UserName != "owner" {
		t.Errorf("expected user name owner, got %q", claims.UserName)
	}
	if !claims.IsAdmin {
		t.Error("expected admin claim to survive the round trip")
	}
}

func TestJwtValidateRejectsGarbage(t *testing.T) {
	if _, err := JwtValidate("not-a-token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}

func TestJwtValidateRejectsWrongSignature(t *testing.T) {
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		UserId:     1,
		BusinessId: "biz-123",
	})
	signed, err := other.SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := JwtValidate(signed); err == nil {
		t.Fatal("expected an error for a token signed with a different secret")
	}
}
