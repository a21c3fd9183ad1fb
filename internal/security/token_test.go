package security

import (
	"testing"
	"time"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	token, errSign := SignAdminToken("secret", 42, "root", time.Hour)
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}
	claims, errParse := ParseAdminToken("secret", token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if claims.AdminID != 42 || claims.Username != "root" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := ParseAdminToken("wrong", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestActorTokenRoundTrip(t *testing.T) {
	token, errSign := SignActorToken("secret", "U1", "T1", "REPORTER", time.Hour)
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}
	claims, errParse := ParseActorToken("secret", token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if claims.UserID != "U1" || claims.TenantID != "T1" || claims.Role != "REPORTER" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestActorTokenExpiry(t *testing.T) {
	token, errSign := SignActorToken("secret", "U1", "T1", "REPORTER", -time.Minute)
	if errSign != nil {
		t.Fatalf("sign token: %v", errSign)
	}
	if _, err := ParseActorToken("secret", token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, errHash := HashPassword("s3cret")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatal("expected hash to match password")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected mismatch for wrong password")
	}
}
