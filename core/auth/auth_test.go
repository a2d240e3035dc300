package auth

import (
	"testing"
	"time"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("qwerty123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "qwerty123" {
		t.Error("hash must not equal the plaintext password")
	}

	if !VerifyPassword("qwerty123", hash) {
		t.Error("correct password should verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", 30*time.Minute)

	token, err := m.GenerateToken(42, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "user@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestTokenRejection(t *testing.T) {
	m := NewTokenManager("test-secret", 30*time.Minute)

	t.Run("Garbage", func(t *testing.T) {
		if _, err := m.ParseToken("not.a.token"); err == nil {
			t.Error("expected error for garbage token")
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenManager("other-secret", 30*time.Minute)
		token, err := other.GenerateToken(1, "a@b.com")
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}
		if _, err := m.ParseToken(token); err == nil {
			t.Error("expected error for token signed with a different secret")
		}
	})

	t.Run("Expired", func(t *testing.T) {
		expired := NewTokenManager("test-secret", -time.Minute)
		token, err := expired.GenerateToken(1, "a@b.com")
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}
		if _, err := m.ParseToken(token); err == nil {
			t.Error("expected error for expired token")
		}
	})
}
