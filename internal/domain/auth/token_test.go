package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueValidate(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, exp, err := iss.Issue(42, true)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry %v is in the past", exp)
	}

	claims, err := iss.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != 42 || !claims.Staff || claims.Id == "" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestValidate_Rejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	other := NewIssuer("other", time.Hour)
	foreign, _, _ := other.Issue(1, false)

	expired := NewIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.Issue(1, false)

	for name, tok := range map[string]string{"garbage": "abc.def.ghi", "wrong key": foreign, "expired": old} {
		if _, err := iss.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(h, "s3cret"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := ComparePassword(h, "nope"); err == nil {
		t.Fatal("wrong password accepted")
	}
}
