package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "correct-horse-battery" {
		t.Fatal("password stored in plaintext")
	}

	if err := VerifyPassword(hash, "correct-horse-battery"); err != nil {
		t.Errorf("VerifyPassword rejected the correct password: %v", err)
	}

	if err := VerifyPassword(hash, "wrong-password"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("VerifyPassword error = %v, want ErrPasswordMismatch", err)
	}
}

func TestValidatePasswordPolicy(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"minimum length accepted", strings.Repeat("a", MinPasswordLength), false},
		{"too short rejected", strings.Repeat("a", MinPasswordLength-1), true},
		{"maximum length accepted", strings.Repeat("a", MaxPasswordLength), false},
		{"over bcrypt input limit rejected", strings.Repeat("a", MaxPasswordLength+1), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidatePassword(%d chars) error = %v, wantErr %v", len(tc.password), err, tc.wantErr)
			}
		})
	}
}

func TestHashPasswordEnforcesPolicy(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Error("HashPassword accepted a password below the minimum length")
	}
}
