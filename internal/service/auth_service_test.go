package service

import (
	"errors"
	"testing"
	"time"

	"github.com/sritlabs/sat-backend/internal/config"
)

func TestValidatePasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"ok", "Password1", false},
		{"ok with symbols", "S3cure#pass", false},
		{"too short", "Abc1", true},
		{"exactly seven", "Abcdef1", true},
		{"no uppercase", "password1", true},
		{"no lowercase", "PASSWORD1", true},
		{"no digit", "Passwords", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordPolicy(tt.password)
			if tt.wantErr && !errors.Is(err, ErrWeakPassword) {
				t.Errorf("ValidatePasswordPolicy(%q) = %v, want ErrWeakPassword", tt.password, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidatePasswordPolicy(%q) = %v, want nil", tt.password, err)
			}
		})
	}
}

func testAuthService() *AuthService {
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	return NewAuthService(cfg, nil)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := testAuthService()

	hash, err := svc.HashPassword("Password1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := svc.CheckPassword(hash, "Password1"); err != nil {
		t.Errorf("CheckPassword with correct password: %v", err)
	}
	if err := svc.CheckPassword(hash, "Password2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword with wrong password = %v, want ErrInvalidCredentials", err)
	}
}

func TestStudentTokenRoundTrip(t *testing.T) {
	svc := testAuthService()

	token, err := svc.GenerateStudentToken(42, "CSE")
	if err != nil {
		t.Fatalf("GenerateStudentToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != TokenTypeStudent {
		t.Errorf("token type = %s, want student", claims.TokenType)
	}
	if claims.UserID != 42 || claims.Branch != "CSE" {
		t.Errorf("claims = %+v, want user 42 branch CSE", claims)
	}
	if claims.SuperAdmin {
		t.Error("student claims must not carry super admin")
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	svc := testAuthService()

	token, err := svc.GenerateAdminToken(7, "ECE", true)
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != TokenTypeAdmin {
		t.Errorf("token type = %s, want admin", claims.TokenType)
	}
	if claims.UserID != 7 || claims.Branch != "ECE" || !claims.SuperAdmin {
		t.Errorf("claims = %+v, want super admin 7 of ECE", claims)
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := testAuthService()

	token, err := svc.GenerateStudentToken(42, "CSE")
	if err != nil {
		t.Fatalf("GenerateStudentToken: %v", err)
	}

	other := NewAuthService(&config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour}, nil)
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with a different secret was accepted")
	}

	if _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Error("corrupted token was accepted")
	}
}
