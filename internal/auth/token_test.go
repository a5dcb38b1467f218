package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour, "helpdesk")
	user := &domain.User{ID: "u1", Role: domain.RoleAgent}

	token, err := manager.Issue(user, time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != domain.RoleAgent {
		t.Errorf("claims = %+v", claims)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Minute, "helpdesk")
	user := &domain.User{ID: "u1", Role: domain.RoleUser}

	token, err := manager.Issue(user, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := manager.Verify(token); err == nil {
		t.Fatal("expired token verified")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour, "helpdesk")
	verifier := NewTokenManager("secret-b", time.Hour, "helpdesk")

	token, err := issuer.Issue(&domain.User{ID: "u1", Role: domain.RoleUser}, time.Now())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("token verified with wrong secret")
	}
}

func TestVerifyGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour, "helpdesk")
	if _, err := manager.Verify("not-a-token"); err == nil {
		t.Fatal("garbage verified")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
}
