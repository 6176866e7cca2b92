package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer("test-secret", 30*time.Minute, 168*time.Hour)
}

func TestIssueAndVerify(t *testing.T) {
	issuer := newTestIssuer()
	userID := uuid.New()

	pair, err := issuer.Issue(userID, RoleStudent)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if pair.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want bearer", pair.TokenType)
	}

	claims, err := issuer.Verify(pair.AccessToken, TokenTypeAccess)
	if err != nil {
		t.Fatalf("Verify access: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("Subject = %q, want %q", claims.Subject, userID)
	}
	if claims.Role != RoleStudent {
		t.Errorf("Role = %q, want STUDENT", claims.Role)
	}
	if claims.ID == "" {
		t.Error("expected a jti on issued tokens")
	}

	refreshClaims, err := issuer.Verify(pair.RefreshToken, TokenTypeRefresh)
	if err != nil {
		t.Fatalf("Verify refresh: %v", err)
	}
	if refreshClaims.ID == claims.ID {
		t.Error("access and refresh tokens must carry distinct jtis")
	}
}

func TestVerifyRejectsWrongType(t *testing.T) {
	issuer := newTestIssuer()
	pair, err := issuer.Issue(uuid.New(), RoleStudent)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := issuer.Verify(pair.RefreshToken, TokenTypeAccess); err != ErrInvalidToken {
		t.Errorf("refresh token as access: err = %v, want ErrInvalidToken", err)
	}
	if _, err := issuer.Verify(pair.AccessToken, TokenTypeRefresh); err != ErrInvalidToken {
		t.Errorf("access token as refresh: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute, -time.Minute)
	pair, err := issuer.Issue(uuid.New(), RoleStudent)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(pair.AccessToken, TokenTypeAccess); err != ErrInvalidToken {
		t.Errorf("expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	pair, err := newTestIssuer().Issue(uuid.New(), RoleProvider)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	other := NewTokenIssuer("different-secret", 30*time.Minute, 168*time.Hour)
	if _, err := other.Verify(pair.AccessToken, TokenTypeAccess); err != ErrInvalidToken {
		t.Errorf("wrong secret: err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := newTestIssuer().Verify("not.a.token", TokenTypeAccess); err != ErrInvalidToken {
		t.Errorf("garbage token: err = %v, want ErrInvalidToken", err)
	}
}
