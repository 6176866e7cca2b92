package auth

import (
	"testing"
	"time"
)

func TestRevocationList(t *testing.T) {
	l := NewRevocationList()
	defer l.Close()

	if l.IsRevoked("jti-1") {
		t.Error("fresh list must not report revoked")
	}

	l.Revoke("jti-1", time.Now().Add(time.Hour))
	if !l.IsRevoked("jti-1") {
		t.Error("expected jti-1 to be revoked")
	}
	if l.IsRevoked("jti-2") {
		t.Error("jti-2 was never revoked")
	}
	if l.Count() != 1 {
		t.Errorf("Count = %d, want 1", l.Count())
	}
}

func TestRevocationListIgnoresEmptyJTI(t *testing.T) {
	l := NewRevocationList()
	defer l.Close()

	l.Revoke("", time.Now().Add(time.Hour))
	if l.Count() != 0 {
		t.Errorf("Count = %d, want 0", l.Count())
	}
}

func TestRevocationListCleanup(t *testing.T) {
	l := NewRevocationList()
	defer l.Close()

	l.Revoke("expired", time.Now().Add(-time.Minute))
	l.Revoke("live", time.Now().Add(time.Hour))

	l.removeExpired(time.Now())

	if l.IsRevoked("expired") {
		t.Error("expired entry should have been removed")
	}
	if !l.IsRevoked("live") {
		t.Error("live entry must survive cleanup")
	}
}
