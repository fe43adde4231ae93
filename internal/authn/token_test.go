package authn

import (
	"testing"
	"time"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	t.Setenv(secretEnvVariable, secret)
	ResetSecretCache()
	t.Cleanup(ResetSecretCache)
}

func TestTokenRoundTrip(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := GenerateToken("ext-alice", "alice", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "ext-alice" {
		t.Fatalf("Subject = %s", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Fatalf("Username = %s", claims.Username)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	withSecret(t, "test-secret")
	if _, err := VerifyToken("not.a.token"); err == nil {
		t.Fatalf("garbage token accepted")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	withSecret(t, "test-secret")
	token, err := GenerateToken("ext-alice", "alice", time.Millisecond)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := VerifyToken(token); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestGenerateTokenValidation(t *testing.T) {
	withSecret(t, "test-secret")
	if _, err := GenerateToken("", "alice", time.Hour); err == nil {
		t.Fatalf("empty principal accepted")
	}
	if _, err := GenerateToken("ext-alice", "alice", 0); err == nil {
		t.Fatalf("zero ttl accepted")
	}
}

func TestEnabledWithoutSecret(t *testing.T) {
	withSecret(t, "")
	if Enabled() {
		t.Fatalf("auth reported enabled without a secret")
	}
}
