package crypto

import "testing"

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64 hex chars for 32 bytes, got %d", len(token))
	}

	other, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == other {
		t.Error("expected distinct tokens")
	}
}

func TestHashToken(t *testing.T) {
	hash := HashToken("raw-token")

	if hash == "raw-token" {
		t.Error("hash must differ from the input")
	}
	if len(hash) != 64 {
		t.Errorf("expected sha-256 hex digest, got %d chars", len(hash))
	}
	if HashToken("raw-token") != hash {
		t.Error("hash must be deterministic")
	}
	if HashToken("raw-token2") == hash {
		t.Error("different inputs must not collide")
	}
}
