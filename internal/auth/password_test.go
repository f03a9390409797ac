package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashVerifyRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal plaintext")
	}
	if !hasher.Verify("hunter22", hash) {
		t.Fatal("expected verify to succeed for matching password")
	}
	if hasher.Verify("hunter23", hash) {
		t.Fatal("expected verify to fail for wrong password")
	}
}

func TestPasswordHashIsSalted(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := hasher.Hash("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct hashes for repeated input")
	}
	if !hasher.Verify("hunter22", first) || !hasher.Verify("hunter22", second) {
		t.Fatal("both hashes must verify")
	}
}

func TestPasswordVerifyMalformedHash(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	if hasher.Verify("hunter22", "not-a-bcrypt-hash") {
		t.Fatal("expected verify to fail for malformed hash")
	}
	if hasher.Verify("hunter22", "") {
		t.Fatal("expected verify to fail for empty hash")
	}
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	hasher := NewPasswordHasher(1000)
	if hasher.cost != bcrypt.DefaultCost {
		t.Fatalf("expected out-of-range cost to fall back to default, got %d", hasher.cost)
	}
}
