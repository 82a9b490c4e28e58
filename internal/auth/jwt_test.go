package auth

import "testing"

func TestIssueAndValidateListenerToken(t *testing.T) {
	signer := NewSigner("unit-test-secret")

	token, err := signer.IssueListenerToken("den-pi", "den")
	if err != nil {
		t.Fatalf("IssueListenerToken failed: %v", err)
	}

	claims, err := signer.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Host != "den-pi" {
		t.Errorf("claims host = %q, want den-pi", claims.Host)
	}
	if claims.Room != "den" {
		t.Errorf("claims room = %q, want den", claims.Room)
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	token, err := NewSigner("key-one").IssueListenerToken("den-pi", "")
	if err != nil {
		t.Fatalf("IssueListenerToken failed: %v", err)
	}

	if _, err := NewSigner("key-two").ValidateToken(token); err == nil {
		t.Error("token signed with another key should not validate")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := NewSigner("key").ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token should not validate")
	}
}
