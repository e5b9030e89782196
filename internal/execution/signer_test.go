package execution

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestSigner_GenerateHeaders(t *testing.T) {
	s := NewSigner("test-access-key", "test-secret-key")

	headers := s.GenerateHeaders("POST", "/api/v1/orders", `{"order_id":"x"}`)

	for _, key := range []string{"X-API-KEY", "X-API-SIGN", "X-API-TIMESTAMP", "Content-Type"} {
		if headers[key] == "" {
			t.Errorf("missing header %s", key)
		}
	}
	if headers["X-API-KEY"] != "test-access-key" {
		t.Errorf("X-API-KEY = %s", headers["X-API-KEY"])
	}

	// The signature must verify against the timestamp the signer picked
	payload := headers["X-API-TIMESTAMP"] + "POST" + "/api/v1/orders" + `{"order_id":"x"}`
	mac := hmac.New(sha256.New, []byte("test-secret-key"))
	mac.Write([]byte(payload))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if headers["X-API-SIGN"] != expected {
		t.Errorf("signature mismatch: got %s, want %s", headers["X-API-SIGN"], expected)
	}
}

func TestSigner_DifferentBodiesDifferentSignatures(t *testing.T) {
	s := NewSigner("k", "secret")

	a := s.computeHmacSha256("payload-a")
	b := s.computeHmacSha256("payload-b")
	if a == b {
		t.Error("distinct payloads must not collide")
	}
	if a != s.computeHmacSha256("payload-a") {
		t.Error("signing must be deterministic for a fixed payload")
	}
}

func TestSigner_Wipe(t *testing.T) {
	s := NewSigner("access", "secret")
	s.Wipe()

	for _, b := range s.accessKey {
		if b != 0 {
			t.Fatal("access key not wiped")
		}
	}
	for _, b := range s.secretKey {
		if b != 0 {
			t.Fatal("secret key not wiped")
		}
	}

	// Nil receiver is tolerated
	var nilSigner *Signer
	nilSigner.Wipe()
}
