package execution

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// Signer handles broker REST API authentication.
// It stores keys as []byte to allow memory wiping.
type Signer struct {
	accessKey []byte
	secretKey []byte
}

// NewSigner creates a new signer.
func NewSigner(accessKey, secretKey string) *Signer {
	return &Signer{
		accessKey: []byte(accessKey),
		secretKey: []byte(secretKey),
	}
}

// Wipe clears the keys from memory.
func (s *Signer) Wipe() {
	if s == nil {
		return
	}
	wipeSlice(s.accessKey)
	wipeSlice(s.secretKey)
}

func wipeSlice(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateHeaders creates the signed headers for one request.
// Signature payload: timestamp + method + path + body.
func (s *Signer) GenerateHeaders(method, path, body string) map[string]string {
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())

	payload := timestamp + method + path + body
	signature := s.computeHmacSha256(payload)

	return map[string]string{
		"X-API-KEY":       string(s.accessKey),
		"X-API-SIGN":      signature,
		"X-API-TIMESTAMP": timestamp,
		"Content-Type":    "application/json",
	}
}

func (s *Signer) computeHmacSha256(payload string) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
