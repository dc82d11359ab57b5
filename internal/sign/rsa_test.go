package sign

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
)

func newTestSigner(t *testing.T) *RSASigner {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	s, err := NewRSASigner(privPEM, nil)
	if err != nil {
		t.Fatalf("NewRSASigner: %v", err)
	}
	return s
}

func TestRSASignVerifyRoundTrip(t *testing.T) {
	s := newTestSigner(t)
	params := map[string]interface{}{
		"mchNo":      "M100",
		"appId":      "A200",
		"mchOrderNo": "MO-1",
		"amount":     1000,
		"currency":   "USD",
		"channelExtra": map[string]interface{}{
			"bank": "ICBC",
		},
	}
	sig, err := s.Sign(params)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sig == "" {
		t.Fatal("Sign returned empty signature without error")
	}

	params["sign"] = sig
	if !s.Verify(params) {
		t.Error("Verify = false for freshly signed params")
	}
}

func TestRSAVerifyTampered(t *testing.T) {
	s := newTestSigner(t)
	params := map[string]interface{}{"mchOrderNo": "MO-1", "amount": 1000}
	sig, err := s.Sign(params)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	params["sign"] = sig
	params["amount"] = 2000
	if s.Verify(params) {
		t.Error("Verify = true for tampered params")
	}
}

func TestRSAVerifyMissingOrBadSign(t *testing.T) {
	s := newTestSigner(t)
	if s.Verify(map[string]interface{}{"a": "1"}) {
		t.Error("Verify = true with missing sign")
	}
	if s.Verify(map[string]interface{}{"a": "1", "sign": ""}) {
		t.Error("Verify = true with empty sign")
	}
	if s.Verify(map[string]interface{}{"a": "1", "sign": "%%%not-base64%%%"}) {
		t.Error("Verify = true with invalid base64 sign")
	}
}

func TestRSASignEmptyParams(t *testing.T) {
	s := newTestSigner(t)
	sig, err := s.Sign(map[string]interface{}{})
	if err != nil {
		t.Fatalf("Sign(empty): %v", err)
	}
	if sig == "" {
		t.Error("Sign(empty) returned empty signature")
	}
}

func TestNewRSASignerBadKey(t *testing.T) {
	if _, err := NewRSASigner([]byte("not a pem"), nil); !errors.Is(err, ErrKeyLoad) {
		t.Errorf("NewRSASigner(bad pem) err = %v, want ErrKeyLoad", err)
	}
}
