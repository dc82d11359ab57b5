package sign

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"
)

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestMD5SignDoubleHash(t *testing.T) {
	s := MD5Signer{OpenID: "openid123", Token: "token456"}
	params := map[string]interface{}{
		"merchantId": "M1",
		"amount":     "100.00",
		"notifyUrl":  "https://x.example/cb",
	}
	canonical := BuildFlattenString(params) + s.OpenID + s.Token
	want := md5hex(md5hex(canonical))
	got := s.Sign(params)
	if got != want {
		t.Errorf("Sign = %s, want double hash %s", got, want)
	}
	// 单次MD5必须不等,上游两轮都校验
	if got == md5hex(canonical) {
		t.Error("Sign equals single-round hash")
	}
	if got != strings.ToLower(got) {
		t.Error("Sign is not lowercase hex")
	}
}

func TestMD5SignEmptyParams(t *testing.T) {
	s := MD5Signer{OpenID: "o", Token: "t"}
	want := md5hex(md5hex("ot"))
	if got := s.Sign(map[string]interface{}{}); got != want {
		t.Errorf("Sign(empty) = %s, want %s", got, want)
	}
}

func TestMD5VerifyCaseInsensitive(t *testing.T) {
	s := MD5Signer{OpenID: "o", Token: "t"}
	params := map[string]interface{}{"amount": "5"}
	sig := s.Sign(params)

	params["sign"] = strings.ToUpper(sig)
	if !s.Verify(params) {
		t.Error("Verify = false for uppercase signature")
	}
	params["sign"] = "0000"
	if s.Verify(params) {
		t.Error("Verify = true for wrong signature")
	}
	delete(params, "sign")
	if s.Verify(params) {
		t.Error("Verify = true with missing sign")
	}
}
