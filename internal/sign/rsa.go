package sign

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrKeyLoad 私钥/公钥无法解析
	ErrKeyLoad = errors.New("sign: key load failed")
	// ErrSign 签名运算失败
	ErrSign = errors.New("sign: sign operation failed")
)

// RSASigner RSA-SHA256签名器。密钥在构造时解析一次,之后只读。
type RSASigner struct {
	priv *rsa.PrivateKey
	pub  *rsa.PublicKey
}

// NewRSASigner 从PEM构造。pubPEM可为空,此时用私钥推导公钥做验签
// (上游PHP侧就是拿私钥调openssl_verify的)。
func NewRSASigner(privPEM, pubPEM []byte) (*RSASigner, error) {
	priv, err := parsePrivateKey(privPEM)
	if err != nil {
		return nil, err
	}
	s := &RSASigner{priv: priv, pub: &priv.PublicKey}
	if len(pubPEM) > 0 {
		pub, err := parsePublicKey(pubPEM)
		if err != nil {
			return nil, err
		}
		s.pub = pub
	}
	return s, nil
}

// LoadRSASigner 从文件路径加载密钥,pubPath可为空
func LoadRSASigner(privPath, pubPath string) (*RSASigner, error) {
	privPEM, err := os.ReadFile(privPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrKeyLoad, privPath, err)
	}
	var pubPEM []byte
	if pubPath != "" {
		pubPEM, err = os.ReadFile(pubPath)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrKeyLoad, pubPath, err)
		}
	}
	return NewRSASigner(privPEM, pubPEM)
}

// Sign 规则A签名串 -> SHA256摘要 -> RSA私钥签名 -> base64。
// 失败必须返回错误,绝不能吞掉错误返回空签名。
func (s *RSASigner) Sign(params map[string]interface{}) (string, error) {
	data := BuildQueryString(params)
	digest := sha256.Sum256([]byte(data))
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.priv, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSign, err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify 验证带sign字段的参数集。缺sign、base64非法、验签不过都只返回false,
// 验签失败是正常分支而不是异常。
func (s *RSASigner) Verify(params map[string]interface{}) bool {
	raw, ok := params["sign"]
	if !ok {
		return false
	}
	sigStr, ok := raw.(string)
	if !ok || sigStr == "" {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(sigStr)
	if err != nil {
		return false
	}
	data := BuildQueryString(params) // sign键在构串时剔除
	digest := sha256.Sum256([]byte(data))
	return rsa.VerifyPKCS1v15(s.pub, crypto.SHA256, digest[:], sig) == nil
}

func parsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrKeyLoad)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrKeyLoad)
	}
	return rsaKey, nil
}

func parsePublicKey(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrKeyLoad)
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyLoad, err)
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrKeyLoad)
	}
	return rsaKey, nil
}
