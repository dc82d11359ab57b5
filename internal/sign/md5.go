package sign

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// MD5Signer flashpay双重MD5签名器: md5(md5(签名串+openid+token)),
// 第二轮是对第一轮的小写hex串再做MD5,上游两轮都校验,不能省成单次哈希。
type MD5Signer struct {
	OpenID string
	Token  string
}

// Sign 规则B签名串+密钥后缀 -> 双重MD5 -> 小写hex
func (s MD5Signer) Sign(params map[string]interface{}) string {
	data := BuildFlattenString(params) + s.OpenID + s.Token
	first := md5Hex(data)
	return md5Hex(first)
}

// Verify 校验sign字段,大小写不敏感。上游回调目前不带签名,
// 回调路径不调用;保留与RSA签名器对等的验签能力,带签回传启用时直接接上。
func (s MD5Signer) Verify(params map[string]interface{}) bool {
	raw, ok := params["sign"]
	if !ok {
		return false
	}
	received, ok := raw.(string)
	if !ok || received == "" {
		return false
	}
	return strings.EqualFold(received, s.Sign(params))
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
