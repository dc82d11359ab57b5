package sign

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// BuildQueryString RSA签名串(规则A): 去掉sign, 嵌套结构转紧凑JSON,
// 按ASCII排序后拼接 k=v&k=v。等价于PHP的 urldecode(http_build_query($params)),
// 即值里不做任何转义,nil值直接跳过,bool转成1/0。
func BuildQueryString(params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString("&")
		}
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(Stringify(params[k]))
	}
	return sb.String()
}

// BuildFlattenString MD5签名串(规则B): 去掉sign, 逐层按键排序递归展开,
// 嵌套结构展开时只保留子键名、不带父键前缀(上游校验就是这么算的, 不要"修正"),
// 值两端去空白, 用&拼接。密钥后缀由调用方追加。
func BuildFlattenString(params map[string]interface{}) string {
	cp := make(map[string]interface{}, len(params))
	for k, v := range params {
		if k == "sign" {
			continue
		}
		cp[k] = v
	}
	return strings.Join(flatten(cp), "&")
}

func flatten(params map[string]interface{}) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(params))
	for _, k := range keys {
		switch v := params[k].(type) {
		case map[string]interface{}:
			out = append(out, flatten(v)...)
		case []interface{}:
			for i, item := range v {
				if m, ok := item.(map[string]interface{}); ok {
					out = append(out, flatten(m)...)
				} else {
					out = append(out, strconv.Itoa(i)+"="+strings.TrimSpace(Stringify(item)))
				}
			}
		default:
			out = append(out, k+"="+strings.TrimSpace(Stringify(v)))
		}
	}
	return out
}

// Stringify 参数值转签名用字符串。嵌套结构输出紧凑JSON(不转义unicode与斜杠),
// 与上游约定的序列化形式一致。
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return compactJSON(val)
	}
}

// compactJSON 紧凑JSON,关闭HTML转义(Go本身不转义斜杠和unicode)
func compactJSON(v interface{}) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
