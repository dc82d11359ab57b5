package dto

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap 订单meta列,MySQL JSON字段 <-> map
// 累积网关交互历史: request / response / notify_payload / query_response
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("jsonmap: unsupported scan type")
	}
	if len(b) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(b, m)
}

// MergeKey 在副本上追加一个子键,不改原map,已有的其它子键全部保留
func (m JSONMap) MergeKey(key string, v interface{}) JSONMap {
	out := make(JSONMap, len(m)+1)
	for k, val := range m {
		out[k] = val
	}
	out[key] = v
	return out
}
