package dto

import (
	"testing"
)

func TestJSONMapMergeKeyAccumulates(t *testing.T) {
	m := JSONMap{"request": map[string]interface{}{"a": 1}}

	m2 := m.MergeKey("notify_payload", map[string]interface{}{"state": "2"})
	m3 := m2.MergeKey("query_response", map[string]interface{}{"state": "3"})

	// 两次合并后历史全部保留
	for _, k := range []string{"request", "notify_payload", "query_response"} {
		if _, ok := m3[k]; !ok {
			t.Errorf("missing key %s after merges", k)
		}
	}
	// 原map不被改动
	if _, ok := m["notify_payload"]; ok {
		t.Error("MergeKey mutated the original map")
	}
}

func TestJSONMapScanValue(t *testing.T) {
	m := JSONMap{"k": "v"}
	val, err := m.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out JSONMap
	if err := out.Scan(val); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if out["k"] != "v" {
		t.Errorf("round trip lost data: %+v", out)
	}
}

func TestJSONMapScanNil(t *testing.T) {
	var out JSONMap
	if err := out.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if out != nil {
		t.Errorf("Scan(nil) = %+v, want nil", out)
	}
}
