package sign

import (
	"testing"
)

func TestBuildQueryStringSorted(t *testing.T) {
	params := map[string]interface{}{
		"mchNo":      "M100",
		"appId":      "A200",
		"amount":     1000,
		"mchOrderNo": "MO-1",
	}
	got := BuildQueryString(params)
	want := "amount=1000&appId=A200&mchNo=M100&mchOrderNo=MO-1"
	if got != want {
		t.Errorf("BuildQueryString = %q, want %q", got, want)
	}
}

func TestBuildQueryStringExcludesSignAndNil(t *testing.T) {
	params := map[string]interface{}{
		"a":    "1",
		"sign": "SHOULD_NOT_APPEAR",
		"b":    nil,
	}
	got := BuildQueryString(params)
	if got != "a=1" {
		t.Errorf("BuildQueryString = %q, want %q", got, "a=1")
	}
}

func TestBuildQueryStringNestedJSON(t *testing.T) {
	params := map[string]interface{}{
		"mchNo": "M100",
		"channelExtra": map[string]interface{}{
			"bank": "ICBC",
			"url":  "https://x.example/cb?a=1&b=2",
		},
	}
	got := BuildQueryString(params)
	// 嵌套结构签名覆盖的是紧凑JSON串,斜杠与&都不转义
	want := `channelExtra={"bank":"ICBC","url":"https://x.example/cb?a=1&b=2"}&mchNo=M100`
	if got != want {
		t.Errorf("BuildQueryString = %q, want %q", got, want)
	}
}

func TestBuildQueryStringEmpty(t *testing.T) {
	if got := BuildQueryString(map[string]interface{}{}); got != "" {
		t.Errorf("BuildQueryString(empty) = %q, want empty", got)
	}
}

func TestBuildFlattenStringChildKeysNotPrefixed(t *testing.T) {
	params := map[string]interface{}{
		"b": "2",
		"a": map[string]interface{}{
			"y": "9",
			"x": " 8 ",
		},
	}
	// 嵌套map展开时用的是子键名,不带父键前缀,值要trim
	got := BuildFlattenString(params)
	want := "x=8&y=9&b=2"
	if got != want {
		t.Errorf("BuildFlattenString = %q, want %q", got, want)
	}
}

func TestBuildFlattenStringExcludesSign(t *testing.T) {
	params := map[string]interface{}{
		"amount": "100",
		"sign":   "deadbeef",
	}
	if got := BuildFlattenString(params); got != "amount=100" {
		t.Errorf("BuildFlattenString = %q, want %q", got, "amount=100")
	}
}

func TestBuildFlattenStringEmpty(t *testing.T) {
	if got := BuildFlattenString(map[string]interface{}{}); got != "" {
		t.Errorf("BuildFlattenString(empty) = %q, want empty", got)
	}
}

func TestStringify(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{"s", "s"},
		{true, "1"},
		{false, "0"},
		{int64(12), "12"},
		{12.5, "12.5"},
		{nil, ""},
	}
	for _, c := range cases {
		if got := Stringify(c.in); got != c.want {
			t.Errorf("Stringify(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
