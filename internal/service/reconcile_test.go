package service

import (
	"testing"

	"pay-gateway-api/internal/model"
	"pay-gateway-api/internal/utils"
)

func TestMapStateTable(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{0, model.StatusCreated},
		{1, model.StatusPaying},
		{2, model.StatusSuccess},
		{3, model.StatusFailed},
		{4, model.StatusCancelled},
		{5, model.StatusRefunded},
		{6, model.StatusClosed},
		{7, model.StatusUnknown},
		{-1, model.StatusUnknown},
		{"3", model.StatusFailed},
		{" 2 ", model.StatusSuccess},
		{"abc", model.StatusUnknown},
		{nil, model.StatusUnknown},
		{float64(2), model.StatusSuccess},
		{2.5, model.StatusUnknown},
		{utils.StringOrNumber("5"), model.StatusRefunded},
	}
	for _, c := range cases {
		if got := MapState(c.in); got != c.want {
			t.Errorf("MapState(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestNextStatusLiteral(t *testing.T) {
	// 保护关闭: 字面语义,无条件覆盖
	if got := NextStatus(model.StatusSuccess, model.StatusPaying, false); got != model.StatusPaying {
		t.Errorf("NextStatus unprotected = %s, want paying", got)
	}
}

func TestNextStatusProtected(t *testing.T) {
	cases := []struct {
		current, incoming, want string
	}{
		{model.StatusSuccess, model.StatusPaying, model.StatusSuccess},
		{model.StatusSuccess, model.StatusCreated, model.StatusSuccess},
		{model.StatusSuccess, model.StatusUnknown, model.StatusSuccess},
		{model.StatusSuccess, model.StatusRefunded, model.StatusRefunded}, // 终态之间允许流转
		{model.StatusPaying, model.StatusSuccess, model.StatusSuccess},
		{model.StatusCreated, model.StatusPaying, model.StatusPaying},
	}
	for _, c := range cases {
		if got := NextStatus(c.current, c.incoming, true); got != c.want {
			t.Errorf("NextStatus(%s, %s, protect) = %s, want %s", c.current, c.incoming, got, c.want)
		}
	}
}

func TestBuildFallbackOrder(t *testing.T) {
	payload := map[string]interface{}{
		"payOrderId": "PO-9",
		"mchNo":      "M100",
		"appId":      "A200",
		"amount":     "1500",
		"currency":   "USD",
		"state":      "3",
	}
	order := BuildFallbackOrder("", "PO-9", model.StatusFailed, payload)

	if order.MchOrderNo != "unknown-PO-9" {
		t.Errorf("MchOrderNo = %s, want unknown-PO-9", order.MchOrderNo)
	}
	if order.PayOrderId != "PO-9" {
		t.Errorf("PayOrderId = %s", order.PayOrderId)
	}
	if order.Amount != 1500 {
		t.Errorf("Amount = %d, want 1500", order.Amount)
	}
	if order.Status != model.StatusFailed {
		t.Errorf("Status = %s, want failed", order.Status)
	}
	if order.MchNo != "M100" || order.AppId != "A200" || order.Currency != "USD" {
		t.Errorf("identity fields not extracted: %+v", order)
	}
	if _, ok := order.Meta[MetaNotifyPayload]; !ok {
		t.Error("meta missing notify_payload")
	}
}

func TestBuildFallbackOrderDefaults(t *testing.T) {
	order := BuildFallbackOrder("MO-1", "", model.StatusUnknown, map[string]interface{}{})
	if order.MchOrderNo != "MO-1" {
		t.Errorf("MchOrderNo = %s, want MO-1", order.MchOrderNo)
	}
	if order.Amount != 0 {
		t.Errorf("Amount = %d, want 0", order.Amount)
	}
}

func TestPayloadAmount(t *testing.T) {
	cases := []struct {
		in   map[string]interface{}
		want int64
	}{
		{map[string]interface{}{"amount": float64(1000)}, 1000},
		{map[string]interface{}{"amount": "250"}, 250},
		{map[string]interface{}{"amount": "not-a-number"}, 0},
		{map[string]interface{}{}, 0},
	}
	for _, c := range cases {
		if got := payloadAmount(c.in); got != c.want {
			t.Errorf("payloadAmount(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
