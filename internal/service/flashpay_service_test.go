package service

import (
	"testing"

	"pay-gateway-api/internal/config"
	"pay-gateway-api/internal/dto"
	"pay-gateway-api/internal/model"
)

func TestBuildDepositParamsIndia(t *testing.T) {
	cfg := config.FlashpayCfg{NotifyURL: "https://self.example/api/v1/flashpay/callback"}
	req := dto.FlashDepositReq{
		Country:    "india",
		MerchantId: "M1",
		Amount:     100.5,
		NotifyUrl:  "https://mch.example/notify",
	}
	param := BuildDepositParams(cfg, req, "REF1")

	if param["merchantOrderId"] != "REF1" {
		t.Errorf("merchantOrderId = %v", param["merchantOrderId"])
	}
	if param["amount"] != "100.5" {
		t.Errorf("amount = %v", param["amount"])
	}
	if param["wayCode"] != "GA_CARD" {
		t.Errorf("wayCode default = %v", param["wayCode"])
	}
	if param["callbackUrl"] != cfg.NotifyURL {
		t.Errorf("callbackUrl default = %v", param["callbackUrl"])
	}
	// india 缺省联系人信息
	if param["name"] != "Test" || param["email"] != "test@gmail.com" || param["mobile"] != "1234567890" {
		t.Errorf("india defaults wrong: %+v", param)
	}
}

func TestBuildDepositParamsAustralia(t *testing.T) {
	req := dto.FlashDepositReq{
		Country:    "australia",
		MerchantId: "M1",
		Amount:     10,
		NotifyUrl:  "https://mch.example/notify",
		FirstName:  "Jo",
	}
	param := BuildDepositParams(config.FlashpayCfg{}, req, "REF2")
	if param["paytypeid"] != 68 {
		t.Errorf("paytypeid default = %v", param["paytypeid"])
	}
	if param["firstName"] != "Jo" {
		t.Errorf("firstName = %v", param["firstName"])
	}
	if _, exists := param["taxId"]; exists {
		t.Error("empty taxId should be omitted")
	}
}

func TestBuildDepositParamsCreditCard(t *testing.T) {
	req := dto.FlashDepositReq{
		Country:    "credit_card",
		MerchantId: "M1",
		Amount:     25,
		NotifyUrl:  "https://mch.example/notify",
	}
	param := BuildDepositParams(config.FlashpayCfg{}, req, "REF3")
	if param["currency"] != "USD" {
		t.Errorf("currency default = %v", param["currency"])
	}
	if param["payType"] != 1 {
		t.Errorf("payType default = %v", param["payType"])
	}
	if param["country"] != "DE" {
		t.Errorf("country default = %v", param["country"])
	}
	for _, k := range []string{"email", "mobile"} {
		if _, exists := param[k]; exists {
			t.Errorf("empty %s should be omitted", k)
		}
	}
}

func TestBuildDepositParamsCreditCardContact(t *testing.T) {
	req := dto.FlashDepositReq{
		Country:    "credit_card",
		MerchantId: "M1",
		Amount:     25,
		NotifyUrl:  "https://mch.example/notify",
		Email:      "payer@example.com",
		Mobile:     "5551234",
	}
	param := BuildDepositParams(config.FlashpayCfg{}, req, "REF4")
	if param["email"] != "payer@example.com" {
		t.Errorf("email = %v", param["email"])
	}
	if param["mobile"] != "5551234" {
		t.Errorf("mobile = %v", param["mobile"])
	}
}

func TestMapFlashStatus(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{"1", model.StatusSuccess},
		{float64(1), model.StatusSuccess},
		{1, model.StatusSuccess},
		{"4", model.StatusPaying},
		{nil, model.StatusPaying},
		{"weird", model.StatusPaying},
	}
	for _, c := range cases {
		if got := MapFlashStatus(c.in); got != c.want {
			t.Errorf("MapFlashStatus(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}
