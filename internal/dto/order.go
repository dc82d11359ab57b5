package dto

// CreateOrderReq abpay统一下单请求
type CreateOrderReq struct {
	MchOrderNo   string                 `json:"mchOrderNo" binding:"required"`
	WayCode      string                 `json:"wayCode" binding:"required"`
	Amount       int64                  `json:"amount" binding:"required"`
	Currency     string                 `json:"currency" binding:"required"`
	Subject      string                 `json:"subject" binding:"required"`
	Body         string                 `json:"body" binding:"required"`
	ClientIp     string                 `json:"clientIp"`
	NotifyUrl    string                 `json:"notifyUrl"`
	ReturnUrl    string                 `json:"returnUrl"`
	ExpiredTime  int                    `json:"expiredTime"`
	DivisionMode int                    `json:"divisionMode"`
	ExtParam     string                 `json:"extParam"`
	ChannelExtra map[string]interface{} `json:"channelExtra"`
}

// QueryOrderReq 查单请求,两个单号至少传一个
type QueryOrderReq struct {
	MchOrderNo string `json:"mchOrderNo" form:"mchOrderNo"`
	PayOrderId string `json:"payOrderId" form:"payOrderId"`
}

// FlashDepositReq flashpay充值请求,按country决定附加参数
type FlashDepositReq struct {
	Country     string  `json:"country" binding:"required,oneof=india australia credit_card"`
	MerchantId  string  `json:"merchantId" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	NotifyUrl   string  `json:"notifyUrl" binding:"required,url"`
	CallbackUrl string  `json:"callbackUrl" binding:"omitempty,url"`
	WayCode     string  `json:"wayCode"`

	// india
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`

	// australia
	PayTypeId int    `json:"paytypeid"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Type      string `json:"type"`
	TaxId     string `json:"taxId"`

	// credit_card
	Currency    string `json:"currency"`
	PayType     int    `json:"payType"`
	Ip          string `json:"ip"`
	NumberId    string `json:"numberId"`
	KycToken    string `json:"kycToken"`
	CountryCode string `json:"country_code"`
}
