package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"pay-gateway-api/internal/config"
	"pay-gateway-api/internal/dao"
	"pay-gateway-api/internal/dto"
	"pay-gateway-api/internal/idgen"
	"pay-gateway-api/internal/model"
	"pay-gateway-api/internal/mq"
	"pay-gateway-api/internal/notify"
	"pay-gateway-api/internal/sign"
	"pay-gateway-api/internal/utils"
)

// ErrMissingReference 回调缺 merchantorderid
var ErrMissingReference = errors.New("flashpay: missing merchantorderid")

// FlashpayService flashpay(双重MD5签名族)充值,表单提交到固定地址
type FlashpayService struct {
	cfg       config.FlashpayCfg
	signer    sign.MD5Signer
	orderDao  *dao.PayOrderDao
	reconcile *ReconcileService
}

func NewFlashpayService() *FlashpayService {
	cfg := config.C.Flashpay
	return &FlashpayService{
		cfg:       cfg,
		signer:    sign.MD5Signer{OpenID: cfg.OpenID, Token: cfg.Token},
		orderDao:  dao.NewPayOrderDao(),
		reconcile: NewReconcileService(),
	}
}

// BuildDepositParams 按 country 组装上游参数,缺省值与上游联调结果保持一致
func BuildDepositParams(cfg config.FlashpayCfg, req dto.FlashDepositReq, reference string) map[string]interface{} {
	wayCode := req.WayCode
	if wayCode == "" {
		wayCode = "GA_CARD"
	}
	callbackUrl := req.CallbackUrl
	if callbackUrl == "" {
		callbackUrl = cfg.NotifyURL
	}

	param := map[string]interface{}{
		"merchantId":      req.MerchantId,
		"merchantOrderId": reference,
		"amount":          decimal.NewFromFloat(req.Amount).Round(2).String(),
		"notifyUrl":       req.NotifyUrl,
		"callbackUrl":     callbackUrl,
		"wayCode":         wayCode,
	}

	switch req.Country {
	case "india":
		param["name"] = defaultStr(req.Name, "Test")
		param["email"] = defaultStr(req.Email, "test@gmail.com")
		param["mobile"] = defaultStr(req.Mobile, "1234567890")
	case "australia":
		payTypeId := req.PayTypeId
		if payTypeId == 0 {
			payTypeId = 68
		}
		param["paytypeid"] = payTypeId
		setIfPresent(param, "mobile", req.Mobile)
		setIfPresent(param, "firstName", req.FirstName)
		setIfPresent(param, "lastName", req.LastName)
		setIfPresent(param, "type", req.Type)
		setIfPresent(param, "taxId", req.TaxId)
	case "credit_card":
		param["currency"] = defaultStr(req.Currency, "USD")
		payType := req.PayType
		if payType == 0 {
			payType = 1 // card
		}
		param["payType"] = payType
		setIfPresent(param, "ip", req.Ip)
		setIfPresent(param, "email", req.Email)
		setIfPresent(param, "mobile", req.Mobile)
		setIfPresent(param, "firstName", req.FirstName)
		setIfPresent(param, "lastName", req.LastName)
		setIfPresent(param, "numberId", req.NumberId)
		setIfPresent(param, "kycToken", req.KycToken)
		param["country"] = defaultStr(req.CountryCode, "DE")
	}
	return param
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func setIfPresent(m map[string]interface{}, k, v string) {
	if v != "" {
		m[k] = v
	}
}

// Deposit 充值下单。商户订单号由本侧生成(雪花ID),签名后整个结构
// 套在表单字段 param[...] 里提交。
func (s *FlashpayService) Deposit(ctx context.Context, req dto.FlashDepositReq) (string, map[string]interface{}, error) {
	reference := strconv.FormatUint(idgen.New(), 10)
	param := BuildDepositParams(s.cfg, req, reference)
	param["sign"] = s.signer.Sign(param)

	now := time.Now()
	order := &model.PayOrder{
		MchOrderNo: reference,
		MchNo:      req.MerchantId,
		WayCode:    sign.Stringify(param["wayCode"]),
		Amount:     decimal.NewFromFloat(req.Amount).Round(2).Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:   req.Currency,
		Status:     model.StatusCreated,
		Meta:       dto.JSONMap{"request": param},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.orderDao.Insert(order); err != nil {
		return "", nil, fmt.Errorf("persist order failed: %w", err)
	}
	_ = mq.PublishOrderCreated(mq.OrderCreatedEvent{
		MchOrderNo: order.MchOrderNo,
		MchNo:      order.MchNo,
		WayCode:    order.WayCode,
		Amount:     order.Amount,
		Currency:   order.Currency,
		CreatedAt:  now.Unix(),
	})

	values := url.Values{}
	for k, v := range param {
		values.Set("param["+k+"]", sign.Stringify(v))
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, config.C.Upstream.Timeout)
	defer cancel()

	var raw string
	err := utils.DoWithRetry(ctxTimeout, config.C.Upstream.Retry.Times, config.C.Upstream.Retry.Interval, func() error {
		r, e := utils.HttpPostFormWithContext(ctxTimeout, s.cfg.SubmitURL, values)
		if e != nil {
			return e
		}
		raw = r
		return nil
	})
	if err != nil {
		notify.NotifyGatewayAlert("error", "flashpay充值请求失败", fmt.Sprintf("reference=%s err=%v", reference, err))
		return reference, nil, fmt.Errorf("gateway request failed: %w", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		notify.NotifyGatewayAlert("error", "flashpay响应解析失败", fmt.Sprintf("reference=%s body=%s", reference, raw))
		return reference, nil, fmt.Errorf("gateway response parse failed: %w", err)
	}

	// 应答回填。回调可能已抢先更新订单,版本冲突时重读再并,应答不允许丢
	for attempt := 1; attempt <= reconcileMaxRetry; attempt++ {
		order.Meta = order.Meta.MergeKey("response", parsed)
		ok, updErr := s.orderDao.UpdateWithVersion(order)
		if updErr != nil {
			log.Printf("[FLASHPAY] 应答回填失败, reference=%s err=%v", reference, updErr)
			break
		}
		if ok {
			break
		}
		log.Printf("[FLASHPAY] 应答回填版本冲突,重试 %d/%d, reference=%s", attempt, reconcileMaxRetry, reference)
		if attempt == reconcileMaxRetry {
			log.Printf("[FLASHPAY] 应答回填放弃,重试耗尽, reference=%s", reference)
			break
		}
		fresh, readErr := s.orderDao.GetByMchOrderNo(reference)
		if readErr != nil || fresh == nil {
			log.Printf("[FLASHPAY] 冲突后重读订单失败, reference=%s err=%v", reference, readErr)
			break
		}
		order = fresh
	}
	return reference, parsed, nil
}

// MapFlashStatus flashpay 回调状态表: 1=成功,其余一律视为进行中
func MapFlashStatus(status interface{}) string {
	if n, ok := stateToInt(status); ok && n == 1 {
		return model.StatusSuccess
	}
	return model.StatusPaying
}

// HandleCallback flashpay 回调对账,本地无单时按载荷补建
func (s *FlashpayService) HandleCallback(ctx context.Context, payload map[string]interface{}) (*model.PayOrder, error) {
	reference := sign.Stringify(payload["merchantorderid"])
	if reference == "" {
		return nil, ErrMissingReference
	}
	status := MapFlashStatus(payload["status"])
	return s.reconcile.ReconcileStatus(ctx, reference, "", status, payload, MetaNotifyPayload, true)
}
