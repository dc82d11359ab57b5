package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"pay-gateway-api/internal/config"
	"pay-gateway-api/internal/dal"
	"pay-gateway-api/internal/dao"
	"pay-gateway-api/internal/dto"
	"pay-gateway-api/internal/model"
	"pay-gateway-api/internal/mq"
	"pay-gateway-api/internal/notify"
	"pay-gateway-api/internal/sign"
	"pay-gateway-api/internal/utils"
)

// ErrMissingOrderRef 查单时商户订单号与上游订单号都没传。
// 上游其实接受空查询,但那种请求语义不明,这里直接拦掉。
var ErrMissingOrderRef = errors.New("abpay: mchOrderNo or payOrderId required")

// AbpayService abpay(RSA-SHA256签名族)下单/查单/验签
type AbpayService struct {
	cfg       config.AbpayCfg
	signer    *sign.RSASigner
	orderDao  *dao.PayOrderDao
	reconcile *ReconcileService
}

func NewAbpayService() *AbpayService {
	cfg := config.C.Abpay
	signer, err := sign.LoadRSASigner(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	if err != nil {
		log.Fatalf("load abpay keys failed: %v", err)
	}
	return &AbpayService{
		cfg:       cfg,
		signer:    signer,
		orderDao:  dao.NewPayOrderDao(),
		reconcile: NewReconcileService(),
	}
}

// BuildUnifiedOrderParams 默认报文 + 商户参数。嵌套值(channelExtra)
// 在签名前就序列化成JSON串,签名覆盖的是序列化后的形式,出站报文也带这个串。
func BuildUnifiedOrderParams(cfg config.AbpayCfg, req dto.CreateOrderReq, reqTimeMs int64) map[string]interface{} {
	data := map[string]interface{}{
		"mchNo":      cfg.MerchantNo,
		"appId":      cfg.AppID,
		"version":    "1.0",
		"reqTime":    reqTimeMs,
		"signType":   "RSA",
		"mchOrderNo": req.MchOrderNo,
		"wayCode":    req.WayCode,
		"amount":     req.Amount,
		"currency":   req.Currency,
		"subject":    req.Subject,
		"body":       req.Body,
	}
	if req.ClientIp != "" {
		data["clientIp"] = req.ClientIp
	}
	if req.NotifyUrl != "" {
		data["notifyUrl"] = req.NotifyUrl
	}
	if req.ReturnUrl != "" {
		data["returnUrl"] = req.ReturnUrl
	}
	if req.ExpiredTime > 0 {
		data["expiredTime"] = req.ExpiredTime
	}
	if req.DivisionMode > 0 {
		data["divisionMode"] = req.DivisionMode
	}
	if req.ExtParam != "" {
		data["extParam"] = req.ExtParam
	}
	if len(req.ChannelExtra) > 0 {
		data["channelExtra"] = sign.Stringify(req.ChannelExtra)
	}
	return data
}

// UnifiedOrder 统一下单。本地订单在发起网络请求之前就落库(created),
// 中途崩溃也能留下可稽核的记录,之后靠查单对账补状态。
func (s *AbpayService) UnifiedOrder(ctx context.Context, req dto.CreateOrderReq) (map[string]interface{}, error) {
	data := BuildUnifiedOrderParams(s.cfg, req, utils.GetTimestampMs())

	sig, err := s.signer.Sign(data)
	if err != nil {
		return nil, err
	}
	data["sign"] = sig

	now := time.Now()
	order := &model.PayOrder{
		MchOrderNo: req.MchOrderNo,
		MchNo:      s.cfg.MerchantNo,
		AppId:      s.cfg.AppID,
		WayCode:    req.WayCode,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Status:     model.StatusCreated,
		Meta:       dto.JSONMap{"request": data},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.orderDao.Insert(order); err != nil {
		return nil, fmt.Errorf("persist order failed: %w", err)
	}
	s.cacheOrder(order)
	_ = mq.PublishOrderCreated(mq.OrderCreatedEvent{
		MchOrderNo: order.MchOrderNo,
		MchNo:      order.MchNo,
		WayCode:    order.WayCode,
		Amount:     order.Amount,
		Currency:   order.Currency,
		CreatedAt:  now.Unix(),
	})

	parsed, err := s.post(ctx, "/api/pay/unifiedOrder", data)
	if err != nil {
		notify.NotifyGatewayAlert("error", "abpay下单失败", fmt.Sprintf("mchOrderNo=%s err=%v", req.MchOrderNo, err))
		return nil, err
	}

	s.applySyncResponse(order, parsed)
	return parsed, nil
}

// ApplySyncData 同步应答作用到订单: 有data就取payOrderId与orderState,
// 没有data状态不动;原始应答无条件并进meta.response。纯内存操作,不落库。
func ApplySyncData(order *model.PayOrder, parsed map[string]interface{}, protectTerminal bool) {
	if respData, ok := parsed["data"].(map[string]interface{}); ok {
		if v, exists := respData["payOrderId"]; exists {
			order.PayOrderId = sign.Stringify(v)
		}
		order.Status = NextStatus(order.Status, MapState(respData["orderState"]), protectTerminal)
	}
	order.Meta = order.Meta.MergeKey("response", parsed)
}

// applySyncResponse 同步应答回填。下单与应答之间回调可能已抢先更新订单,
// 版本冲突时重读再套用,应答必须并进meta,不允许丢。
func (s *AbpayService) applySyncResponse(order *model.PayOrder, parsed map[string]interface{}) {
	for attempt := 1; attempt <= reconcileMaxRetry; attempt++ {
		oldStatus := order.Status
		ApplySyncData(order, parsed, config.C.Reconcile.ProtectTerminal)

		ok, err := s.orderDao.UpdateWithVersion(order)
		if err != nil {
			log.Printf("[ABPAY] 同步应答回填失败, mchOrderNo=%s err=%v", order.MchOrderNo, err)
			return
		}
		if !ok {
			log.Printf("[ABPAY] 同步应答版本冲突,重试 %d/%d, mchOrderNo=%s", attempt, reconcileMaxRetry, order.MchOrderNo)
			fresh, readErr := s.orderDao.GetByMchOrderNo(order.MchOrderNo)
			if readErr != nil || fresh == nil {
				log.Printf("[ABPAY] 冲突后重读订单失败, mchOrderNo=%s err=%v", order.MchOrderNo, readErr)
				return
			}
			*order = *fresh
			continue
		}
		order.Version++
		if order.Status != oldStatus {
			_ = mq.PublishOrderStateChanged(mq.OrderStateChangedEvent{
				MchOrderNo: order.MchOrderNo,
				PayOrderId: order.PayOrderId,
				OldStatus:  oldStatus,
				NewStatus:  order.Status,
				Source:     "response",
				ChangedAt:  time.Now().Unix(),
			})
		}
		return
	}
	log.Printf("[ABPAY] 同步应答回填放弃,重试耗尽, mchOrderNo=%s", order.MchOrderNo)
}

// QueryOrder 查单。两个单号至少一个;有data则按查单来源对账,
// 本地无此订单时静默返回上游应答,不补建记录。
func (s *AbpayService) QueryOrder(ctx context.Context, req dto.QueryOrderReq) (map[string]interface{}, error) {
	if req.MchOrderNo == "" && req.PayOrderId == "" {
		return nil, ErrMissingOrderRef
	}

	payload := map[string]interface{}{
		"mchNo":    s.cfg.MerchantNo,
		"appId":    s.cfg.AppID,
		"version":  "1.0",
		"reqTime":  utils.GetTimestampMs(),
		"signType": "RSA",
	}
	if req.PayOrderId != "" {
		payload["payOrderId"] = req.PayOrderId
	}
	if req.MchOrderNo != "" {
		payload["mchOrderNo"] = req.MchOrderNo
	}

	sig, err := s.signer.Sign(payload)
	if err != nil {
		return nil, err
	}
	payload["sign"] = sig

	parsed, err := s.post(ctx, "/api/pay/query", payload)
	if err != nil {
		notify.NotifyGatewayAlert("error", "abpay查单失败", fmt.Sprintf("mchOrderNo=%s payOrderId=%s err=%v", req.MchOrderNo, req.PayOrderId, err))
		return nil, err
	}

	if respData, ok := parsed["data"].(map[string]interface{}); ok {
		mchOrderNo := sign.Stringify(respData["mchOrderNo"])
		payOrderId := sign.Stringify(respData["payOrderId"])
		state, exists := respData["state"]
		if !exists {
			state = respData["orderState"]
		}
		if _, err := s.reconcile.Reconcile(ctx, mchOrderNo, payOrderId, state, parsed, MetaQueryResponse, false); err != nil {
			log.Printf("[ABPAY] 查单对账失败, mchOrderNo=%s payOrderId=%s err=%v", mchOrderNo, payOrderId, err)
		}
	}
	return parsed, nil
}

// VerifyNotification 异步通知验签,纯校验,无网络与存储副作用
func (s *AbpayService) VerifyNotification(payload map[string]interface{}) bool {
	return s.signer.Verify(payload)
}

// HandleNotification 验签通过后的回调对账,本地无单时补建
func (s *AbpayService) HandleNotification(ctx context.Context, payload map[string]interface{}) (*model.PayOrder, error) {
	mchOrderNo := sign.Stringify(payload["mchOrderNo"])
	payOrderId := sign.Stringify(payload["payOrderId"])
	return s.reconcile.Reconcile(ctx, mchOrderNo, payOrderId, payload["state"], payload, MetaNotifyPayload, true)
}

func (s *AbpayService) post(ctx context.Context, path string, data map[string]interface{}) (map[string]interface{}, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, config.C.Upstream.Timeout)
	defer cancel()

	var raw string
	err := utils.DoWithRetry(ctxTimeout, config.C.Upstream.Retry.Times, config.C.Upstream.Retry.Interval, func() error {
		r, e := utils.HttpPostJsonWithContext(ctxTimeout, s.cfg.BaseURL+path, data)
		if e != nil {
			return e
		}
		raw = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("gateway response parse failed: %w", err)
	}
	return parsed, nil
}

// 短期缓存,查询接口优先走缓存
func (s *AbpayService) cacheOrder(order *model.PayOrder) {
	if dal.RedisClient == nil {
		return
	}
	key := "order:" + order.MchOrderNo
	_ = dal.RedisClient.Set(dal.RedisCtx, key, utils.MapToJSON(order), 10*time.Minute).Err()
}
