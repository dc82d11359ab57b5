package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"pay-gateway-api/internal/config"
	"pay-gateway-api/internal/dal"
	"pay-gateway-api/internal/dao"
	"pay-gateway-api/internal/dto"
	"pay-gateway-api/internal/model"
	"pay-gateway-api/internal/mq"
	"pay-gateway-api/internal/utils"
)

// meta 子键,对账来源
const (
	MetaNotifyPayload = "notify_payload"
	MetaQueryResponse = "query_response"
)

const reconcileMaxRetry = 3

// ReconcileService 把上游状态落到本地订单: 定位 -> 合并meta -> 更新状态。
// 同一订单的并发回调用 redis 锁串行化,更新走乐观锁版本号。
type ReconcileService struct {
	orderDao *dao.PayOrderDao
}

func NewReconcileService() *ReconcileService {
	return &ReconcileService{orderDao: dao.NewPayOrderDao()}
}

// MapState 上游数字状态码 -> 本地状态。对任意输入total:
// 非数字、缺失、越界一律 unknown,不报错。
func MapState(state interface{}) string {
	n, ok := stateToInt(state)
	if !ok {
		return model.StatusUnknown
	}
	switch n {
	case 2:
		return model.StatusSuccess
	case 3:
		return model.StatusFailed
	case 4:
		return model.StatusCancelled
	case 5:
		return model.StatusRefunded
	case 6:
		return model.StatusClosed
	case 1:
		return model.StatusPaying
	case 0:
		return model.StatusCreated
	default:
		return model.StatusUnknown
	}
}

func stateToInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		// JSON 数字默认解析成 float64
		if val != float64(int(val)) {
			return 0, false
		}
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	case utils.StringOrNumber:
		return stateToInt(string(val))
	default:
		return 0, false
	}
}

// NextStatus 决定落库状态。protectTerminal 关闭时保持字面语义:
// 无条件覆盖。开启后终态不被非终态/unknown 回退,meta 照常合并。
func NextStatus(current, incoming string, protectTerminal bool) string {
	if !protectTerminal {
		return incoming
	}
	if model.IsTerminal(current) && !model.IsTerminal(incoming) {
		return current
	}
	return incoming
}

// Reconcile 通过上游状态码对账,metaKey 区分回调与查单来源。
// createFallback 只在回调路径为 true: 本地无单时按载荷补建记录。
// 查单路径找不到本地订单时静默返回 (nil, nil),不产生任何写入。
func (s *ReconcileService) Reconcile(ctx context.Context, mchOrderNo, payOrderId string, state interface{}, payload map[string]interface{}, metaKey string, createFallback bool) (*model.PayOrder, error) {
	return s.ReconcileStatus(ctx, mchOrderNo, payOrderId, MapState(state), payload, metaKey, createFallback)
}

// ReconcileStatus 同 Reconcile,但状态已由调用方映射好(flashpay 的状态表不同)。
func (s *ReconcileService) ReconcileStatus(ctx context.Context, mchOrderNo, payOrderId, status string, payload map[string]interface{}, metaKey string, createFallback bool) (*model.PayOrder, error) {
	unlock, err := s.lockOrder(ctx, mchOrderNo, payOrderId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 查单来源按上游订单号优先定位,回调来源按商户订单号优先
	payOrderIdFirst := metaKey == MetaQueryResponse

	for attempt := 1; attempt <= reconcileMaxRetry; attempt++ {
		order, err := s.findOrder(mchOrderNo, payOrderId, payOrderIdFirst)
		if err != nil {
			return nil, err
		}

		if order == nil {
			if !createFallback {
				return nil, nil
			}
			fallback := BuildFallbackOrder(mchOrderNo, payOrderId, status, payload)
			if err := s.orderDao.Insert(fallback); err != nil {
				return nil, fmt.Errorf("reconcile insert fallback failed: %w", err)
			}
			_ = mq.PublishOrderCreated(mq.OrderCreatedEvent{
				MchOrderNo: fallback.MchOrderNo,
				MchNo:      fallback.MchNo,
				WayCode:    fallback.WayCode,
				Amount:     fallback.Amount,
				Currency:   fallback.Currency,
				CreatedAt:  time.Now().Unix(),
			})
			return fallback, nil
		}

		oldStatus := order.Status
		order.Status = NextStatus(order.Status, status, config.C.Reconcile.ProtectTerminal)
		if payOrderId != "" && order.PayOrderId == "" {
			order.PayOrderId = payOrderId
		}
		order.Meta = order.Meta.MergeKey(metaKey, payload)

		ok, err := s.orderDao.UpdateWithVersion(order)
		if err != nil {
			return nil, err
		}
		if !ok {
			// 版本冲突: 其它回调抢先更新,重读再来
			log.Printf("[RECONCILE] 版本冲突,重试 %d/%d, mchOrderNo=%s", attempt, reconcileMaxRetry, order.MchOrderNo)
			continue
		}
		order.Version++

		if order.Status != oldStatus {
			_ = mq.PublishOrderStateChanged(mq.OrderStateChangedEvent{
				MchOrderNo: order.MchOrderNo,
				PayOrderId: order.PayOrderId,
				OldStatus:  oldStatus,
				NewStatus:  order.Status,
				Source:     metaKey,
				ChangedAt:  time.Now().Unix(),
			})
		}
		return order, nil
	}
	return nil, errors.New("reconcile: version conflict after retries")
}

// findOrder 两个单号一主一备,miss 后换另一个再查
func (s *ReconcileService) findOrder(mchOrderNo, payOrderId string, payOrderIdFirst bool) (*model.PayOrder, error) {
	byMch := func() (*model.PayOrder, error) {
		if mchOrderNo == "" {
			return nil, nil
		}
		return s.orderDao.GetByMchOrderNo(mchOrderNo)
	}
	byPay := func() (*model.PayOrder, error) {
		if payOrderId == "" {
			return nil, nil
		}
		return s.orderDao.GetByPayOrderId(payOrderId)
	}

	first, second := byMch, byPay
	if payOrderIdFirst {
		first, second = byPay, byMch
	}
	order, err := first()
	if err != nil || order != nil {
		return order, err
	}
	return second()
}

// BuildFallbackOrder 回调先于本地记录到达时补建的订单。
// 缺商户订单号就用上游订单号合成占位,金额缺失记 0。
func BuildFallbackOrder(mchOrderNo, payOrderId, status string, payload map[string]interface{}) *model.PayOrder {
	if mchOrderNo == "" {
		mchOrderNo = "unknown-" + payOrderId
	}
	return &model.PayOrder{
		MchOrderNo: mchOrderNo,
		PayOrderId: payOrderId,
		MchNo:      payloadString(payload, "mchNo"),
		AppId:      payloadString(payload, "appId"),
		Amount:     payloadAmount(payload),
		Currency:   payloadString(payload, "currency"),
		Status:     status,
		Meta:       dto.JSONMap{MetaNotifyPayload: payload},
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func payloadString(payload map[string]interface{}, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func payloadAmount(payload map[string]interface{}) int64 {
	v, ok := payload["amount"]
	if !ok {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case int:
		return int64(val)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// lockOrder 单订单级 redis 锁,把同一订单的并发回调串行化。
// redis 未初始化(单测)时退化为无锁。
func (s *ReconcileService) lockOrder(ctx context.Context, mchOrderNo, payOrderId string) (func(), error) {
	if dal.RedisClient == nil {
		return func() {}, nil
	}
	key := "reconcile:lock:" + mchOrderNo
	if mchOrderNo == "" {
		key = "reconcile:lock:pay:" + payOrderId
	}
	ttl := config.C.Reconcile.LockTTL

	for i := 0; i < 50; i++ {
		ok, err := dal.RedisClient.SetNX(ctx, key, 1, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("reconcile lock failed: %w", err)
		}
		if ok {
			return func() { dal.RedisClient.Del(dal.RedisCtx, key) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil, errors.New("reconcile: lock acquire timeout")
}
