package dao

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"pay-gateway-api/internal/dal"
	"pay-gateway-api/internal/model"
)

type PayOrderDao struct {
	DB *gorm.DB
}

// 工厂方法: 默认使用 dal.DB
func NewPayOrderDao() *PayOrderDao {
	if dal.DB == nil {
		log.Panic("[FATAL] dal.DB is nil - database not initialized")
	}
	return &PayOrderDao{DB: dal.DB}
}

// 支持传入自定义 DB(比如 txDB)
func NewPayOrderDaoWithDB(db *gorm.DB) *PayOrderDao {
	if db == nil {
		log.Panic("[FATAL] db cannot be nil")
	}
	return &PayOrderDao{DB: db}
}

func (r *PayOrderDao) checkDB() error {
	if r == nil {
		return errors.New("PayOrderDao is nil")
	}
	if r.DB == nil {
		return errors.New("DB connection is nil")
	}
	return nil
}

// 插入订单
func (r *PayOrderDao) Insert(o *model.PayOrder) error {
	if err := r.checkDB(); err != nil {
		return fmt.Errorf("insert order failed: %w", err)
	}
	return r.DB.Create(o).Error
}

// 根据商户订单号获取订单,未找到返回 nil,nil
func (r *PayOrderDao) GetByMchOrderNo(mchOrderNo string) (*model.PayOrder, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get by mch order no failed: %w", err)
	}

	var m model.PayOrder
	err := r.DB.Where("mch_order_no = ?", mchOrderNo).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &m, nil
}

// 根据上游订单号获取订单
func (r *PayOrderDao) GetByPayOrderId(payOrderId string) (*model.PayOrder, error) {
	if err := r.checkDB(); err != nil {
		return nil, fmt.Errorf("get by pay order id failed: %w", err)
	}

	var m model.PayOrder
	err := r.DB.Where("pay_order_id = ?", payOrderId).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return &m, nil
}

// UpdateWithVersion 条件更新: 只有version没被别的回调抢先递增时才生效。
// 返回false表示版本冲突,调用方需重读后重试。
func (r *PayOrderDao) UpdateWithVersion(o *model.PayOrder) (bool, error) {
	if err := r.checkDB(); err != nil {
		return false, fmt.Errorf("update order failed: %w", err)
	}

	res := r.DB.Model(&model.PayOrder{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]interface{}{
			"pay_order_id": o.PayOrderId,
			"status":       o.Status,
			"meta":         o.Meta,
			"version":      o.Version + 1,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("update order failed: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
