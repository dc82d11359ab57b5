package model

import (
	"time"

	"pay-gateway-api/internal/dto"
)

// 订单状态机: created -> paying -> 终态
const (
	StatusCreated   = "created"
	StatusPaying    = "paying"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
	StatusClosed    = "closed"
	StatusUnknown   = "unknown" // 无法识别的上游状态码,留给运营排查
)

// IsTerminal 终态不再有后续流转
func IsTerminal(status string) bool {
	switch status {
	case StatusSuccess, StatusFailed, StatusCancelled, StatusRefunded, StatusClosed:
		return true
	}
	return false
}

// PayOrder 订单记录。mch_order_no 唯一且创建后不变,
// pay_order_id 上游受理后回填。version 用于乐观锁防止回调并发丢更新。
type PayOrder struct {
	ID         uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MchOrderNo string      `gorm:"column:mch_order_no;uniqueIndex" json:"mch_order_no"`
	PayOrderId string      `gorm:"column:pay_order_id;index" json:"pay_order_id"`
	MchNo      string      `gorm:"column:mch_no" json:"mch_no"`
	AppId      string      `gorm:"column:app_id" json:"app_id"`
	WayCode    string      `gorm:"column:way_code" json:"way_code"`
	Amount     int64       `gorm:"column:amount" json:"amount"` // 最小货币单位
	Currency   string      `gorm:"column:currency" json:"currency"`
	Status     string      `gorm:"column:status" json:"status"`
	Meta       dto.JSONMap `gorm:"column:meta" json:"meta"`
	Version    int64       `gorm:"column:version" json:"version"`
	CreatedAt  time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

func (PayOrder) TableName() string { return "pay_order" }
