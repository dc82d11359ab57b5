package idgen

import (
	"log"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

// Init 初始化默认 Snowflake 节点
func Init(nodeID int64) {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		log.Fatalf("snowflake init failed: %v", err)
	}
	node = n
}

// New 生成全局唯一ID,用于没有外部订单号时补一个商户订单号
func New() uint64 {
	if node == nil {
		Init(1)
	}
	return uint64(node.Generate().Int64())
}
