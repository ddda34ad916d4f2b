// Package snowflake 生成按时间递增的消息 ID
package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

const defaultMachineID = 1

var (
	node *snowflake.Node
	once sync.Once
)

// Init 设置本节点的机器号，多节点部署时每个节点必须不同
// 只有第一次调用生效，超出 0-1023 时回退为 1
func Init(machineID int64) {
	once.Do(func() {
		if machineID < 0 || machineID > 1023 {
			zap.L().Warn("snowflake machine id out of range, fallback", zap.Int64("machine_id", machineID))
			machineID = defaultMachineID
		}
		n, err := snowflake.NewNode(machineID)
		if err != nil {
			zap.L().Fatal("snowflake node init failed", zap.Error(err))
		}
		node = n
	})
}

// NextID 返回字符串形式的 ID，前端按字符串处理以免丢失精度
// 未调用 Init 时使用默认机器号
func NextID() string {
	Init(defaultMachineID)
	return node.Generate().String()
}
