package util

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node   *snowflake.Node
	nodeMu sync.RWMutex
)

// InitSnowflake 初始化雪花算法节点，多实例部署时 nodeId 必须不同（0~1023）
func InitSnowflake(nodeId int64) error {
	n, err := snowflake.NewNode(nodeId)
	if err != nil {
		return err
	}
	nodeMu.Lock()
	node = n
	nodeMu.Unlock()
	return nil
}

// NextID 生成下一个 id。未初始化时使用 0 号节点，测试和脚本可直接调用。
func NextID() int64 {
	nodeMu.RLock()
	n := node
	nodeMu.RUnlock()

	if n == nil {
		nodeMu.Lock()
		if node == nil {
			node, _ = snowflake.NewNode(0)
		}
		n = node
		nodeMu.Unlock()
	}
	return n.Generate().Int64()
}
