package snowflake

import (
	"errors"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node    *snowflake.Node
	once    sync.Once
	initErr error

	errInvalidNodeID      = errors.New("snowflake machine and datacenter ids must be within 0-31")
	errGeneratorUninitial = errors.New("snowflake generator is not initialized")
)

// Init 节点号由 datacenter(高 5 位) 和 machine(低 5 位) 组成
func Init(machineID, dataCenterID int64) error {
	once.Do(func() {
		if machineID < 0 || machineID > 31 || dataCenterID < 0 || dataCenterID > 31 {
			initErr = errInvalidNodeID
			return
		}

		node, initErr = snowflake.NewNode((dataCenterID << 5) | machineID)
	})

	return initErr
}

func NextID() (int64, error) {
	if node == nil {
		return 0, errGeneratorUninitial
	}

	return node.Generate().Int64(), nil
}

// NextString 以十进制字符串返回，账户对外 ID 使用
func NextString() (string, error) {
	if node == nil {
		return "", errGeneratorUninitial
	}

	return node.Generate().String(), nil
}
