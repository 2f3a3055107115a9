package bootstrap

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// NodeID 生成节点实例ID
// 优先使用环境变量 NODE_ID，否则生成UUID
func NodeID() string {
	if id := os.Getenv("NODE_ID"); id != "" {
		return id
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	shortUUID := uuid.New().String()[:8]
	return fmt.Sprintf("imu-node-%s-%s", hostname, shortUUID)
}
