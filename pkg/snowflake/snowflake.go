package snowflake

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

const (
	// 起始时间戳 (2025-01-01 00:00:00 UTC)
	epoch int64 = 1735689600000

	nodeBits     = 10
	sequenceBits = 12

	MaxNodeID   = -1 ^ (-1 << nodeBits)
	maxSequence = -1 ^ (-1 << sequenceBits)

	nodeShift      = sequenceBits
	timestampShift = nodeBits + sequenceBits
)

// ErrInvalidNodeID 节点号超出范围
var ErrInvalidNodeID = errors.New("snowflake: node id out of range")

// ID 雪花ID，聊天消息使用
type ID int64

// String 十进制字符串
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Time 生成时间
func (id ID) Time() time.Time {
	return time.UnixMilli((int64(id) >> timestampShift) + epoch)
}

// Node 雪花ID生成器节点
type Node struct {
	mu       sync.Mutex
	nodeID   int64
	sequence int64
	lastTime int64
	now      func() int64
}

// NewNode 创建雪花ID生成器
func NewNode(nodeID int64) (*Node, error) {
	if nodeID < 0 || nodeID > MaxNodeID {
		return nil, ErrInvalidNodeID
	}
	return &Node{
		nodeID: nodeID,
		now:    func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// Generate 生成雪花ID，同一毫秒内序号用尽时等待下一毫秒
func (n *Node) Generate() ID {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	if now < n.lastTime {
		// 时钟回拨时沿用上次的时间
		now = n.lastTime
	}

	if now == n.lastTime {
		n.sequence = (n.sequence + 1) & maxSequence
		if n.sequence == 0 {
			for now <= n.lastTime {
				now = n.now()
			}
		}
	} else {
		n.sequence = 0
	}
	n.lastTime = now

	return ID(((now - epoch) << timestampShift) | (n.nodeID << nodeShift) | n.sequence)
}
