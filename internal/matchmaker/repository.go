package matchmaker

import "context"

// Repo 定义对匹配池的抽象操作，池以 game+tableSize 区分
type Repo interface {
	// Enqueue 将玩家加入指定池
	Enqueue(ctx context.Context, game string, tableSize int, playerID string, ttlSeconds int) error
	// PopNRandom 随机弹出 n 人（原子）
	PopNRandom(ctx context.Context, game string, tableSize int, n int) ([]string, error)
	// Remove 将玩家从当前池移除（用于取消）
	Remove(ctx context.Context, playerID string) error
	// Count 返回池内人数
	Count(ctx context.Context, game string, tableSize int) (int64, error)
}

// RoomStore is implemented by repos that also track formed rooms.
type RoomStore interface {
	SaveRoom(ctx context.Context, room *Room, ttlSeconds int) error
	GetPlayerRoom(ctx context.Context, playerID string) (string, error)
	ReleasePlayers(ctx context.Context, playerIDs ...string) error
}
