package matchmaker

import "time"

// JoinRequest 前端提交的匹配请求，PlayerID 来自 JWT
type JoinRequest struct {
	PlayerID  string `json:"-"`
	Game      string `json:"game" binding:"required"`      // exchange / confession / stud
	TableSize int    `json:"tableSize" binding:"required"` // 2..8
}

// JoinResponse 返回是否已成桌；若已成桌则给出房间信息
type JoinResponse struct {
	Queued    bool     `json:"queued"`
	RoomID    string   `json:"roomId,omitempty"`
	Players   []string `json:"players,omitempty"`
	Game      string   `json:"game"`
	TableSize int      `json:"tableSize"`
}

// Room 组桌结果
type Room struct {
	ID        string    `json:"id"`
	Game      string    `json:"game"`
	TableSize int       `json:"tableSize"`
	Players   []string  `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}
