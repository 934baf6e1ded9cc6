package session

import "time"

// Snapshot is an immutable copy safe to hand to the transport adapter.
type Snapshot struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	CreatorID string         `json:"creatorId"`
	Private   bool           `json:"private"`
	Capacity  int            `json:"capacity"`
	Players   []Player       `json:"players"`
	Status    Status         `json:"status"`
	Round     int            `json:"round"`
	Scores    map[string]int `json:"scores"`
	Winners   []string       `json:"winners,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`

	// Game is the engine view for the viewer; nil until the game starts.
	Game any `json:"game,omitempty"`
}

// Snapshot returns the public view.
func (s *Session) Snapshot() Snapshot {
	return s.SnapshotFor("")
}

// SnapshotFor adds the engine view for viewer, which only ever contains the
// viewer's own hand.
func (s *Session) SnapshotFor(viewer string) Snapshot {
	snap := Snapshot{
		ID:        s.id,
		Kind:      s.engine.Kind(),
		CreatorID: s.creatorID,
		Private:   s.private,
		Capacity:  s.capacity,
		Players:   s.Players(),
		Status:    s.status,
		Round:     s.round,
		Scores:    s.Scores(),
		Winners:   s.Winners(),
		CreatedAt: s.createdAt,
	}
	if s.status != StatusWaiting {
		if viewer != "" && !s.HasPlayer(viewer) {
			viewer = ""
		}
		snap.Game = s.engine.View(viewer)
	}
	return snap
}
