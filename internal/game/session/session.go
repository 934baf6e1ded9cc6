package session

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	MinCapacity = 2
	MaxCapacity = 8
)

type Status int

const (
	StatusWaiting Status = iota
	StatusPlaying
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Kind selects the round engine variant.
type Kind string

const (
	KindExchange   Kind = "exchange"
	KindConfession Kind = "confession"
	KindStud       Kind = "stud"
)

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle,omitempty"`
}

// RoundEngine is the game-type specific state machine layered on a Session.
type RoundEngine interface {
	Kind() Kind
	MinPlayers() int
	// Init runs once when the session starts.
	Init(s *Session) error
	// PlayerLeft runs after the player was removed from the roster. idx is
	// the roster position the player held.
	PlayerLeft(s *Session, playerID string, idx int)
	// View returns the engine state visible to viewer. An empty viewer gets
	// the public view only.
	View(viewer string) any
}

type Options struct {
	ID        string
	CreatorID string
	Private   bool
	Capacity  int
}

// Session 一局游戏的公共容器：玩家列表、状态、轮次、积分
type Session struct {
	id        string
	creatorID string
	private   bool
	capacity  int
	createdAt time.Time

	players []Player
	status  Status
	round   int
	scores  map[string]int
	winners []string

	engine RoundEngine
}

func New(opts Options, engine RoundEngine) (*Session, error) {
	if opts.Capacity < MinCapacity || opts.Capacity > MaxCapacity {
		return nil, ErrInvalidCapacity
	}
	if engine == nil {
		panic("session: nil round engine")
	}
	if engine.MinPlayers() > opts.Capacity {
		return nil, ErrInvalidCapacity
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		id:        id,
		creatorID: opts.CreatorID,
		private:   opts.Private,
		capacity:  opts.Capacity,
		createdAt: time.Now(),
		players:   make([]Player, 0, opts.Capacity),
		scores:    make(map[string]int, opts.Capacity),
		engine:    engine,
	}, nil
}

func (s *Session) ID() string { return s.id }
func (s *Session) CreatorID() string { return s.creatorID }
func (s *Session) Private() bool { return s.private }
func (s *Session) Capacity() int { return s.capacity }
func (s *Session) Kind() Kind { return s.engine.Kind() }
func (s *Session) Engine() RoundEngine { return s.engine }
func (s *Session) Status() Status { return s.status }
func (s *Session) Round() int { return s.round }
func (s *Session) Size() int { return len(s.players) }
func (s *Session) Playing() bool { return s.status == StatusPlaying }

func (s *Session) Join(p Player) error {
	if p.ID == "" {
		return ErrInvalidPlayer
	}
	if s.status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if s.Index(p.ID) >= 0 {
		return ErrDuplicatePlayer
	}
	if len(s.players) >= s.capacity {
		return ErrGameFull
	}
	s.players = append(s.players, p)
	s.scores[p.ID] = 0
	return nil
}

// Leave removes the player and its score. An empty roster finishes the game.
// A creator leaving a waiting session hands the role to the earliest joiner.
func (s *Session) Leave(playerID string) error {
	if s.status == StatusFinished {
		return ErrFinished
	}
	idx := s.Index(playerID)
	if idx < 0 {
		return ErrUnknownPlayer
	}
	s.players = append(s.players[:idx], s.players[idx+1:]...)
	delete(s.scores, playerID)

	if len(s.players) == 0 {
		s.status = StatusFinished
		s.winners = nil
		return nil
	}
	if playerID == s.creatorID && s.status == StatusWaiting {
		// 房主离开，下一个加入的玩家接手
		s.creatorID = s.players[0].ID
	}
	if s.status == StatusPlaying {
		s.engine.PlayerLeft(s, playerID, idx)
	}
	return nil
}

func (s *Session) Start() error {
	if s.status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if len(s.players) < s.engine.MinPlayers() {
		return ErrNotEnoughPlayers
	}
	s.status = StatusPlaying
	s.round = 1
	return s.engine.Init(s)
}

// NextRound increments the round counter while playing and returns it.
func (s *Session) NextRound() int {
	if s.status == StatusPlaying {
		s.round++
	}
	return s.round
}

// Finish ends the game. Calling it again is a no-op.
func (s *Session) Finish(winners []string) {
	if s.status == StatusFinished {
		return
	}
	s.status = StatusFinished
	s.winners = append([]string(nil), winners...)
}

// AddScore awards points to a seated player. Negative awards are ignored so
// scores never drop below zero.
func (s *Session) AddScore(playerID string, points int) bool {
	if points < 0 {
		return false
	}
	if _, ok := s.scores[playerID]; !ok {
		return false
	}
	s.scores[playerID] += points
	return true
}

func (s *Session) Score(playerID string) int { return s.scores[playerID] }

// Index returns the roster position of playerID, or -1.
func (s *Session) Index(playerID string) int {
	for i, p := range s.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (s *Session) HasPlayer(playerID string) bool { return s.Index(playerID) >= 0 }

// PlayerAt returns the player at roster position i.
func (s *Session) PlayerAt(i int) Player { return s.players[i] }

// PlayerIDs returns roster ids in join order.
func (s *Session) PlayerIDs() []string {
	out := make([]string, len(s.players))
	for i, p := range s.players {
		out[i] = p.ID
	}
	return out
}

func (s *Session) Players() []Player {
	return append([]Player(nil), s.players...)
}

// TopScorers returns every player holding the maximum score, in join order.
func (s *Session) TopScorers() []string {
	best := -1
	var out []string
	for _, p := range s.players {
		sc := s.scores[p.ID]
		switch {
		case sc > best:
			best = sc
			out = []string{p.ID}
		case sc == best:
			out = append(out, p.ID)
		}
	}
	return out
}

func (s *Session) Winners() []string { return append([]string(nil), s.winners...) }

func (s *Session) Scores() map[string]int {
	out := make(map[string]int, len(s.scores))
	for k, v := range s.scores {
		out[k] = v
	}
	return out
}

// Leaderboard returns player ids sorted by score, ties in join order.
func (s *Session) Leaderboard() []string {
	ids := s.PlayerIDs()
	sort.SliceStable(ids, func(i, j int) bool {
		return s.scores[ids[i]] > s.scores[ids[j]]
	})
	return ids
}
