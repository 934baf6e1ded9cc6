package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"DegensAgainstDecency/internal/game/session"
	"DegensAgainstDecency/internal/matchmaker"
	"DegensAgainstDecency/internal/storage"
	"DegensAgainstDecency/internal/utils"
	"DegensAgainstDecency/internal/websocket"

	"github.com/charmbracelet/log"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableExists   = errors.New("table already exists")
	ErrAlreadySeated = errors.New("player already at a table")
	ErrNotSeated     = errors.New("player not at a table")
	ErrBusy          = errors.New("table busy, try again")
)

// EventAction is the websocket event carrying {type, payload}.
const EventAction = "action"

// ResultRecorder archives finished games.
type ResultRecorder interface {
	Save(ctx context.Context, r storage.GameResult) error
}

type Settings struct {
	Capacity    int
	TurnTimeout time.Duration
	GracePeriod time.Duration
}

// GameManager 管理所有对局
type GameManager struct {
	mu            sync.RWMutex
	tables        map[string]*Table // tableID → table
	playerToTable map[string]string // player id → tableID
	hub           websocket.HubInterface
	engines       Engines
	settings      Settings
	log           *log.Logger

	// Results is optional.
	Results ResultRecorder
	// OnClosed runs after a finished table is removed, with its last roster.
	OnClosed func(players []string)
}

func NewGameManager(hub websocket.HubInterface, engines Engines, settings Settings) *GameManager {
	if settings.Capacity == 0 {
		settings.Capacity = session.MaxCapacity
	}
	return &GameManager{
		tables:        make(map[string]*Table),
		playerToTable: make(map[string]string),
		hub:           hub,
		engines:       engines,
		settings:      settings,
		log:           utils.Component("manager"),
	}
}

type CreateRequest struct {
	Kind     session.Kind `json:"game" binding:"required"`
	Capacity int          `json:"capacity"`
	Private  bool         `json:"private"`
	Name     string       `json:"name"`
	Handle   string       `json:"handle"`

	CreatorID string `json:"-"`
}

// Create opens a waiting table with the creator seated.
func (m *GameManager) Create(req CreateRequest) (session.Snapshot, error) {
	if req.CreatorID == "" {
		return session.Snapshot{}, session.ErrInvalidPlayer
	}
	if m.TableOf(req.CreatorID) != "" {
		return session.Snapshot{}, ErrAlreadySeated
	}
	eng, err := m.engines.New(req.Kind)
	if err != nil {
		return session.Snapshot{}, err
	}
	if req.Capacity == 0 {
		req.Capacity = m.settings.Capacity
	}
	s, err := session.New(session.Options{CreatorID: req.CreatorID, Private: req.Private, Capacity: req.Capacity}, eng)
	if err != nil {
		return session.Snapshot{}, err
	}
	name := req.Name
	if name == "" {
		name = req.CreatorID
	}
	if err := s.Join(session.Player{ID: req.CreatorID, Name: name, Handle: req.Handle}); err != nil {
		return session.Snapshot{}, err
	}
	t, err := m.register(s)
	if err != nil {
		return session.Snapshot{}, err
	}
	m.log.Info("table created", "table", t.ID(), "kind", req.Kind, "creator", req.CreatorID, "private", req.Private)
	return t.View(req.CreatorID), nil
}

// StartRoom 为匹配成功的玩家创建公开桌并立即开局
func (m *GameManager) StartRoom(r *matchmaker.Room) error {
	m.mu.RLock()
	_, exists := m.tables[r.ID]
	m.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: %s", ErrTableExists, r.ID)
	}

	eng, err := m.engines.New(session.Kind(r.Game))
	if err != nil {
		return err
	}
	s, err := session.New(session.Options{ID: r.ID, Capacity: r.TableSize}, eng)
	if err != nil {
		return err
	}
	for _, p := range r.Players {
		if err := s.Join(session.Player{ID: p, Name: p}); err != nil {
			return fmt.Errorf("seat %s: %w", p, err)
		}
	}
	if err := s.Start(); err != nil {
		return err
	}
	if _, err := m.register(s); err != nil {
		return err
	}
	m.log.Info("room started", "table", r.ID, "game", r.Game, "players", len(r.Players))
	return nil
}

func (m *GameManager) register(s *session.Session) (*Table, error) {
	t := newTable(s, m.hub, m.settings.TurnTimeout, m.log)
	t.onSeat = m.seat
	t.onFinish = m.finished

	m.mu.Lock()
	if _, ok := m.tables[t.ID()]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrTableExists, t.ID())
	}
	for _, id := range s.PlayerIDs() {
		if _, ok := m.playerToTable[id]; ok {
			m.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrAlreadySeated, id)
		}
	}
	m.tables[t.ID()] = t
	for _, id := range s.PlayerIDs() {
		m.playerToTable[id] = t.ID()
	}
	m.mu.Unlock()

	t.publish()
	go t.run()
	return t, nil
}

func (m *GameManager) seat(t *Table, playerID string, seated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seated {
		m.playerToTable[playerID] = t.ID()
	} else if m.playerToTable[playerID] == t.ID() {
		delete(m.playerToTable, playerID)
	}
}

func (m *GameManager) finished(t *Table, snap session.Snapshot) {
	if m.Results != nil {
		res := storage.GameResult{
			SessionID:  snap.ID,
			Kind:       string(snap.Kind),
			Winners:    snap.Winners,
			Scores:     snap.Scores,
			Rounds:     snap.Round,
			FinishedAt: time.Now(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.Results.Save(ctx, res); err != nil {
				m.log.Error("save result failed", "table", res.SessionID, "err", err)
			}
		}()
	}

	players := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		players = append(players, p.ID)
	}
	if m.settings.GracePeriod <= 0 {
		go m.remove(t.ID(), players)
		return
	}
	time.AfterFunc(m.settings.GracePeriod, func() { m.remove(t.ID(), players) })
}

func (m *GameManager) remove(tableID string, players []string) {
	m.mu.Lock()
	t, ok := m.tables[tableID]
	if ok {
		delete(m.tables, tableID)
		for pid, tid := range m.playerToTable {
			if tid == tableID {
				delete(m.playerToTable, pid)
			}
		}
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	t.close()
	m.log.Debug("table removed", "table", tableID)
	if m.OnClosed != nil && len(players) > 0 {
		m.OnClosed(players)
	}
}

func (m *GameManager) table(id string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// TableOf returns the table id the player sits at, or "".
func (m *GameManager) TableOf(playerID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playerToTable[playerID]
}

// Get returns the table as seen by viewer.
func (m *GameManager) Get(tableID, viewer string) (session.Snapshot, error) {
	t, err := m.table(tableID)
	if err != nil {
		return session.Snapshot{}, err
	}
	return t.View(viewer), nil
}

// Lobby lists public tables still waiting for players, oldest first.
func (m *GameManager) Lobby() []session.Snapshot {
	m.mu.RLock()
	out := make([]session.Snapshot, 0, len(m.tables))
	for _, t := range m.tables {
		v := t.View("")
		if !v.Private && v.Status == session.StatusWaiting {
			out = append(out, v)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *GameManager) Join(ctx context.Context, tableID, playerID, name string) (session.Snapshot, error) {
	if cur := m.TableOf(playerID); cur != "" && cur != tableID {
		return session.Snapshot{}, ErrAlreadySeated
	}
	return m.Act(ctx, tableID, playerID, ActionJoin, map[string]any{"name": name})
}

func (m *GameManager) Leave(ctx context.Context, playerID string) error {
	tableID := m.TableOf(playerID)
	if tableID == "" {
		return ErrNotSeated
	}
	_, err := m.Act(ctx, tableID, playerID, ActionLeave, nil)
	return err
}

func (m *GameManager) Start(ctx context.Context, tableID, playerID string) (session.Snapshot, error) {
	return m.Act(ctx, tableID, playerID, ActionStart, nil)
}

// Act runs one action synchronously and returns the actor's view.
func (m *GameManager) Act(ctx context.Context, tableID, playerID, typ string, payload any) (session.Snapshot, error) {
	t, err := m.table(tableID)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := t.Do(ctx, Action{PlayerID: playerID, Type: typ, Payload: payload}); err != nil {
		return session.Snapshot{}, err
	}
	return t.View(playerID), nil
}

// HandlePlayerMessage runs on the hub goroutine and must not block.
func (m *GameManager) HandlePlayerMessage(msg websocket.IncomingMessage) {
	tableID := m.TableOf(msg.From)
	if tableID == "" {
		m.reply(msg.From, msg.Event, ErrNotSeated)
		return
	}
	t, err := m.table(tableID)
	if err != nil {
		m.reply(msg.From, msg.Event, err)
		return
	}

	switch msg.Event {
	case EventAction:
		var f frame
		if err := decode(msg.Data, &f); err != nil {
			m.reply(msg.From, msg.Event, err)
			return
		}
		if f.Type == "" || f.Type == actionTimeout {
			m.reply(msg.From, msg.Event, ErrUnknownAction)
			return
		}
		if !t.Enqueue(Action{PlayerID: msg.From, Type: f.Type, Payload: f.Payload}) {
			m.reply(msg.From, f.Type, ErrBusy)
		}
	case websocket.EventChat:
		ids := make([]string, 0, 8)
		for _, p := range t.View("").Players {
			ids = append(ids, p.ID)
		}
		out := websocket.OutgoingMessage{
			Event: websocket.EventChat,
			Data:  map[string]any{"table": tableID, "from": msg.From, "text": msg.Data},
		}
		go m.hub.BroadcastToPlayers(ids, out)
	default:
		m.log.Warn("unknown event", "player", msg.From, "event", msg.Event)
		m.reply(msg.From, msg.Event, ErrUnknownAction)
	}
}

// reply sends off the hub goroutine so a full hub queue cannot stall it.
func (m *GameManager) reply(playerID, action string, err error) {
	out := websocket.OutgoingMessage{
		Event: websocket.EventError,
		Data:  map[string]any{"action": action, "error": err.Error()},
	}
	go m.hub.SendToPlayer(playerID, out)
}

// Close stops every table loop.
func (m *GameManager) Close() {
	m.mu.Lock()
	tables := m.tables
	m.tables = make(map[string]*Table)
	m.playerToTable = make(map[string]string)
	m.mu.Unlock()
	for _, t := range tables {
		t.close()
	}
}
