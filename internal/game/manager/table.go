package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"DegensAgainstDecency/internal/game/session"
	"DegensAgainstDecency/internal/websocket"

	"github.com/charmbracelet/log"
)

var ErrTableClosed = errors.New("table closed")

// Table owns one session. Every engine call happens on the loop goroutine.
type Table struct {
	id      string
	sess    *session.Session
	hub     websocket.HubInterface
	log     *log.Logger
	actions chan Action
	quit    chan struct{}
	once    sync.Once

	timeout time.Duration
	timer   *time.Timer
	seq     uint64
	done    bool

	// hooks run on the loop goroutine
	onSeat   func(t *Table, playerID string, seated bool)
	onFinish func(t *Table, snap session.Snapshot)

	mu    sync.RWMutex
	views map[string]session.Snapshot // "" holds the public view
}

func newTable(s *session.Session, hub websocket.HubInterface, timeout time.Duration, lg *log.Logger) *Table {
	t := &Table{
		id:      s.ID(),
		sess:    s,
		hub:     hub,
		log:     lg.With("table", s.ID()),
		actions: make(chan Action, 32), // 防止死锁
		quit:    make(chan struct{}),
		timeout: timeout,
		views:   make(map[string]session.Snapshot),
	}
	return t
}

func (t *Table) ID() string { return t.id }

func (t *Table) run() {
	t.arm()
	for {
		select {
		case a := <-t.actions:
			err := t.apply(a)
			if a.reply != nil {
				a.reply <- err
			} else if err != nil && a.PlayerID != "" {
				t.hub.SendToPlayer(a.PlayerID, websocket.OutgoingMessage{
					Event: websocket.EventError,
					Data:  map[string]any{"table": t.id, "action": a.Type, "error": err.Error()},
				})
			}
		case <-t.quit:
			if t.timer != nil {
				t.timer.Stop()
			}
			return
		}
	}
}

func (t *Table) apply(a Action) error {
	if t.done {
		if a.Type == ActionLeave && t.onSeat != nil {
			// 已结束的桌子只释放座位，不再改动会话
			t.onSeat(t, a.PlayerID, false)
			return nil
		}
		return session.ErrFinished
	}
	if a.Type == actionTimeout && a.turn != t.seq {
		// 过期的计时器
		return nil
	}

	var err error
	switch a.Type {
	case ActionJoin:
		var p joinPayload
		if err = decode(a.Payload, &p); err == nil {
			if p.Name == "" {
				p.Name = a.PlayerID
			}
			if err = t.sess.Join(session.Player{ID: a.PlayerID, Name: p.Name, Handle: p.Handle}); err == nil && t.onSeat != nil {
				t.onSeat(t, a.PlayerID, true)
			}
		}
	case ActionLeave:
		if err = t.sess.Leave(a.PlayerID); err == nil && t.onSeat != nil {
			t.onSeat(t, a.PlayerID, false)
		}
	case ActionStart:
		if c := t.sess.CreatorID(); c != "" && c != a.PlayerID {
			err = ErrNotCreator
		} else {
			err = t.sess.Start()
		}
	default:
		if !t.sess.Playing() {
			err = session.ErrNotPlaying
		} else {
			err = play(t.sess, a)
		}
	}
	if err != nil {
		t.log.Debug("action rejected", "player", a.PlayerID, "type", a.Type, "err", err)
		return err
	}

	t.seq++
	t.publish()
	if t.sess.Status() == session.StatusFinished {
		t.finish()
		return nil
	}
	t.arm()
	return nil
}

// arm restarts the turn timer while the game is running.
func (t *Table) arm() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.timeout <= 0 || !t.sess.Playing() {
		return
	}
	turn := t.seq
	t.timer = time.AfterFunc(t.timeout, func() {
		if !t.Enqueue(Action{Type: actionTimeout, turn: turn}) {
			t.log.Warn("turn timer dropped", "turn", turn)
		}
	})
}

func (t *Table) finish() {
	t.done = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	snap := t.sess.Snapshot()
	t.hub.BroadcastToPlayers(t.sess.PlayerIDs(), websocket.OutgoingMessage{
		Event: websocket.EventGameOver,
		Data: map[string]any{
			"table":   t.id,
			"winners": snap.Winners,
			"scores":  snap.Scores,
		},
	})
	t.log.Info("game over", "kind", snap.Kind, "winners", snap.Winners, "rounds", snap.Round)
	if t.onFinish != nil {
		t.onFinish(t, snap)
	}
}

// refresh rebuilds the cached per-viewer snapshots.
func (t *Table) refresh() {
	views := make(map[string]session.Snapshot, t.sess.Size()+1)
	views[""] = t.sess.Snapshot()
	for _, id := range t.sess.PlayerIDs() {
		views[id] = t.sess.SnapshotFor(id)
	}
	t.mu.Lock()
	t.views = views
	t.mu.Unlock()
}

// publish refreshes the cache and pushes each player its own snapshot.
func (t *Table) publish() {
	t.refresh()
	t.mu.RLock()
	defer t.mu.RUnlock()
	for id, snap := range t.views {
		if id == "" {
			continue
		}
		t.hub.SendToPlayer(id, websocket.OutgoingMessage{Event: websocket.EventSnapshot, Data: snap})
	}
}

// View returns the last published snapshot for viewer. Strangers get the
// public view.
func (t *Table) View(viewer string) session.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.views[viewer]; ok {
		return v
	}
	return t.views[""]
}

// Enqueue hands a to the loop without blocking. It reports false when the
// queue is full or the table is closed.
func (t *Table) Enqueue(a Action) bool {
	select {
	case <-t.quit:
		return false
	default:
	}
	select {
	case t.actions <- a:
		return true
	default:
		return false
	}
}

// Do runs a on the loop and waits for the outcome.
func (t *Table) Do(ctx context.Context, a Action) error {
	a.reply = make(chan error, 1)
	select {
	case t.actions <- a:
	case <-t.quit:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-a.reply:
		return err
	case <-t.quit:
		return ErrTableClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Table) close() {
	t.once.Do(func() { close(t.quit) })
}
