package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DegensAgainstDecency/internal/utils"
	"DegensAgainstDecency/internal/websocket"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var ErrInvalidRequest = errors.New("invalid match request")

type Service struct {
	repo      Repo
	playerTTL int // seconds, 用于防止遗留队列
	hub       HubBroadcaster
	log       *log.Logger

	// Validate rejects game/table size combinations no table can host.
	Validate func(game string, tableSize int) error
	// OnRoomReady 成桌时调用
	OnRoomReady func(*Room)
}

type HubBroadcaster interface {
	BroadcastToPlayers(ids []string, msg websocket.OutgoingMessage)
}

func NewService(repo Repo, playerTTL int, hub HubBroadcaster) *Service {
	return &Service{repo: repo, playerTTL: playerTTL, hub: hub, log: utils.Component("matchmaker")}
}

// Join 入队并尝试立即成桌（随机）。若可成桌，返回房间；否则返回排队中。
func (s *Service) Join(ctx context.Context, req JoinRequest) (*Room, bool, error) {
	if req.PlayerID == "" {
		return nil, false, errors.New("missing player id")
	}
	if req.TableSize <= 1 {
		return nil, false, fmt.Errorf("%w: tableSize must be at least 2", ErrInvalidRequest)
	}
	if s.Validate != nil {
		if err := s.Validate(req.Game, req.TableSize); err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}

	// 防止重复匹配：检测玩家是否已经在房间中
	if rooms, ok := s.repo.(RoomStore); ok {
		roomID, err := rooms.GetPlayerRoom(ctx, req.PlayerID)
		if err != nil {
			return nil, false, err
		}
		if roomID != "" {
			return nil, false, fmt.Errorf("player %s already in room %s", req.PlayerID, roomID)
		}
	}

	if err := s.repo.Enqueue(ctx, req.Game, req.TableSize, req.PlayerID, s.playerTTL); err != nil {
		return nil, false, err
	}
	cnt, err := s.repo.Count(ctx, req.Game, req.TableSize)
	if err != nil {
		return nil, false, err
	}
	if int(cnt) < req.TableSize {
		return nil, true, nil // queued
	}
	ids, err := s.repo.PopNRandom(ctx, req.Game, req.TableSize, req.TableSize)
	if err != nil {
		return nil, false, err
	}
	if len(ids) < req.TableSize {
		// 并发竞争导致人数不足：已弹出的放回去
		for _, id := range ids {
			_ = s.repo.Enqueue(ctx, req.Game, req.TableSize, id, s.playerTTL)
		}
		return nil, true, nil
	}
	room := &Room{
		ID:        uuid.NewString(),
		Game:      req.Game,
		TableSize: req.TableSize,
		Players:   ids,
		CreatedAt: time.Now(),
	}

	if rooms, ok := s.repo.(RoomStore); ok {
		if err := rooms.SaveRoom(ctx, room, s.playerTTL); err != nil {
			s.log.Warn("save room", "room", room.ID, "err", err)
		}
	}

	s.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{
		Event: websocket.EventMatched,
		Data: map[string]any{
			"roomId":    room.ID,
			"game":      room.Game,
			"tableSize": room.TableSize,
			"players":   room.Players,
		},
	})
	s.log.Info("room ready", "room", room.ID, "game", room.Game, "players", room.Players)

	if s.OnRoomReady != nil {
		go s.OnRoomReady(room)
	}
	return room, false, nil
}

func (s *Service) Cancel(ctx context.Context, playerID string) error {
	return s.repo.Remove(ctx, playerID)
}

// Release lets players queue again once their game is over.
func (s *Service) Release(ctx context.Context, playerIDs ...string) error {
	if rooms, ok := s.repo.(RoomStore); ok {
		return rooms.ReleasePlayers(ctx, playerIDs...)
	}
	return nil
}
