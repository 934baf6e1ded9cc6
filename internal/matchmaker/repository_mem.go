package matchmaker

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

type memRepo struct {
	mu      sync.Mutex
	pools   map[string]map[string]struct{} // key -> set(playerID)
	players map[string]string              // playerID -> key
	rooms   map[string]string              // playerID -> roomID
	rnd     *rand.Rand
}

func NewMemoryRepo() Repo {
	return &memRepo{
		pools:   make(map[string]map[string]struct{}),
		players: make(map[string]string),
		rooms:   make(map[string]string),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func memKey(game string, tableSize int) string {
	return fmt.Sprintf("mm:pool:%s:%d", game, tableSize)
}

func (m *memRepo) Enqueue(_ context.Context, game string, tableSize int, playerID string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// 换池时先从旧池移除
	if old, ok := m.players[playerID]; ok {
		delete(m.pools[old], playerID)
	}
	key := memKey(game, tableSize)
	if _, ok := m.pools[key]; !ok {
		m.pools[key] = make(map[string]struct{})
	}
	m.pools[key][playerID] = struct{}{}
	m.players[playerID] = key
	return nil
}

func (m *memRepo) PopNRandom(_ context.Context, game string, tableSize int, n int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memKey(game, tableSize)
	s, ok := m.pools[key]
	if !ok || len(s) < n {
		return []string{}, nil
	}
	ids := make([]string, 0, len(s))
	for a := range s {
		ids = append(ids, a)
	}
	m.rnd.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	chosen := ids[:n]
	for _, a := range chosen {
		delete(s, a)
		delete(m.players, a)
	}
	if len(s) == 0 {
		delete(m.pools, key)
	}
	return chosen, nil
}

func (m *memRepo) Remove(_ context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.players[playerID]
	if !ok {
		return nil
	}
	if s, ok := m.pools[key]; ok {
		delete(s, playerID)
		if len(s) == 0 {
			delete(m.pools, key)
		}
	}
	delete(m.players, playerID)
	return nil
}

func (m *memRepo) Count(_ context.Context, game string, tableSize int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.pools[memKey(game, tableSize)])), nil
}

func (m *memRepo) SaveRoom(_ context.Context, room *Room, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range room.Players {
		m.rooms[p] = room.ID
	}
	return nil
}

func (m *memRepo) GetPlayerRoom(_ context.Context, playerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[playerID], nil
}

func (m *memRepo) ReleasePlayers(_ context.Context, playerIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range playerIDs {
		delete(m.rooms, p)
	}
	return nil
}
