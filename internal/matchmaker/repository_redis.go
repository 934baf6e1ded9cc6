package matchmaker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	rdb *redis.Client
}

// KEYS[1] = playerKey, KEYS[2] = poolKey, ARGV[1] = playerID
var removeScript = redis.NewScript(`
redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
if redis.call("SCARD", KEYS[2]) == 0 then
    redis.call("DEL", KEYS[2])
end
return 1
`)

func NewRedisRepo(rdb *redis.Client) Repo {
	return &redisRepo{rdb: rdb}
}

// key 约定：
//
//	set: mm:pool:{game}:{tableSize}     -> Set(playerID,...)
//	kv : mm:player:{playerID}           -> "game:tableSize" (便于取消时定位池)
//	kv : mm:room:{roomID}               -> Room JSON
//	kv : mm:playerRoom:{playerID}       -> roomID
func poolKey(game string, tableSize int) string {
	return fmt.Sprintf("mm:pool:%s:%d", game, tableSize)
}
func playerKey(id string) string {
	return fmt.Sprintf("mm:player:%s", id)
}
func roomKey(id string) string {
	return fmt.Sprintf("mm:room:%s", id)
}
func playerRoomKey(id string) string {
	return fmt.Sprintf("mm:playerRoom:%s", id)
}

func (r *redisRepo) Enqueue(ctx context.Context, game string, tableSize int, playerID string, ttlSeconds int) error {
	// 换池时先从旧池移除
	if err := r.Remove(ctx, playerID); err != nil {
		return err
	}
	p := r.rdb.Pipeline()
	p.SAdd(ctx, poolKey(game, tableSize), playerID)
	p.Set(ctx, playerKey(playerID), fmt.Sprintf("%s:%d", game, tableSize), time.Duration(ttlSeconds)*time.Second)
	_, err := p.Exec(ctx)
	return err
}

func (r *redisRepo) PopNRandom(ctx context.Context, game string, tableSize int, n int) ([]string, error) {
	key := poolKey(game, tableSize)
	// Redis 3.2+ 支持 SPOP COUNT，一次随机弹出 n 个元素并从集合删除（原子）
	res, err := r.rdb.SPopN(ctx, key, int64(n)).Result()
	if err != nil {
		return nil, err
	}
	// 清理 playerKey
	if len(res) > 0 {
		p := r.rdb.Pipeline()
		for _, id := range res {
			p.Del(ctx, playerKey(id))
		}
		_, _ = p.Exec(ctx)
	}
	return res, nil
}

func (r *redisRepo) Remove(ctx context.Context, playerID string) error {
	kv, err := r.rdb.Get(ctx, playerKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	// 解析 "game:tableSize"
	game, sizeStr, ok := strings.Cut(kv, ":")
	size, convErr := strconv.Atoi(sizeStr)
	if !ok || convErr != nil {
		_ = r.rdb.Del(ctx, playerKey(playerID)).Err()
		return nil
	}

	poolK := poolKey(game, size)
	playerK := playerKey(playerID)

	if err := removeScript.Run(ctx, r.rdb, []string{playerK, poolK}, playerID).Err(); err != nil {
		// Lua 不可用时回退到非原子实现
		p := r.rdb.Pipeline()
		p.SRem(ctx, poolK, playerID)
		p.Del(ctx, playerK)
		if _, execErr := p.Exec(ctx); execErr != nil {
			return execErr
		}
		// 再次确认集合是否空
		if n, _ := r.rdb.SCard(ctx, poolK).Result(); n == 0 {
			_ = r.rdb.Del(ctx, poolK).Err()
		}
	}

	return nil
}

func (r *redisRepo) SaveRoom(ctx context.Context, room *Room, ttlSeconds int) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	ttl := time.Duration(ttlSeconds) * time.Second
	p := r.rdb.Pipeline()
	p.Set(ctx, roomKey(room.ID), data, ttl)
	for _, id := range room.Players {
		p.Set(ctx, playerRoomKey(id), room.ID, ttl)
	}
	_, err = p.Exec(ctx)
	return err
}

// ReleasePlayers clears the player->room index once a game is over.
func (r *redisRepo) ReleasePlayers(ctx context.Context, playerIDs ...string) error {
	if len(playerIDs) == 0 {
		return nil
	}
	keys := make([]string, len(playerIDs))
	for i, id := range playerIDs {
		keys[i] = playerRoomKey(id)
	}
	return r.rdb.Del(ctx, keys...).Err()
}

func (r *redisRepo) Count(ctx context.Context, game string, tableSize int) (int64, error) {
	return r.rdb.SCard(ctx, poolKey(game, tableSize)).Result()
}

func (r *redisRepo) GetPlayerRoom(ctx context.Context, playerID string) (string, error) {
	val, err := r.rdb.Get(ctx, playerRoomKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}
