package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RankEntry 排名索引中的一条记录
type RankEntry struct {
	UserID uint
	Score  int
}

// RankIndex 实时名次查询，1 为第一名；同分时 id 小的在前
type RankIndex interface {
	Upsert(ctx context.Context, userID uint, score int) error
	Rank(ctx context.Context, userID uint, score int) (int, error)
	Rebuild(ctx context.Context, entries []RankEntry) error
}

const rankIndexKey = "leaderboard:xp"

// ErrNotIndexed 用户不在 Redis 索引中
var ErrNotIndexed = errors.New("user not present in rank index")

type RedisRankIndex struct {
	client *redis.Client
	key    string
}

func NewRedisRankIndex(client *redis.Client) *RedisRankIndex {
	return &RedisRankIndex{client: client, key: rankIndexKey}
}

// 成员名为 MaxUint32-id 的定长十进制串，ZREVRANK 遇到同分按成员名倒序，即 id 升序
func rankMember(userID uint) string {
	return fmt.Sprintf("%010d", uint64(math.MaxUint32)-uint64(userID))
}

func memberUserID(member string) (uint, error) {
	v, err := strconv.ParseUint(member, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(uint64(math.MaxUint32) - v), nil
}

func (i *RedisRankIndex) Upsert(ctx context.Context, userID uint, score int) error {
	return i.client.ZAdd(ctx, i.key, redis.Z{Score: float64(score), Member: rankMember(userID)}).Err()
}

func (i *RedisRankIndex) Rank(ctx context.Context, userID uint, _ int) (int, error) {
	pos, err := i.client.ZRevRank(ctx, i.key, rankMember(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotIndexed
	}
	if err != nil {
		return 0, err
	}
	return int(pos) + 1, nil
}

// Rebuild 写入临时 key 后原子替换
func (i *RedisRankIndex) Rebuild(ctx context.Context, entries []RankEntry) error {
	if len(entries) == 0 {
		return i.client.Del(ctx, i.key).Err()
	}

	tmp := i.key + ":rebuild"
	members := make([]redis.Z, 0, len(entries))
	for _, e := range entries {
		members = append(members, redis.Z{Score: float64(e.Score), Member: rankMember(e.UserID)})
	}

	_, err := i.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, tmp)
		for start := 0; start < len(members); start += 1000 {
			end := min(start+1000, len(members))
			pipe.ZAdd(ctx, tmp, members[start:end]...)
		}
		pipe.Rename(ctx, tmp, i.key)
		return nil
	})
	return err
}

// Top 前 n 名的用户 id
func (i *RedisRankIndex) Top(ctx context.Context, n int) ([]uint, error) {
	members, err := i.client.ZRevRange(ctx, i.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := memberUserID(m)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DBRankIndex 没有 Redis 时直接查 users 表
type DBRankIndex struct {
	users *UserRepository
}

func NewDBRankIndex(users *UserRepository) *DBRankIndex {
	return &DBRankIndex{users: users}
}

func (i *DBRankIndex) Upsert(context.Context, uint, int) error {
	return nil
}

func (i *DBRankIndex) Rank(ctx context.Context, userID uint, score int) (int, error) {
	ahead, err := i.users.WithTx(i.users.DB.WithContext(ctx)).CountAhead(userID, score)
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}

func (i *DBRankIndex) Rebuild(context.Context, []RankEntry) error {
	return nil
}

// FallbackRankIndex Redis 查询失败或未命中时回退到数据库
type FallbackRankIndex struct {
	primary  RankIndex
	fallback RankIndex
}

func NewFallbackRankIndex(primary, fallback RankIndex) *FallbackRankIndex {
	return &FallbackRankIndex{primary: primary, fallback: fallback}
}

func (i *FallbackRankIndex) Upsert(ctx context.Context, userID uint, score int) error {
	return i.primary.Upsert(ctx, userID, score)
}

func (i *FallbackRankIndex) Rank(ctx context.Context, userID uint, score int) (int, error) {
	rank, err := i.primary.Rank(ctx, userID, score)
	if err == nil {
		return rank, nil
	}
	return i.fallback.Rank(ctx, userID, score)
}

func (i *FallbackRankIndex) Rebuild(ctx context.Context, entries []RankEntry) error {
	return i.primary.Rebuild(ctx, entries)
}
