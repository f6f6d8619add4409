package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Publish 向频道发布消息
func Publish(ctx context.Context, channel string, payload []byte) error {
	return Rdb.Publish(ctx, channel, payload).Err()
}

// ZAddMember 向有序集合写入成员，已存在则更新分数
func ZAddMember(ctx context.Context, key string, score float64, member string) error {
	return Rdb.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

// ZRem 从有序集合移除成员
func ZRem(ctx context.Context, key string, member string) error {
	return Rdb.ZRem(ctx, key, member).Err()
}

// ZRangeByScoreMin 获取分数不小于 min 的成员
func ZRangeByScoreMin(ctx context.Context, key string, min string) ([]string, error) {
	value, err := Rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: min, Max: "+inf"}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// ZRemRangeByScoreMax 移除分数不大于 max 的成员，返回移除数量
func ZRemRangeByScoreMax(ctx context.Context, key string, max string) (int64, error) {
	return Rdb.ZRemRangeByScore(ctx, key, "-inf", max).Result()
}

// ScanKeys 按 pattern 遍历键空间
func ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := Rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// DeleteKey 删除一个键
func DeleteKey(ctx context.Context, key string) error {
	return Rdb.Del(ctx, key).Err()
}

// GetRdbClient 获取redis客户端
func GetRdbClient() *redis.Client {
	return Rdb
}
