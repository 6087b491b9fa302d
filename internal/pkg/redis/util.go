package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetWithExpiration 设置键值对并设置过期时间
func SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return Rdb.Set(ctx, key, value, expiration).Err()
}

// GetInt64 获取整型值，键不存在时返回 redis.Nil
func GetInt64(ctx context.Context, key string) (int64, error) {
	return Rdb.Get(ctx, key).Int64()
}

// MGetInt64 批量获取整型值，未命中的键不出现在结果中
func MGetInt64(ctx context.Context, keys []string) (map[string]int64, error) {
	result := make(map[string]int64, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	pipe := Rdb.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	for i, cmd := range cmds {
		v, err := cmd.Int64()
		if err != nil {
			continue
		}
		result[keys[i]] = v
	}
	return result, nil
}

// MSetWithExpiration 批量写入并设置过期时间
func MSetWithExpiration(ctx context.Context, values map[string]int64, expiration time.Duration) error {
	if len(values) == 0 {
		return nil
	}
	pipe := Rdb.Pipeline()
	for key, v := range values {
		pipe.Set(ctx, key, v, expiration)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// SAdd 向集合添加成员
func SAdd(ctx context.Context, key string, members ...interface{}) error {
	if len(members) == 0 {
		return nil
	}
	return Rdb.SAdd(ctx, key, members...).Err()
}

// GetSet 获取集合
func GetSet(ctx context.Context, key string) ([]string, error) {
	return Rdb.SMembers(ctx, key).Result()
}

// Rename 重命名键，源键不存在时返回 false
func Rename(ctx context.Context, oldKey string, newKey string) (bool, error) {
	err := Rdb.Rename(ctx, oldKey, newKey).Err()
	if err != nil {
		if err.Error() == "ERR no such key" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteKey 删除一个或多个键
func DeleteKey(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return Rdb.Del(ctx, keys...).Err()
}
