package kafka

import (
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/redis"
	"context"
)

// DirtyMarker 记录评分可能发生变化的用户，由评分巡检任务消费
type DirtyMarker interface {
	MarkDirty(ctx context.Context, userIDs ...uint64) error
}

type redisDirtyMarker struct{}

func NewRedisDirtyMarker() DirtyMarker {
	return redisDirtyMarker{}
}

func (redisDirtyMarker) MarkDirty(ctx context.Context, userIDs ...uint64) error {
	members := make([]interface{}, 0, len(userIDs))
	for _, id := range userIDs {
		if id != 0 {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		return nil
	}
	return redis.SAdd(ctx, consts.RatingDirtyKey, members...)
}
