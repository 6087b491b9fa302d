package service

import (
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/redis"
	"Agora/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"
)

// CounterCache 派生计数的读穿缓存，写操作提交后必须调用 Evict
type CounterCache interface {
	GetMany(ctx context.Context, keys []string) (map[string]int64, error)
	SetMany(ctx context.Context, values map[string]int64) error
	Evict(ctx context.Context, keys ...string) error
}

type redisCounterCache struct {
	ttl time.Duration
}

// NewRedisCounterCache 基于 Redis 的计数缓存
func NewRedisCounterCache(ttl time.Duration) CounterCache {
	return &redisCounterCache{ttl: ttl}
}

func (s *redisCounterCache) GetMany(ctx context.Context, keys []string) (map[string]int64, error) {
	return redis.MGetInt64(ctx, keys)
}

func (s *redisCounterCache) SetMany(ctx context.Context, values map[string]int64) error {
	return redis.MSetWithExpiration(ctx, values, s.ttl)
}

func (s *redisCounterCache) Evict(ctx context.Context, keys ...string) error {
	return redis.DeleteKey(ctx, keys...)
}

// delayedEvictCache 失效时立即删除一次，delay 后再删除一次。
// 并发读者可能在提交前查库、在第一次删除后回填旧值，第二次删除清掉这类回填。
type delayedEvictCache struct {
	CounterCache
	delay time.Duration
}

// NewDelayedEvictCache 为 inner 增加延迟二次删除，delay <= 0 时原样返回 inner
func NewDelayedEvictCache(inner CounterCache, delay time.Duration) CounterCache {
	if delay <= 0 {
		return inner
	}
	return &delayedEvictCache{CounterCache: inner, delay: delay}
}

func (s *delayedEvictCache) Evict(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.CounterCache.Evict(ctx, keys...)
	bg := context.WithoutCancel(ctx)
	time.AfterFunc(s.delay, func() {
		if err := s.CounterCache.Evict(bg, keys...); err != nil {
			log.WarnContext(bg, "delayed evict counter cache failed", "keys", keys, "err", err)
		}
	})
	return err
}

type noopCounterCache struct{}

// NewNoopCounterCache 关闭缓存时使用，所有计数直接查库
func NewNoopCounterCache() CounterCache {
	return noopCounterCache{}
}

func (noopCounterCache) GetMany(context.Context, []string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (noopCounterCache) SetMany(context.Context, map[string]int64) error { return nil }

func (noopCounterCache) Evict(context.Context, ...string) error { return nil }

func countKey(prefix string, id uint64) string {
	return prefix + strconv.FormatUint(id, 10)
}

// ReactionCountKeys 实体赞/踩计数的缓存键
func ReactionCountKeys(entityType string, id uint64) (string, string) {
	if entityType == model.EntityTypeComment {
		return countKey(consts.CommentLikeCountKey, id), countKey(consts.CommentDislikeCountKey, id)
	}
	return countKey(consts.PostLikeCountKey, id), countKey(consts.PostDislikeCountKey, id)
}

// CommentCountKeys 评论变化后需要失效的键：帖子评论数与父评论回复数
func CommentCountKeys(postID uint64, parentID *uint64) []string {
	keys := []string{countKey(consts.PostCommentCountKey, postID)}
	if parentID != nil {
		keys = append(keys, countKey(consts.CommentReplyCountKey, *parentID))
	}
	return keys
}

// engagementCounter 统一读取派生计数。赞踩数与访客身份无关可以缓存；
// 评论数与回复数只缓存 active 口径，管理员口径直接查库。
type engagementCounter struct {
	cache        CounterCache
	reactionRepo repository.ReactionRepo
	commentRepo  repository.CommentRepo
}

func newEngagementCounter(cache CounterCache, reactionRepo repository.ReactionRepo, commentRepo repository.CommentRepo) *engagementCounter {
	if cache == nil {
		cache = NewNoopCounterCache()
	}
	return &engagementCounter{cache: cache, reactionRepo: reactionRepo, commentRepo: commentRepo}
}

func (s *engagementCounter) reactionCounts(ctx context.Context, entityType string, ids []uint64) (map[uint64]repository.ReactionCount, error) {
	result := make(map[uint64]repository.ReactionCount, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, 0, len(ids)*2)
	for _, id := range ids {
		likeKey, dislikeKey := ReactionCountKeys(entityType, id)
		keys = append(keys, likeKey, dislikeKey)
	}
	cached := s.cachedValues(ctx, keys)

	var misses []uint64
	for _, id := range ids {
		likeKey, dislikeKey := ReactionCountKeys(entityType, id)
		likes, ok1 := cached[likeKey]
		dislikes, ok2 := cached[dislikeKey]
		if ok1 && ok2 {
			result[id] = repository.ReactionCount{EntityID: id, Likes: likes, Dislikes: dislikes}
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return result, nil
	}

	counts, err := s.reactionRepo.CountByEntities(ctx, entityType, misses)
	if err != nil {
		return nil, err
	}
	fill := make(map[string]int64, len(misses)*2)
	for _, id := range misses {
		c := counts[id]
		c.EntityID = id
		result[id] = c
		likeKey, dislikeKey := ReactionCountKeys(entityType, id)
		fill[likeKey] = c.Likes
		fill[dislikeKey] = c.Dislikes
	}
	s.fillCache(ctx, fill)
	return result, nil
}

func (s *engagementCounter) replyCounts(ctx context.Context, parentIDs []uint64, all bool) (map[uint64]int64, error) {
	if all {
		return s.commentRepo.CountReplies(ctx, parentIDs, false)
	}
	return s.readThrough(ctx, consts.CommentReplyCountKey, parentIDs, func(ids []uint64) (map[uint64]int64, error) {
		return s.commentRepo.CountReplies(ctx, ids, true)
	})
}

func (s *engagementCounter) commentCounts(ctx context.Context, postIDs []uint64, all bool) (map[uint64]int64, error) {
	if all {
		return s.commentRepo.CountByPosts(ctx, postIDs, false)
	}
	return s.readThrough(ctx, consts.PostCommentCountKey, postIDs, func(ids []uint64) (map[uint64]int64, error) {
		return s.commentRepo.CountByPosts(ctx, ids, true)
	})
}

func (s *engagementCounter) evict(ctx context.Context, keys ...string) {
	if err := s.cache.Evict(ctx, keys...); err != nil {
		log.WarnContext(ctx, "evict counter cache failed", "keys", keys, "err", err)
	}
}

func (s *engagementCounter) evictReactions(ctx context.Context, entityType string, ids ...uint64) {
	keys := make([]string, 0, len(ids)*2)
	for _, id := range ids {
		likeKey, dislikeKey := ReactionCountKeys(entityType, id)
		keys = append(keys, likeKey, dislikeKey)
	}
	s.evict(ctx, keys...)
}

func (s *engagementCounter) readThrough(ctx context.Context, prefix string, ids []uint64, load func([]uint64) (map[uint64]int64, error)) (map[uint64]int64, error) {
	result := make(map[uint64]int64, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = countKey(prefix, id)
	}
	cached := s.cachedValues(ctx, keys)

	var misses []uint64
	for i, id := range ids {
		if v, ok := cached[keys[i]]; ok {
			result[id] = v
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return result, nil
	}

	loaded, err := load(misses)
	if err != nil {
		return nil, err
	}
	fill := make(map[string]int64, len(misses))
	for _, id := range misses {
		result[id] = loaded[id]
		fill[countKey(prefix, id)] = loaded[id]
	}
	s.fillCache(ctx, fill)
	return result, nil
}

func (s *engagementCounter) cachedValues(ctx context.Context, keys []string) map[string]int64 {
	cached, err := s.cache.GetMany(ctx, keys)
	if err != nil {
		log.WarnContext(ctx, "read counter cache failed", "err", err)
		return map[string]int64{}
	}
	return cached
}

func (s *engagementCounter) fillCache(ctx context.Context, values map[string]int64) {
	if err := s.cache.SetMany(ctx, values); err != nil {
		log.WarnContext(ctx, "write counter cache failed", "err", err)
	}
}
