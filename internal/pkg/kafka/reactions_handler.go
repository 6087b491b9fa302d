package kafka

import (
	"Agora/internal/model"
	"Agora/internal/repository"
	"Agora/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ReactionsHandler 消费 reactions 表的 binlog，失效其他实例写入的赞踩计数，并标记评分待巡检的作者
type ReactionsHandler struct {
	cache       service.CounterCache
	marker      DirtyMarker
	postRepo    repository.PostRepo
	commentRepo repository.CommentRepo
}

func NewReactionsHandler(cache service.CounterCache, marker DirtyMarker, postRepo repository.PostRepo, commentRepo repository.CommentRepo) *ReactionsHandler {
	return &ReactionsHandler{
		cache:       cache,
		marker:      marker,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
}

func (s *ReactionsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("reactions consumer setup")
	return nil
}

func (s *ReactionsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("reactions consumer cleanup")
	return nil
}

func (s *ReactionsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-reactions consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-reactions process batch error", "err", err)
		return err
	}
	return nil
}

func (s *ReactionsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "reactions")
	if err != nil {
		return err
	}
	return s.handle(ctx, canalMsg)
}

func (s *ReactionsHandler) handle(ctx context.Context, canalMsg *CanalMessage) error {
	var keys []string
	var authors []uint64
	for _, row := range canalMsg.Data {
		entityType := StrValue(row["entity_type"])
		entityID := StrToUint64(row["entity_id"])
		if entityID == 0 || (entityType != model.EntityTypePost && entityType != model.EntityTypeComment) {
			continue
		}
		likeKey, dislikeKey := service.ReactionCountKeys(entityType, entityID)
		keys = append(keys, likeKey, dislikeKey)

		authorID, err := s.entityAuthor(ctx, entityType, entityID)
		if err != nil {
			return err
		}
		if authorID != 0 {
			authors = append(authors, authorID)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.cache.Evict(ctx, keys...); err != nil {
		return err
	}
	if err := s.marker.MarkDirty(ctx, authors...); err != nil {
		return err
	}
	log.DebugContext(ctx, "reaction change applied", "type", canalMsg.Type, "keys", len(keys), "authors", authors)
	return nil
}

// entityAuthor 实体已被删除时返回 0，此时评分已在删除事务中修正
func (s *ReactionsHandler) entityAuthor(ctx context.Context, entityType string, entityID uint64) (uint64, error) {
	if entityType == model.EntityTypePost {
		post, err := s.postRepo.GetPost(ctx, entityID)
		if err != nil || post == nil {
			return 0, err
		}
		return post.AuthorID, nil
	}
	comment, err := s.commentRepo.GetCommentByID(ctx, entityID)
	if err != nil || comment == nil {
		return 0, err
	}
	return comment.AuthorID, nil
}
