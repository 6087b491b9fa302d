package kafka

import (
	"Agora/internal/model"
	"Agora/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// CommentsHandler 消费 comments 表的 binlog，失效评论数与回复数缓存
type CommentsHandler struct {
	cache  service.CounterCache
	marker DirtyMarker
}

func NewCommentsHandler(cache service.CounterCache, marker DirtyMarker) *CommentsHandler {
	return &CommentsHandler{
		cache:  cache,
		marker: marker,
	}
}

func (s *CommentsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("comments consumer setup")
	return nil
}

func (s *CommentsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("comments consumer cleanup")
	return nil
}

func (s *CommentsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-comments consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-comments process batch error", "err", err)
		return err
	}
	return nil
}

func (s *CommentsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "comments")
	if err != nil {
		return err
	}
	return s.handle(ctx, canalMsg)
}

func (s *CommentsHandler) handle(ctx context.Context, canalMsg *CanalMessage) error {
	var keys []string
	var authors []uint64
	for i, row := range canalMsg.Data {
		if canalMsg.Type == UPDATE && !s.countsChanged(canalMsg, i) {
			continue
		}
		postID := StrToUint64(row["post_id"])
		if postID == 0 {
			continue
		}
		var parentID *uint64
		if pid := StrToUint64(row["parent_id"]); pid != 0 {
			parentID = &pid
		}
		keys = append(keys, service.CommentCountKeys(postID, parentID)...)

		if canalMsg.Type == DELETE {
			id := StrToUint64(row["id"])
			likeKey, dislikeKey := service.ReactionCountKeys(model.EntityTypeComment, id)
			keys = append(keys, likeKey, dislikeKey)
			keys = append(keys, service.CommentCountKeys(postID, &id)...)
			authors = append(authors, StrToUint64(row["author_id"]))
		}
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.cache.Evict(ctx, keys...); err != nil {
		return err
	}
	if len(authors) > 0 {
		if err := s.marker.MarkDirty(ctx, authors...); err != nil {
			return err
		}
	}
	log.DebugContext(ctx, "comment change applied", "type", canalMsg.Type, "keys", len(keys))
	return nil
}

// countsChanged 只有 status 变化会影响 active 口径的计数
func (s *CommentsHandler) countsChanged(msg *CanalMessage, i int) bool {
	if i >= len(msg.Old) {
		return false
	}
	_, ok := msg.Old[i]["status"]
	return ok
}
