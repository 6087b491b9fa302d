package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/jinzhu/copier"
)

type ReactionService interface {
	React(ctx context.Context, viewer Viewer, entityType string, entityID uint64, reactionType string) (*dto.ReactionResultDTO, error)
	Remove(ctx context.Context, viewer Viewer, entityType string, entityID uint64) error
	ListForEntity(ctx context.Context, viewer Viewer, entityType string, entityID uint64) ([]*dto.ReactionDTO, error)
	Summary(ctx context.Context, viewer Viewer, entityType string, entityID uint64) (*dto.ReactionSummaryDTO, error)
}

type reactionServiceImpl struct {
	reactionRepo repository.ReactionRepo
	postRepo     repository.PostRepo
	commentRepo  repository.CommentRepo
	counter      *engagementCounter
}

func NewReactionService(reactionRepo repository.ReactionRepo, postRepo repository.PostRepo, commentRepo repository.CommentRepo, cache CounterCache) ReactionService {
	return &reactionServiceImpl{
		reactionRepo: reactionRepo,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		counter:      newEngagementCounter(cache, reactionRepo, commentRepo),
	}
}

// React 点赞/点踩。已有相反反应时切换，已有相同反应时返回冲突
func (s *reactionServiceImpl) React(ctx context.Context, viewer Viewer, entityType string, entityID uint64, reactionType string) (*dto.ReactionResultDTO, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	entityType, err := normalizeEntityType(entityType)
	if err != nil {
		return nil, err
	}
	reactionType, err = normalizeReactionType(reactionType)
	if err != nil {
		return nil, err
	}
	targetUserID, err := s.resolveTarget(ctx, viewer, entityType, entityID)
	if err != nil {
		return nil, err
	}

	existing, err := s.reactionRepo.GetByAuthorAndEntity(ctx, viewer.UserID, entityType, entityID)
	if err != nil {
		log.ErrorContext(ctx, "get reaction error", "err", err)
		return nil, UnExpectedError
	}

	result := &dto.ReactionResultDTO{EntityType: entityType, EntityID: entityID, Type: reactionType}
	switch {
	case existing == nil:
		reaction := &model.Reaction{
			EntityType:  entityType,
			EntityID:    entityID,
			AuthorID:    viewer.UserID,
			Type:        reactionType,
			PublishDate: time.Now(),
		}
		if err = s.reactionRepo.CreateWithRating(ctx, reaction, targetUserID); err != nil {
			if isDuplicateError(err) {
				return nil, ErrReactionExists
			}
			if errors.Is(err, repository.ErrRatingTargetMissing) {
				log.WarnContext(ctx, "reaction target author missing", "entity_type", entityType, "entity_id", entityID, "author_id", targetUserID)
				return nil, ErrUserNotFound
			}
			log.ErrorContext(ctx, "create reaction error", "err", err)
			return nil, UnExpectedError
		}
	case existing.Type == reactionType:
		return nil, ErrReactionExists
	default:
		if err = s.reactionRepo.SwitchWithRating(ctx, existing, reactionType, targetUserID); err != nil {
			if errors.Is(err, repository.ErrStaleReaction) {
				return nil, ErrReactionExists
			}
			if errors.Is(err, repository.ErrRatingTargetMissing) {
				log.WarnContext(ctx, "reaction target author missing", "entity_type", entityType, "entity_id", entityID, "author_id", targetUserID)
				return nil, ErrUserNotFound
			}
			log.ErrorContext(ctx, "switch reaction error", "err", err)
			return nil, UnExpectedError
		}
		result.Switched = true
	}

	s.counter.evictReactions(ctx, entityType, entityID)
	return result, nil
}

// Remove 取消反应并撤销评分
func (s *reactionServiceImpl) Remove(ctx context.Context, viewer Viewer, entityType string, entityID uint64) error {
	if viewer.IsAnonymous() {
		return ErrUnauthenticated
	}
	entityType, err := normalizeEntityType(entityType)
	if err != nil {
		return err
	}

	existing, err := s.reactionRepo.GetByAuthorAndEntity(ctx, viewer.UserID, entityType, entityID)
	if err != nil {
		log.ErrorContext(ctx, "get reaction error", "err", err)
		return UnExpectedError
	}
	if existing == nil {
		return ErrReactionNotFound
	}
	targetUserID, err := s.authorOf(ctx, entityType, entityID)
	if err != nil {
		return err
	}

	if err = s.reactionRepo.DeleteWithRating(ctx, existing, targetUserID); err != nil {
		if errors.Is(err, repository.ErrStaleReaction) {
			return ErrReactionNotFound
		}
		if errors.Is(err, repository.ErrRatingTargetMissing) {
			log.WarnContext(ctx, "reaction target author missing", "entity_type", entityType, "entity_id", entityID, "author_id", targetUserID)
			return ErrUserNotFound
		}
		log.ErrorContext(ctx, "delete reaction error", "err", err)
		return UnExpectedError
	}

	s.counter.evictReactions(ctx, entityType, entityID)
	return nil
}

func (s *reactionServiceImpl) ListForEntity(ctx context.Context, viewer Viewer, entityType string, entityID uint64) ([]*dto.ReactionDTO, error) {
	entityType, err := normalizeEntityType(entityType)
	if err != nil {
		return nil, err
	}
	if _, err = s.resolveTarget(ctx, viewer, entityType, entityID); err != nil {
		return nil, err
	}

	reactions, err := s.reactionRepo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		log.ErrorContext(ctx, "list reactions error", "err", err)
		return nil, UnExpectedError
	}
	reactionDTOs := make([]*dto.ReactionDTO, 0, len(reactions))
	if err = copier.Copy(&reactionDTOs, &reactions); err != nil {
		log.ErrorContext(ctx, "copy reactions error", "err", err)
		return nil, UnExpectedError
	}
	return reactionDTOs, nil
}

// Summary 赞踩数与当前用户的反应
func (s *reactionServiceImpl) Summary(ctx context.Context, viewer Viewer, entityType string, entityID uint64) (*dto.ReactionSummaryDTO, error) {
	reactionDTOs, err := s.ListForEntity(ctx, viewer, entityType, entityID)
	if err != nil {
		return nil, err
	}
	entityType, _ = normalizeEntityType(entityType)

	summary := &dto.ReactionSummaryDTO{
		EntityType: entityType,
		EntityID:   entityID,
		Reactions:  reactionDTOs,
	}
	for _, r := range reactionDTOs {
		if r.Type == model.ReactionLike {
			summary.Likes++
		} else {
			summary.Dislikes++
		}
		if viewer.IsAuthor(r.AuthorID) {
			summary.MyReaction = r.Type
		}
	}
	return summary, nil
}

// resolveTarget 校验实体存在且对当前用户可见，返回实体作者
func (s *reactionServiceImpl) resolveTarget(ctx context.Context, viewer Viewer, entityType string, entityID uint64) (uint64, error) {
	if entityType == model.EntityTypePost {
		post, err := s.postRepo.GetPost(ctx, entityID)
		if err != nil {
			log.ErrorContext(ctx, "get post error", "err", err)
			return 0, UnExpectedError
		}
		if post == nil || !CanView(viewer, post.AuthorID, post.Status) {
			return 0, ErrPostNotFound
		}
		return post.AuthorID, nil
	}

	comment, err := s.commentRepo.GetCommentByID(ctx, entityID)
	if err != nil {
		log.ErrorContext(ctx, "get comment error", "err", err)
		return 0, UnExpectedError
	}
	if comment == nil || !CanView(viewer, comment.AuthorID, comment.Status) {
		return 0, ErrCommentNotFound
	}
	post, err := s.postRepo.GetPost(ctx, comment.PostID)
	if err != nil {
		log.ErrorContext(ctx, "get post error", "err", err)
		return 0, UnExpectedError
	}
	if post == nil || !CanView(viewer, post.AuthorID, post.Status) {
		return 0, ErrCommentNotFound
	}
	return comment.AuthorID, nil
}

// authorOf 取消反应时不要求实体仍可见，只需要找到评分的归属
func (s *reactionServiceImpl) authorOf(ctx context.Context, entityType string, entityID uint64) (uint64, error) {
	if entityType == model.EntityTypePost {
		post, err := s.postRepo.GetPost(ctx, entityID)
		if err != nil {
			log.ErrorContext(ctx, "get post error", "err", err)
			return 0, UnExpectedError
		}
		if post == nil {
			return 0, ErrPostNotFound
		}
		return post.AuthorID, nil
	}
	comment, err := s.commentRepo.GetCommentByID(ctx, entityID)
	if err != nil {
		log.ErrorContext(ctx, "get comment error", "err", err)
		return 0, UnExpectedError
	}
	if comment == nil {
		return 0, ErrCommentNotFound
	}
	return comment.AuthorID, nil
}
