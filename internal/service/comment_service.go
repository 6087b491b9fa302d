package service

import (
	"Agora/internal/api/dto"
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/util"
	"Agora/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
)

type CommentService interface {
	ListTopLevel(ctx context.Context, viewer Viewer, postID uint64, page, pageSize int) (*dto.PageDTO[*dto.CommentDTO], error)
	ListReplies(ctx context.Context, viewer Viewer, postID, parentID uint64, page, pageSize int) (*dto.PageDTO[*dto.CommentDTO], error)
	GetByID(ctx context.Context, viewer Viewer, commentID uint64) (*dto.CommentDTO, error)
	Add(ctx context.Context, viewer Viewer, postID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error)
	UpdateStatus(ctx context.Context, viewer Viewer, commentID uint64, fields map[string]any) (*dto.CommentDTO, error)
	Delete(ctx context.Context, viewer Viewer, commentID uint64) error
	Lock(ctx context.Context, viewer Viewer, postID, commentID uint64) error
	Unlock(ctx context.Context, viewer Viewer, postID, commentID uint64) error
}

type commentServiceImpl struct {
	commentRepo repository.CommentRepo
	postRepo    repository.PostRepo
	counter     *engagementCounter
}

func NewCommentService(commentRepo repository.CommentRepo, postRepo repository.PostRepo, reactionRepo repository.ReactionRepo, cache CounterCache) CommentService {
	return &commentServiceImpl{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		counter:     newEngagementCounter(cache, reactionRepo, commentRepo),
	}
}

// ListTopLevel 帖子下的一级评论
func (s *commentServiceImpl) ListTopLevel(ctx context.Context, viewer Viewer, postID uint64, page, pageSize int) (*dto.PageDTO[*dto.CommentDTO], error) {
	if _, err := s.visiblePost(ctx, viewer, postID); err != nil {
		return nil, err
	}
	return s.listByParent(ctx, viewer, postID, nil, page, pageSize)
}

// ListReplies 一级评论下的直接回复
func (s *commentServiceImpl) ListReplies(ctx context.Context, viewer Viewer, postID, parentID uint64, page, pageSize int) (*dto.PageDTO[*dto.CommentDTO], error) {
	if _, err := s.visiblePost(ctx, viewer, postID); err != nil {
		return nil, err
	}
	if _, err := s.visibleComment(ctx, viewer, postID, parentID); err != nil {
		return nil, err
	}
	return s.listByParent(ctx, viewer, postID, &parentID, page, pageSize)
}

func (s *commentServiceImpl) GetByID(ctx context.Context, viewer Viewer, commentID uint64) (*dto.CommentDTO, error) {
	comment, err := s.visibleComment(ctx, viewer, 0, commentID)
	if err != nil {
		return nil, err
	}
	if _, err = s.visiblePost(ctx, viewer, comment.PostID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return s.hydrateOne(ctx, viewer, comment)
}

// Add 发表评论或回复，回复只能挂在同一帖子的一级评论下
func (s *commentServiceImpl) Add(ctx context.Context, viewer Viewer, postID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	content := strings.TrimSpace(req.Content)
	if util.IsBlank(content) {
		return nil, ErrContentEmpty
	}
	if _, err := s.visiblePost(ctx, viewer, postID); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetCommentByID(ctx, *req.ParentID)
		if err != nil {
			log.ErrorContext(ctx, "get parent comment error", "err", err)
			return nil, UnExpectedError
		}
		if parent == nil || parent.PostID != postID || !parent.IsTopLevel() ||
			!CanView(viewer, parent.AuthorID, parent.Status) {
			return nil, ErrParentInvalid
		}
	}

	now := time.Now()
	comment := &model.Comment{
		PostID:      postID,
		AuthorID:    viewer.UserID,
		Content:     content,
		ParentID:    req.ParentID,
		Status:      consts.StatusActive,
		PublishDate: now,
		UpdatedAt:   now,
	}
	if err := s.commentRepo.CreateComment(ctx, comment); err != nil {
		log.ErrorContext(ctx, "create comment error", "err", err)
		return nil, UnExpectedError
	}
	s.counter.evict(ctx, CommentCountKeys(postID, req.ParentID)...)

	return s.hydrateOne(ctx, viewer, comment)
}

// UpdateStatus 通用更新入口，只接受 status 字段
func (s *commentServiceImpl) UpdateStatus(ctx context.Context, viewer Viewer, commentID uint64, fields map[string]any) (*dto.CommentDTO, error) {
	if viewer.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	comment, err := s.visibleComment(ctx, viewer, 0, commentID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	if err = CheckCommentFields(names); err != nil {
		return nil, err
	}
	raw, ok := fields[FieldStatus]
	if !ok {
		return nil, ErrParamInvalid
	}
	status, ok := raw.(string)
	if !ok || !ValidStatus(status) {
		return nil, ErrStatusInvalid
	}
	if err = AuthorizeCommentUpdate(viewer, comment.AuthorID, names); err != nil {
		return nil, err
	}

	if err = s.commentRepo.UpdateStatus(ctx, commentID, status); err != nil {
		log.ErrorContext(ctx, "update comment status error", "err", err)
		return nil, UnExpectedError
	}
	s.counter.evict(ctx, CommentCountKeys(comment.PostID, comment.ParentID)...)

	comment.Status = status
	comment.UpdatedAt = time.Now()
	return s.hydrateOne(ctx, viewer, comment)
}

// Delete 仅作者本人可以删除，回复与反应一并删除
func (s *commentServiceImpl) Delete(ctx context.Context, viewer Viewer, commentID uint64) error {
	if viewer.IsAnonymous() {
		return ErrUnauthenticated
	}
	comment, err := s.visibleComment(ctx, viewer, 0, commentID)
	if err != nil {
		return err
	}
	if err = AuthorizeDelete(viewer, comment.AuthorID); err != nil {
		return err
	}

	deleted, err := s.commentRepo.DeleteComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		log.ErrorContext(ctx, "delete comment error", "err", err)
		return UnExpectedError
	}

	s.counter.evict(ctx, CommentCountKeys(comment.PostID, comment.ParentID)...)
	s.counter.evictReactions(ctx, model.EntityTypeComment, deleted...)
	s.counter.evict(ctx, CommentCountKeys(comment.PostID, &commentID)...)
	return nil
}

func (s *commentServiceImpl) Lock(ctx context.Context, viewer Viewer, postID, commentID uint64) error {
	return s.setLocked(ctx, viewer, postID, commentID, true)
}

func (s *commentServiceImpl) Unlock(ctx context.Context, viewer Viewer, postID, commentID uint64) error {
	return s.setLocked(ctx, viewer, postID, commentID, false)
}

// setLocked 评论的锁定权限归属帖子作者
func (s *commentServiceImpl) setLocked(ctx context.Context, viewer Viewer, postID, commentID uint64, locked bool) error {
	if viewer.IsAnonymous() {
		return ErrUnauthenticated
	}
	post, err := s.visiblePost(ctx, viewer, postID)
	if err != nil {
		return err
	}
	if _, err = s.visibleComment(ctx, viewer, postID, commentID); err != nil {
		return err
	}
	if err = AuthorizeLock(viewer, post.AuthorID); err != nil {
		return err
	}
	if err = s.commentRepo.SetLocked(ctx, commentID, locked); err != nil {
		log.ErrorContext(ctx, "set comment locked error", "err", err, "locked", locked)
		return UnExpectedError
	}
	return nil
}

func (s *commentServiceImpl) listByParent(ctx context.Context, viewer Viewer, postID uint64, parentID *uint64, page, pageSize int) (*dto.PageDTO[*dto.CommentDTO], error) {
	page, pageSize, offset := util.NormalizePage(page, pageSize)
	vis := ListVisibility(viewer)

	total, err := s.commentRepo.CountByParent(ctx, postID, parentID, vis)
	if err != nil {
		log.ErrorContext(ctx, "count comments error", "err", err)
		return nil, UnExpectedError
	}
	var comments []*model.Comment
	if int64(offset) < total {
		comments, err = s.commentRepo.ListByParent(ctx, postID, parentID, vis, pageSize, offset)
		if err != nil {
			log.ErrorContext(ctx, "list comments error", "err", err)
			return nil, UnExpectedError
		}
	}

	items, err := s.hydrate(ctx, viewer, comments)
	if err != nil {
		return nil, err
	}
	return newPage(page, pageSize, total, items), nil
}

func (s *commentServiceImpl) hydrateOne(ctx context.Context, viewer Viewer, comment *model.Comment) (*dto.CommentDTO, error) {
	items, err := s.hydrate(ctx, viewer, []*model.Comment{comment})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// hydrate 批量填充回复数与赞踩数
func (s *commentServiceImpl) hydrate(ctx context.Context, viewer Viewer, comments []*model.Comment) ([]*dto.CommentDTO, error) {
	items := make([]*dto.CommentDTO, 0, len(comments))
	if len(comments) == 0 {
		return items, nil
	}
	ids := make([]uint64, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	replies, err := s.counter.replyCounts(ctx, ids, viewer.IsAdmin)
	if err != nil {
		log.ErrorContext(ctx, "count replies error", "err", err)
		return nil, UnExpectedError
	}
	reactions, err := s.counter.reactionCounts(ctx, model.EntityTypeComment, ids)
	if err != nil {
		log.ErrorContext(ctx, "count comment reactions error", "err", err)
		return nil, UnExpectedError
	}

	for _, c := range comments {
		item, err := toCommentDTO(c)
		if err != nil {
			log.ErrorContext(ctx, "copy comment error", "err", err)
			return nil, UnExpectedError
		}
		if c.IsTopLevel() {
			item.ReplyCount = replies[c.ID]
		}
		item.LikesCount = reactions[c.ID].Likes
		item.DislikesCount = reactions[c.ID].Dislikes
		items = append(items, item)
	}
	return items, nil
}

func (s *commentServiceImpl) visiblePost(ctx context.Context, viewer Viewer, postID uint64) (*model.Post, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		log.ErrorContext(ctx, "get post error", "err", err)
		return nil, UnExpectedError
	}
	if post == nil || !CanView(viewer, post.AuthorID, post.Status) {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// visibleComment postID 非 0 时还要求评论属于该帖子
func (s *commentServiceImpl) visibleComment(ctx context.Context, viewer Viewer, postID, commentID uint64) (*model.Comment, error) {
	comment, err := s.commentRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		log.ErrorContext(ctx, "get comment error", "err", err)
		return nil, UnExpectedError
	}
	if comment == nil || (postID != 0 && comment.PostID != postID) ||
		!CanView(viewer, comment.AuthorID, comment.Status) {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}
