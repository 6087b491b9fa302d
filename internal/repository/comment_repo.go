package repository

import (
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type CommentRepo interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id uint64) (*model.Comment, error)
	ListByParent(ctx context.Context, postID uint64, parentID *uint64, vis Visibility, limit, offset int) ([]*model.Comment, error)
	CountByParent(ctx context.Context, postID uint64, parentID *uint64, vis Visibility) (int64, error)
	CountReplies(ctx context.Context, parentIDs []uint64, onlyActive bool) (map[uint64]int64, error)
	CountByPosts(ctx context.Context, postIDs []uint64, onlyActive bool) (map[uint64]int64, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	SetLocked(ctx context.Context, id uint64, locked bool) error
	DeleteComment(ctx context.Context, id uint64) ([]uint64, error)
}

type CommentRepoImpl struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) CommentRepo {
	return &CommentRepoImpl{db}
}

func (s *CommentRepoImpl) CreateComment(ctx context.Context, comment *model.Comment) error {
	return s.db.WithContext(ctx).Create(comment).Error
}

func (s *CommentRepoImpl) GetCommentByID(ctx context.Context, id uint64) (*model.Comment, error) {
	var comment model.Comment
	err := s.db.WithContext(ctx).Take(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// ListByParent parentID 为 nil 时返回一级评论；锁定的评论排在最前
func (s *CommentRepoImpl) ListByParent(ctx context.Context, postID uint64, parentID *uint64, vis Visibility, limit, offset int) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := s.parentScope(ctx, postID, parentID, vis).
		Order("locked DESC, publish_date ASC, id ASC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (s *CommentRepoImpl) CountByParent(ctx context.Context, postID uint64, parentID *uint64, vis Visibility) (int64, error) {
	var count int64
	err := s.parentScope(ctx, postID, parentID, vis).Count(&count).Error
	return count, err
}

// CountReplies 统计每个父评论的直接回复数
func (s *CommentRepoImpl) CountReplies(ctx context.Context, parentIDs []uint64, onlyActive bool) (map[uint64]int64, error) {
	return s.groupCount(ctx, "parent_id", parentIDs, onlyActive)
}

// CountByPosts 统计每个帖子下的评论总数（含回复）
func (s *CommentRepoImpl) CountByPosts(ctx context.Context, postIDs []uint64, onlyActive bool) (map[uint64]int64, error) {
	return s.groupCount(ctx, "post_id", postIDs, onlyActive)
}

func (s *CommentRepoImpl) UpdateStatus(ctx context.Context, id uint64, status string) error {
	return s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
}

func (s *CommentRepoImpl) SetLocked(ctx context.Context, id uint64, locked bool) error {
	return s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{"locked": locked, "updated_at": time.Now()}).Error
}

// DeleteComment 删除评论及其回复，同时清理这些评论上的反应并撤销评分，返回被删除的评论 id
func (s *CommentRepoImpl) DeleteComment(ctx context.Context, id uint64) ([]uint64, error) {
	var deleted []uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comments []model.Comment
		err := tx.Select("id", "author_id").
			Where("id = ? OR parent_id = ?", id, id).
			Find(&comments).Error
		if err != nil {
			return err
		}
		if len(comments) == 0 {
			return gorm.ErrRecordNotFound
		}

		authors := make(map[uint64]uint64, len(comments))
		for _, c := range comments {
			authors[c.ID] = c.AuthorID
			deleted = append(deleted, c.ID)
		}
		if err = purgeReactions(tx, model.EntityTypeComment, authors); err != nil {
			return err
		}
		return tx.Where("id IN ?", deleted).Delete(&model.Comment{}).Error
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *CommentRepoImpl) parentScope(ctx context.Context, postID uint64, parentID *uint64, vis Visibility) *gorm.DB {
	db := s.db.WithContext(ctx).Model(&model.Comment{}).Where("post_id = ?", postID)
	if parentID == nil {
		db = db.Where("parent_id IS NULL")
	} else {
		db = db.Where("parent_id = ?", *parentID)
	}
	return vis.Apply(db, "status", "author_id")
}

func (s *CommentRepoImpl) groupCount(ctx context.Context, column string, ids []uint64, onlyActive bool) (map[uint64]int64, error) {
	result := make(map[uint64]int64, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	db := s.db.WithContext(ctx).Model(&model.Comment{}).
		Select(column+" AS id, COUNT(*) AS cnt").
		Where(column+" IN ?", ids)
	if onlyActive {
		db = db.Where("status = ?", consts.StatusActive)
	}
	var rows []struct {
		ID  uint64
		Cnt int64
	}
	if err := db.Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ID] = row.Cnt
	}
	return result, nil
}
