package repository

import (
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"context"
	"time"

	"gorm.io/gorm"
)

// FavoritedPost 收藏列表中的帖子及收藏时间
type FavoritedPost struct {
	model.Post
	FavoritedAt time.Time
}

type FavoriteRepo interface {
	CreateFavorite(ctx context.Context, favorite *model.Favorite) error
	DeleteFavorite(ctx context.Context, userID, postID uint64) (bool, error)
	CheckFavoriteExists(ctx context.Context, userID, postID uint64) (bool, error)
	GetFavoritedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]bool, error)
	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*FavoritedPost, int64, error)
}

type FavoriteRepoImpl struct {
	db *gorm.DB
}

func NewFavoriteRepo(db *gorm.DB) FavoriteRepo {
	return &FavoriteRepoImpl{db}
}

func (s *FavoriteRepoImpl) CreateFavorite(ctx context.Context, favorite *model.Favorite) error {
	return s.db.WithContext(ctx).Create(favorite).Error
}

func (s *FavoriteRepoImpl) DeleteFavorite(ctx context.Context, userID, postID uint64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Favorite{})
	return res.RowsAffected > 0, res.Error
}

func (s *FavoriteRepoImpl) CheckFavoriteExists(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// GetFavoritedPostIDs 一次查询判断多个帖子是否被收藏，每个输入 id 都会出现在结果中
func (s *FavoriteRepoImpl) GetFavoritedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]bool, error) {
	result := make(map[uint64]bool, len(postIDs))
	for _, id := range postIDs {
		result[id] = false
	}
	if userID == 0 || len(postIDs) == 0 {
		return result, nil
	}
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// ListByUser 只返回用户仍然可见的帖子（active 或本人发布），按收藏时间倒序
func (s *FavoriteRepoImpl) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]*FavoritedPost, int64, error) {
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Table("favorites").
			Joins("JOIN posts ON posts.id = favorites.post_id").
			Where("favorites.user_id = ?", userID).
			Where("(posts.status = ? OR posts.author_id = ?)", consts.StatusActive, userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*FavoritedPost
	err := base().
		Select("posts.*, favorites.created_at AS favorited_at").
		Order("favorites.created_at DESC, favorites.post_id DESC").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
