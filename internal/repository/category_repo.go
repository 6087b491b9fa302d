package repository

import (
	"Agora/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type CategoryRepo interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, id uint64) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	ListByPost(ctx context.Context, postID uint64) ([]*model.Category, error)
	CountExisting(ctx context.Context, ids []uint64) (int64, error)
	UpdateCategory(ctx context.Context, id uint64, updates map[string]any) error
	DeleteCategory(ctx context.Context, id uint64) error
}

type CategoryRepoImpl struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepo {
	return &CategoryRepoImpl{db}
}

func (s *CategoryRepoImpl) CreateCategory(ctx context.Context, category *model.Category) error {
	return s.db.WithContext(ctx).Create(category).Error
}

func (s *CategoryRepoImpl) GetCategory(ctx context.Context, id uint64) (*model.Category, error) {
	var category model.Category
	err := s.db.WithContext(ctx).Take(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (s *CategoryRepoImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := s.db.WithContext(ctx).Order("title ASC").Find(&categories).Error
	return categories, err
}

func (s *CategoryRepoImpl) ListByPost(ctx context.Context, postID uint64) ([]*model.Category, error) {
	var categories []*model.Category
	err := s.db.WithContext(ctx).
		Joins("JOIN post_categories pc ON pc.category_id = categories.id").
		Where("pc.post_id = ?", postID).
		Order("categories.id ASC").
		Find(&categories).Error
	return categories, err
}

// CountExisting 统计给定 id 中实际存在的分类数
func (s *CategoryRepoImpl) CountExisting(ctx context.Context, ids []uint64) (int64, error) {
	var count int64
	if len(ids) == 0 {
		return 0, nil
	}
	err := s.db.WithContext(ctx).Model(&model.Category{}).
		Where("id IN ?", ids).
		Count(&count).Error
	return count, err
}

func (s *CategoryRepoImpl) UpdateCategory(ctx context.Context, id uint64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteCategory 删除分类并级联删除帖子关联
func (s *CategoryRepoImpl) DeleteCategory(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&model.PostCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Category{}, id).Error
	})
}
