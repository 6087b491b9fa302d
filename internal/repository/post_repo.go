package repository

import (
	"Agora/internal/model"
	"Agora/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// PostQuery 帖子列表查询条件
type PostQuery struct {
	Visibility  Visibility
	Status      string // 仅在 Visibility.All 时生效
	CategoryIDs []uint64
	DateFrom    *time.Time
	DateTo      *time.Time
	AuthorID    uint64
	SortBy      string
	SortOrder   string
	Limit       int
	Offset      int
}

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post, categoryIDs []uint64) error
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error)
	UpdatePost(ctx context.Context, id uint64, updates map[string]any, categoryIDs *[]uint64) error
	SetLocked(ctx context.Context, id uint64, locked bool) error
	DeletePost(ctx context.Context, id uint64) error
	ListPosts(ctx context.Context, q *PostQuery) ([]*model.Post, int64, error)
	GetCategoryIDs(ctx context.Context, postIDs []uint64) (map[uint64][]uint64, error)
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

func (s *PostRepoImpl) CreatePost(ctx context.Context, post *model.Post, categoryIDs []uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return insertPostCategories(tx, post.ID, categoryIDs)
	})
}

func (s *PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Take(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostRepoImpl) GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error) {
	var posts []*model.Post
	if len(ids) == 0 {
		return posts, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error
	return posts, err
}

// UpdatePost 更新字段，categoryIDs 非 nil 时整体替换分类关联
func (s *PostRepoImpl) UpdatePost(ctx context.Context, id uint64, updates map[string]any, categoryIDs *[]uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := make(map[string]any, len(updates)+1)
		for k, v := range updates {
			fields[k] = v
		}
		fields["updated_at"] = time.Now()
		if err := tx.Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}

		if categoryIDs == nil {
			return nil
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostCategory{}).Error; err != nil {
			return err
		}
		return insertPostCategories(tx, id, *categoryIDs)
	})
}

func (s *PostRepoImpl) SetLocked(ctx context.Context, id uint64, locked bool) error {
	return s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Updates(map[string]any{"locked_by_author": locked, "updated_at": time.Now()}).Error
}

// DeletePost 级联删除评论、反应（撤销评分）、收藏、分类关联
func (s *PostRepoImpl) DeletePost(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Select("id", "author_id").Take(&post, id).Error; err != nil {
			return err
		}

		var comments []model.Comment
		if err := tx.Select("id", "author_id").Where("post_id = ?", id).Find(&comments).Error; err != nil {
			return err
		}
		commentAuthors := make(map[uint64]uint64, len(comments))
		for _, c := range comments {
			commentAuthors[c.ID] = c.AuthorID
		}

		if err := purgeReactions(tx, model.EntityTypeComment, commentAuthors); err != nil {
			return err
		}
		if err := purgeReactions(tx, model.EntityTypePost, map[uint64]uint64{post.ID: post.AuthorID}); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Post{}, id).Error
	})
}

func (s *PostRepoImpl) ListPosts(ctx context.Context, q *PostQuery) ([]*model.Post, int64, error) {
	base := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&model.Post{})
		db = q.Visibility.Apply(db, "posts.status", "posts.author_id")
		if q.Visibility.All && q.Status != "" && q.Status != consts.StatusAll {
			db = db.Where("posts.status = ?", q.Status)
		}
		if len(q.CategoryIDs) > 0 {
			db = db.Where("EXISTS (SELECT 1 FROM post_categories pc WHERE pc.post_id = posts.id AND pc.category_id IN ?)", q.CategoryIDs)
		}
		if q.DateFrom != nil {
			db = db.Where("posts.publish_date >= ?", *q.DateFrom)
		}
		if q.DateTo != nil {
			db = db.Where("posts.publish_date <= ?", *q.DateTo)
		}
		if q.AuthorID != 0 {
			db = db.Where("posts.author_id = ?", q.AuthorID)
		}
		return db
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if int64(q.Offset) >= total {
		return nil, total, nil
	}

	dir := "DESC"
	if q.SortOrder == consts.SortAsc {
		dir = "ASC"
	}

	db := base()
	if q.AuthorID != 0 {
		db = db.Order("posts.locked_by_author DESC")
	}
	if q.SortBy == consts.SortByLikes {
		db = db.Select("posts.*, (SELECT COUNT(*) FROM reactions r WHERE r.entity_type = ? AND r.entity_id = posts.id AND r.type = ?) AS like_count",
			model.EntityTypePost, model.ReactionLike).
			Order("like_count " + dir)
	}

	var posts []*model.Post
	err := db.Order("posts.publish_date " + dir).
		Order("posts.id " + dir).
		Limit(q.Limit).Offset(q.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *PostRepoImpl) GetCategoryIDs(ctx context.Context, postIDs []uint64) (map[uint64][]uint64, error) {
	result := make(map[uint64][]uint64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}
	var links []model.PostCategory
	err := s.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("category_id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		result[l.PostID] = append(result[l.PostID], l.CategoryID)
	}
	return result, nil
}

func insertPostCategories(tx *gorm.DB, postID uint64, categoryIDs []uint64) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]model.PostCategory, 0, len(categoryIDs))
	for _, cid := range categoryIDs {
		links = append(links, model.PostCategory{PostID: postID, CategoryID: cid})
	}
	return tx.Create(&links).Error
}
