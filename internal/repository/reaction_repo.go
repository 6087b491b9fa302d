package repository

import (
	"Agora/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// ReactionCount 单个实体的赞/踩数量
type ReactionCount struct {
	EntityID uint64
	Likes    int64
	Dislikes int64
}

type ReactionRepo interface {
	GetByAuthorAndEntity(ctx context.Context, authorID uint64, entityType string, entityID uint64) (*model.Reaction, error)
	CreateWithRating(ctx context.Context, reaction *model.Reaction, targetUserID uint64) error
	SwitchWithRating(ctx context.Context, reaction *model.Reaction, newType string, targetUserID uint64) error
	DeleteWithRating(ctx context.Context, reaction *model.Reaction, targetUserID uint64) error
	ListByEntity(ctx context.Context, entityType string, entityID uint64) ([]*model.Reaction, error)
	CountByEntities(ctx context.Context, entityType string, entityIDs []uint64) (map[uint64]ReactionCount, error)
	GetNetScoreByAuthor(ctx context.Context, authorID uint64) (int64, error)
}

type ReactionRepoImpl struct {
	db *gorm.DB
}

func NewReactionRepo(db *gorm.DB) ReactionRepo {
	return &ReactionRepoImpl{db}
}

func (s *ReactionRepoImpl) GetByAuthorAndEntity(ctx context.Context, authorID uint64, entityType string, entityID uint64) (*model.Reaction, error) {
	var reaction model.Reaction
	err := s.db.WithContext(ctx).
		Where("author_id = ? AND entity_type = ? AND entity_id = ?", authorID, entityType, entityID).
		Take(&reaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reaction, nil
}

// CreateWithRating 新增反应，并在同一事务中调整目标作者评分
func (s *ReactionRepoImpl) CreateWithRating(ctx context.Context, reaction *model.Reaction, targetUserID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reaction).Error; err != nil {
			return err
		}
		return adjustRating(tx, targetUserID, model.RatingDelta(reaction.Type))
	})
}

// SwitchWithRating 切换反应类型，评分一次性调整 ±2
func (s *ReactionRepoImpl) SwitchWithRating(ctx context.Context, reaction *model.Reaction, newType string, targetUserID uint64) error {
	oldType := reaction.Type
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Reaction{}).
			Where("id = ? AND type = ?", reaction.ID, oldType).
			Update("type", newType)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleReaction
		}
		return adjustRating(tx, targetUserID, model.RatingDelta(newType)-model.RatingDelta(oldType))
	})
	if err == nil {
		reaction.Type = newType
	}
	return err
}

// DeleteWithRating 删除反应并撤销其评分贡献
func (s *ReactionRepoImpl) DeleteWithRating(ctx context.Context, reaction *model.Reaction, targetUserID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND type = ?", reaction.ID, reaction.Type).Delete(&model.Reaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleReaction
		}
		return adjustRating(tx, targetUserID, -model.RatingDelta(reaction.Type))
	})
}

func (s *ReactionRepoImpl) ListByEntity(ctx context.Context, entityType string, entityID uint64) ([]*model.Reaction, error) {
	var reactions []*model.Reaction
	err := s.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("publish_date ASC, id ASC").
		Find(&reactions).Error
	return reactions, err
}

// CountByEntities 批量统计赞/踩数，没有反应的实体不出现在结果中
func (s *ReactionRepoImpl) CountByEntities(ctx context.Context, entityType string, entityIDs []uint64) (map[uint64]ReactionCount, error) {
	result := make(map[uint64]ReactionCount, len(entityIDs))
	if len(entityIDs) == 0 {
		return result, nil
	}
	var rows []ReactionCount
	err := s.db.WithContext(ctx).Model(&model.Reaction{}).
		Select("entity_id, "+
			"SUM(CASE WHEN type = ? THEN 1 ELSE 0 END) AS likes, "+
			"SUM(CASE WHEN type = ? THEN 1 ELSE 0 END) AS dislikes",
			model.ReactionLike, model.ReactionDislike).
		Where("entity_type = ? AND entity_id IN ?", entityType, entityIDs).
		Group("entity_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.EntityID] = row
	}
	return result, nil
}

// GetNetScoreByAuthor 按账本重新计算作者收到的 (赞 - 踩)
func (s *ReactionRepoImpl) GetNetScoreByAuthor(ctx context.Context, authorID uint64) (int64, error) {
	var net int64
	err := s.db.WithContext(ctx).Model(&model.Reaction{}).
		Select("COALESCE(SUM(CASE WHEN reactions.type = ? THEN 1 ELSE -1 END), 0)", model.ReactionLike).
		Joins("LEFT JOIN posts ON reactions.entity_type = ? AND posts.id = reactions.entity_id", model.EntityTypePost).
		Joins("LEFT JOIN comments ON reactions.entity_type = ? AND comments.id = reactions.entity_id", model.EntityTypeComment).
		Where("posts.author_id = ? OR comments.author_id = ?", authorID, authorID).
		Scan(&net).Error
	return net, err
}
