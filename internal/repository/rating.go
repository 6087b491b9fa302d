package repository

import (
	"Agora/internal/model"
	"errors"

	"gorm.io/gorm"
)

// ErrStaleReaction 条件更新/删除时反应已被并发修改
var ErrStaleReaction = errors.New("reaction changed concurrently")

// ErrRatingTargetMissing 被评分的作者不存在，调用方应回滚事务
var ErrRatingTargetMissing = errors.New("rating target user not found")

// adjustRating 原子地调整用户评分，必须在事务内调用
func adjustRating(tx *gorm.DB, userID uint64, delta int) error {
	if delta == 0 || userID == 0 {
		return nil
	}
	res := tx.Model(&model.User{}).
		Where("id = ?", userID).
		Update("rating", gorm.Expr("rating + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRatingTargetMissing
	}
	return nil
}

// purgeReactions 删除一批实体上的全部反应，并撤销它们对作者评分的贡献。
// authorOf 为实体 id 到作者 id 的映射。
func purgeReactions(tx *gorm.DB, entityType string, authorOf map[uint64]uint64) error {
	if len(authorOf) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(authorOf))
	for id := range authorOf {
		ids = append(ids, id)
	}

	var nets []struct {
		EntityID uint64
		Net      int
	}
	err := tx.Model(&model.Reaction{}).
		Select("entity_id, SUM(CASE WHEN type = ? THEN 1 ELSE -1 END) AS net", model.ReactionLike).
		Where("entity_type = ? AND entity_id IN ?", entityType, ids).
		Group("entity_id").
		Scan(&nets).Error
	if err != nil {
		return err
	}

	byAuthor := make(map[uint64]int)
	for _, n := range nets {
		byAuthor[authorOf[n.EntityID]] += n.Net
	}
	for authorID, net := range byAuthor {
		// 作者已不存在时没有评分可撤销，反应照常删除
		if err = adjustRating(tx, authorID, -net); err != nil && !errors.Is(err, ErrRatingTargetMissing) {
			return err
		}
	}

	return tx.Where("entity_type = ? AND entity_id IN ?", entityType, ids).
		Delete(&model.Reaction{}).Error
}
