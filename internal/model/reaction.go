package model

import (
	"time"
)

const (
	EntityTypePost    = "post"
	EntityTypeComment = "comment"

	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// Reaction 每个 (author_id, entity_type, entity_id) 只允许一条记录
type Reaction struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	EntityType  string    `gorm:"type:varchar(16);not null;uniqueIndex:uk_author_entity,priority:2;index:idx_entity,priority:1" json:"entity_type"`
	EntityID    uint64    `gorm:"not null;uniqueIndex:uk_author_entity,priority:3;index:idx_entity,priority:2" json:"entity_id"`
	AuthorID    uint64    `gorm:"not null;uniqueIndex:uk_author_entity,priority:1" json:"author_id"`
	Type        string    `gorm:"type:varchar(16);not null" json:"type"`
	PublishDate time.Time `gorm:"not null" json:"publish_date"`
}

func (Reaction) TableName() string {
	return "reactions"
}

// RatingDelta 该反应对目标作者评分的贡献
func RatingDelta(reactionType string) int {
	if reactionType == ReactionDislike {
		return -1
	}
	return 1
}
