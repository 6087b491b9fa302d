package dto

import "time"

// ReactionReq 点赞/点踩请求
type ReactionReq struct {
	Type string `json:"type" binding:"omitempty,oneof=like dislike"`
}

// ReactionResultDTO 反应操作结果
type ReactionResultDTO struct {
	EntityType string `json:"entity_type"`
	EntityID   uint64 `json:"entity_id"`
	Type       string `json:"type"`
	Switched   bool   `json:"switched"`
}

// ReactionDTO 单条反应
type ReactionDTO struct {
	ID          uint64    `json:"id"`
	EntityType  string    `json:"entity_type"`
	EntityID    uint64    `json:"entity_id"`
	AuthorID    uint64    `json:"author_id"`
	Type        string    `json:"type"`
	PublishDate time.Time `json:"publish_date"`
}

// ReactionSummaryDTO 实体的反应汇总
type ReactionSummaryDTO struct {
	EntityType string         `json:"entity_type"`
	EntityID   uint64         `json:"entity_id"`
	Likes      int64          `json:"likes"`
	Dislikes   int64          `json:"dislikes"`
	MyReaction string         `json:"my_reaction"`
	Reactions  []*ReactionDTO `json:"reactions"`
}
