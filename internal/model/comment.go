package model

import (
	"time"
)

type Comment struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	PostID      uint64    `gorm:"not null;index:idx_post_parent" json:"post_id"`
	AuthorID    uint64    `gorm:"not null;index:idx_comment_author" json:"author_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	ParentID    *uint64   `gorm:"index:idx_post_parent" json:"parent_id"` // nil 表示一级评论
	Status      string    `gorm:"type:varchar(16);not null;default:active" json:"status"`
	Locked      bool      `gorm:"not null;default:false" json:"locked"`
	PublishDate time.Time `gorm:"not null" json:"publish_date"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsTopLevel 是否为一级评论
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
