package model

import (
	"time"
)

type Post struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	AuthorID       uint64    `gorm:"not null;index:idx_post_author" json:"author_id"`
	Title          string    `gorm:"type:varchar(255);not null" json:"title"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Status         string    `gorm:"type:varchar(16);not null;default:active;index:idx_status_publish" json:"status"` // active / inactive
	LockedByAuthor bool      `gorm:"not null;default:false" json:"locked_by_author"`
	PublishDate    time.Time `gorm:"not null;index:idx_status_publish" json:"publish_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}
