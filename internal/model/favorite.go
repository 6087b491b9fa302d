package model

import (
	"time"
)

type Favorite struct {
	UserID    uint64    `gorm:"primaryKey" json:"user_id"`
	PostID    uint64    `gorm:"primaryKey;index:idx_favorite_post" json:"post_id"`
	CreatedAt time.Time `gorm:"not null;index:idx_favorite_created" json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}
