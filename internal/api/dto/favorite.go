package dto

import "time"

// FavoritePostDTO 收藏列表项
type FavoritePostDTO struct {
	ID          uint64    `json:"id"`
	AuthorID    uint64    `json:"author_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	PublishDate time.Time `json:"publish_date"`
	FavoritedAt time.Time `json:"favorited_at"`
}
