package dto

import "time"

// CommentCreateDTO 创建评论请求
type CommentCreateDTO struct {
	Content  string  `json:"content" binding:"required,max=5000"`
	ParentID *uint64 `json:"parent_id"`
}

// CommentDTO 评论返回详情
type CommentDTO struct {
	ID            uint64    `json:"id"`
	PostID        uint64    `json:"post_id"`
	AuthorID      uint64    `json:"author_id"`
	Content       string    `json:"content"`
	ParentID      *uint64   `json:"parent_id"`
	Status        string    `json:"status"`
	Locked        bool      `json:"locked"`
	PublishDate   time.Time `json:"publish_date"`
	UpdatedAt     time.Time `json:"updated_at"`
	ReplyCount    int64     `json:"reply_count"`
	LikesCount    int64     `json:"likes_count"`
	DislikesCount int64     `json:"dislikes_count"`
}
