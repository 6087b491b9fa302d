package dto

import "time"

// PostCreateDTO 创建帖子请求
type PostCreateDTO struct {
	Title       string   `json:"title" binding:"required,max=255" validate:"required,max=255"`
	Content     string   `json:"content" binding:"required" validate:"required"`
	CategoryIDs []uint64 `json:"categories" binding:"omitempty,max=20,dive,gt=0" validate:"omitempty,max=20,dive,gt=0"`
}

// PostUpdateDTO 更新帖子请求，nil 字段表示不修改
type PostUpdateDTO struct {
	Title       *string   `json:"title" binding:"omitempty,max=255"`
	Content     *string   `json:"content"`
	CategoryIDs *[]uint64 `json:"categories" binding:"omitempty,max=20,dive,gt=0"`
	Status      *string   `json:"status"`
}

// PostListQuery 帖子列表查询参数
type PostListQuery struct {
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
	SortBy      string     `form:"sort_by" binding:"omitempty,oneof=date likes"`
	SortOrder   string     `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Categories  string     `form:"categories"` // 逗号分隔的分类 id
	CategoryIDs []uint64   `form:"-"`
	DateFrom    *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo      *time.Time `form:"date_to" time_format:"2006-01-02"`
	Status      string     `form:"status"` // 仅管理员生效，由服务层校验
	AuthorID    uint64     `form:"author_id"`
}

// PostDTO 帖子详情
type PostDTO struct {
	ID             uint64    `json:"id"`
	AuthorID       uint64    `json:"author_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Status         string    `json:"status"`
	LockedByAuthor bool      `json:"locked_by_author"`
	PublishDate    time.Time `json:"publish_date"`
	UpdatedAt      time.Time `json:"updated_at"`
	CategoryIDs    []uint64  `json:"category_ids"`
	LikesCount     int64     `json:"likes_count"`
	DislikesCount  int64     `json:"dislikes_count"`
	CommentsCount  int64     `json:"comments_count"`
	IsFavorite     bool      `json:"is_favorite"`
}
