package model

type PostCategory struct {
	PostID     uint64 `gorm:"primaryKey" json:"post_id"`
	CategoryID uint64 `gorm:"primaryKey;index:idx_post_category" json:"category_id"`
}

func (PostCategory) TableName() string {
	return "post_categories"
}
