package model

type Category struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"type:varchar(100);not null;uniqueIndex:uk_category_title" json:"title"`
	Description string `gorm:"type:text" json:"description"`
}

func (Category) TableName() string {
	return "categories"
}
