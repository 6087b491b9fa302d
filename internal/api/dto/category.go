package dto

// CategoryCreateDTO 创建分类请求
type CategoryCreateDTO struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// CategoryUpdateDTO 更新分类请求
type CategoryUpdateDTO struct {
	Title       *string `json:"title" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// CategoryDTO 分类
type CategoryDTO struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
