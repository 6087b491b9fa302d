package repository

import (
	"Agora/internal/pkg/consts"

	"gorm.io/gorm"
)

// Visibility 列表查询的可见范围：All 为 true 时不过滤状态，
// 否则只返回 active 的记录以及 OwnerID 本人的记录
type Visibility struct {
	All     bool
	OwnerID uint64
}

// Apply 将可见范围转换为 where 条件
func (v Visibility) Apply(db *gorm.DB, statusCol, authorCol string) *gorm.DB {
	if v.All {
		return db
	}
	if v.OwnerID == 0 {
		return db.Where(statusCol+" = ?", consts.StatusActive)
	}
	return db.Where("("+statusCol+" = ? OR "+authorCol+" = ?)", consts.StatusActive, v.OwnerID)
}
