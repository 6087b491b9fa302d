package database

import (
	"Agora/internal/model"
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate 同步所有业务表结构
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Post{},
		&model.PostCategory{},
		&model.Comment{},
		&model.Reaction{},
		&model.Favorite{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
