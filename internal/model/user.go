package model

import (
	"time"
)

type User struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Login     string    `gorm:"type:varchar(50);not null;uniqueIndex:uk_user_login" json:"login"`
	Role      string    `gorm:"type:varchar(16);not null;default:user" json:"role"` // user / admin
	Rating    int       `gorm:"not null;default:0" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
