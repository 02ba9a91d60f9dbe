package entity

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `json:"-"` // ปลอดภัย
	Role     string `gorm:"not null;default:owner" json:"role"` // "admin" | "owner"

	// owner 1 คน = ร้าน 1 ร้าน — preload เฉพาะตอนจำเป็น
	Restaurant *Restaurant `gorm:"foreignKey:UserID" json:"-"`
}
