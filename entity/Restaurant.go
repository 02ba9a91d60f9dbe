package entity

import (
	"gorm.io/gorm"
)

const (
	MenuModeManual = "manual"
	MenuModePDF    = "pdf"
)

type Restaurant struct {
	gorm.Model
	Name string `json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"` // key สำหรับหน้าเมนู public (QR ชี้มาที่นี่)

	MenuMode string `gorm:"not null;default:manual" json:"menuMode"` // "manual" | "pdf"
	PdfPath  string `json:"pdfPath"`                                 // path ใต้ /uploads ถ้า mode = pdf
	IsActive bool   `gorm:"not null;default:true" json:"isActive"`

	UserID uint `json:"userId"` // owner (users.id)
	User   User `json:"-"`

	Categories []Category `json:"-"`
	Orders     []Order    `json:"-"`
}
