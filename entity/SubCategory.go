package entity

import (
	"gorm.io/gorm"
)

// SubCategory คือเมนูหนึ่งรายการ (ชื่อ + ราคา + รูป) ใต้ Category
type SubCategory struct {
	gorm.Model
	Name      string `json:"name"`
	Price     int64  `json:"price"` // หน่วยย่อย (สตางค์/เซนต์)
	ImagePath string `json:"imagePath"`

	CategoryID uint     `json:"categoryId"`
	Category   Category `json:"-"`

	// denormalize restaurant_id ไว้เช็คสิทธิ์/สโคปโดยไม่ต้อง join
	RestaurantID uint `gorm:"index" json:"restaurantId"`
}
