package entity

import (
	"gorm.io/gorm"
)

type Order struct {
	gorm.Model
	TableNumber string `gorm:"not null" json:"tableNumber"`
	Note        string `json:"note"`

	// ยอดรวม = sum(unit_price * quantity) ของ item ปัจจุบัน
	// ต้องคำนวณใหม่ทุกครั้งหลัง cancel (การจ่ายเงินไม่ลดยอด)
	TotalAmount int64 `json:"totalAmount"`
	IsActive    bool  `gorm:"not null;default:true" json:"isActive"` // false = โต๊ะปิดบิลแล้ว

	RestaurantID uint       `gorm:"index" json:"restaurantId"`
	Restaurant   Restaurant `json:"-"`

	Items []OrderItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}
