package entity

import (
	"gorm.io/gorm"
)

type OrderItem struct {
	gorm.Model
	Quantity     int  `json:"quantity"`
	PaidQuantity int  `json:"paidQuantity"` // invariant: 0 <= paidQuantity <= quantity
	IsPaid       bool `json:"isPaid"`       // paidQuantity == quantity

	UnitPrice int64 `json:"unitPrice"` // snapshot ราคาตอนสั่ง ไม่แก้ตามเมนู

	OrderID uint  `json:"orderId"`
	Order   Order `json:"-"`

	SubCategoryID uint        `json:"subCategoryId"`
	SubCategory   SubCategory `json:"-"` // preload เฉพาะตอนต้องการชื่อเมนู
}
