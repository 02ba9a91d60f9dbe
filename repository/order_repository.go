package repository

import (
	"github.com/LeoAkay/qr-menu-sub000/entity"

	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// ---------------- Orders ----------------

func (r *OrderRepository) CreateOrder(tx *gorm.DB, o *entity.Order) error {
	return tx.Create(o).Error
}

// ดึง order พร้อม items — ใช้เป็น payload ของ event ด้วย
func (r *OrderRepository) GetOrderWithItems(db *gorm.DB, orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := db.Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("order_items.id ASC") // เรียงตามลำดับที่สั่ง
	}).First(&o, orderID).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GET /partner/orders → order ทั้งหมดของร้าน (active + ปิดแล้ว) ใหม่สุดก่อน
func (r *OrderRepository) ListOrdersForRestaurant(restID uint) ([]entity.Order, error) {
	var out []entity.Order
	err := r.DB.Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("order_items.id ASC")
	}).
		Where("restaurant_id = ?", restID).
		Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *OrderRepository) SetTotalAmount(tx *gorm.DB, orderID uint, total int64) error {
	return tx.Model(&entity.Order{}).Where("id = ?", orderID).
		Update("total_amount", total).Error
}

func (r *OrderRepository) SetInactive(tx *gorm.DB, orderID uint) error {
	return tx.Model(&entity.Order{}).Where("id = ?", orderID).
		Update("is_active", false).Error
}

// ลบ order + items ในทีเดียว (hard delete)
func (r *OrderRepository) DeleteOrder(tx *gorm.DB, orderID uint) error {
	if err := tx.Unscoped().Where("order_id = ?", orderID).Delete(&entity.OrderItem{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&entity.Order{}, orderID).Error
}

// ---------------- Order Items ----------------

func (r *OrderRepository) CreateOrderItem(tx *gorm.DB, oi *entity.OrderItem) error {
	return tx.Create(oi).Error
}

func (r *OrderRepository) GetOrderItems(db *gorm.DB, orderID uint) ([]entity.OrderItem, error) {
	var items []entity.OrderItem
	err := db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error
	return items, err
}

// จ่ายบางส่วน: paid_quantity += count แบบ guard ด้วยค่าเดิม
// RowsAffected == 0 = มีคนแก้แทรก (หรือ count เกิน) → ให้ชั้นบนตีเป็น conflict
func (r *OrderRepository) AddPaidQuantityGuard(tx *gorm.DB, itemID uint, prevPaid, count int) (bool, error) {
	res := tx.Model(&entity.OrderItem{}).
		Where("id = ? AND paid_quantity = ? AND paid_quantity + ? <= quantity", itemID, prevPaid, count).
		Updates(map[string]any{
			"paid_quantity": gorm.Expr("paid_quantity + ?", count),
			"is_paid":       gorm.Expr("paid_quantity + ? = quantity", count),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ยกเลิกบางส่วน: quantity -= count แบบ guard เดียวกัน
// อย่าลืม is_paid — ตัดจนเหลือเท่าที่จ่ายแล้ว = รายการนั้นจ่ายครบ
func (r *OrderRepository) ReduceQuantityGuard(tx *gorm.DB, itemID uint, prevQty, count int) (bool, error) {
	res := tx.Model(&entity.OrderItem{}).
		Where("id = ? AND quantity = ? AND quantity - ? >= paid_quantity", itemID, prevQty, count).
		Updates(map[string]any{
			"quantity": gorm.Expr("quantity - ?", count),
			"is_paid":  gorm.Expr("paid_quantity >= quantity - ?", count),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *OrderRepository) DeleteOrderItem(tx *gorm.DB, itemID uint) error {
	return tx.Unscoped().Delete(&entity.OrderItem{}, itemID).Error
}
