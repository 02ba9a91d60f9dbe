package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/LeoAkay/qr-menu-sub000/entity"
	"github.com/LeoAkay/qr-menu-sub000/repository"
	"github.com/LeoAkay/qr-menu-sub000/ws"

	"gorm.io/gorm"
)

// EventPublisher คือด้านที่ OrderService ต้องการจาก hub
// (ws.OrderHub implement ให้ / ใน test ใช้ตัวปลอมเก็บ event)
type EventPublisher interface {
	Publish(restaurantID uint, event string, payload any)
}

// OrderDeletedPayload คือ data ของ event "order-deleted"
type OrderDeletedPayload struct {
	OrderID uint `json:"orderId"`
}

type OrderService struct {
	DB       *gorm.DB
	Repo     *repository.OrderRepository
	MenuRepo *repository.MenuRepository
	RestRepo *repository.RestaurantRepository
	Events   EventPublisher
}

func NewOrderService(
	db *gorm.DB,
	repo *repository.OrderRepository,
	menuRepo *repository.MenuRepository,
	restRepo *repository.RestaurantRepository,
	events EventPublisher,
) *OrderService {
	return &OrderService{DB: db, Repo: repo, MenuRepo: menuRepo, RestRepo: restRepo, Events: events}
}

// ----- DTOs from Controller -----

type OrderItemIn struct {
	SubCategoryID uint  `json:"subCategoryId" binding:"required"`
	Quantity      int   `json:"quantity" binding:"required,min=1"`
	Price         int64 `json:"price"` // ราคาที่ลูกค้าเห็นตอนกด — ใช้จับเมนูที่เพิ่งเปลี่ยนราคา
}

type CreateOrderReq struct {
	TableNumber string        `json:"tableNumber" binding:"required"`
	Note        string        `json:"note"`
	Items       []OrderItemIn `json:"items" binding:"required,min=1"`
	TotalAmount int64         `json:"totalAmount"`
}

type CreateOrderRes struct {
	ID          uint  `json:"id"`
	TotalAmount int64 `json:"totalAmount"`
}

// PayReq / CancelReq: map item id -> จำนวน
type PayReq struct {
	Items        map[uint]int `json:"items" binding:"required"`
	MarkInactive bool         `json:"markInactive"` // "จ่ายหมดแล้วปิดโต๊ะ"
}

type CancelReq struct {
	Items map[uint]int `json:"items" binding:"required"`
}

// ----- Create -----

// Create สร้าง order จากตะกร้าลูกค้า คิดราคาจากเมนูใน DB เสมอ
// ยอดรวมฝั่ง client ต้องตรงกับที่คำนวณเอง ไม่ตรง = reject ทั้งก้อน
func (s *OrderService) Create(restaurantID uint, req *CreateOrderReq) (*CreateOrderRes, error) {
	if strings.TrimSpace(req.TableNumber) == "" {
		return nil, fmt.Errorf("%w: table number is required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items is required", ErrValidation)
	}

	rest, err := s.RestRepo.GetByID(restaurantID)
	if err != nil {
		return nil, fmt.Errorf("%w: restaurant", ErrNotFound)
	}
	if !rest.IsActive {
		return nil, fmt.Errorf("%w: restaurant is closed", ErrNotFound)
	}

	// ตรวจทุกรายการก่อนเขียนอะไรทั้งนั้น
	var total int64
	rows := make([]entity.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
		sc, err := s.MenuRepo.GetSubCategoryBasics(it.SubCategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: menu item %d", ErrNotFound, it.SubCategoryID)
		}
		if sc.RestaurantID != restaurantID {
			return nil, fmt.Errorf("%w: menu item not in this restaurant", ErrValidation)
		}
		if it.Price != 0 && it.Price != sc.Price {
			return nil, fmt.Errorf("%w: menu price changed, refresh the menu", ErrConflict)
		}
		total += sc.Price * int64(it.Quantity)
		rows = append(rows, entity.OrderItem{
			SubCategoryID: sc.ID,
			Quantity:      it.Quantity,
			UnitPrice:     sc.Price,
		})
	}
	if req.TotalAmount != total {
		return nil, fmt.Errorf("%w: total amount mismatch", ErrValidation)
	}

	var orderID uint
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		order := entity.Order{
			TableNumber:  strings.TrimSpace(req.TableNumber),
			Note:         req.Note,
			TotalAmount:  total,
			IsActive:     true,
			RestaurantID: restaurantID,
		}
		if err := s.Repo.CreateOrder(tx, &order); err != nil {
			return err
		}
		for i := range rows {
			rows[i].OrderID = order.ID
			if err := s.Repo.CreateOrderItem(tx, &rows[i]); err != nil {
				return err
			}
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	// publish สถานะหลัง commit เท่านั้น
	if full, err := s.Repo.GetOrderWithItems(s.DB, orderID); err == nil {
		s.Events.Publish(restaurantID, ws.EventNewOrder, full)
	} else {
		// order สร้างสำเร็จแล้ว แค่ event หลุด — sweep ฝั่ง dashboard เก็บตก
		log.Printf("order %d created but new-order event skipped: %v", orderID, err)
	}

	return &CreateOrderRes{ID: orderID, TotalAmount: total}, nil
}

// ----- Pay (partial or full) -----

// Pay เพิ่ม paidQuantity ตามจำนวนที่ขอ (ทั้ง batch ผ่านหมดหรือไม่ทำเลย)
// หมายเหตุ: การจ่ายไม่ลด totalAmount — ยอดบิลคือของที่สั่ง ไม่ใช่ของที่ค้างจ่าย
func (s *OrderService) Pay(restaurantID, orderID uint, req *PayReq) (*entity.Order, error) {
	if len(req.Items) == 0 && !req.MarkInactive {
		return nil, fmt.Errorf("%w: nothing to pay", ErrValidation)
	}

	order, err := s.loadOwnedOrder(restaurantID, orderID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*entity.OrderItem, len(order.Items))
	for i := range order.Items {
		byID[order.Items[i].ID] = &order.Items[i]
	}

	// validate ทุกตัวก่อน ตัวเดียวพังก็ไม่แตะอะไรเลย
	for itemID, count := range req.Items {
		item, ok := byID[itemID]
		if !ok {
			return nil, fmt.Errorf("%w: order item %d", ErrNotFound, itemID)
		}
		if count < 1 {
			return nil, fmt.Errorf("%w: pay count must be at least 1", ErrValidation)
		}
		if count > item.Quantity-item.PaidQuantity {
			return nil, fmt.Errorf("%w: pay count exceeds unpaid quantity of item %d", ErrConflict, itemID)
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for itemID, count := range req.Items {
			item := byID[itemID]
			ok, err := s.Repo.AddPaidQuantityGuard(tx, itemID, item.PaidQuantity, count)
			if err != nil {
				return err
			}
			if !ok {
				// มีคนแก้ order นี้แทรกระหว่างเราอ่านกับเขียน
				return fmt.Errorf("%w: order changed, retry", ErrConflict)
			}
		}
		if req.MarkInactive {
			if err := s.Repo.SetInactive(tx, orderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.Repo.GetOrderWithItems(s.DB, orderID)
	if err != nil {
		return nil, err
	}
	s.Events.Publish(restaurantID, ws.EventOrderUpdated, fresh)
	return fresh, nil
}

// ----- Cancel item(s) -----

// Cancel ตัดจำนวนที่ยังไม่จ่ายออกจาก order
// ตัดหมดทั้งรายการ = ลบแถว item, item หมดทั้ง order = ลบ order เลย
// คืน (order, deleted): deleted=true แปลว่า order หายไปแล้วและ event เป็น order-deleted
func (s *OrderService) Cancel(restaurantID, orderID uint, req *CancelReq) (*entity.Order, bool, error) {
	if len(req.Items) == 0 {
		return nil, false, fmt.Errorf("%w: nothing to cancel", ErrValidation)
	}

	order, err := s.loadOwnedOrder(restaurantID, orderID)
	if err != nil {
		return nil, false, err
	}

	byID := make(map[uint]*entity.OrderItem, len(order.Items))
	for i := range order.Items {
		byID[order.Items[i].ID] = &order.Items[i]
	}

	for itemID, count := range req.Items {
		item, ok := byID[itemID]
		if !ok {
			return nil, false, fmt.Errorf("%w: order item %d", ErrNotFound, itemID)
		}
		if count < 1 {
			return nil, false, fmt.Errorf("%w: cancel count must be at least 1", ErrValidation)
		}
		// ของที่จ่ายแล้ว cancel ไม่ได้
		if count > item.Quantity-item.PaidQuantity {
			return nil, false, fmt.Errorf("%w: cancel count exceeds unpaid quantity of item %d", ErrConflict, itemID)
		}
	}

	deleted := false
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for itemID, count := range req.Items {
			item := byID[itemID]
			if count == item.Quantity {
				if err := s.Repo.DeleteOrderItem(tx, itemID); err != nil {
					return err
				}
				continue
			}
			ok, err := s.Repo.ReduceQuantityGuard(tx, itemID, item.Quantity, count)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: order changed, retry", ErrConflict)
			}
		}

		remaining, err := s.Repo.GetOrderItems(tx, orderID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			deleted = true
			return s.Repo.DeleteOrder(tx, orderID)
		}

		// ยอดรวมต้องตามของที่เหลือเสมอ
		var total int64
		for _, it := range remaining {
			total += it.UnitPrice * int64(it.Quantity)
		}
		return s.Repo.SetTotalAmount(tx, orderID, total)
	})
	if err != nil {
		return nil, false, err
	}

	if deleted {
		s.Events.Publish(restaurantID, ws.EventOrderDeleted, OrderDeletedPayload{OrderID: orderID})
		return nil, true, nil
	}

	fresh, err := s.Repo.GetOrderWithItems(s.DB, orderID)
	if err != nil {
		return nil, false, err
	}
	s.Events.Publish(restaurantID, ws.EventOrderUpdated, fresh)
	return fresh, false, nil
}

// ----- Delete (explicit, staff override) -----

func (s *OrderService) Delete(restaurantID, orderID uint) error {
	if _, err := s.loadOwnedOrder(restaurantID, orderID); err != nil {
		return err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return s.Repo.DeleteOrder(tx, orderID)
	})
	if err != nil {
		return err
	}

	s.Events.Publish(restaurantID, ws.EventOrderDeleted, OrderDeletedPayload{OrderID: orderID})
	return nil
}

// ----- List -----

// List คืน order ทุกใบของร้าน (ทั้ง active และปิดแล้ว) ให้ dashboard กรองเอง
func (s *OrderService) List(restaurantID uint) ([]entity.Order, error) {
	return s.Repo.ListOrdersForRestaurant(restaurantID)
}

// ----- Helpers -----

func (s *OrderService) loadOwnedOrder(restaurantID, orderID uint) (*entity.Order, error) {
	order, err := s.Repo.GetOrderWithItems(s.DB, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if order.RestaurantID != restaurantID {
		// order ของร้านอื่น — ไม่บอกด้วยซ้ำว่ามีอยู่
		return nil, fmt.Errorf("%w: order %d", ErrForbidden, orderID)
	}
	return order, nil
}
