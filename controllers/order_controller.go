package controllers

import (
	"strconv"

	"github.com/LeoAkay/qr-menu-sub000/entity"
	"github.com/LeoAkay/qr-menu-sub000/pkg/resp"
	"github.com/LeoAkay/qr-menu-sub000/services"
	"github.com/LeoAkay/qr-menu-sub000/utils"

	"github.com/gin-gonic/gin"
)

// OrderController: ฝั่ง dashboard ร้าน (list + pay/cancel/delete)
// การ "สร้าง" order อยู่ฝั่ง public (ลูกค้า) ที่ PublicController
type OrderController struct {
	Svc     *services.OrderService
	RestSvc *services.RestaurantService
}

func NewOrderController(s *services.OrderService, restSvc *services.RestaurantService) *OrderController {
	return &OrderController{Svc: s, RestSvc: restSvc}
}

func (oc *OrderController) ownerRestaurant(c *gin.Context) (*entity.Restaurant, bool) {
	rest, err := oc.RestSvc.RestaurantForOwner(utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return nil, false
	}
	return rest, true
}

// GET /partner/orders — ทุก order ของร้าน (dashboard กรอง active เอง)
func (oc *OrderController) List(c *gin.Context) {
	rest, ok := oc.ownerRestaurant(c)
	if !ok {
		return
	}
	items, err := oc.Svc.List(rest.ID)
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"items": items})
}

// POST /partner/orders/:id/pay
func (oc *OrderController) Pay(c *gin.Context) {
	rest, ok := oc.ownerRestaurant(c)
	if !ok {
		return
	}
	orderID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var req services.PayReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	order, err := oc.Svc.Pay(rest.ID, uint(orderID), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

// POST /partner/orders/:id/cancel
func (oc *OrderController) Cancel(c *gin.Context) {
	rest, ok := oc.ownerRestaurant(c)
	if !ok {
		return
	}
	orderID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var req services.CancelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	order, deleted, err := oc.Svc.Cancel(rest.ID, uint(orderID), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	if deleted {
		resp.OK(c, gin.H{"deleted": orderID})
		return
	}
	resp.OK(c, order)
}

// DELETE /partner/orders/:id — ลบทั้งบิลไม่ถามอะไร (override ของพนักงาน)
func (oc *OrderController) Delete(c *gin.Context) {
	rest, ok := oc.ownerRestaurant(c)
	if !ok {
		return
	}
	orderID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	if err := oc.Svc.Delete(rest.ID, uint(orderID)); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"deleted": orderID})
}
