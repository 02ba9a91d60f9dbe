package controllers

import (
	"github.com/LeoAkay/qr-menu-sub000/pkg/resp"
	"github.com/LeoAkay/qr-menu-sub000/services"

	"github.com/gin-gonic/gin"
)

// PublicController: ฝั่งลูกค้าที่สแกน QR — ไม่มี auth มีแต่ rate limit
type PublicController struct {
	MenuSvc  *services.MenuService
	OrderSvc *services.OrderService
	RestSvc  *services.RestaurantService
}

func NewPublicController(menuSvc *services.MenuService, orderSvc *services.OrderService, restSvc *services.RestaurantService) *PublicController {
	return &PublicController{MenuSvc: menuSvc, OrderSvc: orderSvc, RestSvc: restSvc}
}

// GET /menu/:slug — เมนูทั้งร้าน (หรือ path ไฟล์ PDF ถ้าร้านใช้โหมดนั้น)
func (pc *PublicController) Menu(c *gin.Context) {
	out, err := pc.MenuSvc.PublicMenu(c.Request.Context(), c.Param("slug"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, out)
}

// POST /menu/:slug/orders — ลูกค้าส่งตะกร้าเป็น order เดียว
func (pc *PublicController) CreateOrder(c *gin.Context) {
	rest, err := pc.RestSvc.Repo.GetBySlug(c.Param("slug"))
	if err != nil {
		resp.NotFound(c, "restaurant not found")
		return
	}

	var req services.CreateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	out, err := pc.OrderSvc.Create(rest.ID, &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, out)
}
