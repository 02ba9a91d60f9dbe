package controllers

import (
	"strconv"

	"github.com/LeoAkay/qr-menu-sub000/pkg/resp"
	"github.com/LeoAkay/qr-menu-sub000/services"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Svc *services.RestaurantService
}

func NewAdminController(s *services.RestaurantService) *AdminController {
	return &AdminController{Svc: s}
}

// GET /admin/dashboard — ตัวเลขรวม ๆ
func (ac *AdminController) Dashboard(c *gin.Context) {
	out, err := ac.Svc.Dashboard()
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, out)
}

// GET /admin/tenants (page/limit)
func (ac *AdminController) Tenants(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	out, err := ac.Svc.List(page, limit)
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, out)
}

// POST /admin/tenants — สร้างร้าน + บัญชี owner
func (ac *AdminController) CreateTenant(c *gin.Context) {
	var req services.CreateTenantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	out, err := ac.Svc.CreateTenant(&req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, out)
}

// PATCH /admin/tenants/:id/activate  |  /deactivate
func (ac *AdminController) Activate(c *gin.Context)   { ac.setActive(c, true) }
func (ac *AdminController) Deactivate(c *gin.Context) { ac.setActive(c, false) }

func (ac *AdminController) setActive(c *gin.Context, active bool) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	out, err := ac.Svc.SetActive(uint(id), active)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, out)
}

// DELETE /admin/tenants/:id — ลบร้านทั้งยวง
func (ac *AdminController) DeleteTenant(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := ac.Svc.DeleteTenant(uint(id)); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"deleted": id})
}
