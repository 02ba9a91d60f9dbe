package controllers

import (
	"strconv"

	"github.com/LeoAkay/qr-menu-sub000/entity"
	"github.com/LeoAkay/qr-menu-sub000/pkg/resp"
	"github.com/LeoAkay/qr-menu-sub000/services"
	"github.com/LeoAkay/qr-menu-sub000/utils"

	"github.com/gin-gonic/gin"
)

// MenuController: owner จัดการเมนูร้านตัวเอง
type MenuController struct {
	Svc     *services.MenuService
	RestSvc *services.RestaurantService
}

func NewMenuController(s *services.MenuService, restSvc *services.RestaurantService) *MenuController {
	return &MenuController{Svc: s, RestSvc: restSvc}
}

// ทุก endpoint ในนี้สโคปด้วยร้านของ owner ที่ login อยู่
func (mc *MenuController) ownerRestaurant(c *gin.Context) (*entity.Restaurant, bool) {
	rest, err := mc.RestSvc.RestaurantForOwner(utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return nil, false
	}
	return rest, true
}

// GET /partner/menu
func (mc *MenuController) List(c *gin.Context) {
	rest, ok := mc.ownerRestaurant(c)
	if !ok {
		return
	}
	cats, err := mc.Svc.ListCategories(rest.ID)
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"menuMode": rest.MenuMode, "pdfPath": rest.PdfPath, "categories": cats})
}

// POST /partner/menu/categories
func (mc *MenuController) CreateCategory(c *gin.Context) {
	rest, ok := mc.ownerRestaurant(c)
	if !ok {
		return
	}
	var req services.CategoryIn
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	cat, err := mc.Svc.CreateCategory(c.Request.Context(), rest.ID, &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, cat)
}

// PATCH /partner/menu/categories/:id
func (mc *MenuController) UpdateCategory(c *gin.Context) {
	rest, ok := mc.ownerRestaurant(c)
	if !ok {
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req services.CategoryIn
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	cat, err := mc.Svc.UpdateCategory(c.Request.Context(), rest.ID, uint(id), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, cat)
}

// DELETE /partner/menu/categories/:id
func (mc *MenuController) DeleteCategory(c *gin.Context) {
	rest, ok := mc.ownerRestaurant(c)
	if !ok {
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := mc.Svc.DeleteCategory(c.Request.Context(), rest.ID, uint(id)); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"deleted": id})
}

// POST /partner/menu/items
func (mc *MenuController) CreateItem(c *gin.Context) {
	rest, ok := mc.ownerRestaurant(c)
	if !ok {
		return
	}
	var req services.SubCategoryIn
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	sc, err := mc.Svc.CreateSubCategory(c.Request.Context(), rest.ID, &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, sc)
}

// PATCH /partner/menu/items/:id
func (mc *MenuController) UpdateItem(c *gin.Context) {
	rest, ok := mc.ownerRestaurant(c)
	if !ok {
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req services.SubCategoryIn
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	sc, err := mc.Svc.UpdateSubCategory(c.Request.Context(), rest.ID, uint(id), &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, sc)
}

// DELETE /partner/menu/items/:id
func (mc *MenuController) DeleteItem(c *gin.Context) {
	rest, ok := mc.ownerRestaurant(c)
	if !ok {
		return
	}
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := mc.Svc.DeleteSubCategory(c.Request.Context(), rest.ID, uint(id)); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"deleted": id})
}

// POST /partner/menu/pdf (multipart field "file")
func (mc *MenuController) UploadPDF(c *gin.Context) {
	rest, ok := mc.ownerRestaurant(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		resp.BadRequest(c, "file is required")
		return
	}
	out, err := mc.Svc.UploadPDF(c.Request.Context(), rest.ID, file)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"menuMode": out.MenuMode, "pdfPath": out.PdfPath})
}

// PATCH /partner/menu/mode {"mode":"manual"|"pdf"}
func (mc *MenuController) SetMode(c *gin.Context) {
	rest, ok := mc.ownerRestaurant(c)
	if !ok {
		return
	}
	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	out, err := mc.Svc.SetMenuMode(c.Request.Context(), rest.ID, req.Mode)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"menuMode": out.MenuMode})
}
