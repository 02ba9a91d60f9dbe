package controllers

import (
	"github.com/LeoAkay/qr-menu-sub000/pkg/resp"
	"github.com/LeoAkay/qr-menu-sub000/services"
	"github.com/LeoAkay/qr-menu-sub000/utils"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct{ Svc *services.AuthService }

func NewAuthController(s *services.AuthService) *AuthController { return &AuthController{Svc: s} }

// POST /auth/login
func (a *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	out, err := a.Svc.Login(req.Email, req.Password)
	if err != nil {
		// ไม่แยก "ไม่มี user" กับ "รหัสผิด"
		resp.Unauthorized(c, "invalid credentials")
		return
	}
	resp.OK(c, out)
}

// GET /auth/me (ต้อง login)
func (a *AuthController) Me(c *gin.Context) {
	out, err := a.Svc.Me(utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, out)
}
