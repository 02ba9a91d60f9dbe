package services

import (
	"fmt"
	"time"

	"github.com/LeoAkay/qr-menu-sub000/entity"
	"github.com/LeoAkay/qr-menu-sub000/repository"
	"github.com/LeoAkay/qr-menu-sub000/utils"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	RestRepo *repository.RestaurantRepository

	JWTSecret string
	JWTTTL    time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, restRepo *repository.RestaurantRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{UserRepo: userRepo, RestRepo: restRepo, JWTSecret: secret, JWTTTL: ttl}
}

type LoginOut struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`

	// ร้านของ owner (nil สำหรับ admin)
	Restaurant *entity.Restaurant `json:"restaurant,omitempty"`
}

// Login ตรวจ email+password แล้วออก JWT
// ไม่มี register — บัญชีร้านสร้างโดย admin เท่านั้น
func (s *AuthService) Login(email, password string) (*LoginOut, error) {
	user, err := s.UserRepo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
	}

	token, err := utils.GenerateToken(user.ID, user.Role, s.JWTSecret, s.JWTTTL)
	if err != nil {
		return nil, err
	}

	out := &LoginOut{Token: token, User: user}
	if user.Role == "owner" {
		if rest, err := s.RestRepo.GetByOwner(user.ID); err == nil {
			out.Restaurant = rest
		}
	}
	return out, nil
}

func (s *AuthService) Me(userID uint) (*LoginOut, error) {
	user, err := s.UserRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	out := &LoginOut{User: user}
	if user.Role == "owner" {
		if rest, err := s.RestRepo.GetByOwner(user.ID); err == nil {
			out.Restaurant = rest
		}
	}
	return out, nil
}
