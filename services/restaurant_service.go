package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/LeoAkay/qr-menu-sub000/entity"
	"github.com/LeoAkay/qr-menu-sub000/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// RestaurantService: งาน admin จัดการ tenant (ร้าน + บัญชี owner)
type RestaurantService struct {
	DB       *gorm.DB
	Repo     *repository.RestaurantRepository
	UserRepo *repository.UserRepository
}

func NewRestaurantService(db *gorm.DB, repo *repository.RestaurantRepository, userRepo *repository.UserRepository) *RestaurantService {
	return &RestaurantService{DB: db, Repo: repo, UserRepo: userRepo}
}

// CanWatchRestaurant ใช้โดย ws hub ตอน join ห้อง
func (s *RestaurantService) CanWatchRestaurant(userID uint, role string, restID uint) (bool, error) {
	if role == "admin" {
		_, err := s.Repo.GetByID(restID)
		if err != nil {
			return false, nil
		}
		return true, nil
	}
	return s.Repo.IsOwnedBy(restID, userID)
}

// RestaurantForOwner หา ร้านของ owner — controller ใช้สโคปทุก request
func (s *RestaurantService) RestaurantForOwner(userID uint) (*entity.Restaurant, error) {
	rest, err := s.Repo.GetByOwner(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: no restaurant for this account", ErrNotFound)
	}
	return rest, nil
}

// ----- Admin: dashboard / list -----

type AdminDashboardOut struct {
	TotalRestaurants  int64 `json:"totalRestaurants"`
	ActiveRestaurants int64 `json:"activeRestaurants"`
	OrdersToday       int64 `json:"ordersToday"`
}

func (s *RestaurantService) Dashboard() (*AdminDashboardOut, error) {
	var out AdminDashboardOut
	if err := s.DB.Model(&entity.Restaurant{}).Count(&out.TotalRestaurants).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&entity.Restaurant{}).Where("is_active = ?", true).Count(&out.ActiveRestaurants).Error; err != nil {
		return nil, err
	}
	start := time.Now().Truncate(24 * time.Hour)
	if err := s.DB.Model(&entity.Order{}).Where("created_at >= ?", start).Count(&out.OrdersToday).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

type TenantListOut struct {
	Items []entity.Restaurant `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

func (s *RestaurantService) List(page, limit int) (*TenantListOut, error) {
	items, total, err := s.Repo.List(page, limit)
	if err != nil {
		return nil, err
	}
	return &TenantListOut{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// ----- Admin: create / activate / delete tenant -----

type CreateTenantReq struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type CreateTenantRes struct {
	Restaurant *entity.Restaurant `json:"restaurant"`
	OwnerID    uint               `json:"ownerId"`
}

// CreateTenant สร้างร้าน + บัญชี owner ใน transaction เดียว
func (s *RestaurantService) CreateTenant(req *CreateTenantReq) (*CreateTenantRes, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: slug must be lowercase letters, digits and dashes", ErrValidation)
	}

	if taken, err := s.Repo.SlugTaken(slug); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: slug already in use", ErrConflict)
	}
	if taken, err := s.UserRepo.EmailTaken(req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var out CreateTenantRes
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		owner := entity.User{
			Email:    strings.ToLower(strings.TrimSpace(req.Email)),
			Password: string(hash),
			Role:     "owner",
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		rest := entity.Restaurant{
			Name:     strings.TrimSpace(req.Name),
			Slug:     slug,
			MenuMode: entity.MenuModeManual,
			IsActive: true,
			UserID:   owner.ID,
		}
		if err := tx.Create(&rest).Error; err != nil {
			return err
		}

		out = CreateTenantRes{Restaurant: &rest, OwnerID: owner.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RestaurantService) SetActive(restID uint, active bool) (*entity.Restaurant, error) {
	rest, err := s.Repo.GetByID(restID)
	if err != nil {
		return nil, fmt.Errorf("%w: restaurant", ErrNotFound)
	}
	rest.IsActive = active
	if err := s.Repo.Save(rest); err != nil {
		return nil, err
	}
	return rest, nil
}

// DeleteTenant ลบร้านพร้อมเมนู order และบัญชี owner (hard delete)
func (s *RestaurantService) DeleteTenant(restID uint) error {
	rest, err := s.Repo.GetByID(restID)
	if err != nil {
		return fmt.Errorf("%w: restaurant", ErrNotFound)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("order_id IN (?)", tx.Model(&entity.Order{}).Select("id").Where("restaurant_id = ?", restID)).
			Delete(&entity.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("restaurant_id = ?", restID).Delete(&entity.Order{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("restaurant_id = ?", restID).Delete(&entity.SubCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("restaurant_id = ?", restID).Delete(&entity.Category{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&entity.Restaurant{}, restID).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&entity.User{}, rest.UserID).Error
	})
}
