package services

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/LeoAkay/qr-menu-sub000/entity"
	"github.com/LeoAkay/qr-menu-sub000/repository"
	"github.com/LeoAkay/qr-menu-sub000/utils"

	"github.com/go-redis/redis/v8"
)

const menuCacheTTL = 60 * time.Second

type MenuService struct {
	Repo     *repository.MenuRepository
	RestRepo *repository.RestaurantRepository

	Cache     *redis.Client // nil = ไม่ cache
	UploadDir string
}

func NewMenuService(repo *repository.MenuRepository, restRepo *repository.RestaurantRepository, cache *redis.Client, uploadDir string) *MenuService {
	return &MenuService{Repo: repo, RestRepo: restRepo, Cache: cache, UploadDir: uploadDir}
}

// ----- Public menu (ลูกค้าสแกน QR) -----

type PublicMenuOut struct {
	RestaurantID uint              `json:"restaurantId"`
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	MenuMode     string            `json:"menuMode"`
	PdfPath      string            `json:"pdfPath,omitempty"`
	Categories   []entity.Category `json:"categories,omitempty"`
}

// PublicMenu คืนเมนูทั้งร้านจาก slug บน QR — อ่านหนักสุดของระบบ เลยมี cache คั่น
func (s *MenuService) PublicMenu(ctx context.Context, slug string) (*PublicMenuOut, error) {
	key := "menu:" + slug

	if s.Cache != nil {
		if raw, err := s.Cache.Get(ctx, key).Bytes(); err == nil {
			var out PublicMenuOut
			if json.Unmarshal(raw, &out) == nil {
				return &out, nil
			}
		}
	}

	rest, err := s.RestRepo.GetBySlug(slug)
	if err != nil || !rest.IsActive {
		return nil, fmt.Errorf("%w: restaurant", ErrNotFound)
	}

	out := &PublicMenuOut{
		RestaurantID: rest.ID,
		Name:         rest.Name,
		Slug:         rest.Slug,
		MenuMode:     rest.MenuMode,
	}
	if rest.MenuMode == entity.MenuModePDF {
		out.PdfPath = rest.PdfPath
	} else {
		cats, err := s.Repo.ListCategoriesWithItems(rest.ID)
		if err != nil {
			return nil, err
		}
		out.Categories = cats
	}

	if s.Cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			s.Cache.Set(ctx, key, raw, menuCacheTTL)
		}
	}
	return out, nil
}

// เมนูเปลี่ยนเมื่อไหร่ เททิ้งทั้ง key — รอบหน้าอ่านสดจาก DB
func (s *MenuService) invalidate(ctx context.Context, restID uint) {
	if s.Cache == nil {
		return
	}
	if rest, err := s.RestRepo.GetByID(restID); err == nil {
		s.Cache.Del(ctx, "menu:"+rest.Slug)
	}
}

// ----- Categories (owner) -----

type CategoryIn struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sortOrder"`
}

func (s *MenuService) ListCategories(restID uint) ([]entity.Category, error) {
	return s.Repo.ListCategoriesWithItems(restID)
}

func (s *MenuService) CreateCategory(ctx context.Context, restID uint, in *CategoryIn) (*entity.Category, error) {
	cat := &entity.Category{
		Name:         strings.TrimSpace(in.Name),
		SortOrder:    in.SortOrder,
		RestaurantID: restID,
	}
	if cat.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if err := s.Repo.CreateCategory(cat); err != nil {
		return nil, err
	}
	s.invalidate(ctx, restID)
	return cat, nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, restID, catID uint, in *CategoryIn) (*entity.Category, error) {
	cat, err := s.Repo.GetCategoryForRestaurant(restID, catID)
	if err != nil {
		return nil, fmt.Errorf("%w: category", ErrNotFound)
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		cat.Name = name
	}
	cat.SortOrder = in.SortOrder
	if err := s.Repo.SaveCategory(cat); err != nil {
		return nil, err
	}
	s.invalidate(ctx, restID)
	return cat, nil
}

func (s *MenuService) DeleteCategory(ctx context.Context, restID, catID uint) error {
	if _, err := s.Repo.GetCategoryForRestaurant(restID, catID); err != nil {
		return fmt.Errorf("%w: category", ErrNotFound)
	}
	if err := s.Repo.DeleteCategory(catID); err != nil {
		return err
	}
	s.invalidate(ctx, restID)
	return nil
}

// ----- SubCategories (รายการเมนู) -----

type SubCategoryIn struct {
	CategoryID uint   `json:"categoryId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Price      int64  `json:"price" binding:"required,min=1"` // หน่วยย่อย
	ImageB64   string `json:"image"`                          // optional, base64
}

func (s *MenuService) CreateSubCategory(ctx context.Context, restID uint, in *SubCategoryIn) (*entity.SubCategory, error) {
	if _, err := s.Repo.GetCategoryForRestaurant(restID, in.CategoryID); err != nil {
		return nil, fmt.Errorf("%w: category", ErrNotFound)
	}
	sc := &entity.SubCategory{
		Name:         strings.TrimSpace(in.Name),
		Price:        in.Price,
		CategoryID:   in.CategoryID,
		RestaurantID: restID,
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.ImageB64 != "" {
		path, err := utils.SaveBase64Image(in.ImageB64, filepath.Join(s.UploadDir, "items"))
		if err != nil {
			return nil, fmt.Errorf("%w: bad image: %v", ErrValidation, err)
		}
		sc.ImagePath = path
	}
	if err := s.Repo.CreateSubCategory(sc); err != nil {
		return nil, err
	}
	s.invalidate(ctx, restID)
	return sc, nil
}

func (s *MenuService) UpdateSubCategory(ctx context.Context, restID, scID uint, in *SubCategoryIn) (*entity.SubCategory, error) {
	sc, err := s.Repo.GetSubCategoryForRestaurant(restID, scID)
	if err != nil {
		return nil, fmt.Errorf("%w: menu item", ErrNotFound)
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		sc.Name = name
	}
	if in.Price > 0 {
		sc.Price = in.Price
	}
	if in.CategoryID != 0 && in.CategoryID != sc.CategoryID {
		if _, err := s.Repo.GetCategoryForRestaurant(restID, in.CategoryID); err != nil {
			return nil, fmt.Errorf("%w: category", ErrNotFound)
		}
		sc.CategoryID = in.CategoryID
	}
	if in.ImageB64 != "" {
		path, err := utils.SaveBase64Image(in.ImageB64, filepath.Join(s.UploadDir, "items"))
		if err != nil {
			return nil, fmt.Errorf("%w: bad image: %v", ErrValidation, err)
		}
		sc.ImagePath = path
	}
	if err := s.Repo.SaveSubCategory(sc); err != nil {
		return nil, err
	}
	s.invalidate(ctx, restID)
	return sc, nil
}

func (s *MenuService) DeleteSubCategory(ctx context.Context, restID, scID uint) error {
	if _, err := s.Repo.GetSubCategoryForRestaurant(restID, scID); err != nil {
		return fmt.Errorf("%w: menu item", ErrNotFound)
	}
	if err := s.Repo.DeleteSubCategory(scID); err != nil {
		return err
	}
	s.invalidate(ctx, restID)
	return nil
}

// ----- PDF menu -----

// UploadPDF เก็บไฟล์เมนู PDF แล้วสลับร้านเป็นโหมด pdf
// (ตัว render PDF เป็นภาพเป็นงานของฝั่งอื่น เราเก็บไฟล์อย่างเดียว)
func (s *MenuService) UploadPDF(ctx context.Context, restID uint, file *multipart.FileHeader) (*entity.Restaurant, error) {
	rest, err := s.RestRepo.GetByID(restID)
	if err != nil {
		return nil, fmt.Errorf("%w: restaurant", ErrNotFound)
	}

	path, err := utils.SavePDF(file, filepath.Join(s.UploadDir, "pdf"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	rest.PdfPath = path
	rest.MenuMode = entity.MenuModePDF
	if err := s.RestRepo.Save(rest); err != nil {
		return nil, err
	}
	s.invalidate(ctx, restID)
	return rest, nil
}

// SetMenuMode สลับ manual/pdf (เช่น owner กลับมาใช้เมนูที่กรอกเอง)
func (s *MenuService) SetMenuMode(ctx context.Context, restID uint, mode string) (*entity.Restaurant, error) {
	if mode != entity.MenuModeManual && mode != entity.MenuModePDF {
		return nil, fmt.Errorf("%w: unknown menu mode %q", ErrValidation, mode)
	}
	rest, err := s.RestRepo.GetByID(restID)
	if err != nil {
		return nil, fmt.Errorf("%w: restaurant", ErrNotFound)
	}
	if mode == entity.MenuModePDF && rest.PdfPath == "" {
		return nil, fmt.Errorf("%w: no pdf uploaded yet", ErrValidation)
	}
	rest.MenuMode = mode
	if err := s.RestRepo.Save(rest); err != nil {
		return nil, err
	}
	s.invalidate(ctx, restID)
	return rest, nil
}
