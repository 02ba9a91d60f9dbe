package repository

import (
	"github.com/LeoAkay/qr-menu-sub000/entity"

	"gorm.io/gorm"
)

type MenuRepository struct {
	DB *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{DB: db}
}

// ---------------- Categories ----------------

func (r *MenuRepository) CreateCategory(cat *entity.Category) error {
	return r.DB.Create(cat).Error
}

func (r *MenuRepository) GetCategoryForRestaurant(restID, catID uint) (*entity.Category, error) {
	var cat entity.Category
	if err := r.DB.Where("id = ? AND restaurant_id = ?", catID, restID).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// เมนูทั้งร้าน: category เรียงตาม sort_order, item เรียงตาม id
func (r *MenuRepository) ListCategoriesWithItems(restID uint) ([]entity.Category, error) {
	var cats []entity.Category
	err := r.DB.Preload("SubCategories", func(q *gorm.DB) *gorm.DB {
		return q.Order("sub_categories.id ASC")
	}).
		Where("restaurant_id = ?", restID).
		Order("sort_order ASC, id ASC").
		Find(&cats).Error
	return cats, err
}

func (r *MenuRepository) SaveCategory(cat *entity.Category) error {
	return r.DB.Save(cat).Error
}

func (r *MenuRepository) DeleteCategory(catID uint) error {
	// ลบ item ใต้ category ก่อน (sqlite ไม่ enforce FK cascade เสมอ)
	if err := r.DB.Unscoped().Where("category_id = ?", catID).Delete(&entity.SubCategory{}).Error; err != nil {
		return err
	}
	return r.DB.Unscoped().Delete(&entity.Category{}, catID).Error
}

// ---------------- SubCategories (รายการเมนู) ----------------

func (r *MenuRepository) CreateSubCategory(sc *entity.SubCategory) error {
	return r.DB.Create(sc).Error
}

func (r *MenuRepository) GetSubCategoryForRestaurant(restID, scID uint) (*entity.SubCategory, error) {
	var sc entity.SubCategory
	if err := r.DB.Where("id = ? AND restaurant_id = ?", scID, restID).First(&sc).Error; err != nil {
		return nil, err
	}
	return &sc, nil
}

// เอาเฉพาะ field ที่ใช้ตอนสร้าง order (id, price, restaurant_id)
func (r *MenuRepository) GetSubCategoryBasics(id uint) (entity.SubCategory, error) {
	var sc entity.SubCategory
	err := r.DB.Select("id, price, restaurant_id").First(&sc, id).Error
	return sc, err
}

func (r *MenuRepository) SaveSubCategory(sc *entity.SubCategory) error {
	return r.DB.Save(sc).Error
}

func (r *MenuRepository) DeleteSubCategory(scID uint) error {
	return r.DB.Unscoped().Delete(&entity.SubCategory{}, scID).Error
}
