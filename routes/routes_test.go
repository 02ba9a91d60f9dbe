package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LeoAkay/qr-menu-sub000/configs"
	"github.com/LeoAkay/qr-menu-sub000/entity"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ต่อทุกชั้นจริง (route → controller → service → repo → sqlite) เหลือแค่
// redis ที่เป็น nil เพราะ cache เป็น optional อยู่แล้ว
func setupServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.User{}, &entity.Restaurant{},
		&entity.Category{}, &entity.SubCategory{},
		&entity.Order{}, &entity.OrderItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &configs.Config{
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
		UploadDir: t.TempDir(),
	}

	r := gin.New()
	hub := RegisterRoutes(r, db, cfg, nil)
	go hub.Run()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, db
}

func seedOwner(t *testing.T, db *gorm.DB) (restID uint, menuItemID uint) {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	owner := entity.User{Email: "dang@example.com", Password: string(hash), Role: "owner"}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	rest := entity.Restaurant{Name: "ร้านแดง", Slug: "dang-noodle", MenuMode: entity.MenuModeManual, IsActive: true, UserID: owner.ID}
	if err := db.Create(&rest).Error; err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	cat := entity.Category{Name: "เส้น", RestaurantID: rest.ID}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	item := entity.SubCategory{Name: "บะหมี่หมูแดง", Price: 6000, CategoryID: cat.ID, RestaurantID: rest.ID}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return rest.ID, item.ID
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

func decode(t *testing.T, res *http.Response, out any) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func login(t *testing.T, srv *httptest.Server, email, password string) string {
	t.Helper()
	res := postJSON(t, srv.URL+"/auth/login", "", map[string]string{"email": email, "password": password})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", res.StatusCode)
	}
	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decode(t, res, &body)
	if body.Data.Token == "" {
		t.Fatal("login: empty token")
	}
	return body.Data.Token
}

func TestCustomerOrderToOwnerPayFlow(t *testing.T) {
	srv, db := setupServer(t)
	_, itemID := seedOwner(t, db)

	// ลูกค้าสแกน QR แล้วสั่ง 2 ชาม
	res := postJSON(t, srv.URL+"/menu/dang-noodle/orders", "", map[string]any{
		"tableNumber": "A2",
		"note":        "พิเศษ",
		"items":       []map[string]any{{"subCategoryId": itemID, "quantity": 2, "price": 6000}},
		"totalAmount": 12000,
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create order: status %d", res.StatusCode)
	}
	var created struct {
		Data entity.Order `json:"data"`
	}
	decode(t, res, &created)
	if created.Data.ID == 0 || created.Data.TotalAmount != 12000 {
		t.Fatalf("bad created order: %+v", created.Data)
	}

	// เจ้าของร้าน login แล้วเห็น order บน dashboard
	token := login(t, srv, "dang@example.com", "password123")

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/partner/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listRes, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if listRes.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", listRes.StatusCode)
	}
	var list struct {
		Data struct {
			Items []entity.Order `json:"items"`
		} `json:"data"`
	}
	decode(t, listRes, &list)
	if len(list.Data.Items) != 1 || list.Data.Items[0].ID != created.Data.ID {
		t.Fatalf("dashboard should show the new order, got %+v", list.Data.Items)
	}
	orderItemID := list.Data.Items[0].Items[0].ID

	// เก็บเงินครบแล้วปิดโต๊ะ
	payURL := fmt.Sprintf("%s/partner/orders/%d/pay", srv.URL, created.Data.ID)
	payRes := postJSON(t, payURL, token, map[string]any{
		"items":        map[uint]int{orderItemID: 2},
		"markInactive": true,
	})
	if payRes.StatusCode != http.StatusOK {
		t.Fatalf("pay: status %d", payRes.StatusCode)
	}
	var paid struct {
		Data entity.Order `json:"data"`
	}
	decode(t, payRes, &paid)
	if paid.Data.IsActive {
		t.Fatal("order should be closed after full payment")
	}
	if !paid.Data.Items[0].IsPaid {
		t.Fatal("item should be fully paid")
	}
}

func TestPartnerRoutesRequireAuth(t *testing.T) {
	srv, _ := setupServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/partner/orders", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 without token, got %d", res.StatusCode)
	}
}

func TestAdminRoutesRejectOwner(t *testing.T) {
	srv, db := setupServer(t)
	seedOwner(t, db)
	token := login(t, srv, "dang@example.com", "password123")

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/admin/tenants", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("owner hitting admin route: want 403, got %d", res.StatusCode)
	}
}

func TestPublicMenuBySlug(t *testing.T) {
	srv, db := setupServer(t)
	seedOwner(t, db)

	res, err := http.Get(srv.URL + "/menu/dang-noodle")
	if err != nil {
		t.Fatalf("get menu: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("menu: status %d", res.StatusCode)
	}
	var body struct {
		Data struct {
			Slug       string            `json:"slug"`
			MenuMode   string            `json:"menuMode"`
			Categories []entity.Category `json:"categories"`
		} `json:"data"`
	}
	decode(t, res, &body)
	if body.Data.Slug != "dang-noodle" || body.Data.MenuMode != entity.MenuModeManual {
		t.Fatalf("bad menu header: %+v", body.Data)
	}
	if len(body.Data.Categories) != 1 || len(body.Data.Categories[0].SubCategories) != 1 {
		t.Fatalf("bad categories: %+v", body.Data.Categories)
	}

	res2, err := http.Get(srv.URL + "/menu/no-such-restaurant")
	if err != nil {
		t.Fatalf("get missing menu: %v", err)
	}
	res2.Body.Close()
	if res2.StatusCode != http.StatusNotFound {
		t.Fatalf("missing slug: want 404, got %d", res2.StatusCode)
	}
}

func TestCreateOrderRejectsTotalMismatch(t *testing.T) {
	srv, db := setupServer(t)
	_, itemID := seedOwner(t, db)

	res := postJSON(t, srv.URL+"/menu/dang-noodle/orders", "", map[string]any{
		"tableNumber": "A2",
		"items":       []map[string]any{{"subCategoryId": itemID, "quantity": 2, "price": 6000}},
		"totalAmount": 11000,
	})
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("total mismatch: want 400, got %d", res.StatusCode)
	}

	// ไม่มีอะไรถูกเขียนลง DB
	var count int64
	db.Model(&entity.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected order must not persist, found %d", count)
	}
}
