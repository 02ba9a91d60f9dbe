package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCartAddMergesSameMenu(t *testing.T) {
	c := NewCart("http://unused", "dang-noodle")
	c.Add(1, "ต้มยำกุ้ง", 12000, 1)
	c.Add(2, "ข้าวเปล่า", 1000, 2)
	c.Add(1, "ต้มยำกุ้ง", 12000, 1)
	c.Add(3, "ชาเย็น", 2500, 0) // จำนวน 0 ไม่รับ

	lines := c.Lines()
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("same menu must merge, got qty %d", lines[0].Quantity)
	}
	if got, want := c.Total(), int64(2*12000+2*1000); got != want {
		t.Fatalf("total: want %d, got %d", want, got)
	}
}

func TestCartRemove(t *testing.T) {
	c := NewCart("http://unused", "dang-noodle")
	c.Add(1, "ต้มยำกุ้ง", 12000, 1)
	c.Add(2, "ข้าวเปล่า", 1000, 1)

	c.Remove(1)
	c.Remove(99) // ไม่มีก็เฉย ๆ

	lines := c.Lines()
	if len(lines) != 1 || lines[0].SubCategoryID != 2 {
		t.Fatalf("bad lines after remove: %+v", lines)
	}
}

func TestSubmitSendsWholeCartAndClears(t *testing.T) {
	var got struct {
		TableNumber string `json:"tableNumber"`
		Note        string `json:"note"`
		Items       []struct {
			SubCategoryID uint  `json:"subCategoryId"`
			Quantity      int   `json:"quantity"`
			Price         int64 `json:"price"`
		} `json:"items"`
		TotalAmount int64 `json:"totalAmount"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/menu/dang-noodle/orders" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		body, _ := io.ReadAll(req.Body)
		json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":   true,
			"data": map[string]any{"id": 17},
		})
	}))
	defer srv.Close()

	c := NewCart(srv.URL, "dang-noodle")
	c.Add(1, "ต้มยำกุ้ง", 12000, 2)
	c.Add(2, "ข้าวเปล่า", 1000, 1)

	id, err := c.Submit(context.Background(), "A3", "ไม่เผ็ด")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id != 17 {
		t.Fatalf("want order id 17, got %d", id)
	}

	if got.TableNumber != "A3" || got.Note != "ไม่เผ็ด" {
		t.Fatalf("bad header fields: %+v", got)
	}
	if len(got.Items) != 2 || got.Items[0].Price != 12000 {
		t.Fatalf("bad items: %+v", got.Items)
	}
	if got.TotalAmount != 25000 {
		t.Fatalf("want total 25000, got %d", got.TotalAmount)
	}
	if len(c.Lines()) != 0 {
		t.Fatal("cart must clear after success")
	}
}

func TestSubmitKeepsCartOnRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "menu price changed"})
	}))
	defer srv.Close()

	c := NewCart(srv.URL, "dang-noodle")
	c.Add(1, "ต้มยำกุ้ง", 12000, 1)

	if _, err := c.Submit(context.Background(), "A3", ""); err == nil {
		t.Fatal("want error from rejected order")
	}
	if len(c.Lines()) != 1 {
		t.Fatal("cart must survive rejection so customer can retry")
	}
}

func TestSubmitValidatesLocally(t *testing.T) {
	c := NewCart("http://unused", "dang-noodle")

	// ตะกร้าว่าง
	c.Add(1, "ต้มยำกุ้ง", 12000, 1)
	if _, err := c.Submit(context.Background(), "   ", ""); err == nil {
		t.Fatal("want error for blank table number")
	}

	c.Clear()
	if _, err := c.Submit(context.Background(), "A1", ""); err == nil {
		t.Fatal("want error for empty cart")
	}
}
