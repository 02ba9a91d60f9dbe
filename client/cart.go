package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// CartLine หนึ่งรายการในตะกร้า (snapshot ชื่อ/ราคาตอนลูกค้ากด)
type CartLine struct {
	SubCategoryID uint   `json:"subCategoryId"`
	Name          string `json:"name"`
	UnitPrice     int64  `json:"unitPrice"`
	Quantity      int    `json:"quantity"`
}

// Cart คือตะกร้าฝั่งลูกค้า — อยู่ในเครื่องล้วน ๆ ไม่มี round-trip
// จนกว่าจะกดสั่ง แล้วยิง create ครั้งเดียวทั้งก้อน
type Cart struct {
	BaseURL    string // เช่น http://localhost:8000
	Slug       string // ร้านจาก QR ที่สแกน
	HTTPClient *http.Client

	mu    sync.Mutex
	lines []CartLine
}

func NewCart(baseURL, slug string) *Cart {
	return &Cart{
		BaseURL:    baseURL,
		Slug:       slug,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Add เพิ่มของลงตะกร้า เมนูเดิมบวกจำนวนเข้า line เดิม
func (c *Cart) Add(subCategoryID uint, name string, unitPrice int64, qty int) {
	if qty < 1 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].SubCategoryID == subCategoryID {
			c.lines[i].Quantity += qty
			return
		}
	}
	c.lines = append(c.lines, CartLine{
		SubCategoryID: subCategoryID,
		Name:          name,
		UnitPrice:     unitPrice,
		Quantity:      qty,
	})
}

func (c *Cart) Remove(subCategoryID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.SubCategoryID != subCategoryID {
			kept = append(kept, l)
		}
	}
	c.lines = kept
}

func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, l := range c.lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return total
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Submit ส่งตะกร้าเป็น order เดียว
// สำเร็จ = ล้างตะกร้า, พลาด = ของยังอยู่ครบ กดส่งซ้ำได้
func (c *Cart) Submit(ctx context.Context, tableNumber, note string) (uint, error) {
	if strings.TrimSpace(tableNumber) == "" {
		return 0, fmt.Errorf("table number is required")
	}

	c.mu.Lock()
	if len(c.lines) == 0 {
		c.mu.Unlock()
		return 0, fmt.Errorf("cart is empty")
	}
	type itemOut struct {
		SubCategoryID uint  `json:"subCategoryId"`
		Quantity      int   `json:"quantity"`
		Price         int64 `json:"price"`
	}
	items := make([]itemOut, 0, len(c.lines))
	var total int64
	for _, l := range c.lines {
		items = append(items, itemOut{SubCategoryID: l.SubCategoryID, Quantity: l.Quantity, Price: l.UnitPrice})
		total += l.UnitPrice * int64(l.Quantity)
	}
	c.mu.Unlock()

	payload, err := json.Marshal(map[string]any{
		"tableNumber": tableNumber,
		"note":        note,
		"items":       items,
		"totalAmount": total,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/menu/%s/orders", c.BaseURL, c.Slug), bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(res.Body).Decode(&e)
		if e.Error != "" {
			return 0, fmt.Errorf("order rejected: %s", e.Error)
		}
		return 0, fmt.Errorf("order rejected: status %d", res.StatusCode)
	}

	var body struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, err
	}

	c.Clear()
	return body.Data.ID, nil
}
