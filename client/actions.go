package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// action จาก dashboard ยิงตรงเข้า gateway แล้ว refetch ทันที ไม่รอ event
// (event ของ action ตัวเองจะตามมาอีกรอบ merge rule ดูดซับให้ ไม่นับซ้ำ)

// PayItems จ่ายตามจำนวนต่อ item; markInactive = จ่ายครบแล้วปิดโต๊ะ
func (r *Reconciler) PayItems(ctx context.Context, orderID uint, items map[uint]int, markInactive bool) error {
	body := map[string]any{"items": items, "markInactive": markInactive}
	if err := r.post(ctx, fmt.Sprintf("/partner/orders/%d/pay", orderID), body); err != nil {
		return fmt.Errorf("failed to mark item paid: %w", err)
	}
	return r.refetch(ctx)
}

// CancelItems ตัดของที่ยังไม่จ่ายออก
func (r *Reconciler) CancelItems(ctx context.Context, orderID uint, items map[uint]int) error {
	body := map[string]any{"items": items}
	if err := r.post(ctx, fmt.Sprintf("/partner/orders/%d/cancel", orderID), body); err != nil {
		return fmt.Errorf("failed to cancel item: %w", err)
	}
	return r.refetch(ctx)
}

// DeleteOrder ลบทั้งบิล (ปุ่ม override ของพนักงาน)
func (r *Reconciler) DeleteOrder(ctx context.Context, orderID uint) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/partner/orders/%d", r.BaseURL, orderID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.Token)

	res, err := r.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to delete order: status %d", res.StatusCode)
	}
	return r.refetch(ctx)
}

func (r *Reconciler) post(ctx context.Context, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.Token)
	req.Header.Set("Content-Type", "application/json")

	res, err := r.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(res.Body).Decode(&e)
		if e.Error != "" {
			return fmt.Errorf("status %d: %s", res.StatusCode, e.Error)
		}
		return fmt.Errorf("status %d", res.StatusCode)
	}
	return nil
}
