package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LeoAkay/qr-menu-sub000/entity"
	"github.com/LeoAkay/qr-menu-sub000/ws"

	"gorm.io/gorm"
)

func order(id uint, table string, active bool, itemCount int) entity.Order {
	o := entity.Order{
		Model:       gorm.Model{ID: id},
		TableNumber: table,
		IsActive:    active,
	}
	for i := 0; i < itemCount; i++ {
		o.Items = append(o.Items, entity.OrderItem{Quantity: 1, UnitPrice: 1000})
	}
	return o
}

func ids(list []entity.Order) []uint {
	out := make([]uint, 0, len(list))
	for _, o := range list {
		out = append(out, o.ID)
	}
	return out
}

func newTestReconciler() *Reconciler {
	r := NewReconciler("http://unused", "ws://unused", "tok", 1)
	r.NewOrderFlag = 50 * time.Millisecond
	return r
}

func TestNewOrderPrependsOnce(t *testing.T) {
	r := newTestReconciler()
	r.applyNewOrder(order(1, "A1", true, 1))
	r.applyNewOrder(order(2, "A2", true, 1))
	// push กับ poll อาจส่ง order เดิมซ้ำ — ต้องไม่ duplicate
	r.applyNewOrder(order(1, "A1", true, 1))

	got := ids(r.Snapshot())
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Fatalf("want [2 1], got %v", got)
	}
}

func TestNewOrderFlagExpires(t *testing.T) {
	r := newTestReconciler()
	var notified []uint
	r.OnNewOrder = func(o entity.Order) { notified = append(notified, o.ID) }

	r.applyNewOrder(order(1, "A1", true, 1))
	if !r.IsNew(1) {
		t.Fatal("order 1 should be flagged new")
	}
	r.applyNewOrder(order(1, "A1", true, 1))
	if len(notified) != 1 {
		t.Fatalf("duplicate push must not re-notify, got %v", notified)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.IsNew(1) {
		if time.Now().After(deadline) {
			t.Fatal("new flag never expired")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOrderUpdatedReplacesInPlace(t *testing.T) {
	r := newTestReconciler()
	r.applyNewOrder(order(1, "A1", true, 1))
	r.applyNewOrder(order(2, "A2", true, 1))

	upd := order(1, "A1", true, 2)
	upd.TotalAmount = 2000
	r.applyOrderUpdated(upd)

	snap := r.Snapshot()
	if got := ids(snap); len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Fatalf("update must not reorder, got %v", got)
	}
	if snap[1].TotalAmount != 2000 || len(snap[1].Items) != 2 {
		t.Fatalf("order 1 not replaced: %+v", snap[1])
	}
}

func TestOrderUpdatedRemovesEmptyOrClosed(t *testing.T) {
	r := newTestReconciler()
	r.applyNewOrder(order(1, "A1", true, 1))
	r.applyNewOrder(order(2, "A2", true, 1))

	// ลด item จนหมด = หายจากจอ
	r.applyOrderUpdated(order(1, "A1", true, 0))
	// ปิดบิลแล้ว = หายจากจอเหมือนกัน
	r.applyOrderUpdated(order(2, "A2", false, 1))

	if got := r.Snapshot(); len(got) != 0 {
		t.Fatalf("want empty list, got %v", ids(got))
	}
	// ลบซ้ำต้องเฉย ๆ
	r.applyOrderUpdated(order(1, "A1", true, 0))
}

func TestOrderUpdatedForUnknownOrderAppends(t *testing.T) {
	r := newTestReconciler()
	r.applyNewOrder(order(1, "A1", true, 1))

	// event ของ order ที่ไม่เคยเห็น (เพิ่ง reconnect) — เก็บไว้รอ sweep จัดระเบียบ
	r.applyOrderUpdated(order(9, "B4", true, 1))

	if got := ids(r.Snapshot()); len(got) != 2 || got[1] != 9 {
		t.Fatalf("want [1 9], got %v", got)
	}
}

func TestOrderDeletedRemoves(t *testing.T) {
	r := newTestReconciler()
	r.applyNewOrder(order(1, "A1", true, 1))
	r.applyNewOrder(order(2, "A2", true, 1))

	r.applyOrderDeleted(1)
	r.applyOrderDeleted(1) // idempotent

	if got := ids(r.Snapshot()); len(got) != 1 || got[0] != 2 {
		t.Fatalf("want [2], got %v", got)
	}
}

func TestReplaceAllDropsInactive(t *testing.T) {
	r := newTestReconciler()
	r.applyNewOrder(order(99, "Z9", true, 1))

	r.replaceAll([]entity.Order{
		order(1, "A1", true, 1),
		order(2, "A2", false, 1), // ปิดบิลแล้ว ไม่ต้องโชว์
		order(3, "A3", true, 1),
	})

	if got := ids(r.Snapshot()); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("want [1 3], got %v", got)
	}
}

func TestGroupedByTable(t *testing.T) {
	r := newTestReconciler()
	r.replaceAll([]entity.Order{
		order(1, "A1", true, 1),
		order(2, "A2", true, 1),
		order(3, "A1", true, 1),
	})

	g := r.Grouped()
	if len(g["A1"]) != 2 || len(g["A2"]) != 1 {
		t.Fatalf("bad grouping: %v", g)
	}
}

func TestHandleEventDispatch(t *testing.T) {
	r := newTestReconciler()

	push := func(event string, payload any) {
		data, _ := json.Marshal(payload)
		r.handleEvent(ws.Envelope{Event: event, Data: data})
	}

	push(ws.EventNewOrder, order(1, "A1", true, 1))
	push(ws.EventOrderUpdated, order(1, "A1", true, 2))
	push("something-else", map[string]any{"x": 1})
	push(ws.EventOrderDeleted, map[string]uint{"orderId": 1})

	if got := r.Snapshot(); len(got) != 0 {
		t.Fatalf("want empty after delete, got %v", ids(got))
	}
}

func TestFetchOrdersParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/partner/orders" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		if req.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"data": map[string]any{
				"items": []entity.Order{order(5, "A1", true, 1)},
			},
		})
	}))
	defer srv.Close()

	r := newTestReconciler()
	r.BaseURL = srv.URL

	list, err := r.fetchOrders(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(list) != 1 || list[0].ID != 5 {
		t.Fatalf("bad list: %+v", list)
	}
}

func TestWaitReconnectPacesRetries(t *testing.T) {
	r := newTestReconciler()
	r.ReconnectWait = 30 * time.Millisecond

	start := time.Now()
	if !r.waitReconnect(context.Background()) {
		t.Fatal("want true when ctx still alive")
	}
	if elapsed := time.Since(start); elapsed < r.ReconnectWait {
		t.Fatalf("retried after %v, want at least %v", elapsed, r.ReconnectWait)
	}

	// ctx จบแล้วต้องเลิกเลย ไม่รอครบ
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.ReconnectWait = time.Hour
	if r.waitReconnect(ctx) {
		t.Fatal("want false when ctx cancelled")
	}
}

func TestRunFailsFastWhenInitialLoadFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := newTestReconciler()
	r.BaseURL = srv.URL

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Run(ctx); err == nil {
		t.Fatal("want error when initial load fails")
	}
}
