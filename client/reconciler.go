// Package client มี component ฝั่งหน้าจอ: Reconciler สำหรับ dashboard ร้าน
// และ Cart สำหรับลูกค้าที่สแกน QR
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/LeoAkay/qr-menu-sub000/entity"
	"github.com/LeoAkay/qr-menu-sub000/ws"

	"github.com/gorilla/websocket"
)

// สถานะ connection — โชว์ค้างไว้บน dashboard ให้พนักงานรู้ว่าข้อมูลสดไหม
const (
	StateConnecting   = "connecting"
	StateConnected    = "connected"
	StateDisconnected = "disconnected"
)

const (
	defaultSweepInterval = 10 * time.Second
	defaultReconnectWait = 3 * time.Second
	defaultNewOrderFlag  = 3 * time.Second
)

// Reconciler ถือรายการ order ของร้านหนึ่งไว้ในเครื่อง รับ push จาก hub
// แล้ว poll เต็ม ๆ เป็นระยะเพื่อซ่อม event ที่หลุดช่วงหลุด connect
// push = ให้เร็ว, poll = ให้ถูก
type Reconciler struct {
	BaseURL      string // เช่น http://localhost:8000
	WSURL        string // เช่น ws://localhost:8000/ws/orders
	Token        string
	RestaurantID uint

	HTTPClient    *http.Client
	SweepInterval time.Duration
	ReconnectWait time.Duration
	NewOrderFlag  time.Duration

	// callback ฝั่ง UI (เสียงแจ้งเตือน/toast/ไฟสถานะ) — nil ได้ทุกตัว
	OnNewOrder    func(o entity.Order)
	OnStateChange func(state string)

	mu     sync.Mutex
	orders []entity.Order
	newIDs map[uint]bool
	state  string
}

func NewReconciler(baseURL, wsURL, token string, restaurantID uint) *Reconciler {
	return &Reconciler{
		BaseURL:       baseURL,
		WSURL:         wsURL,
		Token:         token,
		RestaurantID:  restaurantID,
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
		SweepInterval: defaultSweepInterval,
		ReconnectWait: defaultReconnectWait,
		NewOrderFlag:  defaultNewOrderFlag,
		newIDs:        make(map[uint]bool),
		state:         StateDisconnected,
	}
}

// Run บล็อคจนกว่า ctx จะจบ
// โหลดรอบแรกพังถือว่า fatal (หน้าจอขึ้น error ได้เลย) — หลังจากนั้น
// fetch พังเป็นเรื่องชั่วคราว รอรอบถัดไป
func (r *Reconciler) Run(ctx context.Context) error {
	if err := r.refetch(ctx); err != nil {
		return fmt.Errorf("initial order load: %w", err)
	}

	go r.sweepLoop(ctx)
	r.connectLoop(ctx)
	return nil
}

// ----- state / snapshot -----

func (r *Reconciler) State() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Reconciler) setState(s string) {
	r.mu.Lock()
	changed := r.state != s
	r.state = s
	r.mu.Unlock()
	if changed && r.OnStateChange != nil {
		r.OnStateChange(s)
	}
}

// Snapshot คืนสำเนารายการ order ปัจจุบัน (ใหม่สุดอยู่หน้า)
func (r *Reconciler) Snapshot() []entity.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Order, len(r.orders))
	copy(out, r.orders)
	return out
}

// IsNew บอกว่า order เพิ่งเข้ามา (ไฟกระพริบ ~3 วิ)
func (r *Reconciler) IsNew(orderID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.newIDs[orderID]
}

// Grouped จัด order ตามเบอร์โต๊ะสำหรับแสดงผล
func (r *Reconciler) Grouped() map[string][]entity.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]entity.Order)
	for _, o := range r.orders {
		out[o.TableNumber] = append(out[o.TableNumber], o)
	}
	return out
}

// ----- merge rules (ต้อง idempotent เพราะ push กับ poll วิ่งสลับกัน) -----

// new-order: มีอยู่แล้ว = ส่งซ้ำ ไม่ทำอะไร / ยังไม่มี = แทรกหัว + แจ้งเตือน
func (r *Reconciler) applyNewOrder(o entity.Order) {
	r.mu.Lock()
	for _, ex := range r.orders {
		if ex.ID == o.ID {
			r.mu.Unlock()
			return
		}
	}
	r.orders = append([]entity.Order{o}, r.orders...)
	r.newIDs[o.ID] = true
	r.mu.Unlock()

	if r.OnNewOrder != nil {
		r.OnNewOrder(o)
	}
	time.AfterFunc(r.NewOrderFlag, func() {
		r.mu.Lock()
		delete(r.newIDs, o.ID)
		r.mu.Unlock()
	})
}

// order-updated: item หมดหรือโดนปิด = เอาออก / มีอยู่ = วางทับ / ไม่มี = ต่อท้าย
// ("update จนไม่เหลืออะไร" กับ "update เป็นปิดบิล" ถือเป็นการลบเหมือนกัน)
func (r *Reconciler) applyOrderUpdated(o entity.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(o.Items) == 0 || !o.IsActive {
		r.removeLocked(o.ID)
		return
	}
	for i, ex := range r.orders {
		if ex.ID == o.ID {
			r.orders[i] = o
			return
		}
	}
	// event ของ order ที่เราไม่เคยเห็น (เช่นเพิ่ง reconnect) — รับไว้ก่อน
	r.orders = append(r.orders, o)
}

func (r *Reconciler) applyOrderDeleted(orderID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(orderID)
}

func (r *Reconciler) removeLocked(orderID uint) {
	kept := r.orders[:0]
	for _, o := range r.orders {
		if o.ID != orderID {
			kept = append(kept, o)
		}
	}
	r.orders = kept
}

// replaceAll: คำตอบจาก server คือความจริง — push ที่มาคร่อมรอบ fetch
// อาจโดนทับได้ (last-write-wins) ยอมรับ race นี้ เพราะรอบถัดไปซ่อมให้เอง
func (r *Reconciler) replaceAll(list []entity.Order) {
	active := make([]entity.Order, 0, len(list))
	for _, o := range list {
		if o.IsActive {
			active = append(active, o)
		}
	}
	r.mu.Lock()
	r.orders = active
	r.mu.Unlock()
}

// ----- websocket loop -----

func (r *Reconciler) connectLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		r.setState(StateConnecting)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, r.WSURL+"?token="+r.Token, nil)
		if err != nil {
			r.setState(StateDisconnected)
			if !r.waitReconnect(ctx) {
				return
			}
			continue
		}

		// ต้อง join ใหม่ทุกครั้งที่ต่อใหม่ — hub ไม่จำห้องข้าม connection
		join, _ := json.Marshal(ws.JoinPayload{RestaurantID: r.RestaurantID})
		if err := conn.WriteJSON(ws.Envelope{Event: ws.EventJoin, Data: join}); err != nil {
			log.Printf("reconciler: join failed: %v", err)
			conn.Close()
			r.setState(StateDisconnected)
			if !r.waitReconnect(ctx) {
				return
			}
			continue
		}
		r.setState(StateConnected)

		// ปิด conn เมื่อ ctx จบ ไม่งั้น ReadMessage ค้าง
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-done:
			}
		}()

		r.readLoop(conn)
		close(done)
		conn.Close()
		r.setState(StateDisconnected)
	}
}

// waitReconnect เว้นจังหวะก่อนต่อใหม่ ทุกเส้นทางที่ต่อไม่สำเร็จใช้ตัวนี้
// (ไม่งั้น server ที่งอแงจะโดนยิงรัว ๆ) คืน false เมื่อ ctx จบ
func (r *Reconciler) waitReconnect(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(r.ReconnectWait):
		return true
	}
}

func (r *Reconciler) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env ws.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("reconciler: bad envelope: %v", err)
			continue
		}
		r.handleEvent(env)
	}
}

func (r *Reconciler) handleEvent(env ws.Envelope) {
	switch env.Event {
	case ws.EventNewOrder:
		var o entity.Order
		if err := json.Unmarshal(env.Data, &o); err != nil {
			log.Printf("reconciler: bad new-order payload: %v", err)
			return
		}
		r.applyNewOrder(o)
	case ws.EventOrderUpdated:
		var o entity.Order
		if err := json.Unmarshal(env.Data, &o); err != nil {
			log.Printf("reconciler: bad order-updated payload: %v", err)
			return
		}
		r.applyOrderUpdated(o)
	case ws.EventOrderDeleted:
		var p struct {
			OrderID uint `json:"orderId"`
		}
		if err := json.Unmarshal(env.Data, &p); err != nil {
			log.Printf("reconciler: bad order-deleted payload: %v", err)
			return
		}
		r.applyOrderDeleted(p.OrderID)
	}
}

// ----- reconciliation sweep -----

func (r *Reconciler) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(r.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// พังก็แค่รอบนี้ รอบหน้าเอาใหม่
			if err := r.refetch(ctx); err != nil {
				log.Printf("reconciler: sweep failed: %v", err)
			}
		}
	}
}

func (r *Reconciler) refetch(ctx context.Context) error {
	list, err := r.fetchOrders(ctx)
	if err != nil {
		return err
	}
	r.replaceAll(list)
	return nil
}

func (r *Reconciler) fetchOrders(ctx context.Context) ([]entity.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/partner/orders", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.Token)

	res, err := r.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list orders: status %d", res.StatusCode)
	}

	var body struct {
		OK   bool `json:"ok"`
		Data struct {
			Items []entity.Order `json:"items"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Data.Items, nil
}
