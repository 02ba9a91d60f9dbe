package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ชื่อ event บน wire (ใช้ร่วมกับฝั่ง dashboard)
const (
	EventJoin         = "join"
	EventNewOrder     = "new-order"
	EventOrderUpdated = "order-updated"
	EventOrderDeleted = "order-deleted"
)

// Envelope คือรูปแบบข้อความบน WebSocket ทั้งสองทิศทาง
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type JoinPayload struct {
	RestaurantID uint `json:"restaurantId"`
}

// RoomAuth ตัดสินว่า user ดู order ของร้านไหนได้บ้าง
// (owner เฉพาะร้านตัวเอง, admin ได้ทุกร้าน)
type RoomAuth interface {
	CanWatchRestaurant(userID uint, role string, restaurantID uint) (bool, error)
}

// OrderHub คือศูนย์กลาง broadcast order event แยกห้องตามร้าน
// สร้างครั้งเดียวตอน start process แล้ว inject ให้ทุกคนที่ต้อง publish
type OrderHub struct {
	rooms   map[uint]map[*websocket.Conn]bool // restaurantID -> set of clients
	current map[*websocket.Conn]uint          // ห้องปัจจุบันของแต่ละ conn

	broadcast  chan broadcastMessage
	register   chan subscription
	unregister chan *websocket.Conn

	mu   sync.Mutex
	auth RoomAuth
}

// subscription = ขอเข้าห้องของร้านหนึ่ง (1 conn อยู่ได้ทีละห้อง)
type subscription struct {
	conn         *websocket.Conn
	restaurantID uint
}

type broadcastMessage struct {
	restaurantID uint
	envelope     Envelope
}

func NewOrderHub(auth RoomAuth) *OrderHub {
	return &OrderHub{
		rooms:      make(map[uint]map[*websocket.Conn]bool),
		current:    make(map[*websocket.Conn]uint),
		broadcast:  make(chan broadcastMessage),
		register:   make(chan subscription),
		unregister: make(chan *websocket.Conn),
		auth:       auth,
	}
}

// คอยฟัง register/unregister/broadcast ตลอดเวลา
func (h *OrderHub) Run() {
	for {
		select {
		// client ขอเข้าห้อง — ออกจากห้องเดิมก่อนเสมอ กัน membership ค้างข้ามร้าน
		case sub := <-h.register:
			h.mu.Lock()
			if prev, ok := h.current[sub.conn]; ok {
				delete(h.rooms[prev], sub.conn)
			}
			if h.rooms[sub.restaurantID] == nil {
				h.rooms[sub.restaurantID] = make(map[*websocket.Conn]bool)
			}
			h.rooms[sub.restaurantID][sub.conn] = true
			h.current[sub.conn] = sub.restaurantID
			h.mu.Unlock()

		// client หลุด → เอาออกจากห้องแล้วปิด ไม่มี event แจ้งใคร
		case conn := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.current[conn]; ok {
				delete(h.rooms[room], conn)
				delete(h.current, conn)
			}
			conn.Close()
			h.mu.Unlock()

		// กระจาย event ให้ทุก conn ในห้อง — write พังตัวไหนตัดตัวนั้น ตัวอื่นไปต่อ
		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.rooms[msg.restaurantID] {
				if err := conn.WriteJSON(msg.envelope); err != nil {
					log.Printf("ws write error: %v", err)
					conn.Close()
					delete(h.rooms[msg.restaurantID], conn)
					delete(h.current, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish ส่ง event ให้ห้องของร้าน ห้องว่างก็เงียบหาย (ไม่มี queue/persist)
// ฝั่ง dashboard ต้อง poll ซ้ำเป็น backstop อยู่แล้ว
func (h *OrderHub) Publish(restaurantID uint, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws marshal error: %v", err)
		return
	}
	h.broadcast <- broadcastMessage{
		restaurantID: restaurantID,
		envelope:     Envelope{Event: event, Data: data},
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS route: /ws/orders (ต้องผ่าน WSAuthMiddleware มาก่อน)
func (h *OrderHub) HandleWebSocket(c *gin.Context) {
	userIDVal, _ := c.Get("userId")
	userID, _ := userIDVal.(uint)
	roleVal, _ := c.Get("role")
	role, _ := roleVal.(string)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	go h.listen(conn, userID, role)
}

// listen อ่านข้อความ join จาก client — re-join ทุกครั้งที่ reconnect
// เพราะ hub ไม่จำ membership ข้าม connection
func (h *OrderHub) listen(conn *websocket.Conn, userID uint, role string) {
	defer func() { h.unregister <- conn }()

	for {
		_, msgData, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(msgData, &env); err != nil {
			log.Printf("invalid ws payload: %v", err)
			continue
		}
		if env.Event != EventJoin {
			continue
		}

		var join JoinPayload
		if err := json.Unmarshal(env.Data, &join); err != nil || join.RestaurantID == 0 {
			log.Printf("invalid join payload: %v", err)
			continue
		}

		ok, err := h.auth.CanWatchRestaurant(userID, role, join.RestaurantID)
		if err != nil || !ok {
			// join ไม่ผ่านไม่ตัด conn ทิ้ง — client ลองใหม่ได้
			conn.WriteJSON(Envelope{Event: "error", Data: json.RawMessage(`"join rejected"`)})
			continue
		}

		h.register <- subscription{conn: conn, restaurantID: join.RestaurantID}
	}
}
