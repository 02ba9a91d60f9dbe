package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// allowAuth อนุญาต join ทุกห้อง ยกเว้นห้องใน denied
type allowAuth struct {
	denied map[uint]bool
}

func (a *allowAuth) CanWatchRestaurant(userID uint, role string, restaurantID uint) (bool, error) {
	if a.denied[restaurantID] {
		return false, nil
	}
	return true, nil
}

func setupHub(t *testing.T, auth RoomAuth) (*OrderHub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewOrderHub(auth)
	go hub.Run()

	r := gin.New()
	r.GET("/ws/orders", func(c *gin.Context) {
		c.Set("userId", uint(1))
		c.Set("role", "owner")
		hub.HandleWebSocket(c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/orders"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func joinRoom(t *testing.T, conn *websocket.Conn, restaurantID uint) {
	t.Helper()
	data, _ := json.Marshal(JoinPayload{RestaurantID: restaurantID})
	if err := conn.WriteJSON(Envelope{Event: EventJoin, Data: data}); err != nil {
		t.Fatalf("join: %v", err)
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

// register ผ่าน channel → ต้องรอให้ Run loop เก็บ conn เข้าห้องก่อน publish
func waitForRoom(t *testing.T, hub *OrderHub, restaurantID uint, size int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		n := len(hub.rooms[restaurantID])
		hub.mu.Unlock()
		if n == size {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %d never reached %d members", restaurantID, size)
}

func TestPublishReachesEveryoneInRoom(t *testing.T) {
	hub, srv := setupHub(t, &allowAuth{})

	a := dialWS(t, srv)
	b := dialWS(t, srv)
	joinRoom(t, a, 7)
	joinRoom(t, b, 7)
	waitForRoom(t, hub, 7, 2)

	hub.Publish(7, EventNewOrder, map[string]any{"id": 42})

	for _, conn := range []*websocket.Conn{a, b} {
		env := readEnvelope(t, conn)
		if env.Event != EventNewOrder {
			t.Fatalf("want %s, got %s", EventNewOrder, env.Event)
		}
		var payload struct {
			ID uint `json:"id"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.ID != 42 {
			t.Fatalf("bad payload %s: %v", env.Data, err)
		}
	}
}

func TestJoinLeavesPreviousRoom(t *testing.T) {
	hub, srv := setupHub(t, &allowAuth{})

	conn := dialWS(t, srv)
	joinRoom(t, conn, 1)
	waitForRoom(t, hub, 1, 1)
	joinRoom(t, conn, 2)
	waitForRoom(t, hub, 2, 1)
	waitForRoom(t, hub, 1, 0)

	// event ของห้องเก่าต้องไม่โผล่มาอีก
	hub.Publish(1, EventOrderUpdated, map[string]any{"id": 1})
	hub.Publish(2, EventOrderDeleted, map[string]any{"orderId": 9})

	env := readEnvelope(t, conn)
	if env.Event != EventOrderDeleted {
		t.Fatalf("got event from old room: %s", env.Event)
	}
}

func TestPublishToEmptyRoomIsSilent(t *testing.T) {
	hub, srv := setupHub(t, &allowAuth{})

	conn := dialWS(t, srv)
	joinRoom(t, conn, 3)
	waitForRoom(t, hub, 3, 1)

	// ไม่มีใครอยู่ห้อง 99 — ต้องไม่ block ไม่ panic
	hub.Publish(99, EventNewOrder, map[string]any{"id": 1})
	hub.Publish(3, EventNewOrder, map[string]any{"id": 2})

	env := readEnvelope(t, conn)
	var payload struct {
		ID uint `json:"id"`
	}
	json.Unmarshal(env.Data, &payload)
	if payload.ID != 2 {
		t.Fatalf("want order 2, got %s", env.Data)
	}
}

func TestRejectedJoinKeepsConnectionAlive(t *testing.T) {
	hub, srv := setupHub(t, &allowAuth{denied: map[uint]bool{10: true}})

	conn := dialWS(t, srv)
	joinRoom(t, conn, 10)

	env := readEnvelope(t, conn)
	if env.Event != "error" {
		t.Fatalf("want error envelope, got %s", env.Event)
	}

	// conn ยังใช้ต่อได้ — join ห้องที่มีสิทธิ์แล้วรับ event ปกติ
	joinRoom(t, conn, 11)
	waitForRoom(t, hub, 11, 1)
	hub.Publish(11, EventNewOrder, map[string]any{"id": 5})

	env = readEnvelope(t, conn)
	if env.Event != EventNewOrder {
		t.Fatalf("want %s, got %s", EventNewOrder, env.Event)
	}
}

func TestDisconnectRemovesFromRoom(t *testing.T) {
	hub, srv := setupHub(t, &allowAuth{})

	a := dialWS(t, srv)
	b := dialWS(t, srv)
	joinRoom(t, a, 5)
	joinRoom(t, b, 5)
	waitForRoom(t, hub, 5, 2)

	a.Close()
	waitForRoom(t, hub, 5, 1)

	hub.Publish(5, EventNewOrder, map[string]any{"id": 1})
	env := readEnvelope(t, b)
	if env.Event != EventNewOrder {
		t.Fatalf("survivor should still receive events, got %s", env.Event)
	}
}
