package ws

import (
	"log"
	"net/http"
	"sync"

	"backend/repository"
	"backend/services"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// NotifyHub pushes order and payment events to connected clients. Customers
// subscribe to their own events, restaurant owners to their restaurant's.
// Dispatch never blocks the caller: events go through a buffered channel and
// are dropped with a log line when the buffer is full.
type NotifyHub struct {
	customers   map[uint]map[*websocket.Conn]bool // userID -> connections
	restaurants map[uint]map[*websocket.Conn]bool // restaurantID -> connections
	events      chan services.Event
	register    chan subscription
	unregister  chan subscription
	mu          sync.Mutex
	catalog     *repository.CatalogRepository
}

type subscription struct {
	conn         *websocket.Conn
	userID       uint
	restaurantID uint // 0 for customer connections
}

func NewNotifyHub(catalog *repository.CatalogRepository) *NotifyHub {
	return &NotifyHub{
		customers:   make(map[uint]map[*websocket.Conn]bool),
		restaurants: make(map[uint]map[*websocket.Conn]bool),
		events:      make(chan services.Event, 256),
		register:    make(chan subscription),
		unregister:  make(chan subscription),
		catalog:     catalog,
	}
}

// Dispatch implements services.EventDispatcher.
func (h *NotifyHub) Dispatch(ev services.Event) {
	select {
	case h.events <- ev:
	default:
		log.Printf("ws: event buffer full, dropping %s for order %d", ev.Name, ev.OrderID)
	}
}

func (h *NotifyHub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if sub.restaurantID != 0 {
				if h.restaurants[sub.restaurantID] == nil {
					h.restaurants[sub.restaurantID] = make(map[*websocket.Conn]bool)
				}
				h.restaurants[sub.restaurantID][sub.conn] = true
			} else {
				if h.customers[sub.userID] == nil {
					h.customers[sub.userID] = make(map[*websocket.Conn]bool)
				}
				h.customers[sub.userID][sub.conn] = true
			}
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			pool := h.customers[sub.userID]
			if sub.restaurantID != 0 {
				pool = h.restaurants[sub.restaurantID]
			}
			if _, ok := pool[sub.conn]; ok {
				delete(pool, sub.conn)
				sub.conn.Close()
			}
			h.mu.Unlock()

		case ev := <-h.events:
			h.mu.Lock()
			h.fanOut(h.customers[ev.UserID], ev)
			h.fanOut(h.restaurants[ev.RestaurantID], ev)
			h.mu.Unlock()
		}
	}
}

// fanOut writes under h.mu; a failed write evicts the connection.
func (h *NotifyHub) fanOut(conns map[*websocket.Conn]bool, ev services.Event) {
	for conn := range conns {
		if err := conn.WriteJSON(ev); err != nil {
			log.Printf("ws write error: %v", err)
			conn.Close()
			delete(conns, conn)
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleCustomer serves /ws/orders: the caller's own order events.
func (h *NotifyHub) HandleCustomer(c *gin.Context) {
	userID := utils.CurrentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	sub := subscription{conn: conn, userID: userID}
	h.register <- sub
	go h.drain(sub)
}

// HandleRestaurant serves /ws/restaurant: events for the owner's restaurant.
func (h *NotifyHub) HandleRestaurant(c *gin.Context) {
	userID := utils.CurrentUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rest, err := h.catalog.GetRestaurantByOwner(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "restaurant not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	sub := subscription{conn: conn, userID: userID, restaurantID: rest.ID}
	h.register <- sub
	go h.drain(sub)
}

// drain keeps the connection alive until the client goes away. Inbound
// messages are ignored; this is a one-way notification stream.
func (h *NotifyHub) drain(sub subscription) {
	defer func() { h.unregister <- sub }()
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}
