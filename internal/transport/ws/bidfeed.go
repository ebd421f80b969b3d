package ws

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameHostOrigin,
}

// sameHostOrigin admits browser connections only from the host serving
// the API. Non-browser clients send no Origin header and pass.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// BidUpdate is pushed to every subscriber of a product's bid feed after
// each accepted bid.
type BidUpdate struct {
	ProductID         string `json:"productId"`
	CurrentBid        int64  `json:"currentBid"`
	MinimumAcceptable int64  `json:"minimumAcceptable"`
	Timestamp         string `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan BidUpdate
}

// BidFeed fans accepted bids out to websocket subscribers grouped by
// product. Slow subscribers are dropped rather than blocking the feed.
type BidFeed struct {
	mu          sync.RWMutex
	subscribers map[string]map[*client]struct{}
}

func NewBidFeed() *BidFeed {
	return &BidFeed{
		subscribers: make(map[string]map[*client]struct{}),
	}
}

// HandleConnection upgrades the request and subscribes it to the
// product's feed until the peer disconnects.
func (f *BidFeed) HandleConnection(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if productID == "" {
		http.Error(w, "product id required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("failed to upgrade bid feed connection")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan BidUpdate, 16),
	}
	f.subscribe(productID, c)

	logrus.WithField("product_id", productID).Debug("bid feed subscriber connected")

	go c.writePump()
	c.readPump(func() { f.unsubscribe(productID, c) })
}

// BroadcastBid implements the bid notification hook of the bidding
// service.
func (f *BidFeed) BroadcastBid(productID string, currentBid, minimumAcceptable int64) {
	update := BidUpdate{
		ProductID:         productID,
		CurrentBid:        currentBid,
		MinimumAcceptable: minimumAcceptable,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for c := range f.subscribers[productID] {
		select {
		case c.send <- update:
		default:
			// Subscriber is not keeping up, close and let the read pump
			// clean it out.
			c.conn.Close()
		}
	}
}

func (f *BidFeed) subscribe(productID string, c *client) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subscribers[productID] == nil {
		f.subscribers[productID] = make(map[*client]struct{})
	}
	f.subscribers[productID][c] = struct{}{}
}

func (f *BidFeed) unsubscribe(productID string, c *client) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if set, ok := f.subscribers[productID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(f.subscribers, productID)
		}
	}
}

// readPump discards incoming frames; the feed is one-way. It exists to
// notice disconnects and run the cleanup.
func (c *client) readPump(cleanup func()) {
	defer func() {
		cleanup()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for update := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteJSON(update); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
