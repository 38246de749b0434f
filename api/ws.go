package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsConn serializes writes; the dispatcher may push from several request
// goroutines while the read loop holds the connection open.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// ServeWS upgrades the connection and waits for the register handshake:
// the first frame must be {"event":"register","token":...} carrying the
// same bearer token the REST endpoints use. After that the connection
// receives new-notification frames until it drops.
func (a *API) ServeWS(w http.ResponseWriter, r *http.Request) {
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn := &wsConn{conn: raw}

	var frame struct {
		Event string `json:"event"`
		Token string `json:"token"`
	}
	if err := raw.ReadJSON(&frame); err != nil || frame.Event != "register" {
		conn.Close()
		return
	}
	claims, err := a.Tokens.Verify(frame.Token)
	if err != nil {
		conn.Close()
		return
	}

	a.Registry.Register(claims.Email, conn)
	log.Printf("ws: %s registered", claims.Email)
	defer func() {
		a.Registry.Unregister(claims.Email, conn)
		conn.Close()
		log.Printf("ws: %s disconnected", claims.Email)
	}()

	// Drain the connection until the client goes away. Pushes come from
	// the dispatcher, not from here.
	for {
		if _, _, err := raw.ReadMessage(); err != nil {
			return
		}
	}
}
