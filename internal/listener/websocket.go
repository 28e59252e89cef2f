package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pixil98/go-log"

	"github.com/pixil98/jogotesto/internal/wire"
)

// WebsocketListener serves the framed-JSON game protocol over websockets.
type WebsocketListener struct {
	port uint16
	cm   *ConnectionManager

	upgrader websocket.Upgrader
}

func NewWebsocketListener(port uint16, cm *ConnectionManager) *WebsocketListener {
	return &WebsocketListener{
		port: port,
		cm:   cm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser terminal is served from elsewhere; cross-origin
			// upgrades are expected.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		l.handle(ctx, w, r)
	})

	svr := &http.Server{
		Addr:    fmt.Sprintf(":%d", l.port),
		Handler: mux,
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := svr.Shutdown(shutdownCtx); err != nil {
				log.GetLogger(ctx).Errorf("shutting down websocket listener: %s", err)
			}
		case <-done:
		}
	}()

	log.GetLogger(ctx).Infof("websocket listener on port %d", l.port)

	err := svr.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket on port %d: %w", l.port, err)
	}

	return nil
}

func (l *WebsocketListener) handle(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.GetLogger(ctx).Errorf("upgrading connection: %s", err)
		return
	}

	wc := &wsConn{conn: conn}
	defer func() {
		if err := wc.Close(); err != nil {
			log.GetLogger(ctx).Debugf("closing websocket: %s", err)
		}
	}()

	// Session token rides the upgrade request; absent or stale tokens get a
	// fresh session inside the manager.
	sessionID := r.URL.Query().Get("sessionId")

	l.cm.AcceptConnection(ctx, wc, sessionID)
}

// wsConn adapts a gorilla websocket to the framed Conn interface. Writes are
// serialized; gorilla allows only one concurrent writer.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) ReadFrame() (*wire.Frame, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	// A frame that is not valid JSON surfaces as an empty event, which the
	// manager answers with a gameError; only transport failures end the read
	// loop.
	var frame wire.Frame
	_ = json.Unmarshal(data, &frame)
	return &frame, nil
}

func (c *wsConn) WriteRaw(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
