package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chargebook/backend/services/booking-client/internal/clients"
	"chargebook/backend/services/booking-client/internal/models"
)

const (
	defaultPongWait     = 60 * time.Second
	defaultWriteTimeout = 10 * time.Second
	maxFrameSize        = 1024 * 1024
)

// SlotFrame is one pushed slot update. Servers may also push a bare slot array.
type SlotFrame struct {
	PortID int64         `json:"port_id"`
	Slots  []models.Slot `json:"slots"`
}

// SlotHandler receives every slot list pushed for the watched port.
type SlotHandler func(slots []models.Slot)

// SlotWatcher subscribes to live slot updates of a port.
type SlotWatcher struct {
	baseURL      string
	token        *clients.Token
	dialer       *websocket.Dialer
	logger       *zap.Logger
	pongWait     time.Duration
	writeTimeout time.Duration
}

// NewSlotWatcher builds a watcher for the websocket endpoint at baseURL (ws:// or
// wss://; http(s) URLs are converted).
func NewSlotWatcher(baseURL string, token *clients.Token, logger *zap.Logger) *SlotWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotWatcher{
		baseURL:      strings.TrimRight(ToWebsocketURL(baseURL), "/"),
		token:        token,
		dialer:       websocket.DefaultDialer,
		logger:       logger,
		pongWait:     defaultPongWait,
		writeTimeout: defaultWriteTimeout,
	}
}

// ToWebsocketURL rewrites an http(s) base URL to its ws(s) form.
func ToWebsocketURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	return u.String()
}

// Watch streams slot lists for portID to fn until ctx is done or the connection
// fails. It returns nil when ctx ends the subscription.
func (w *SlotWatcher) Watch(ctx context.Context, portID int64, fn SlotHandler) error {
	if w.token.Expired(time.Now()) {
		return clients.ErrTokenExpired
	}

	header := http.Header{}
	if !w.token.Empty() {
		header.Set("Authorization", w.token.AuthHeader())
	}
	endpoint := fmt.Sprintf("%s/ws/ports/%d/slots", w.baseURL, portID)

	conn, resp, err := w.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial slot feed: status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial slot feed: %w", err)
	}
	w.logger.Info("slot feed connected", zap.Int64("port_id", portID))

	var writeMu sync.Mutex
	done := make(chan struct{})
	defer close(done)
	go w.keepAlive(ctx, conn, &writeMu, done)

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(w.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(w.pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.logger.Info("slot feed closed", zap.Int64("port_id", portID))
				return nil
			}
			return fmt.Errorf("read slot feed: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(w.pongWait))

		frame, err := DecodeFrame(message)
		if err != nil {
			w.logger.Warn("skipping malformed slot frame", zap.Int64("port_id", portID), zap.Error(err))
			continue
		}
		if frame.PortID != 0 && frame.PortID != portID {
			continue
		}
		fn(frame.Slots)
	}
}

// keepAlive pings the server and closes the connection when ctx ends.
func (w *SlotWatcher) keepAlive(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, done <-chan struct{}) {
	ticker := time.NewTicker(w.pongWait * 9 / 10)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			writeMu.Lock()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(w.writeTimeout))
			writeMu.Unlock()
			return
		case <-ticker.C:
			writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(w.writeTimeout))
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// DecodeFrame accepts either a SlotFrame object or a bare slot array.
func DecodeFrame(raw []byte) (SlotFrame, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return SlotFrame{}, errors.New("empty frame")
	}
	if trimmed[0] == '[' {
		var slots []models.Slot
		if err := json.Unmarshal(trimmed, &slots); err != nil {
			return SlotFrame{}, err
		}
		return SlotFrame{Slots: slots}, nil
	}
	var frame SlotFrame
	if err := json.Unmarshal(trimmed, &frame); err != nil {
		return SlotFrame{}, err
	}
	if frame.Slots == nil {
		return SlotFrame{}, errors.New("frame has no slots")
	}
	return frame, nil
}
