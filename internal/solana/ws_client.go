package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WatchConfig configures WebSocket watch behavior.
type WatchConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the reconnect backoff.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the per-message read deadline.
	ReadTimeout time.Duration
	// WriteTimeout is the per-message write deadline.
	WriteTimeout time.Duration
}

// DefaultWatchConfig returns default watch configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// LogEvent is one logsNotification delivered to the watch loop.
type LogEvent struct {
	Signature string
	Slot      int64
	Logs      []string
	Failed    bool
}

// WatchClient maintains a logsSubscribe stream over one mention filter,
// reconnecting and resubscribing on transport failure. Events are
// delivered on a single channel; the send blocks rather than drops.
type WatchClient struct {
	endpoint string
	config   WatchConfig
	mentions []string

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	events chan LogEvent

	// subID is the live subscription id; 0 while unsubscribed.
	subID atomic.Int64

	// Reconnects observed since Dial, exposed for metrics.
	Reconnects atomic.Int64

	done chan struct{}
	wg   sync.WaitGroup
}

// DialWatch connects, subscribes to logs mentioning the given addresses
// and starts the read and ping loops.
func DialWatch(ctx context.Context, endpoint string, mentions []string, config *WatchConfig) (*WatchClient, error) {
	cfg := DefaultWatchConfig()
	if config != nil {
		cfg = *config
	}

	c := &WatchClient{
		endpoint: endpoint,
		config:   cfg,
		mentions: mentions,
		events:   make(chan LogEvent, 1024),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	if err := c.subscribe(); err != nil {
		c.conn.Close()
		return nil, err
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

// Events returns the notification channel. It is closed by Close.
func (c *WatchClient) Events() <-chan LogEvent {
	return c.events
}

func (c *WatchClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	c.conn = conn
	return nil
}

// subscribe writes the logsSubscribe request. The confirmation is
// picked up asynchronously by the read loop.
func (c *WatchClient) subscribe() error {
	filter := map[string]interface{}{"mentions": c.mentions}
	if len(c.mentions) == 0 {
		filter = map[string]interface{}{"all": nil}
	}

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  "logsSubscribe",
		Params: []interface{}{
			filter,
			map[string]string{"commitment": "confirmed"},
		},
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close shuts the connection down and closes the event channel.
func (c *WatchClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.events)
	return nil
}

// readLoop reads messages and reconnects on failure with backoff.
func (c *WatchClient) readLoop() {
	defer c.wg.Done()

	delay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			if !c.sleep(100 * time.Millisecond) {
				return
			}
			continue
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			if !c.sleep(delay) {
				return
			}
			delay = time.Duration(float64(delay) * 2)
			if delay > c.config.MaxReconnectDelay {
				delay = c.config.MaxReconnectDelay
			}
			c.reconnect()
			continue
		}

		delay = c.config.ReconnectDelay
		c.handleMessage(message)
	}
}

// reconnect re-establishes the connection and resubscribes.
func (c *WatchClient) reconnect() {
	if c.closed.Load() {
		return
	}
	c.Reconnects.Add(1)
	c.subID.Store(0)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		return
	}
	// Subscribe failure surfaces as the next read error and retries.
	_ = c.subscribe()
}

// sleep waits for d or returns false when the client is closing.
func (c *WatchClient) sleep(d time.Duration) bool {
	select {
	case <-c.done:
		return false
	case <-time.After(d):
		return true
	}
}

func (c *WatchClient) handleMessage(message []byte) {
	var resp wsSubscribeResponse
	if err := json.Unmarshal(message, &resp); err == nil && resp.Result > 0 {
		c.subID.Store(resp.Result)
		return
	}

	var notif wsNotification
	if err := json.Unmarshal(message, &notif); err != nil || notif.Method != "logsNotification" || notif.Params == nil {
		return
	}

	value := notif.Params.Result.Value
	event := LogEvent{
		Signature: value.Signature,
		Logs:      value.Logs,
		Failed:    value.Err != nil,
	}
	if notif.Params.Result.Context != nil {
		event.Slot = notif.Params.Result.Context.Slot
	}

	select {
	case c.events <- event:
	case <-c.done:
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *WatchClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				// A dead connection surfaces in the read loop.
				_ = c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Result  int64  `json:"result"` // subscription ID
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription int64                `json:"subscription"`
	Result       wsNotificationResult `json:"result"`
}

type wsNotificationResult struct {
	Context *wsContext  `json:"context"`
	Value   wsLogsValue `json:"value"`
}

type wsContext struct {
	Slot int64 `json:"slot"`
}

type wsLogsValue struct {
	Signature string      `json:"signature"`
	Logs      []string    `json:"logs"`
	Err       interface{} `json:"err"`
}
