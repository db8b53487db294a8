package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSConfig configures WebSocket client behavior.
type WSConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// LogFilter selects contract log events for an eth_subscribe "logs"
// subscription. Address and topics are 0x-prefixed hex strings.
type LogFilter struct {
	Address string
	Topics  []string
}

// LogEvent is one log notification delivered by the node.
type LogEvent struct {
	Address         string   `json:"address"`
	Topics          []string `json:"topics"`
	Data            string   `json:"data"`
	TransactionHash string   `json:"transactionHash"`
	BlockNumber     string   `json:"blockNumber"`
	Removed         bool     `json:"removed"`
}

// WSClient subscribes to contract logs over a node WebSocket endpoint.
// It reconnects with exponential backoff and resubscribes active
// filters after a reconnect.
type WSClient struct {
	endpoint string
	config   WSConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps subscription ID (hex string from the node) to channel.
	subs   map[string]chan LogEvent
	subsMu sync.RWMutex

	// activeFilters stores filters for resubscription after reconnect.
	activeFilters   map[string]LogFilter
	activeFiltersMu sync.RWMutex

	// pendingSubs maps request ID to channel waiting for subscription ID.
	pendingSubs   map[uint64]chan string
	pendingSubsMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewWSClient creates a WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSConfig) (*WSClient, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClient{
		endpoint:      endpoint,
		config:        cfg,
		subs:          make(map[string]chan LogEvent),
		activeFilters: make(map[string]LogFilter),
		pendingSubs:   make(map[uint64]chan string),
		done:          make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// connect establishes the WebSocket connection.
func (c *WSClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type wsMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	Params  *struct {
		Subscription string          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params,omitempty"`
}

// SubscribeLogs subscribes to logs matching the filter.
func (c *WSClient) SubscribeLogs(ctx context.Context, filter LogFilter) (<-chan LogEvent, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	reqID := c.requestID.Add(1)

	params := map[string]interface{}{}
	if filter.Address != "" {
		params["address"] = filter.Address
	}
	if len(filter.Topics) > 0 {
		params["topics"] = filter.Topics
	}

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "eth_subscribe",
		Params:  []interface{}{"logs", params},
	}

	confirmCh := make(chan string, 1)
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = confirmCh
	c.pendingSubsMu.Unlock()

	removePending := func() {
		c.pendingSubsMu.Lock()
		delete(c.pendingSubs, reqID)
		c.pendingSubsMu.Unlock()
	}

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		removePending()
		return nil, fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()

	if err != nil {
		removePending()
		return nil, fmt.Errorf("write subscribe: %w", err)
	}

	var subID string
	select {
	case subID = <-confirmCh:
	case <-time.After(30 * time.Second):
		removePending()
		return nil, fmt.Errorf("subscription timeout after 30s")
	case <-c.done:
		return nil, fmt.Errorf("client closed")
	case <-ctx.Done():
		removePending()
		return nil, ctx.Err()
	}

	// Buffered so a slow consumer absorbs bursts without losing events.
	ch := make(chan LogEvent, 1024)
	c.subsMu.Lock()
	c.subs[subID] = ch
	c.subsMu.Unlock()

	c.activeFiltersMu.Lock()
	c.activeFilters[subID] = filter
	c.activeFiltersMu.Unlock()

	return ch, nil
}

// Close closes the WebSocket connection and all subscription channels.
func (c *WSClient) Close() error {
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

	// The read and ping loops must exit before the subscriber channels
	// close; a loop mid-send would otherwise hit a closed channel.
	c.wg.Wait()

	c.subsMu.Lock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	c.pendingSubsMu.Lock()
	for id, ch := range c.pendingSubs {
		close(ch)
		delete(c.pendingSubs, id)
	}
	c.pendingSubsMu.Unlock()

	return nil
}

// readLoop reads messages and dispatches to subscribers.
func (c *WSClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// handleMessage routes a raw frame to either a pending subscription
// confirmation or a subscriber channel.
func (c *WSClient) handleMessage(message []byte) {
	var msg wsMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	// Subscription confirmation: result is the hex subscription ID.
	if msg.ID != 0 && msg.Result != nil {
		var subID string
		if err := json.Unmarshal(msg.Result, &subID); err != nil {
			return
		}

		c.pendingSubsMu.Lock()
		ch, ok := c.pendingSubs[msg.ID]
		if ok {
			delete(c.pendingSubs, msg.ID)
		}
		c.pendingSubsMu.Unlock()

		if ok {
			select {
			case ch <- subID:
			default:
			}
		}
		return
	}

	// Log notification.
	if msg.Method == "eth_subscription" && msg.Params != nil {
		var ev LogEvent
		if err := json.Unmarshal(msg.Params.Result, &ev); err != nil {
			return
		}

		c.subsMu.RLock()
		ch, ok := c.subs[msg.Params.Subscription]
		c.subsMu.RUnlock()

		if ok {
			// Block until we can send - never drop events. The done
			// case keeps Close from deadlocking behind a full buffer
			// and from racing the channel close.
			select {
			case ch <- ev:
			case <-c.done:
				return
			}
		}
	}
}

// reconnect attempts to reconnect and resubscribe.
func (c *WSClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Will retry on the next read error.
		return
	}

	c.resubscribeAll()
}

// resubscribeAll replays active filters after a reconnect. The node
// assigns new subscription IDs, so subscriber channels are re-keyed.
func (c *WSClient) resubscribeAll() {
	c.activeFiltersMu.Lock()
	old := c.activeFilters
	c.activeFilters = make(map[string]LogFilter)
	c.activeFiltersMu.Unlock()

	c.subsMu.Lock()
	oldSubs := c.subs
	c.subs = make(map[string]chan LogEvent)
	c.subsMu.Unlock()

	for oldID, filter := range old {
		ch, ok := oldSubs[oldID]
		if !ok {
			continue
		}

		newID, err := c.resubscribe(filter)
		if err != nil {
			close(ch)
			continue
		}

		c.subsMu.Lock()
		c.subs[newID] = ch
		c.subsMu.Unlock()

		c.activeFiltersMu.Lock()
		c.activeFilters[newID] = filter
		c.activeFiltersMu.Unlock()
	}
}

// resubscribe sends a single eth_subscribe and waits for the new ID.
func (c *WSClient) resubscribe(filter LogFilter) (string, error) {
	reqID := c.requestID.Add(1)

	params := map[string]interface{}{}
	if filter.Address != "" {
		params["address"] = filter.Address
	}
	if len(filter.Topics) > 0 {
		params["topics"] = filter.Topics
	}

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "eth_subscribe",
		Params:  []interface{}{"logs", params},
	}

	confirmCh := make(chan string, 1)
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = confirmCh
	c.pendingSubsMu.Unlock()

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		return "", fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()

	if err != nil {
		return "", fmt.Errorf("write resubscribe: %w", err)
	}

	select {
	case subID := <-confirmCh:
		return subID, nil
	case <-time.After(30 * time.Second):
		return "", fmt.Errorf("resubscription timeout")
	case <-c.done:
		return "", fmt.Errorf("client closed")
	}
}

// pingLoop keeps the connection alive.
func (c *WSClient) pingLoop() {
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
				c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// BlockNumberInt parses the hex block number of a log event.
func (e LogEvent) BlockNumberInt() (int64, error) {
	s := e.BlockNumber
	if len(s) > 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	return strconv.ParseInt(s, 16, 64)
}
