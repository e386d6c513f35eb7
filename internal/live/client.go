// Package live maintains the websocket feed from the game server: dialing,
// reconnecting with backoff, decoding frames and fanning events out to
// handlers and the UI event loop.
package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/avalonarena/spectate/internal/logging"
	"github.com/avalonarena/spectate/internal/protocol"
)

// ErrNotConnected is returned by Send while no connection is up.
var ErrNotConnected = errors.New("not connected to server")

// ConnState describes the connection lifecycle.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

// EventMsg is delivered to the notify sink for every decoded event.
type EventMsg struct {
	Envelope *protocol.Envelope
	Payload  any
}

// ConnStateMsg is delivered to the notify sink on every connection state
// change. Next is the delay before the upcoming reconnect attempt.
type ConnStateMsg struct {
	State   ConnState
	Err     error
	Attempt int
	Next    time.Duration
}

// readLimit bounds one inbound frame. Profile dumps for a whole community
// run fit comfortably under a megabyte.
const readLimit = 1 << 20

// Client is the live viewer's connection to the game server. One read
// goroutine owns the socket; handlers run on it in transport order, and the
// notify sink receives a message per event for the UI loop.
type Client struct {
	url      string
	log      *logging.Logger
	notify   func(any)
	backoff  *Backoff
	registry *registry

	mu      sync.Mutex
	conn    *websocket.Conn
	state   ConnState
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger routes client logs through the given logger.
func WithLogger(log *logging.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithNotify sets the sink that receives EventMsg and ConnStateMsg values,
// typically a bubbletea program's Send.
func WithNotify(fn func(any)) ClientOption {
	return func(c *Client) {
		c.notify = fn
	}
}

// WithBackoff replaces the reconnect schedule.
func WithBackoff(base, max time.Duration, factor float64) ClientOption {
	return func(c *Client) {
		c.backoff = NewBackoff(base, max, factor)
	}
}

// NewClient creates a Client for the given websocket URL.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:      url,
		log:      logging.New().WithComponent("live"),
		backoff:  NewBackoff(time.Second, 30*time.Second, 1.5),
		registry: newRegistry(),
		state:    StateDisconnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// On registers a handler for an event type, or for every event via the
// wildcard. It returns a subscription id for Off.
func (c *Client) On(event string, fn Handler) int {
	return c.registry.add(event, fn)
}

// Off removes a subscription made with On.
func (c *Client) Off(event string, id int) bool {
	return c.registry.remove(event, id)
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts the connection loop. It returns immediately; state changes
// arrive through the notify sink. Calling Connect while running is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true
	c.mu.Unlock()

	c.log = c.log.WithSessionID(uuid.NewString()[:8])
	go c.run(runCtx)
	return nil
}

// Disconnect stops the connection loop and waits for it to exit.
func (c *Client) Disconnect() {
	c.mu.Lock()
	cancel := c.cancel
	conn := c.conn
	done := c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "client closing")
	}
	if done != nil {
		<-done
	}
}

// Send writes a command frame. It fails with ErrNotConnected while the
// socket is down; commands are not queued across reconnects.
func (c *Client) Send(ctx context.Context, cmd protocol.Command) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	ctx, span := c.startCommandSpan(ctx, cmd.Cmd)
	err := c.write(ctx, conn, cmd)
	c.endCommandSpan(span, err)
	if err != nil {
		return err
	}
	c.log.CommandSent(cmd.Cmd)
	return nil
}

func (c *Client) write(ctx context.Context, conn *websocket.Conn, cmd protocol.Command) error {
	data, err := cmd.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", cmd.Cmd, err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", cmd.Cmd, err)
	}
	return nil
}

// run dials, reads until the connection drops, and reconnects until the
// context is canceled.
func (c *Client) run(ctx context.Context) {
	defer func() {
		c.setState(ConnStateMsg{State: StateDisconnected})
		c.mu.Lock()
		c.running = false
		close(c.done)
		c.mu.Unlock()
	}()

	for {
		attempt := c.backoff.Attempts() + 1
		c.setState(ConnStateMsg{State: StateConnecting, Attempt: attempt})

		conn, _, err := websocket.Dial(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !c.waitRetry(ctx, err) {
				return
			}
			continue
		}
		conn.SetReadLimit(readLimit)

		c.backoff.Reset()
		c.log.Connected(c.url, attempt)
		c.setConn(conn)
		c.setState(ConnStateMsg{State: StateConnected})

		connCtx, span := c.startConnSpan(ctx, attempt)
		err = c.readLoop(connCtx, conn)
		c.endConnSpan(span, err)
		c.setConn(nil)
		conn.Close(websocket.StatusNormalClosure, "")

		if ctx.Err() != nil {
			return
		}
		c.log.Disconnected(err)
		if !c.waitRetry(ctx, err) {
			return
		}
	}
}

// waitRetry schedules the next attempt. It reports false when the context
// ended during the wait.
func (c *Client) waitRetry(ctx context.Context, cause error) bool {
	delay := c.backoff.Next()
	c.log.Reconnecting(c.backoff.Attempts(), delay)
	c.setState(ConnStateMsg{
		State:   StateDisconnected,
		Err:     cause,
		Attempt: c.backoff.Attempts(),
		Next:    delay,
	})

	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

// readLoop pulls frames until the connection fails.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		c.dispatch(data)
	}
}

// dispatch decodes one frame and fans it out. Frames without a recognizable
// envelope are logged and dropped; they never abort the connection.
func (c *Client) dispatch(data []byte) {
	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		c.log.MessageDropped(err.Error(), len(data))
		return
	}
	payload, err := protocol.Decode(env)
	if err != nil {
		c.log.MessageDropped(err.Error(), len(data))
		return
	}

	c.registry.dispatch(env, payload, c.log)
	if c.notify != nil {
		c.notify(EventMsg{Envelope: env, Payload: payload})
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) setState(msg ConnStateMsg) {
	c.mu.Lock()
	c.state = msg.State
	c.mu.Unlock()
	if c.notify != nil {
		c.notify(msg)
	}
}
