package mapws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/mapsync"
	"github.com/samirrijal/crewmap/internal/core/ports"
)

const (
	DefaultQueueSize    = 256
	DefaultWriteTimeout = 10 * time.Second
	DefaultPingInterval = 30 * time.Second
	DefaultPongWait     = 60 * time.Second
)

var (
	// ErrClosed is returned for commands sent after the capability stopped.
	ErrClosed = errors.New("map connection closed")
	// ErrBacklog means the browser stopped draining commands.
	ErrBacklog = errors.New("map command queue full")
)

// Conn is the message connection to one browser map. *websocket.Conn
// satisfies it.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Dispatcher receives decoded events; *mapsync.Session satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev mapsync.Event) error
}

type handle string

func (h handle) MarkerID() string { return string(h) }

// Option tunes a Capability.
type Option func(*Capability)

// WithQueueSize bounds the number of commands waiting for the socket.
func WithQueueSize(n int) Option {
	return func(c *Capability) { c.queueSize = n }
}

// WithWriteTimeout sets the deadline for each socket write.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Capability) { c.writeTimeout = d }
}

// WithKeepAlive sets the ping interval and how long to wait for any frame
// from the browser before giving up on it.
func WithKeepAlive(ping, pongWait time.Duration) Option {
	return func(c *Capability) {
		c.pingInterval = ping
		c.pongWait = pongWait
	}
}

// Capability implements ports.MapCapability by queueing commands for a
// browser-side renderer. Commands never block the caller: a single writer
// goroutine drains the queue, and a full queue or a timed-out write closes
// the connection. It becomes ready when the browser reports its load event.
type Capability struct {
	conn         Conn
	queueSize    int
	writeTimeout time.Duration
	pingInterval time.Duration
	pongWait     time.Duration

	out       chan Command
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	flush     bool
	err       error

	mu     sync.RWMutex
	ready  bool
	bounds *domain.BoundingBox
}

// New wraps conn and starts its writer. Close must be called to stop it.
func New(conn Conn, opts ...Option) *Capability {
	c := &Capability{
		conn:         conn,
		queueSize:    DefaultQueueSize,
		writeTimeout: DefaultWriteTimeout,
		pingInterval: DefaultPingInterval,
		pongWait:     DefaultPongWait,
		done:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	c.out = make(chan Command, c.queueSize)
	go c.writeLoop()
	return c
}

// Ready implements ports.MapCapability.
func (c *Capability) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Bounds implements ports.MapCapability.
func (c *Capability) Bounds() (domain.BoundingBox, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bounds == nil {
		return domain.BoundingBox{}, false
	}
	return *c.bounds, true
}

// CreateMarker implements ports.MapCapability.
func (c *Capability) CreateMarker(_ context.Context, p domain.GeoPoint) (ports.MarkerHandle, error) {
	h := handle(uuid.NewString())
	if err := c.send(Command{Op: OpCreateMarker, Handle: string(h), Point: &p}); err != nil {
		return nil, err
	}
	return h, nil
}

// DestroyMarker implements ports.MapCapability.
func (c *Capability) DestroyMarker(_ context.Context, h ports.MarkerHandle) error {
	return c.send(Command{Op: OpDestroyMarker, Handle: h.MarkerID()})
}

// SetPopup implements ports.MapCapability.
func (c *Capability) SetPopup(_ context.Context, h ports.MarkerHandle, content ports.MarkerContent) error {
	return c.send(Command{Op: OpSetPopup, Handle: h.MarkerID(), Content: &content})
}

// FlyTo implements ports.MapCapability.
func (c *Capability) FlyTo(_ context.Context, p domain.GeoPoint, zoom float64, d time.Duration) error {
	return c.send(Command{Op: OpFlyTo, Point: &p, Zoom: zoom, DurationMS: d.Milliseconds()})
}

// Hello tells the browser which session it belongs to and which style to load.
func (c *Capability) Hello(sessionID, styleURL string) error {
	return c.send(Command{Op: OpSession, ID: sessionID, StyleURL: styleURL})
}

// Fail sends an error command to the browser.
func (c *Capability) Fail(message string) error {
	return c.send(Command{Op: OpError, Message: message})
}

// Close stops the writer after it has written what is already queued. The
// connection itself belongs to the caller.
func (c *Capability) Close() error {
	c.stop(nil, true)
	<-c.stopped
	return c.err
}

// Serve reads messages until the connection fails or ctx ends, keeping the
// capability's ready flag and bounds current and dispatching each decoded
// event. Malformed messages are answered with an error command and skipped.
// The browser must answer pings within the pong wait or Serve fails.
func (c *Capability) Serve(ctx context.Context, d Dispatcher) error {
	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(c.pongWait)) }
	if err := extend(); err != nil {
		return fmt.Errorf("set read deadline: %w", err)
	}
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("read map message: %w", err)
		}
		_ = extend()

		ev, err := Decode(msg)
		if err != nil {
			slog.DebugContext(ctx, "bad map message", "op", msg.Op, "error", err)
			if err := c.Fail(err.Error()); err != nil {
				return err
			}
			continue
		}
		c.observe(ev)

		if err := d.Dispatch(ctx, ev); err != nil {
			if errors.Is(err, domain.ErrSessionClosed) {
				return nil
			}
			return err
		}
	}
}

// observe records load and viewport changes before the session sees them, so
// the first reconcile after load finds the map ready.
func (c *Capability) observe(ev mapsync.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e := ev.(type) {
	case mapsync.Loaded:
		c.ready = true
		c.bounds = &e.Bounds
	case mapsync.MoveEnded:
		c.bounds = &e.Bounds
	case mapsync.ZoomEnded:
		c.bounds = &e.Bounds
	}
}

func (c *Capability) send(cmd Command) error {
	select {
	case <-c.done:
		return fmt.Errorf("send %s: %w", cmd.Op, ErrClosed)
	default:
	}
	select {
	case c.out <- cmd:
		return nil
	case <-c.done:
		return fmt.Errorf("send %s: %w", cmd.Op, ErrClosed)
	default:
		err := fmt.Errorf("send %s: %w", cmd.Op, ErrBacklog)
		c.stop(err, false)
		return err
	}
}

// stop ends the writer once. A failure also closes the connection, which
// unblocks Serve.
func (c *Capability) stop(err error, flush bool) {
	c.closeOnce.Do(func() {
		c.err = err
		c.flush = flush
		close(c.done)
		if err != nil {
			slog.Warn("closing map connection", "error", err)
			_ = c.conn.Close()
		}
	})
}

func (c *Capability) writeLoop() {
	defer close(c.stopped)

	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-c.out:
			if err := c.write(func() error { return c.conn.WriteJSON(cmd) }); err != nil {
				c.stop(fmt.Errorf("write %s: %w", cmd.Op, err), false)
				return
			}
		case <-ticker.C:
			if err := c.write(func() error { return c.conn.WriteMessage(websocket.PingMessage, nil) }); err != nil {
				c.stop(fmt.Errorf("ping: %w", err), false)
				return
			}
		case <-c.done:
			if c.flush {
				c.drain()
			}
			return
		}
	}
}

// drain writes whatever is still queued, stopping at the first failure.
func (c *Capability) drain() {
	for {
		select {
		case cmd := <-c.out:
			if err := c.write(func() error { return c.conn.WriteJSON(cmd) }); err != nil {
				slog.Debug("map command dropped on close", "op", cmd.Op, "error", err)
				return
			}
		default:
			return
		}
	}
}

func (c *Capability) write(fn func() error) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return fn()
}
