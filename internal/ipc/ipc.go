package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/berrythewa/quicklaunch/internal/types"
	"go.uber.org/zap"
)

const (
	DefaultDialTimeout = 250 * time.Millisecond
	DefaultReadTimeout = 2 * time.Second
	DefaultQueueSize   = 32
)

// ErrBind is wrapped by every bind failure other than "already bound"
var ErrBind = errors.New("failed to bind activation socket")

// errHandedOff reports that another process became primary while we tried to bind
var errHandedOff = errors.New("activation handed off")

// Role is the outcome of Acquire
type Role int

const (
	// RolePrimary owns the socket and receives activations
	RolePrimary Role = iota
	// RoleSecondary handed its activation to the primary and should exit 0
	RoleSecondary
)

func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Options configures a Coordinator
type Options struct {
	SocketPath  string
	DialTimeout time.Duration
	ReadTimeout time.Duration
	QueueSize   int
	Logger      *zap.Logger
}

// Coordinator provides single-instance semantics over a unix domain socket
type Coordinator struct {
	opts        Options
	logger      *zap.Logger
	activations chan types.ActivationMessage

	mu       sync.Mutex
	listener net.Listener
	closed   bool
	wg       sync.WaitGroup
}

// NewCoordinator creates a coordinator, filling unset options with defaults
func NewCoordinator(opts Options) *Coordinator {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Coordinator{
		opts:        opts,
		logger:      opts.Logger,
		activations: make(chan types.ActivationMessage, opts.QueueSize),
	}
}

// Activations delivers messages from secondary launches in accept order.
// The channel is never closed.
func (c *Coordinator) Activations() <-chan types.ActivationMessage {
	return c.activations
}

// Acquire hands msg to a running primary, or binds the socket and becomes the
// primary itself. A secondary never binds.
func (c *Coordinator) Acquire(ctx context.Context, msg types.ActivationMessage) (Role, error) {
	if err := Send(ctx, c.opts.SocketPath, msg, c.opts.DialTimeout); err == nil {
		c.logger.Info("Handed activation to running instance",
			zap.String("socket", c.opts.SocketPath),
			zap.String("target", msg.Target))
		return RoleSecondary, nil
	}

	ln, err := c.listen(ctx, msg)
	if errors.Is(err, errHandedOff) {
		return RoleSecondary, nil
	}
	if err != nil {
		return RolePrimary, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		ln.Close()
		return RolePrimary, fmt.Errorf("%w: coordinator closed", ErrBind)
	}
	c.listener = ln
	c.wg.Add(1)
	c.mu.Unlock()

	go c.acceptLoop(ln)

	c.logger.Info("Listening for activations", zap.String("socket", c.opts.SocketPath))
	return RolePrimary, nil
}

func (c *Coordinator) listen(ctx context.Context, msg types.ActivationMessage) (net.Listener, error) {
	path := c.opts.SocketPath

	ln, err := net.Listen("unix", path)
	if err == nil {
		c.restrict()
		return ln, nil
	}
	if !errors.Is(err, syscall.EADDRINUSE) {
		return nil, fmt.Errorf("%w %s: %w", ErrBind, path, err)
	}

	// Replacing a stale socket is serialised so that two launches cannot
	// each unlink the other's freshly bound socket
	lock, err := acquireLock(ctx, path+".lock")
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrBind, path, err)
	}
	defer lock.Close()

	// A primary may have bound the socket since the first dial
	if Send(ctx, path, msg, c.opts.DialTimeout) == nil {
		c.logger.Info("Handed activation to instance that just started", zap.String("socket", path))
		return nil, errHandedOff
	}

	c.logger.Warn("Removing stale activation socket", zap.String("socket", path))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: failed to remove stale socket %s: %w", ErrBind, path, err)
	}

	ln, err = net.Listen("unix", path)
	if err != nil {
		// A fresh launch that never saw the stale file may have bound first
		if errors.Is(err, syscall.EADDRINUSE) && Send(ctx, path, msg, c.opts.DialTimeout) == nil {
			return nil, errHandedOff
		}
		return nil, fmt.Errorf("%w %s: %w", ErrBind, path, err)
	}
	c.restrict()
	return ln, nil
}

func (c *Coordinator) restrict() {
	if err := os.Chmod(c.opts.SocketPath, 0600); err != nil {
		c.logger.Debug("Failed to restrict socket permissions", zap.Error(err))
	}
}

func (c *Coordinator) acceptLoop(ln net.Listener) {
	defer c.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			c.logger.Warn("Accept failed", zap.Error(err))
			time.Sleep(10 * time.Millisecond)
			continue
		}
		c.handleConn(conn)
	}
}

// handleConn reads one line and dispatches it without waiting on the consumer
func (c *Coordinator) handleConn(conn net.Conn) {
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout)); err != nil {
		c.logger.Debug("Failed to set read deadline", zap.Error(err))
		return
	}

	msg, err := ReadMessage(NewReader(conn))
	if err != nil {
		c.logger.Debug("Dropping activation", zap.Error(err))
		return
	}

	select {
	case c.activations <- msg:
		c.logger.Debug("Activation received", zap.String("target", msg.Target))
	default:
		c.logger.Warn("Activation queue full, dropping activation", zap.String("target", msg.Target))
	}
}

// Close stops accepting activations and removes the socket file
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	ln := c.listener
	c.mu.Unlock()

	var err error
	if ln != nil {
		// unix listeners unlink their socket file on Close
		err = ln.Close()
	}
	c.wg.Wait()
	return err
}

// Send delivers msg to the primary listening on socketPath
func Send(ctx context.Context, socketPath string, msg types.ActivationMessage, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	if _, err := conn.Write(Encode(msg)); err != nil {
		return fmt.Errorf("failed to send activation: %w", err)
	}
	return nil
}
