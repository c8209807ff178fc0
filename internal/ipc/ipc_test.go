package ipc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/berrythewa/quicklaunch/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// socketPath keeps the path short; unix socket paths are limited to ~100 bytes
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ql")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "q.sock")
}

func newCoordinator(t *testing.T, path string) *Coordinator {
	t.Helper()
	c := NewCoordinator(Options{
		SocketPath:  path,
		DialTimeout: 100 * time.Millisecond,
		ReadTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { c.Close() })
	return c
}

func expectActivation(t *testing.T, c *Coordinator) types.ActivationMessage {
	t.Helper()
	select {
	case msg := <-c.Activations():
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no activation received")
		return types.ActivationMessage{}
	}
}

func expectNoActivation(t *testing.T, c *Coordinator, wait time.Duration) {
	t.Helper()
	select {
	case msg := <-c.Activations():
		t.Fatalf("unexpected activation %+v", msg)
	case <-time.After(wait):
	}
}

func TestSingleInstance(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := socketPath(t)
	primary := newCoordinator(t, path)
	secondary := newCoordinator(t, path)

	role, err := primary.Acquire(context.Background(), types.ActivationMessage{})
	require.NoError(t, err)
	assert.Equal(t, RolePrimary, role)

	role, err = secondary.Acquire(context.Background(), types.ActivationMessage{Target: "g"})
	require.NoError(t, err)
	assert.Equal(t, RoleSecondary, role)

	assert.Equal(t, types.ActivationMessage{Target: "g"}, expectActivation(t, primary))
	expectNoActivation(t, primary, 100*time.Millisecond)

	// The secondary never bound, so its activation channel stays silent
	expectNoActivation(t, secondary, 10*time.Millisecond)

	require.NoError(t, secondary.Close())
	require.NoError(t, primary.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "socket file should be removed on close")
}

func TestActivationsArriveInOrder(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := socketPath(t)
	primary := newCoordinator(t, path)
	_, err := primary.Acquire(context.Background(), types.ActivationMessage{})
	require.NoError(t, err)

	for _, target := range []string{"a", "b", "c"} {
		require.NoError(t, Send(context.Background(), path, types.ActivationMessage{Target: target}, time.Second))
	}
	for _, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, expectActivation(t, primary).Target)
	}
	require.NoError(t, primary.Close())
}

func TestStaleSocketIsReplaced(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := socketPath(t)
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, ln.Close())
	_, err = os.Stat(path)
	require.NoError(t, err, "stale socket file should exist")

	c := newCoordinator(t, path)
	role, err := c.Acquire(context.Background(), types.ActivationMessage{})
	require.NoError(t, err)
	assert.Equal(t, RolePrimary, role)

	require.NoError(t, Send(context.Background(), path, types.ActivationMessage{Target: "wiki"}, time.Second))
	assert.Equal(t, "wiki", expectActivation(t, c).Target)
	require.NoError(t, c.Close())
}

func TestStaleSocketReplacementIsSerialised(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := socketPath(t)
	stale, err := net.Listen("unix", path)
	require.NoError(t, err)
	stale.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, stale.Close())

	// Another launch is in the middle of replacing the stale socket
	lock, err := acquireLock(context.Background(), path+".lock")
	require.NoError(t, err)

	c := newCoordinator(t, path)
	type outcome struct {
		role Role
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		role, err := c.Acquire(context.Background(), types.ActivationMessage{Target: "g"})
		done <- outcome{role, err}
	}()

	select {
	case o := <-done:
		t.Fatalf("acquired while the lock was held: %v %v", o.role, o.err)
	case <-time.After(150 * time.Millisecond):
	}

	// The lock holder finishes binding and becomes primary
	require.NoError(t, os.Remove(path))
	primary := newCoordinator(t, path)
	role, err := primary.Acquire(context.Background(), types.ActivationMessage{})
	require.NoError(t, err)
	require.Equal(t, RolePrimary, role)
	require.NoError(t, lock.Close())

	select {
	case o := <-done:
		require.NoError(t, o.err)
		assert.Equal(t, RoleSecondary, o.role)
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not return after the lock was released")
	}
	assert.Equal(t, "g", expectActivation(t, primary).Target)

	require.NoError(t, c.Close())
	require.NoError(t, primary.Close())
}

func TestAcquireLockHonoursContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.lock")
	held, err := acquireLock(context.Background(), path)
	require.NoError(t, err)
	defer held.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = acquireLock(ctx, path)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBindFailureIsFatal(t *testing.T) {
	path := filepath.Join(socketPath(t)+".missing", "q.sock")
	c := newCoordinator(t, path)

	_, err := c.Acquire(context.Background(), types.ActivationMessage{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBind)
}

func TestMalformedConnectionsAreDropped(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := socketPath(t)
	c := newCoordinator(t, path)
	_, err := c.Acquire(context.Background(), types.ActivationMessage{})
	require.NoError(t, err)

	raw := func(payload []byte, hold time.Duration) {
		conn, err := net.Dial("unix", path)
		require.NoError(t, err)
		_, err = conn.Write(payload)
		require.NoError(t, err)
		time.Sleep(hold)
		conn.Close()
	}

	// No newline before EOF
	raw([]byte("g"), 0)
	// Invalid UTF-8
	raw([]byte("\xff\xfe\n"), 0)
	// Oversize line
	raw([]byte(strings.Repeat("x", MaxLineLength+10)+"\n"), 0)
	// Silent client outlives the read deadline
	raw(nil, 250*time.Millisecond)

	expectNoActivation(t, c, 200*time.Millisecond)

	// The listener still works afterwards
	require.NoError(t, Send(context.Background(), path, types.ActivationMessage{Target: "ok"}, time.Second))
	assert.Equal(t, "ok", expectActivation(t, c).Target)
	require.NoError(t, c.Close())
}

func TestQueueFullDropsActivations(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := socketPath(t)
	c := NewCoordinator(Options{SocketPath: path, QueueSize: 1})
	defer c.Close()

	_, err := c.Acquire(context.Background(), types.ActivationMessage{})
	require.NoError(t, err)

	for _, target := range []string{"first", "second", "third"} {
		require.NoError(t, Send(context.Background(), path, types.ActivationMessage{Target: target}, time.Second))
	}

	require.Eventually(t, func() bool { return len(c.Activations()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "first", expectActivation(t, c).Target)
	expectNoActivation(t, c, 50*time.Millisecond)
	require.NoError(t, c.Close())
}

func TestSendWithoutPrimary(t *testing.T) {
	err := Send(context.Background(), socketPath(t), types.ActivationMessage{Target: "g"}, 50*time.Millisecond)
	assert.Error(t, err)
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "primary", RolePrimary.String())
	assert.Equal(t, "secondary", RoleSecondary.String())
	assert.Equal(t, "Role(9)", Role(9).String())
}
