//go:build linux

package hotkey

import (
	"context"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/berrythewa/quicklaunch/internal/types"
	"go.uber.org/zap"
)

// Lock modifiers must not stop the binding from firing, so every grab is
// repeated with Caps Lock and Num Lock (usually Mod2) set.
var lockVariants = []uint16{0, xproto.ModMaskLock, xproto.ModMask2, xproto.ModMaskLock | xproto.ModMask2}

// Run grabs the binding on the X11 root window and delivers activations to
// out until ctx is done. Without an X server it returns an error wrapping
// ErrUnsupported.
func (s *Source) Run(ctx context.Context, out chan<- types.ActivationMessage) error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("%w: cannot connect to X server: %w", ErrUnsupported, err)
	}

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	keycodes, err := keycodesFor(conn, s.binding.Keysym)
	if err != nil {
		conn.Close()
		return err
	}

	for _, kc := range keycodes {
		for _, lock := range lockVariants {
			err := xproto.GrabKeyChecked(conn, true, root, s.binding.Modifiers|lock, kc,
				xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
			if err != nil {
				conn.Close()
				return fmt.Errorf("failed to grab hotkey (is it bound by another program?): %w", err)
			}
		}
	}
	s.logger.Info("Hotkey grabbed",
		zap.Uint32("keysym", uint32(s.binding.Keysym)),
		zap.Uint16("modifiers", s.binding.Modifiers))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			ev, xerr := conn.WaitForEvent()
			if ev == nil && xerr == nil {
				return
			}
			if xerr != nil {
				s.logger.Debug("X11 error", zap.String("error", xerr.Error()))
				continue
			}
			if _, ok := ev.(xproto.KeyPressEvent); !ok {
				continue
			}
			select {
			case out <- types.ActivationMessage{}:
				s.logger.Debug("Hotkey pressed")
			default:
				s.logger.Warn("Activation queue full, dropping hotkey press")
			}
		}
	}()

	<-ctx.Done()
	for _, kc := range keycodes {
		for _, lock := range lockVariants {
			xproto.UngrabKey(conn, kc, root, s.binding.Modifiers|lock)
		}
	}
	conn.Close()
	<-done
	return nil
}

// keycodesFor returns every keycode that produces keysym in the current map
func keycodesFor(conn *xgb.Conn, keysym xproto.Keysym) ([]xproto.Keycode, error) {
	setup := xproto.Setup(conn)
	count := int(setup.MaxKeycode) - int(setup.MinKeycode) + 1

	reply, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, byte(count)).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to read keyboard mapping: %w", err)
	}

	per := int(reply.KeysymsPerKeycode)
	var keycodes []xproto.Keycode
	for i := 0; i < count; i++ {
		for j := 0; j < per; j++ {
			if reply.Keysyms[i*per+j] == keysym {
				keycodes = append(keycodes, xproto.Keycode(int(setup.MinKeycode)+i))
				break
			}
		}
	}
	if len(keycodes) == 0 {
		return nil, fmt.Errorf("no keycode produces keysym %#x", uint32(keysym))
	}
	return keycodes, nil
}
