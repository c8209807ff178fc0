// Package hotkey delivers activations from a global keyboard shortcut.
package hotkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"go.uber.org/zap"
)

// ErrUnsupported is returned by Run when no global hotkey backend is available
var ErrUnsupported = errors.New("global hotkeys are not supported")

// Binding is a parsed key combination
type Binding struct {
	Keysym    xproto.Keysym
	Modifiers uint16
}

var modifierMasks = map[string]uint16{
	"shift":   xproto.ModMaskShift,
	"control": xproto.ModMaskControl,
	"ctrl":    xproto.ModMaskControl,
	"alt":     xproto.ModMask1,
	"mod1":    xproto.ModMask1,
	"mod4":    xproto.ModMask4,
	"super":   xproto.ModMask4,
	"win":     xproto.ModMask4,
}

var namedKeysyms = map[string]xproto.Keysym{
	"space":     0x0020,
	"return":    0xff0d,
	"enter":     0xff0d,
	"tab":       0xff09,
	"escape":    0xff1b,
	"backspace": 0xff08,
	"menu":      0xff67,
	"insert":    0xff63,
	"home":      0xff50,
	"end":       0xff57,
}

// ParseBinding resolves a key name and modifier names such as "space" and
// ["mod4"]. Letters, digits and f1 to f12 are accepted as key names.
func ParseBinding(key string, modifiers []string) (Binding, error) {
	var b Binding

	name := strings.ToLower(strings.TrimSpace(key))
	switch {
	case namedKeysyms[name] != 0:
		b.Keysym = namedKeysyms[name]
	case len(name) == 1 && (name[0] >= 'a' && name[0] <= 'z' || name[0] >= '0' && name[0] <= '9'):
		// Latin-1 keysyms equal their character code
		b.Keysym = xproto.Keysym(name[0])
	case len(name) >= 2 && name[0] == 'f':
		n, err := strconv.Atoi(name[1:])
		if err != nil || n < 1 || n > 12 {
			return Binding{}, fmt.Errorf("unknown key %q", key)
		}
		b.Keysym = xproto.Keysym(0xffbe + n - 1)
	default:
		return Binding{}, fmt.Errorf("unknown key %q", key)
	}

	for _, m := range modifiers {
		mask, ok := modifierMasks[strings.ToLower(strings.TrimSpace(m))]
		if !ok {
			return Binding{}, fmt.Errorf("unknown modifier %q", m)
		}
		b.Modifiers |= mask
	}
	return b, nil
}

// Source grabs a binding and sends an empty activation each time it is pressed
type Source struct {
	binding Binding
	logger  *zap.Logger
}

// NewSource parses the binding and creates a source for it
func NewSource(key string, modifiers []string, logger *zap.Logger) (*Source, error) {
	b, err := ParseBinding(key, modifiers)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{binding: b, logger: logger}, nil
}

// Binding returns the parsed key combination
func (s *Source) Binding() Binding {
	return s.binding
}
