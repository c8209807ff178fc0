//go:build !linux

package hotkey

import (
	"context"

	"github.com/berrythewa/quicklaunch/internal/types"
)

// Run always fails with ErrUnsupported outside linux
func (s *Source) Run(ctx context.Context, out chan<- types.ActivationMessage) error {
	return ErrUnsupported
}
