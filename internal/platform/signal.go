package platform

import (
	"context"
	"os"
	"os/signal"

	"github.com/berrythewa/quicklaunch/internal/types"
	"go.uber.org/zap"
)

// SignalSource turns OS activation signals (SIGUSR1 on unix) into activations
type SignalSource struct {
	logger *zap.Logger
}

// NewSignalSource creates a signal source
func NewSignalSource(logger *zap.Logger) *SignalSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignalSource{logger: logger}
}

// Supported reports whether the platform has an activation signal
func (s *SignalSource) Supported() bool {
	return len(activationSignals()) > 0
}

// Run sends an empty activation to out for every signal until ctx is done.
// Activations are dropped when out is full.
func (s *SignalSource) Run(ctx context.Context, out chan<- types.ActivationMessage) error {
	sigs := activationSignals()
	if len(sigs) == 0 {
		<-ctx.Done()
		return nil
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	defer signal.Stop(ch)

	s.logger.Debug("Listening for activation signal", zap.Stringer("signal", sigs[0]))
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-ch:
			s.logger.Debug("Activation signal received", zap.Stringer("signal", sig))
			select {
			case out <- types.ActivationMessage{}:
			default:
				s.logger.Warn("Activation queue full, dropping signal")
			}
		}
	}
}
