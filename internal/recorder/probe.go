// Package recorder performs the side effects of a routed message: the
// one-time connectivity probe, lead capture, the interaction log and the
// downstream notifications.
package recorder

import (
	"context"
	"sync/atomic"

	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// Pinger checks connectivity to the persistence backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivityProbe runs a single diagnostic ping per process. The flag is
// set on the first attempt whatever its outcome. Concurrent first requests
// may each ping once.
type ConnectivityProbe struct {
	attempted atomic.Bool
	pinger    Pinger
	logger    *logging.Logger
}

func NewConnectivityProbe(pinger Pinger, logger *logging.Logger) *ConnectivityProbe {
	if logger == nil {
		logger = logging.Default()
	}
	return &ConnectivityProbe{pinger: pinger, logger: logger}
}

// Check pings the backend if no check has been attempted yet. It never
// fails the caller.
func (p *ConnectivityProbe) Check(ctx context.Context) {
	if p.attempted.Load() {
		return
	}
	p.attempted.Store(true)

	if p.pinger == nil {
		p.logger.Debug("connectivity probe skipped: no pinger configured")
		return
	}
	if err := p.pinger.Ping(ctx); err != nil {
		p.logger.Warn("persistence connectivity check failed", "error", err)
		return
	}
	p.logger.Info("persistence connectivity check succeeded")
}

// Attempted reports whether Check has run.
func (p *ConnectivityProbe) Attempted() bool {
	return p.attempted.Load()
}

// Reset clears the flag. Only tests call it.
func (p *ConnectivityProbe) Reset() {
	p.attempted.Store(false)
}
