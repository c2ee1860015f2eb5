package providers

import (
	"context"
	"sync"
)

// authGate runs an authentication function until it first succeeds.
// A failure is not remembered: the next call tries again.
type authGate struct {
	mu   sync.Mutex
	done bool
}

func (g *authGate) ensure(ctx context.Context, authenticate func(context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return nil
	}
	if err := authenticate(ctx); err != nil {
		return err
	}
	g.done = true
	return nil
}
