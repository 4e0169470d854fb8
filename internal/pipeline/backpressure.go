package pipeline

import "context"

// governor caps the number of records admitted to the parallel dispatcher
// but not yet retired (written or dropped). The queues between stages bound
// each hop; the governor bounds the run end to end, so a stalled writer
// blocks the reader instead of growing memory.
type governor struct {
	tokens chan struct{}
}

// newGovernor returns a no-op governor when n <= 0.
func newGovernor(n int) *governor {
	if n <= 0 {
		return nil
	}
	return &governor{tokens: make(chan struct{}, n)}
}

func (g *governor) acquire(ctx context.Context) error {
	if g == nil {
		return nil
	}
	select {
	case g.tokens <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *governor) release() {
	if g == nil {
		return
	}
	select {
	case <-g.tokens:
	default:
	}
}
