package jobs

// DispatchTrigger coalesces wake-up requests for the dispatch loop. Any
// number of Trigger calls between two cycles results in one extra cycle.
type DispatchTrigger struct {
	ch chan struct{}
}

func NewDispatchTrigger() *DispatchTrigger {
	return &DispatchTrigger{ch: make(chan struct{}, 1)}
}

// Trigger never blocks.
func (t *DispatchTrigger) Trigger() {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}

// C delivers one value per pending request.
func (t *DispatchTrigger) C() <-chan struct{} {
	return t.ch
}
