package life

import (
	"context"
	"sync"
	"time"

	"github.com/rcliao/companion/internal/snapshot"
)

// Autosaver persists the companion in the background. Requests are
// coalesced and at most one save happens per interval.
type Autosaver struct {
	companion *Companion
	provider  snapshot.Provider
	interval  time.Duration
	now       func() time.Time

	requests chan struct{}
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu       sync.Mutex
	lastSave time.Time
	saves    int
	failures int
}

func NewAutosaver(c *Companion, p snapshot.Provider, interval time.Duration) *Autosaver {
	return &Autosaver{
		companion: c,
		provider:  p,
		interval:  interval,
		now:       time.Now,
		requests:  make(chan struct{}, 1),
	}
}

// Request asks for a save. It never blocks; a request already pending
// absorbs this one.
func (a *Autosaver) Request() {
	select {
	case a.requests <- struct{}{}:
	default:
	}
}

func (a *Autosaver) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.mu.Lock()
	a.lastSave = a.now()
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-a.requests:
				if a.due() {
					a.Flush(ctx)
				}
			}
		}
	}()
}

// Stop ends the background loop. It does not save; call Flush for that.
func (a *Autosaver) Stop() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	a.wg.Wait()
}

func (a *Autosaver) due() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.now().Sub(a.lastSave) >= a.interval
}

// Flush saves immediately.
func (a *Autosaver) Flush(ctx context.Context) error {
	err := a.companion.Save(ctx, a.provider)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.failures++
		return err
	}
	a.lastSave = a.now()
	a.saves++
	return nil
}

// Counts reports successful and failed saves so far.
func (a *Autosaver) Counts() (saves, failures int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves, a.failures
}
