package arbiter

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/modecontrol/mced/pkg/log"
)

// sweeper drives periodic expiry across the lease-holding domains.
// Expiry could instead be checked lazily on each request, but a quiet
// bus must still release pauses and keepalive holds on time.
type sweeper struct {
	arbiter  *Arbiter
	interval time.Duration

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

func newSweeper(a *Arbiter, interval time.Duration) *sweeper {
	return &sweeper{arbiter: a, interval: interval}
}

func (s *sweeper) start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.loop()
}

func (s *sweeper) stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	close(s.done)
	s.wg.Wait()
}

func (s *sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.sweep(now)
		case <-s.done:
			return
		}
	}
}

// sweep expires overdue leases in every expiring domain. Change
// callbacks fire from the calling goroutine, so signal ordering is the
// same as for request-driven transitions.
func (s *sweeper) sweep(now time.Time) {
	a := s.arbiter
	a.prevention.Sweep(now)
	a.keepalive.Sweep(now)
	a.windows.Sweep(now)

	a.logger.Log(log.Event{
		Timestamp: now,
		Kind:      log.KindSweep,
		Domain:    log.DomainNone,
	})
}
