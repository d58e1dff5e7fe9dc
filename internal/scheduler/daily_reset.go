// Package scheduler runs the midnight job that resets every wallet's daily
// spent counter.
package scheduler

import (
	"context"
	"log"
	"time"

	"paylink/internal/services/wallet"
)

type DailyReset struct {
	wallets wallet.Service
	stop    chan struct{}
	done    chan struct{}
	now     func() time.Time
}

func NewDailyReset(wallets wallet.Service, now func() time.Time) *DailyReset {
	if now == nil {
		now = time.Now
	}
	return &DailyReset{
		wallets: wallets,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		now:     now,
	}
}

// Start launches the background loop. The first run fires at the next local
// midnight, then every 24 hours.
func (d *DailyReset) Start() {
	go d.run()
}

func (d *DailyReset) Stop() {
	close(d.stop)
	<-d.done
}

func (d *DailyReset) run() {
	defer close(d.done)
	for {
		timer := time.NewTimer(d.untilNextMidnight())
		select {
		case <-timer.C:
			d.reset()
		case <-d.stop:
			timer.Stop()
			return
		}
	}
}

func (d *DailyReset) reset() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := d.wallets.ResetDailyLimits(ctx)
	if err != nil {
		log.Printf("daily limit reset failed: %v", err)
		return
	}
	log.Printf("daily limits reset for %d wallets", count)
}

func (d *DailyReset) untilNextMidnight() time.Duration {
	now := d.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}
