package session

import (
	"time"

	"github.com/claude/liftlog/internal/metrics"
)

// startRestLocked replaces any running countdown with a new one of secs.
func (c *Controller) startRestLocked(secs int) {
	c.stopRestLocked()
	stop := make(chan struct{})
	c.restStop = stop
	c.resting, c.restRemaining = true, secs
	c.wg.Add(1)
	go c.runRest(stop)
}

// stopRestLocked cancels the countdown and clears what it reported.
func (c *Controller) stopRestLocked() {
	if c.restStop != nil {
		close(c.restStop)
		c.restStop = nil
	}
	c.resting, c.restRemaining = false, 0
}

func (c *Controller) runRest(stop chan struct{}) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.restStop != stop {
				c.mu.Unlock()
				return
			}
			c.restRemaining--
			finished := c.restRemaining <= 0
			if finished {
				c.resting, c.restRemaining = false, 0
				c.restStop = nil
			}
			snap := c.snapshotLocked()
			c.mu.Unlock()

			c.notify(snap)
			if finished {
				return
			}
		}
	}
}

// startElapsedLocked runs the session clock while the workout is in progress.
func (c *Controller) startElapsedLocked() {
	c.stopElapsedLocked()
	stop := make(chan struct{})
	c.elapsedStop = stop
	c.wg.Add(1)
	go c.runElapsed(stop)
}

func (c *Controller) stopElapsedLocked() {
	if c.elapsedStop != nil {
		close(c.elapsedStop)
		c.elapsedStop = nil
	}
}

func (c *Controller) runElapsed(stop chan struct{}) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.elapsedStop != stop {
				c.mu.Unlock()
				return
			}
			c.elapsed = metrics.ElapsedSeconds(c.workout, c.opts.Now())
			snap := c.snapshotLocked()
			c.mu.Unlock()
			c.notify(snap)
		}
	}
}
