package main

import (
	"context"
	"errors"
	"os"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/sweeney/river-swww/internal/logic"
	"github.com/sweeney/river-swww/internal/metrics"
	"github.com/sweeney/river-swww/internal/mqtt"
	"github.com/sweeney/river-swww/internal/status"
	"github.com/sweeney/river-swww/internal/swww"
)

// errShutdown ends the run group when a signal stops the loop.
var errShutdown = errors.New("shutdown requested")

// coalescer folds observations into the pending table and applies each
// output's wallpaper once it has been stable for the debounce window.
// The table is owned by the goroutine running run.
type coalescer struct {
	resolver   *logic.Resolver
	table      *logic.Table
	applier    swww.Applier
	publisher  mqtt.Publisher // nil when MQTT is disabled
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	heartbeat  time.Duration
	clock      clockwork.Clock
	log        *logrus.Entry
}

// run drives the loop until obs is closed (nil), a signal arrives
// (errShutdown) or ctx is cancelled (nil).
func (c *coalescer) run(ctx context.Context, obs <-chan logic.Observation, sig <-chan os.Signal) error {
	var heartbeatC <-chan time.Time
	if c.heartbeat > 0 {
		ticker := c.clock.NewTicker(c.heartbeat)
		defer ticker.Stop()
		heartbeatC = ticker.Chan()
	}

	for {
		c.flush()

		// No pending updates: timerC stays nil and the select waits
		// for the next observation without polling.
		var timer clockwork.Timer
		var timerC <-chan time.Time
		if wait, ok := c.table.EarliestWait(c.clock.Now()); ok {
			timer = c.clock.NewTimer(wait)
			timerC = timer.Chan()
		}

		select {
		case o, ok := <-obs:
			stopTimer(timer)
			if !ok {
				c.log.Infof("observation stream closed, dropping %d pending updates", c.table.Len())
				return nil
			}
			// Anything that became due while we were waiting goes out
			// before the new observation can touch the table.
			c.flush()
			c.fold(o)

		case <-timerC:
			// The earliest deadline passed; flushed at the top of the loop.

		case <-heartbeatC:
			stopTimer(timer)
			c.publishHeartbeat()

		case s := <-sig:
			stopTimer(timer)
			c.shutdown(signalName(s))
			return errShutdown

		case <-ctx.Done():
			stopTimer(timer)
			c.shutdown("CANCELLED")
			return nil
		}
	}
}

func stopTimer(t clockwork.Timer) {
	if t != nil {
		t.Stop()
	}
}

// fold resolves o and records it in the table.
func (c *coalescer) fold(o logic.Observation) {
	tag, path, mapped := c.resolver.ResolveTag(o.FocusedTags)
	res := c.table.Upsert(o.Output, path, c.clock.Now())

	c.log.WithFields(logrus.Fields{
		"output": o.Output,
		"tag":    tag,
		"path":   path,
		"mapped": mapped,
		"result": res.String(),
	}).Debug("observation")

	metrics.ObservationsTotal.WithLabelValues(res.String()).Inc()
	metrics.PendingUpdates.Set(float64(c.table.Len()))
	c.tracker.Observed(res, c.table.Len())
}

// flush applies and removes every due update. An apply error is logged and
// the entry is still removed; the next observation starts a new window.
func (c *coalescer) flush() {
	now := c.clock.Now()
	for _, p := range c.table.Due(now) {
		err := c.applier.Apply(p.Output, p.Path)
		c.table.Remove(p.Output)

		metrics.FlushLateness.Observe((-p.Remaining(c.table.Window(), now)).Seconds())
		entry := c.log.WithFields(logrus.Fields{"output": p.Output, "path": p.Path})
		if err != nil {
			entry.Warnf("apply failed: %v", err)
			metrics.AppliesTotal.WithLabelValues(metrics.StatusSpawnError).Inc()
		} else {
			// Counted as ok or exit_error once swww exits.
			entry.Info("wallpaper applied")
		}

		applied := logic.Applied{Timestamp: now, Output: p.Output, Path: p.Path, Err: err}
		c.tracker.Applied(applied, c.table.Len())
		if c.publisher != nil {
			if err := c.publisher.Publish(applied); err != nil {
				c.log.Warnf("publish error: %v", err)
			}
		}
	}
	metrics.PendingUpdates.Set(float64(c.table.Len()))
}

func (c *coalescer) snapshot() status.Snapshot {
	if c.mqttStatus != nil {
		c.tracker.SetMQTTConnected(c.mqttStatus.IsConnected())
	}
	return c.tracker.Snapshot()
}

func (c *coalescer) publishHeartbeat() {
	snap := c.snapshot()
	c.log.Infof("heartbeat: uptime=%v observations=%d applied=%d failed=%d pending=%d",
		snap.Uptime().Truncate(time.Second), snap.Counts.Observations, snap.Counts.Applied,
		snap.Counts.ApplyFailed, snap.Pending)

	if c.publisher == nil {
		return
	}
	err := c.publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  c.clock.Now(),
		Event:      mqtt.EventHeartbeat,
		RawPayload: status.FormatStatusEvent(snap, mqtt.EventHeartbeat, ""),
	})
	if err != nil {
		c.log.Warnf("heartbeat publish error: %v", err)
	}
}

func (c *coalescer) shutdown(reason string) {
	c.log.Infof("shutting down (%s), dropping %d pending updates", reason, c.table.Len())
	if c.publisher == nil {
		return
	}
	snap := c.snapshot()
	err := c.publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  c.clock.Now(),
		Event:      mqtt.EventShutdown,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, mqtt.EventShutdown, reason),
	})
	if err != nil {
		c.log.Warnf("failed to publish shutdown event: %v", err)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
