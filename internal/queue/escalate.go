package queue

import (
	"fmt"
	"log"
	"time"

	"expeditor/internal/models"
)

// escalationLoop runs the periodic SLA sweep until the engine is disposed
func (e *Engine) escalationLoop() {
	defer close(e.done)

	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.sweep()
		}
	}
}

// sweep escalates pending orders that have breached the SLA, then
// recomputes every order's priority against fresh metrics. Each order
// is escalated at most once per breach: the bump and the notes marker
// are applied when the Escalated flag first flips, not on every tick.
func (e *Engine) sweep() {
	e.mu.Lock()

	var escalated []string
	sla := time.Duration(e.cfg.SLAMinutes * float64(time.Minute))
	now := e.now()

	for _, order := range e.orders {
		if order.Status != models.StatusPending || order.Escalated {
			continue
		}
		if order.WaitTime(now) <= sla {
			continue
		}

		order.Escalated = true
		marker := fmt.Sprintf("[AUTO-ESCALATED: Exceeded %gmin SLA]", e.cfg.SLAMinutes)
		if order.Notes == "" {
			order.Notes = marker
		} else {
			order.Notes += " " + marker
		}
		escalated = append(escalated, order.ID)

		log.Printf("Order %s escalated after %.1f minutes (SLA %gmin)",
			order.ID, order.WaitTime(now).Minutes(), e.cfg.SLAMinutes)
		if e.recorder != nil {
			e.recorder.RecordEscalation(order.ID)
		}
	}

	// Wait scores grow between mutations, so every sweep refreshes the
	// whole queue, not just the escalated orders.
	e.refreshMetricsLocked()
	for _, order := range e.orders {
		e.recomputePriorityLocked(order)
	}

	hook := e.sweepHook
	e.mu.Unlock()

	if hook != nil {
		hook(escalated)
	}
}
