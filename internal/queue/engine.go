package queue

import (
	"errors"
	"log"
	"sync"
	"time"

	"expeditor/internal/models"
)

var (
	// ErrQueueFull is returned when an add would exceed the queue capacity
	ErrQueueFull = errors.New("queue is at capacity")
	// ErrNoItems is returned when an order carries no line items
	ErrNoItems = errors.New("order has no items")
	// ErrOrderNotFound is returned for operations on an unknown order id
	ErrOrderNotFound = errors.New("order not found")
)

// Recorder receives engine observations for external metrics reporting.
// All methods must be cheap and non-blocking; they are called under the
// engine lock.
type Recorder interface {
	RecordQueueDepth(depth int)
	RecordStationLoad(station models.Station, load float64)
	RecordPriority(score float64)
	RecordEscalation(orderID string)
}

// Engine is the kitchen display smart queue. It owns the in-memory
// working set of active orders, keeps per-station load metrics and
// per-order priorities in sync with every mutation, and runs the
// auto-escalation sweep in the background.
//
// The engine performs no persistence or networking; the registry is
// expected to be rehydrated from a source of truth on restart.
type Engine struct {
	cfg Config

	mu         sync.RWMutex
	orders     map[string]*models.KDSOrder
	priorities map[string]OrderPriority
	metrics    map[models.Station]StationMetrics

	recorder  Recorder
	sweepHook func(escalated []string)

	// now is swapped out in tests for deterministic wait times
	now func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
	disposed bool
}

// NewEngine creates a smart queue engine. The escalation timer does not
// run until Start is called.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		cfg:        cfg,
		orders:     make(map[string]*models.KDSOrder),
		priorities: make(map[string]OrderPriority),
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	e.metrics = computeStationMetrics(e.orders, cfg)
	return e
}

// SetRecorder attaches a metrics recorder. Pass before Start.
func (e *Engine) SetRecorder(r Recorder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorder = r
}

// SetSweepHook attaches a callback invoked after every escalation sweep
// with the ids of newly escalated orders (possibly none). The hook runs
// outside the engine lock.
func (e *Engine) SetSweepHook(hook func(escalated []string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sweepHook = hook
}

// Start launches the auto-escalation timer if enabled by configuration
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.disposed {
		return
	}
	e.started = true

	if !e.cfg.AutoEscalation {
		close(e.done)
		return
	}
	go e.escalationLoop()
}

// Dispose stops the escalation timer, blocks until it will not fire
// again, and clears all in-memory state. Safe to call more than once.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	started := e.started
	e.mu.Unlock()

	e.stopOnce.Do(func() { close(e.stop) })
	if started {
		<-e.done
	}

	e.mu.Lock()
	e.orders = make(map[string]*models.KDSOrder)
	e.priorities = make(map[string]OrderPriority)
	e.metrics = computeStationMetrics(e.orders, e.cfg)
	e.mu.Unlock()
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// AddOrder registers a new order with the queue. The order's priority
// and all station metrics are up to date before AddOrder returns.
// Returns ErrQueueFull when the registry is at capacity and ErrNoItems
// for an order with an empty item list.
func (e *Engine) AddOrder(order *models.KDSOrder) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.orders) >= e.cfg.MaxOrdersInQueue {
		log.Printf("Queue at capacity (%d), rejecting order %s", e.cfg.MaxOrdersInQueue, order.ID)
		return ErrQueueFull
	}
	if len(order.Items) == 0 {
		return ErrNoItems
	}

	stored := order.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = e.now()
	}
	if stored.Status == "" {
		stored.Status = models.StatusPending
	}
	if stored.CustomerType == "" {
		stored.CustomerType = models.CustomerRegular
	}

	e.orders[stored.ID] = stored
	e.refreshMetricsLocked()
	e.recomputePriorityLocked(stored)
	return nil
}

// UpdateOrder merges the partial update into a tracked order and returns
// a copy of the result. CreatedAt is never modified.
func (e *Engine) UpdateOrder(id string, update models.OrderUpdate) (*models.KDSOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	update.Apply(order)
	e.refreshMetricsLocked()
	e.recomputePriorityLocked(order)
	return order.Clone(), nil
}

// RemoveOrder deletes an order and its cached priority. Returns whether
// anything was removed.
func (e *Engine) RemoveOrder(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.orders[id]; !ok {
		return false
	}
	delete(e.orders, id)
	delete(e.priorities, id)
	e.refreshMetricsLocked()
	return true
}

// GetOrder returns a copy of a tracked order
func (e *Engine) GetOrder(id string) (*models.KDSOrder, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	order, ok := e.orders[id]
	if !ok {
		return nil, false
	}
	return order.Clone(), true
}

// Orders returns copies of all tracked orders in unspecified order
func (e *Engine) Orders() []*models.KDSOrder {
	e.mu.RLock()
	defer e.mu.RUnlock()

	orders := make([]*models.KDSOrder, 0, len(e.orders))
	for _, order := range e.orders {
		orders = append(orders, order.Clone())
	}
	return orders
}

// Priority returns the cached priority of a tracked order
func (e *Engine) Priority(id string) (OrderPriority, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	p, ok := e.priorities[id]
	return p, ok
}

// StationMetrics returns the current metrics for every station
func (e *Engine) StationMetrics() map[models.Station]StationMetrics {
	e.mu.RLock()
	defer e.mu.RUnlock()

	metrics := make(map[models.Station]StationMetrics, len(e.metrics))
	for station, m := range e.metrics {
		metrics[station] = m
	}
	return metrics
}

// StationMetricsFor returns the current metrics for a single station
func (e *Engine) StationMetricsFor(station models.Station) StationMetrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.metrics[station]
}

// ShouldStartCourse applies course routing for an order's course given
// which courses are complete and which are outstanding. Always true
// when course routing is disabled by configuration.
func (e *Engine) ShouldStartCourse(course models.Course, completed, active []models.Course) bool {
	if !e.cfg.CourseRouting {
		return true
	}
	return ShouldStartCourse(course, completed, active)
}

// refreshMetricsLocked recomputes station metrics from the current
// registry contents. Caller must hold the write lock.
func (e *Engine) refreshMetricsLocked() {
	e.metrics = computeStationMetrics(e.orders, e.cfg)
	if e.recorder != nil {
		e.recorder.RecordQueueDepth(len(e.orders))
		for station, m := range e.metrics {
			e.recorder.RecordStationLoad(station, m.CurrentLoad)
		}
	}
}

// recomputePriorityLocked recalculates one order's priority from current
// metrics, folding in the escalation boost for escalated orders so the
// boost survives recomputes. Caller must hold the write lock.
func (e *Engine) recomputePriorityLocked(order *models.KDSOrder) {
	p := CalculatePriority(order, e.metrics[e.scoringStation(order)], e.cfg, e.now())
	if order.Escalated {
		p.Factors.EscalationBoost = e.cfg.EscalationBump
		p.Score = round2(p.Score + e.cfg.EscalationBump)
	}
	order.Priority = p.Score
	e.priorities[order.ID] = p
	if e.recorder != nil {
		e.recorder.RecordPriority(p.Score)
	}
}

// scoringStation picks the station whose load feeds an order's score:
// the assigned station when set, else the first item's station.
func (e *Engine) scoringStation(order *models.KDSOrder) models.Station {
	if order.AssignedStation.Valid() {
		return order.AssignedStation
	}
	if len(order.Items) > 0 {
		return order.Items[0].EffectiveStation()
	}
	return models.StationKitchen
}
