package queue

import (
	"sort"

	"expeditor/internal/models"
)

// QueueStats aggregates the state of the whole queue for display headers
type QueueStats struct {
	TotalOrders        int                        `json:"total_orders"`
	ByStatus           map[models.OrderStatus]int `json:"by_status"`
	AverageWaitMinutes float64                    `json:"average_wait_minutes"`
	AveragePriority    float64                    `json:"average_priority"`
}

// SortedOrders returns the queue sorted descending by priority. When a
// station is given, only orders with at least one item at that station
// are included. Equal priorities break on earlier CreatedAt, then id,
// so the ordering is deterministic.
func (e *Engine) SortedOrders(station models.Station) []*models.KDSOrder {
	e.mu.RLock()

	orders := make([]*models.KDSOrder, 0, len(e.orders))
	for _, order := range e.orders {
		if station != "" && !order.HasStation(station) {
			continue
		}
		orders = append(orders, order.Clone())
	}
	scores := make(map[string]float64, len(orders))
	for _, order := range orders {
		scores[order.ID] = e.priorities[order.ID].Score
	}
	e.mu.RUnlock()

	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if scores[a.ID] != scores[b.ID] {
			return scores[a.ID] > scores[b.ID]
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return orders
}

// OrdersByCourse returns copies of orders with at least one item of the
// given course
func (e *Engine) OrdersByCourse(course models.Course) []*models.KDSOrder {
	e.mu.RLock()
	defer e.mu.RUnlock()

	orders := make([]*models.KDSOrder, 0)
	for _, order := range e.orders {
		if order.HasCourse(course) {
			orders = append(orders, order.Clone())
		}
	}
	return orders
}

// Stats returns aggregate queue statistics
func (e *Engine) Stats() QueueStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := QueueStats{
		TotalOrders: len(e.orders),
		ByStatus:    make(map[models.OrderStatus]int),
	}

	now := e.now()
	waitSum := 0.0
	prioritySum := 0.0
	for _, order := range e.orders {
		stats.ByStatus[order.Status]++
		waitSum += order.WaitTime(now).Minutes()
		prioritySum += e.priorities[order.ID].Score
	}
	if stats.TotalOrders > 0 {
		stats.AverageWaitMinutes = waitSum / float64(stats.TotalOrders)
		stats.AveragePriority = prioritySum / float64(stats.TotalOrders)
	}
	return stats
}

// ShouldThrottle reports whether the intake layer should slow new orders
// for a station. True when capacity throttling is enabled and the
// station's load exceeds 0.9; advisory only, the engine never rejects
// orders on this signal.
func (e *Engine) ShouldThrottle(station models.Station) bool {
	if !e.cfg.CapacityThrottle {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.metrics[station].CurrentLoad > 0.9
}
