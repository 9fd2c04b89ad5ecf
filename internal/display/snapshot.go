package display

import (
	"time"

	"expeditor/internal/models"
	"expeditor/internal/queue"
)

// Snapshot is the full queue picture pushed to display clients
type Snapshot struct {
	Timestamp  time.Time                               `json:"timestamp"`
	Orders     []*models.KDSOrder                      `json:"orders"`
	Priorities map[string]queue.OrderPriority          `json:"priorities"`
	Stations   map[models.Station]queue.StationMetrics `json:"stations"`
	Stats      queue.QueueStats                        `json:"stats"`
}

// BuildSnapshot assembles the current sorted queue, per-order priority
// breakdowns, station metrics and aggregate stats
func BuildSnapshot(engine *queue.Engine) Snapshot {
	orders := engine.SortedOrders("")

	priorities := make(map[string]queue.OrderPriority, len(orders))
	for _, order := range orders {
		if p, ok := engine.Priority(order.ID); ok {
			priorities[order.ID] = p
		}
	}

	return Snapshot{
		Timestamp:  time.Now(),
		Orders:     orders,
		Priorities: priorities,
		Stations:   engine.StationMetrics(),
		Stats:      engine.Stats(),
	}
}
