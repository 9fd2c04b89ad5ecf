package queue

import (
	"math"

	"expeditor/internal/models"
)

// StationMetrics holds the derived load picture of a single station.
// Recomputed on every registry mutation, never persisted.
type StationMetrics struct {
	Station         models.Station `json:"station"`
	Capacity        int            `json:"capacity"`
	CurrentLoad     float64        `json:"current_load"`
	ActiveOrders    int            `json:"active_orders"`
	QueueLength     int            `json:"queue_length"`
	AveragePrepTime float64        `json:"average_prep_time"`
}

// computeStationMetrics rescans the full order set and derives per-station
// load. Only orders whose overall status is preparing or acknowledged
// count toward load. A full O(orders x items) rescan is fine at
// kitchen-display scale.
func computeStationMetrics(orders map[string]*models.KDSOrder, cfg Config) map[models.Station]StationMetrics {
	counts := make(map[models.Station]int, len(models.AllStations))
	prepSums := make(map[models.Station]int, len(models.AllStations))

	for _, order := range orders {
		if !order.Status.Active() {
			continue
		}
		for _, item := range order.Items {
			station := item.EffectiveStation()
			counts[station]++
			prepSums[station] += item.EffectivePrepTime()
		}
	}

	metrics := make(map[models.Station]StationMetrics, len(models.AllStations))
	for _, station := range models.AllStations {
		capacity := cfg.CapacityFor(station)
		active := counts[station]

		m := StationMetrics{
			Station:      station,
			Capacity:     capacity,
			CurrentLoad:  math.Min(float64(active)/float64(capacity), 1),
			ActiveOrders: active,
			QueueLength:  active,
		}
		if active > 0 {
			m.AveragePrepTime = float64(prepSums[station]) / float64(active)
		}
		metrics[station] = m
	}
	return metrics
}
