package queue

import (
	"fmt"
	"time"

	"expeditor/internal/models"
)

const defaultStationCapacity = 10

// Weights holds the six priority weight coefficients. They are supplied
// by the caller and used as-is; no normalization is enforced.
type Weights struct {
	WaitTime       float64 `json:"wait_time"`
	Complexity     float64 `json:"complexity"`
	StationLoad    float64 `json:"station_load"`
	CoursePosition float64 `json:"course_position"`
	CustomerType   float64 `json:"customer_type"`
	Modifiers      float64 `json:"modifiers"`
}

// Config is the process-wide smart queue configuration. It is supplied
// once at construction and immutable for the lifetime of an engine.
type Config struct {
	MaxOrdersInQueue int
	SLAMinutes       float64
	SweepInterval    time.Duration
	EscalationBump   float64
	AutoEscalation   bool
	CourseRouting    bool
	CapacityThrottle bool
	StationCapacity  map[models.Station]int
	Weights          Weights
}

// DefaultConfig returns the reference queue configuration
func DefaultConfig() Config {
	return Config{
		MaxOrdersInQueue: 50,
		SLAMinutes:       20,
		SweepInterval:    60 * time.Second,
		EscalationBump:   10,
		AutoEscalation:   true,
		CourseRouting:    true,
		CapacityThrottle: true,
		StationCapacity: map[models.Station]int{
			models.StationKitchen: defaultStationCapacity,
			models.StationBar:     defaultStationCapacity,
			models.StationService: defaultStationCapacity,
		},
		Weights: Weights{
			WaitTime:       0.30,
			Complexity:     0.15,
			StationLoad:    0.25,
			CoursePosition: 0.15,
			CustomerType:   0.10,
			Modifiers:      0.05,
		},
	}
}

// CapacityFor returns the configured capacity for a station,
// defaulting to 10
func (c Config) CapacityFor(s models.Station) int {
	if capacity, ok := c.StationCapacity[s]; ok && capacity > 0 {
		return capacity
	}
	return defaultStationCapacity
}

// Validate checks the configuration for values the engine cannot run with
func (c Config) Validate() error {
	if c.MaxOrdersInQueue <= 0 {
		return fmt.Errorf("max orders in queue must be positive, got %d", c.MaxOrdersInQueue)
	}
	if c.SLAMinutes <= 0 {
		return fmt.Errorf("SLA minutes must be positive, got %g", c.SLAMinutes)
	}
	if c.AutoEscalation && c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive when auto-escalation is enabled, got %s", c.SweepInterval)
	}
	return nil
}
