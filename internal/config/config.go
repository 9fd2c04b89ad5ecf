package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"expeditor/internal/models"
	"expeditor/internal/queue"
)

// Config is the daemon configuration loaded from YAML
type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`
	Queue QueueConfig `yaml:"queue"`
}

// QueueConfig is the YAML shape of the smart queue configuration
type QueueConfig struct {
	MaxOrdersInQueue          int                `yaml:"max_orders_in_queue"`
	SLAMinutes                float64            `yaml:"sla_minutes"`
	EscalationIntervalSeconds int                `yaml:"escalation_interval_seconds"`
	EscalationBump            float64            `yaml:"escalation_bump"`
	AutoEscalation            *bool              `yaml:"auto_escalation"`
	CourseRouting             *bool              `yaml:"course_routing"`
	CapacityThrottle          *bool              `yaml:"capacity_throttle"`
	StationCapacity           map[string]int     `yaml:"station_capacity"`
	Weights                   map[string]float64 `yaml:"weights"`
}

// Load reads the configuration file, filling unset fields with defaults
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.MetricsPort = 9090
	cfg.Database.Path = "expeditor.db"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// QueueConfig converts the YAML queue section into the engine
// configuration, leaving defaults for anything unset
func (c *Config) QueueConfig() queue.Config {
	qc := queue.DefaultConfig()

	if c.Queue.MaxOrdersInQueue > 0 {
		qc.MaxOrdersInQueue = c.Queue.MaxOrdersInQueue
	}
	if c.Queue.SLAMinutes > 0 {
		qc.SLAMinutes = c.Queue.SLAMinutes
	}
	if c.Queue.EscalationIntervalSeconds > 0 {
		qc.SweepInterval = time.Duration(c.Queue.EscalationIntervalSeconds) * time.Second
	}
	if c.Queue.EscalationBump > 0 {
		qc.EscalationBump = c.Queue.EscalationBump
	}
	if c.Queue.AutoEscalation != nil {
		qc.AutoEscalation = *c.Queue.AutoEscalation
	}
	if c.Queue.CourseRouting != nil {
		qc.CourseRouting = *c.Queue.CourseRouting
	}
	if c.Queue.CapacityThrottle != nil {
		qc.CapacityThrottle = *c.Queue.CapacityThrottle
	}
	for name, capacity := range c.Queue.StationCapacity {
		station := models.Station(name)
		if station.Valid() && capacity > 0 {
			qc.StationCapacity[station] = capacity
		}
	}
	if w := c.Queue.Weights; len(w) > 0 {
		setWeight(w, "wait_time", &qc.Weights.WaitTime)
		setWeight(w, "complexity", &qc.Weights.Complexity)
		setWeight(w, "station_load", &qc.Weights.StationLoad)
		setWeight(w, "course_position", &qc.Weights.CoursePosition)
		setWeight(w, "customer_type", &qc.Weights.CustomerType)
		setWeight(w, "modifiers", &qc.Weights.Modifiers)
	}
	return qc
}

func setWeight(weights map[string]float64, name string, dst *float64) {
	if v, ok := weights[name]; ok {
		*dst = v
	}
}
