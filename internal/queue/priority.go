package queue

import (
	"math"
	"time"

	"expeditor/internal/models"
)

// FactorBreakdown records every contributing factor of a priority score
// so displays can show why an order is urgent.
type FactorBreakdown struct {
	WaitTimeMinutes    float64 `json:"wait_time_minutes"`
	WaitScore          float64 `json:"wait_score"`
	Complexity         float64 `json:"complexity"`
	ComplexityScore    float64 `json:"complexity_score"`
	StationLoad        float64 `json:"station_load"`
	StationLoadScore   float64 `json:"station_load_score"`
	CoursePosition     int     `json:"course_position"`
	CourseScore        float64 `json:"course_score"`
	CustomerMultiplier float64 `json:"customer_multiplier"`
	CustomerScore      float64 `json:"customer_score"`
	UrgentModifiers    bool    `json:"urgent_modifiers"`
	ModifierScore      float64 `json:"modifier_score"`
	EscalationBoost    float64 `json:"escalation_boost,omitempty"`
}

// OrderPriority is the derived priority of a single order
type OrderPriority struct {
	OrderID       string          `json:"order_id"`
	Score         float64         `json:"score"`
	EstimatedTime int             `json:"estimated_time"`
	Factors       FactorBreakdown `json:"factors"`
}

// CalculatePriority computes the weighted priority score, ETA and factor
// breakdown for an order given its station's current metrics. The result
// is deterministic for identical (order, metrics, cfg, now) inputs.
func CalculatePriority(order *models.KDSOrder, metrics StationMetrics, cfg Config, now time.Time) OrderPriority {
	waitMinutes := order.WaitTime(now).Minutes()
	if waitMinutes < 0 {
		waitMinutes = 0
	}

	// Orders with no items fall back to default complexity and course
	// rather than producing NaN means.
	complexity := 3.0
	coursePosition := models.CourseMain.Position()
	totalPrep := 0
	if len(order.Items) > 0 {
		sum := 0.0
		coursePosition = len(models.CourseSequence)
		for _, item := range order.Items {
			sum += item.EffectiveComplexity()
			if pos := item.EffectiveCourse().Position(); pos < coursePosition {
				coursePosition = pos
			}
			totalPrep += item.EffectivePrepTime()
		}
		complexity = sum / float64(len(order.Items))
	}

	waitRatio := 1.0
	if cfg.SLAMinutes > 0 {
		waitRatio = math.Min(waitMinutes/cfg.SLAMinutes, 1)
	}

	multiplier := order.CustomerType.Multiplier()
	urgent := order.HasUrgentModifiers()

	breakdown := FactorBreakdown{
		WaitTimeMinutes:    waitMinutes,
		WaitScore:          waitRatio * cfg.Weights.WaitTime,
		Complexity:         complexity,
		ComplexityScore:    complexity / 5 * cfg.Weights.Complexity,
		StationLoad:        metrics.CurrentLoad,
		StationLoadScore:   metrics.CurrentLoad * cfg.Weights.StationLoad,
		CoursePosition:     coursePosition,
		CourseScore:        (1 - float64(coursePosition)/5) * cfg.Weights.CoursePosition,
		CustomerMultiplier: multiplier,
		CustomerScore:      multiplier / 1.5 * cfg.Weights.CustomerType,
	}
	if urgent {
		breakdown.UrgentModifiers = true
		breakdown.ModifierScore = cfg.Weights.Modifiers
	}

	score := breakdown.WaitScore +
		breakdown.ComplexityScore +
		breakdown.StationLoadScore +
		breakdown.CourseScore +
		breakdown.CustomerScore +
		breakdown.ModifierScore

	divisor := math.Max(float64(metrics.Capacity)*0.8, 1)
	estimated := int(math.Ceil(float64(totalPrep) * (1 + metrics.CurrentLoad*0.5) / divisor))

	return OrderPriority{
		OrderID:       order.ID,
		Score:         round2(score),
		EstimatedTime: estimated,
		Factors:       breakdown,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
