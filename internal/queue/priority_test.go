package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expeditor/internal/models"
)

func referenceOrder(created time.Time) *models.KDSOrder {
	return &models.KDSOrder{
		ID:           "order-1",
		Status:       models.StatusPending,
		CreatedAt:    created,
		CustomerType: models.CustomerRegular,
		Items: []models.OrderItem{
			{
				ID:         "item-1",
				Name:       "Steak Frites",
				Quantity:   1,
				Station:    models.StationKitchen,
				Course:     models.CourseMain,
				Complexity: 3,
				PrepTime:   10,
			},
		},
	}
}

func idleKitchen() StationMetrics {
	return StationMetrics{
		Station:  models.StationKitchen,
		Capacity: 10,
	}
}

func TestCalculatePriority_ReferenceScenario(t *testing.T) {
	now := time.Now()
	order := referenceOrder(now)

	p := CalculatePriority(order, idleKitchen(), DefaultConfig(), now)

	assert.InDelta(t, 0.28, p.Score, 0.001)
	assert.Equal(t, 2, p.EstimatedTime)

	assert.Zero(t, p.Factors.WaitScore)
	assert.InDelta(t, 0.09, p.Factors.ComplexityScore, 0.0001)
	assert.Zero(t, p.Factors.StationLoadScore)
	assert.InDelta(t, 0.12, p.Factors.CourseScore, 0.0001)
	assert.InDelta(t, 0.0667, p.Factors.CustomerScore, 0.0001)
	assert.False(t, p.Factors.UrgentModifiers)
	assert.Zero(t, p.Factors.ModifierScore)
}

func TestCalculatePriority_UrgentModifier(t *testing.T) {
	now := time.Now()
	order := referenceOrder(now)
	order.Items[0].Modifiers = "Rush please"

	p := CalculatePriority(order, idleKitchen(), DefaultConfig(), now)

	assert.True(t, p.Factors.UrgentModifiers)
	assert.InDelta(t, 0.05, p.Factors.ModifierScore, 0.0001)
	assert.InDelta(t, 0.33, p.Score, 0.001)
}

func TestCalculatePriority_Deterministic(t *testing.T) {
	now := time.Now()
	order := referenceOrder(now.Add(-7 * time.Minute))
	metrics := StationMetrics{Station: models.StationKitchen, Capacity: 10, CurrentLoad: 0.4}
	cfg := DefaultConfig()

	first := CalculatePriority(order, metrics, cfg, now)
	second := CalculatePriority(order, metrics, cfg, now)

	assert.Equal(t, first, second)
}

func TestCalculatePriority_WaitScoreMonotonicAndSaturating(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Now()

	var previous float64
	for _, waited := range []time.Duration{0, 5 * time.Minute, 10 * time.Minute, 19 * time.Minute} {
		order := referenceOrder(now.Add(-waited))
		p := CalculatePriority(order, idleKitchen(), cfg, now)
		assert.GreaterOrEqual(t, p.Factors.WaitScore, previous,
			"wait score must not decrease as wait time grows")
		previous = p.Factors.WaitScore
	}

	// Once past the SLA the wait contribution stays capped at the weight
	atSLA := CalculatePriority(referenceOrder(now.Add(-20*time.Minute)), idleKitchen(), cfg, now)
	wellPast := CalculatePriority(referenceOrder(now.Add(-90*time.Minute)), idleKitchen(), cfg, now)
	assert.InDelta(t, cfg.Weights.WaitTime, atSLA.Factors.WaitScore, 0.0001)
	assert.Equal(t, atSLA.Factors.WaitScore, wellPast.Factors.WaitScore)
}

func TestCalculatePriority_EarlierCourseScoresHigher(t *testing.T) {
	now := time.Now()

	appetizer := referenceOrder(now)
	appetizer.Items[0].Course = models.CourseAppetizer
	dessert := referenceOrder(now)
	dessert.Items[0].Course = models.CourseDessert

	cfg := DefaultConfig()
	appetizerScore := CalculatePriority(appetizer, idleKitchen(), cfg, now).Factors.CourseScore
	dessertScore := CalculatePriority(dessert, idleKitchen(), cfg, now).Factors.CourseScore

	assert.Greater(t, appetizerScore, dessertScore)
}

func TestCalculatePriority_CoursePositionIsMinAcrossItems(t *testing.T) {
	now := time.Now()
	order := referenceOrder(now)
	order.Items = append(order.Items, models.OrderItem{
		ID:     "item-2",
		Name:   "Bruschetta",
		Course: models.CourseAppetizer,
	})

	p := CalculatePriority(order, idleKitchen(), DefaultConfig(), now)
	assert.Equal(t, 0, p.Factors.CoursePosition)
}

func TestCalculatePriority_StationLoadComponent(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()

	busy := StationMetrics{Station: models.StationKitchen, Capacity: 10, CurrentLoad: 0.9}
	quiet := StationMetrics{Station: models.StationKitchen, Capacity: 10, CurrentLoad: 0.1}

	busyScore := CalculatePriority(referenceOrder(now), busy, cfg, now).Factors.StationLoadScore
	quietScore := CalculatePriority(referenceOrder(now), quiet, cfg, now).Factors.StationLoadScore

	assert.Greater(t, busyScore, quietScore)
}

func TestCalculatePriority_CustomerTiers(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()

	scores := make(map[models.CustomerType]float64)
	for _, tier := range []models.CustomerType{models.CustomerVIP, models.CustomerRegular, models.CustomerNew} {
		order := referenceOrder(now)
		order.CustomerType = tier
		scores[tier] = CalculatePriority(order, idleKitchen(), cfg, now).Factors.CustomerScore
	}

	assert.Greater(t, scores[models.CustomerVIP], scores[models.CustomerRegular])
	assert.Greater(t, scores[models.CustomerRegular], scores[models.CustomerNew])
	assert.InDelta(t, cfg.Weights.CustomerType, scores[models.CustomerVIP], 0.0001)
}

func TestCalculatePriority_EmptyItemsUsesDefaults(t *testing.T) {
	now := time.Now()
	order := &models.KDSOrder{
		ID:           "empty",
		Status:       models.StatusPending,
		CreatedAt:    now,
		CustomerType: models.CustomerRegular,
	}

	p := CalculatePriority(order, idleKitchen(), DefaultConfig(), now)

	require.False(t, p.Score != p.Score, "score must not be NaN")
	assert.InDelta(t, 3.0, p.Factors.Complexity, 0.0001)
	assert.Equal(t, models.CourseMain.Position(), p.Factors.CoursePosition)
	assert.Equal(t, 0, p.EstimatedTime)
}

func TestCalculatePriority_EstimatedTimeGrowsWithLoad(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	order := referenceOrder(now)
	order.Items[0].PrepTime = 24

	idle := CalculatePriority(order, idleKitchen(), cfg, now)
	loaded := CalculatePriority(order, StationMetrics{Station: models.StationKitchen, Capacity: 10, CurrentLoad: 1}, cfg, now)

	// 24/8 = 3 idle; 24*1.5/8 = 4.5 -> 5 under full load
	assert.Equal(t, 3, idle.EstimatedTime)
	assert.Equal(t, 5, loaded.EstimatedTime)
}
