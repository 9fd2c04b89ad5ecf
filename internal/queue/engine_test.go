package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expeditor/internal/models"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AutoEscalation = false
	return cfg
}

func testOrder(id string, status models.OrderStatus, items ...models.OrderItem) *models.KDSOrder {
	if len(items) == 0 {
		items = []models.OrderItem{{ID: id + "-item", Name: "Burger", Quantity: 1}}
	}
	return &models.KDSOrder{
		ID:     id,
		Status: status,
		Items:  items,
	}
}

func TestEngine_AddRemoveRoundTrip(t *testing.T) {
	e := NewEngine(testConfig())
	defer e.Dispose()

	require.NoError(t, e.AddOrder(testOrder("o1", models.StatusPending)))

	_, ok := e.Priority("o1")
	assert.True(t, ok, "add must cache a priority")

	assert.True(t, e.RemoveOrder("o1"))
	assert.Empty(t, e.Orders())

	_, ok = e.Priority("o1")
	assert.False(t, ok, "remove must drop the cached priority")

	assert.False(t, e.RemoveOrder("o1"), "second remove reports nothing removed")
}

func TestEngine_AddDefaults(t *testing.T) {
	e := NewEngine(testConfig())
	defer e.Dispose()

	require.NoError(t, e.AddOrder(&models.KDSOrder{
		ID:    "o1",
		Items: []models.OrderItem{{ID: "i1", Name: "Soup"}},
	}))

	order, ok := e.GetOrder("o1")
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.CustomerRegular, order.CustomerType)
	assert.False(t, order.CreatedAt.IsZero())
}

func TestEngine_AddRejectsWhenFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxOrdersInQueue = 1
	e := NewEngine(cfg)
	defer e.Dispose()

	require.NoError(t, e.AddOrder(testOrder("o1", models.StatusPending)))

	err := e.AddOrder(testOrder("o2", models.StatusPending))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Len(t, e.Orders(), 1)
}

func TestEngine_AddRejectsEmptyItems(t *testing.T) {
	e := NewEngine(testConfig())
	defer e.Dispose()

	err := e.AddOrder(&models.KDSOrder{ID: "empty"})
	assert.ErrorIs(t, err, ErrNoItems)
	assert.Empty(t, e.Orders())
}

func TestEngine_UpdateMergesFields(t *testing.T) {
	e := NewEngine(testConfig())
	defer e.Dispose()

	require.NoError(t, e.AddOrder(testOrder("o1", models.StatusPending)))
	created, _ := e.GetOrder("o1")

	status := models.StatusPreparing
	staff := "chef-7"
	updated, err := e.UpdateOrder("o1", models.OrderUpdate{
		Status:          &status,
		AssignedStaffID: &staff,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPreparing, updated.Status)
	assert.Equal(t, "chef-7", updated.AssignedStaffID)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt), "CreatedAt is immutable")
}

func TestEngine_UpdateUnknownOrder(t *testing.T) {
	e := NewEngine(testConfig())
	defer e.Dispose()

	_, err := e.UpdateOrder("missing", models.OrderUpdate{})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestEngine_MetricsTrackActiveOrdersOnly(t *testing.T) {
	e := NewEngine(testConfig())
	defer e.Dispose()

	require.NoError(t, e.AddOrder(testOrder("pending", models.StatusPending)))

	m := e.StationMetricsFor(models.StationKitchen)
	assert.Zero(t, m.ActiveOrders, "pending orders do not count toward load")

	status := models.StatusPreparing
	_, err := e.UpdateOrder("pending", models.OrderUpdate{Status: &status})
	require.NoError(t, err)

	m = e.StationMetricsFor(models.StationKitchen)
	assert.Equal(t, 1, m.ActiveOrders)
	assert.InDelta(t, 0.1, m.CurrentLoad, 0.0001)
	assert.InDelta(t, 10, m.AveragePrepTime, 0.0001)
}

func TestEngine_MetricsGroupItemsByStation(t *testing.T) {
	e := NewEngine(testConfig())
	defer e.Dispose()

	require.NoError(t, e.AddOrder(testOrder("o1", models.StatusPreparing,
		models.OrderItem{ID: "i1", Name: "Steak", Station: models.StationKitchen, PrepTime: 12},
		models.OrderItem{ID: "i2", Name: "Negroni", Station: models.StationBar, PrepTime: 4},
		models.OrderItem{ID: "i3", Name: "Fries"}, // defaults to kitchen
	)))

	kitchen := e.StationMetricsFor(models.StationKitchen)
	bar := e.StationMetricsFor(models.StationBar)
	service := e.StationMetricsFor(models.StationService)

	assert.Equal(t, 2, kitchen.ActiveOrders)
	assert.InDelta(t, 11, kitchen.AveragePrepTime, 0.0001)
	assert.Equal(t, 1, bar.ActiveOrders)
	assert.Zero(t, service.ActiveOrders)
}

func TestEngine_LoadClampsAtOne(t *testing.T) {
	cfg := testConfig()
	cfg.StationCapacity[models.StationKitchen] = 2
	e := NewEngine(cfg)
	defer e.Dispose()

	items := make([]models.OrderItem, 5)
	for i := range items {
		items[i] = models.OrderItem{ID: string(rune('a' + i)), Name: "Dish"}
	}
	require.NoError(t, e.AddOrder(testOrder("o1", models.StatusPreparing, items...)))

	m := e.StationMetricsFor(models.StationKitchen)
	assert.Equal(t, 1.0, m.CurrentLoad)
	assert.Equal(t, 5, m.ActiveOrders)
}

func TestEngine_ReadsReturnCopies(t *testing.T) {
	e := NewEngine(testConfig())
	defer e.Dispose()

	require.NoError(t, e.AddOrder(testOrder("o1", models.StatusPending)))

	order, _ := e.GetOrder("o1")
	order.Notes = "mutated by caller"
	order.Items[0].Name = "Tampered"

	fresh, _ := e.GetOrder("o1")
	assert.Empty(t, fresh.Notes)
	assert.Equal(t, "Burger", fresh.Items[0].Name)
}

func TestEngine_DisposeClearsState(t *testing.T) {
	cfg := testConfig()
	cfg.AutoEscalation = true
	cfg.SweepInterval = 5 * time.Millisecond
	e := NewEngine(cfg)
	e.Start()

	require.NoError(t, e.AddOrder(testOrder("o1", models.StatusPending)))

	done := make(chan struct{})
	go func() {
		e.Dispose()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispose did not return")
	}

	assert.Empty(t, e.Orders())
	e.Dispose() // idempotent
}
