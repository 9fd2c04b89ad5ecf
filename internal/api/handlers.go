package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"expeditor/internal/events"
	"expeditor/internal/models"
	"expeditor/internal/queue"
)

// OrderView pairs an order with its priority breakdown for display clients
type OrderView struct {
	Order    *models.KDSOrder    `json:"order"`
	Priority queue.OrderPriority `json:"priority"`
}

// CreateOrder ingests a new order into the queue
func (s *Server) CreateOrder(c *gin.Context) {
	var order models.KDSOrder
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	if err := s.engine.AddOrder(&order); err != nil {
		switch {
		case errors.Is(err, queue.ErrQueueFull):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Queue is at capacity"})
		case errors.Is(err, queue.ErrNoItems):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order must have at least one item"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	stored, _ := s.engine.GetOrder(order.ID)
	if err := s.store.SaveOrder(stored); err != nil {
		log.Printf("Failed to persist order %s: %v", order.ID, err)
	}

	priority, _ := s.engine.Priority(order.ID)
	s.publish(c.Request.Context(), events.QueueEvent{
		EventType:   events.EventOrderQueued,
		OrderID:     stored.ID,
		OrderNumber: stored.OrderNumber,
		TableID:     stored.TableID,
		Priority:    priority.Score,
	})
	s.broadcast()

	c.JSON(http.StatusCreated, OrderView{Order: stored, Priority: priority})
}

// GetOrder returns a tracked order with its priority breakdown
func (s *Server) GetOrder(c *gin.Context) {
	order, ok := s.engine.GetOrder(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	priority, _ := s.engine.Priority(order.ID)
	c.JSON(http.StatusOK, OrderView{Order: order, Priority: priority})
}

// UpdateOrder merges a partial update into a tracked order
func (s *Server) UpdateOrder(c *gin.Context) {
	var update models.OrderUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.engine.UpdateOrder(c.Param("id"), update)
	if err != nil {
		if errors.Is(err, queue.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.SaveOrder(order); err != nil {
		log.Printf("Failed to persist order %s: %v", order.ID, err)
	}

	priority, _ := s.engine.Priority(order.ID)
	s.publish(c.Request.Context(), events.QueueEvent{
		EventType:   events.EventOrderUpdated,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TableID:     order.TableID,
		Priority:    priority.Score,
	})
	s.broadcast()

	c.JSON(http.StatusOK, OrderView{Order: order, Priority: priority})
}

// RemoveOrder drops an order from the queue (served or cancelled orders
// are removed by the intake layer once terminal)
func (s *Server) RemoveOrder(c *gin.Context) {
	id := c.Param("id")
	if !s.engine.RemoveOrder(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if err := s.store.DeleteOrder(id); err != nil {
		log.Printf("Failed to delete snapshot for order %s: %v", id, err)
	}

	s.publish(c.Request.Context(), events.QueueEvent{
		EventType: events.EventOrderRemoved,
		OrderID:   id,
	})
	s.broadcast()

	c.JSON(http.StatusOK, gin.H{"message": "Order removed"})
}

// GetQueue returns the queue sorted by priority, optionally filtered to
// orders with at least one item at ?station=
func (s *Server) GetQueue(c *gin.Context) {
	station := models.Station(c.Query("station"))
	if station != "" && !station.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown station: " + string(station)})
		return
	}

	orders := s.engine.SortedOrders(station)
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		priority, _ := s.engine.Priority(order.ID)
		views = append(views, OrderView{Order: order, Priority: priority})
	}
	c.JSON(http.StatusOK, views)
}

// GetQueueByCourse returns orders with at least one item of a course
func (s *Server) GetQueueByCourse(c *gin.Context) {
	course := models.Course(c.Param("course"))
	if !course.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown course: " + string(course)})
		return
	}
	c.JSON(http.StatusOK, s.engine.OrdersByCourse(course))
}

// GetQueueStats returns aggregate queue statistics
func (s *Server) GetQueueStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Stats())
}

// GetStations returns the current metrics for every station
func (s *Server) GetStations(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.StationMetrics())
}

// GetThrottle returns the advisory throttle signal for a station
func (s *Server) GetThrottle(c *gin.Context) {
	station := models.Station(c.Param("station"))
	if !station.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown station: " + string(station)})
		return
	}
	metrics := s.engine.StationMetricsFor(station)
	c.JSON(http.StatusOK, gin.H{
		"station":  station,
		"throttle": s.engine.ShouldThrottle(station),
		"load":     metrics.CurrentLoad,
	})
}

func logPublishError(eventType string, err error) {
	log.Printf("Failed to publish %s event: %v", eventType, err)
}
