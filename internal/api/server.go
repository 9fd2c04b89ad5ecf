package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"expeditor/internal/display"
	"expeditor/internal/events"
	"expeditor/internal/models"
	"expeditor/internal/queue"
)

// Server wires the smart queue engine to its HTTP and websocket surface
type Server struct {
	router    *gin.Engine
	engine    *queue.Engine
	store     SnapshotStore
	hub       *display.Hub
	publisher events.Publisher
}

// SnapshotStore is the external source of truth the queue is rebuilt
// from on restart
type SnapshotStore interface {
	SaveOrder(order *models.KDSOrder) error
	DeleteOrder(id string) error
}

// NewServer creates the API server for a queue engine
func NewServer(engine *queue.Engine, store SnapshotStore, hub *display.Hub, publisher events.Publisher) *Server {
	s := &Server{
		router:    gin.Default(),
		engine:    engine,
		store:     store,
		hub:       hub,
		publisher: publisher,
	}
	s.setupRoutes()
	return s
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Expeditor KDS API is running"})
	})
	s.router.GET("/ws", s.hub.HandleConnection)

	v1 := s.router.Group("/api/v1")
	{
		// Order intake
		v1.POST("/orders", s.CreateOrder)
		v1.GET("/orders/:id", s.GetOrder)
		v1.PUT("/orders/:id", s.UpdateOrder)
		v1.DELETE("/orders/:id", s.RemoveOrder)

		// Queue views
		v1.GET("/queue", s.GetQueue)
		v1.GET("/queue/course/:course", s.GetQueueByCourse)
		v1.GET("/queue/stats", s.GetQueueStats)

		// Station metrics
		v1.GET("/stations", s.GetStations)
		v1.GET("/stations/:station/throttle", s.GetThrottle)
	}
}

// broadcast pushes a fresh snapshot to all connected displays
func (s *Server) broadcast() {
	s.hub.Broadcast(display.BuildSnapshot(s.engine))
}

// publish fires a queue event without blocking the request on failure
func (s *Server) publish(ctx context.Context, event events.QueueEvent) {
	if err := events.PublishQueueEvent(ctx, s.publisher, event); err != nil {
		// Event delivery is best-effort; the queue itself is already updated
		logPublishError(event.EventType, err)
	}
}
