package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"expeditor/internal/api"
	"expeditor/internal/config"
	"expeditor/internal/display"
	"expeditor/internal/events"
	"expeditor/internal/monitoring"
	"expeditor/internal/queue"
	"expeditor/internal/store"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	dbPath      = flag.String("db", "", "Path to snapshot database (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	queueCfg := cfg.QueueConfig()
	if err := queueCfg.Validate(); err != nil {
		log.Fatalf("Invalid queue configuration: %v", err)
	}

	snapshots, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}
	defer snapshots.Close()

	publisher, err := newPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("Failed to connect event publisher: %v", err)
	}
	defer publisher.Close()

	collector := monitoring.NewCollector()
	hub := display.NewHub()

	engine := queue.NewEngine(queueCfg)
	engine.SetRecorder(collector)
	engine.SetSweepHook(func(escalated []string) {
		for _, id := range escalated {
			event := events.QueueEvent{EventType: events.EventOrderEscalated, OrderID: id}
			if order, ok := engine.GetOrder(id); ok {
				event.OrderNumber = order.OrderNumber
				event.TableID = order.TableID
				event.Priority = order.Priority
			}
			if err := events.PublishQueueEvent(context.Background(), publisher, event); err != nil {
				log.Printf("Failed to publish escalation event for order %s: %v", id, err)
			}
		}
		hub.Broadcast(display.BuildSnapshot(engine))
	})

	rehydrate(engine, snapshots)
	engine.Start()

	server := api.NewServer(engine, snapshots, hub, publisher)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router(),
	}

	go startMetricsServer(cfg.Server.MetricsPort, collector)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}

		hub.Close()
		engine.Dispose()
	}()

	log.Printf("Starting KDS API server on port %d", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

// rehydrate rebuilds the in-memory queue from the snapshot store
func rehydrate(engine *queue.Engine, snapshots *store.Store) {
	orders, err := snapshots.LoadActive()
	if err != nil {
		log.Fatalf("Failed to load persisted orders: %v", err)
	}
	for _, order := range orders {
		if err := engine.AddOrder(order); err != nil {
			log.Printf("Skipping persisted order %s: %v", order.ID, err)
		}
	}
	log.Printf("Rehydrated %d orders from snapshot store", len(orders))
}

func newPublisher(url string) (events.Publisher, error) {
	if url == "" {
		return events.NopPublisher{}, nil
	}
	return events.NewNATSPublisher(url)
}

func startMetricsServer(port int, collector *monitoring.Collector) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(collector.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
