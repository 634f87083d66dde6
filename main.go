package main

import (
	"database/sql"
	"net/http"
	"os"

	"compliance-service/internal/config"
	"compliance-service/internal/flow"
	"compliance-service/internal/publisher"
	"compliance-service/internal/repository"
	"compliance-service/internal/server"
	"compliance-service/internal/service"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)

	if err := godotenv.Load(); err != nil {
		log.Warn("Could not load .env file.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithField("error", err).Fatal("Could not load configuration")
	}

	log.Info("Starting database migration...")
	m, err := migrate.New(cfg.DB.MigrationsPath, cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not create migrate instance")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.WithField("error", err).Fatal("Could not apply migration")
	}
	log.Info("Database migration finished successfully.")

	db, err := sql.Open("postgres", cfg.DB.URL)
	if err != nil {
		log.WithField("error", err).Fatal("Could not connect to the database")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DB.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		log.WithField("error", err).Fatal("Could not ping the database")
	}
	log.Info("Successfully connected to the PostgreSQL database.")

	// Create repositories
	eventRepository := repository.NewPostgresEventRepository(db)
	clientRepository := repository.NewPostgresClientRepository(db)

	// Audit trail is optional: no broker configured means no-op auditing.
	var auditService *service.AuditService
	if cfg.Kafka.BootstrapServers != "" {
		auditPublisher, err := publisher.NewAuditPublisher(cfg.Kafka.BootstrapServers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.WithField("error", err).Fatal("Could not create audit publisher")
		}
		defer auditPublisher.Close()
		auditService = service.NewAuditService(auditPublisher)
	} else {
		log.Warn("KAFKA_BOOTSTRAP_SERVERS not set, audit trail disabled")
	}

	// Create services
	tracer := flow.NewTracer(eventRepository, cfg.Trace.MaxNodes)
	eventService := service.NewEventService(eventRepository, tracer, auditService)
	clientService := service.NewClientService(clientRepository, eventRepository, auditService)

	// Create servers
	srv := server.NewServer(db)
	eventServer := server.NewEventServer(eventService)
	clientServer := server.NewClientServer(clientService)

	// Setup Echo
	e := echo.New()

	// Health check and metrics
	e.GET("/health", srv.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	events := api.Group("/events")
	events.POST("", eventServer.CreateEvent)
	events.GET("", eventServer.GetEvents)
	events.GET("/risk-metrics", eventServer.GetRiskMetrics)
	events.GET("/:id", eventServer.GetEvent)
	events.PUT("/:id", eventServer.UpdateEvent)
	events.DELETE("/:id", eventServer.DeleteEvent)
	events.GET("/:id/flow-path", eventServer.GetFundFlowPath)
	events.GET("/client/:clientId", eventServer.GetClientEvents)

	clients := api.Group("/clients")
	clients.POST("", clientServer.CreateClient)
	clients.GET("", clientServer.ListClients)
	clients.GET("/:id", clientServer.GetClient)
	clients.PUT("/:id", clientServer.UpdateClient)
	clients.DELETE("/:id", clientServer.DeleteClient)
	clients.GET("/:id/stats", clientServer.GetClientStats)

	log.WithField("port", cfg.Server.Port).Info("Compliance service is starting with Echo")

	if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
		log.WithField("error", err).Fatal("Echo server failed to start")
	}
}
