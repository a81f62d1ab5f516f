package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	identityrepo "bustracker/internal/identity/repo"
	identitytransport "bustracker/internal/identity/transport"
	identityusecase "bustracker/internal/identity/usecase"
	"bustracker/internal/shared/auth"
	"bustracker/internal/shared/config"
	db_conn "bustracker/internal/shared/db"
	"bustracker/internal/shared/logger"
	"bustracker/internal/shared/mq"
	"bustracker/internal/tracker/adapters/in/in_ws"
	"bustracker/internal/tracker/adapters/in/transport"
	"bustracker/internal/tracker/adapters/out/out_amqp"
	"bustracker/internal/tracker/adapters/out/repo"
	out "bustracker/internal/tracker/application/ports/out"
	"bustracker/internal/tracker/application/usecase"
	"bustracker/internal/tracker/broadcast"
)

// Run wires and starts the service, blocking until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) {
	log.Info(logger.Entry{Action: "service_starting", Message: "initializing bustracker"})

	// PostgreSQL
	dbPool, err := db_conn.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "db_connection_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	defer db_conn.Close(dbPool, log)

	if err := db_conn.Migrate(ctx, dbPool); err != nil {
		log.Fatal(logger.Entry{
			Action:  "db_migration_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	// RabbitMQ (optional side-channel for external consumers)
	var eventPub out.EventPublisher
	if cfg.RabbitMQ.Enabled {
		mqConn, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal(logger.Entry{
				Action:  "rabbitmq_connection_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
		defer mqConn.Close()

		if err := mq.SetupTopology(mqConn, log); err != nil {
			log.Fatal(logger.Entry{
				Action:  "rabbitmq_topology_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
		eventPub = out_amqp.NewEventPublisher(mqConn, log)
	}

	// Repositories
	locationRepo := repo.NewLocationRepository(dbPool)
	userRepo := identityrepo.NewUserRepository(dbPool)

	// Subscription hub: one instance, passed explicitly to ingestion and
	// to the stream boundary.
	hub := broadcast.NewHub(cfg.Tracker.MaxSubscribers, cfg.Tracker.SubscriberBuffer, log)
	defer hub.Shutdown()

	// Use cases
	ingestUC := usecase.NewIngestLocationUseCase(locationRepo, hub, eventPub, log)
	currentUC := usecase.NewCurrentLocationUseCase(locationRepo)
	etaUC := usecase.NewEstimateArrivalUseCase(locationRepo, cfg.Tracker.AvgSpeedKMH)
	historyUC := usecase.NewLocationHistoryUseCase(locationRepo)
	statusUC := usecase.NewTrackingStatusUseCase(locationRepo)

	// Identity
	jwtService := auth.NewJWTService(cfg.JWT)
	identitySvc := identityusecase.NewService(userRepo, jwtService, log)

	// Handlers
	gpsHandler := transport.NewHandler(ingestUC, currentUC, etaUC, historyUC, statusUC, cfg.Tracker.DefaultVehicleID, log)
	streamHandler := in_ws.NewStreamHandler(hub, locationRepo, cfg.Tracker.DefaultVehicleID, log)
	identityHandler := identitytransport.NewHandler(identitySvc, log)

	authRequired := identitytransport.AuthMiddleware(jwtService)
	adminRequired := transport.AdminMiddleware(jwtService, log)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"bustracker"}`))
	})

	// GPS pipeline and queries
	mux.HandleFunc("POST /gps/data", gpsHandler.SubmitLocation)
	mux.HandleFunc("GET /gps/vehicle-location", gpsHandler.CurrentLocation)
	mux.HandleFunc("GET /gps/estimate-arrival", gpsHandler.EstimateArrival)
	mux.HandleFunc("GET /gps/location-history", gpsHandler.LocationHistory)

	// Live stream
	mux.HandleFunc("GET /ws/location", streamHandler.ServeWS)

	// Identity
	mux.HandleFunc("POST /auth/register", identityHandler.Register)
	mux.HandleFunc("POST /auth/login", identityHandler.Login)
	mux.Handle("GET /auth/me", authRequired(http.HandlerFunc(identityHandler.Me)))

	// Admin
	mux.Handle("GET /admin/users/pending", adminRequired(http.HandlerFunc(identityHandler.PendingUsers)))
	mux.Handle("PUT /admin/users/{user_id}/approve", adminRequired(http.HandlerFunc(identityHandler.ApproveUser)))
	mux.Handle("PUT /admin/users/{user_id}/reject", adminRequired(http.HandlerFunc(identityHandler.RejectUser)))
	mux.Handle("GET /admin/tracking-status", adminRequired(http.HandlerFunc(gpsHandler.GetTrackingStatus)))
	mux.Handle("PUT /admin/tracking-status", adminRequired(http.HandlerFunc(gpsHandler.SetTrackingStatus)))

	handler := transport.RequestIDMiddleware(mux)
	handler = transport.LoggingMiddleware(log)(handler)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
		// no Read/WriteTimeout: /ws/location holds connections open
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info(logger.Entry{
			Action:  "http_server_starting",
			Message: fmt.Sprintf("listening on %s", addr),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(logger.Entry{
				Action:  "http_server_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
	}()

	<-ctx.Done()

	log.Info(logger.Entry{Action: "service_stopping", Message: "shutdown signal received"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(logger.Entry{
			Action:  "http_server_shutdown_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
}
