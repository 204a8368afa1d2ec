package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"distress-service/config"
	"distress-service/internal/alert"
	"distress-service/internal/api"
	"distress-service/internal/dashboard"
	"distress-service/internal/monitor"
	"distress-service/internal/notify"
	"distress-service/internal/patient"
	"distress-service/pkg/consul"
	"distress-service/pkg/eventstore"
	"distress-service/pkg/firebase"
	"distress-service/pkg/kafka"
	"distress-service/pkg/zap"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	uberzap "go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.LoadConfig()

	logger, err := zap.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.ConsulAddr != "" {
		consulConn := consul.NewConsulConn(logger, cfg)
		consulClient, err := consulConn.Connect()
		if err != nil {
			logger.Fatalf("Failed to register with consul: %v", err)
		}
		defer consulConn.Deregister()

		for _, dep := range cfg.ConsulDependencies {
			if err := consul.WaitPassing(consulClient, dep, 60*time.Second); err != nil {
				logger.Fatalf("Dependency not ready: %v", err)
			}
		}
	}

	var (
		patientRepo patient.PatientRepository
		auditStore  interface {
			alert.AuditLog
			alert.AuditReader
		}
	)

	if cfg.MongoURI != "" {
		mongoClient, err := connectToMongoDB(cfg.MongoURI, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				logger.Error(err)
			}
		}()

		db := mongoClient.Database(cfg.MongoDB)
		patientRepo = patient.NewPatientRepository(db.Collection("patients"), db.Collection("doctor_codes"))
		auditStore = alert.NewMongoAudit(db.Collection("alert_audit"))
	} else {
		logger.Warn("MONGO_URI not set, keeping patients and audit in memory")
		patientRepo = patient.NewMemoryRepository()
		auditStore = alert.NewMemoryAudit()
	}

	audit := alert.MultiAudit{alert.NewLoggerAudit(logger), auditStore}
	if cfg.EventStoreURI != "" {
		esClient, err := eventstore.Connect(cfg.EventStoreURI)
		if err != nil {
			logger.Fatalf("Failed to connect to EventStoreDB: %v", err)
		}
		defer esClient.Close()
		audit = append(audit, alert.NewEventStoreAudit(esClient))
	}

	patientService := patient.NewPatientService(patientRepo, logger)

	ledger := alert.NewLedger()
	engine := alert.NewEngine(
		notify.NewSMSLogDispatcher(logger),
		ledger,
		audit,
		logger,
		alert.WithCooldown(cfg.AlertCooldown),
	)

	var push *notify.PushNotifier
	if cfg.FirebaseCredentials != "" {
		_, messagingClient, err := firebase.SetUpFireBase(context.Background(), cfg)
		if err != nil {
			logger.Fatalf("Failed to set up firebase: %v", err)
		}
		push = notify.NewPushNotifier(messagingClient, patientService, logger, cfg.DispatchTimeout)
		engine.AddObserver(push)
	}

	manager := monitor.NewManager(engine, patientService, logger, monitor.Options{
		InitialScore:    cfg.MonitorInitialScore,
		AutoAlert:       cfg.MonitorAutoAlert,
		DispatchTimeout: cfg.DispatchTimeout,
	})
	manager.AddStatusSink(monitor.StatusSinkFunc(patientService.UpdateStatus))

	if len(cfg.KafkaBrokers) > 0 {
		writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaStatusTopic)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Errorf("Failed to close kafka writer: %v", err)
			}
		}()
		manager.AddStatusSink(monitor.NewKafkaStatusPublisher(writer))
	}

	hub := dashboard.NewHub(logger, manager.Snapshots)
	manager.AddListener(hub)
	engine.AddObserver(hub)

	scheduler, err := monitor.NewScheduler(manager, cfg.MonitorTickInterval, logger)
	if err != nil {
		logger.Fatalf("Failed to schedule monitor ticks: %v", err)
	}
	scheduler.Start()

	router := api.NewRouter(api.Handlers{
		Alerts:   alert.NewAlertHandler(engine, auditStore),
		Patients: patient.NewPatientHandler(patientService),
		Monitor:  monitor.NewMonitorHandler(manager),
		Hub:      hub,
	}, api.HealthSource{
		Manager: manager,
		Ledger:  ledger,
		Hub:     hub,
		Started: time.Now(),
	}, cfg.JWTSecret)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	scheduler.Stop(ctx)
	hub.Close()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error shutting down server: %v", err)
	}
	manager.Wait()
	if push != nil {
		push.Wait()
	}
	logger.Info("Server stopped")
}

func connectToMongoDB(uri string, logger *uberzap.SugaredLogger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to MongoDB")
	return client, nil
}
