package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carelink-sync/internal/config"
	"carelink-sync/internal/database"
	httpapi "carelink-sync/internal/http"
	"carelink-sync/internal/legacy"
	"carelink-sync/internal/logger"
	"carelink-sync/internal/models"
	"carelink-sync/internal/mqtt"
	"carelink-sync/internal/reconcile"
	"carelink-sync/internal/repository"
	"carelink-sync/internal/scheduler"
	"carelink-sync/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "carelink-sync")
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()

	// Repositories: Postgres when available, in-memory fallback for local dev
	var (
		db           *sql.DB
		patientsRepo repository.PatientsRepository
		notesRepo    repository.NotesRepository
		usersRepo    repository.UsersRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			zlog.Info("DB enabled for carelink-sync")
		} else {
			zlog.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}
	if db != nil {
		patientsRepo = repository.NewPostgresPatientsRepository(db)
		notesRepo = repository.NewPostgresNotesRepository(db)
		usersRepo = repository.NewPostgresUsersRepository(db)
	} else {
		patientsRepo = repository.NewMemoryPatientsRepo()
		notesRepo = repository.NewMemoryNotesRepo()
		usersRepo = repository.NewMemoryUsersRepo()
	}

	// Run lock + last-report store: Redis when available, in-process otherwise
	var kv store.KV
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		kv = store.NewRedisKV(redisClient)
	} else {
		kv = store.NewMemoryKV()
	}
	runLock := store.NewRunLock(kv, cfg.Sync.LockTTL)

	legacyClient := legacy.NewClient(&cfg.Legacy, zlog)

	stats := reconcile.NewStatistics()
	userReconciler := reconcile.NewUserReconciler(usersRepo, stats)
	patientReconciler := reconcile.NewPatientReconciler(patientsRepo, stats, zlog)
	noteReconciler := reconcile.NewNoteReconciler(
		legacyClient, userReconciler, patientsRepo, notesRepo,
		models.ValidComment, stats, zlog, cfg.Sync.WorkerCount,
	)
	synchronizer := reconcile.NewSynchronizer(
		legacyClient, models.ValidClient, patientReconciler, noteReconciler, stats, zlog,
	)
	runner := reconcile.NewRunner(synchronizer, stats, runLock, kv, zlog)

	router := httpapi.NewRouter(zlog)
	router.RegisterSyncRoutes(httpapi.NewSyncHandler(runner, zlog))
	srv := httpapi.NewServer(cfg.HTTP.Addr, router, zlog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Sync.Enabled {
		sched := scheduler.New(runner, cfg.Sync.InitialDelay, cfg.Sync.Interval, zlog)
		go sched.Start(ctx)
	}

	var trigger *mqtt.TriggerConsumer
	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.NewClient(&cfg.MQTT)
		if err != nil {
			zlog.Warn("MQTT enabled but connection failed, trigger disabled", zap.Error(err))
		} else {
			trigger = mqtt.NewTriggerConsumer(mqttClient, runner, cfg.MQTT.Topic, zlog)
			go func() {
				if err := trigger.Start(ctx); err != nil {
					zlog.Error("MQTT trigger consumer failed", zap.Error(err))
				}
			}()
			defer mqttClient.Disconnect()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if trigger != nil {
		trigger.Stop()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
