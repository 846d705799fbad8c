package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Anya-Gubskay/Shop-bot/config"
	"github.com/Anya-Gubskay/Shop-bot/internal/api"
	"github.com/Anya-Gubskay/Shop-bot/internal/broker"
	"github.com/Anya-Gubskay/Shop-bot/internal/cart"
	"github.com/Anya-Gubskay/Shop-bot/internal/catalog"
	"github.com/Anya-Gubskay/Shop-bot/internal/dialog"
	"github.com/Anya-Gubskay/Shop-bot/internal/gateway"
	"github.com/Anya-Gubskay/Shop-bot/internal/notifier"
	"github.com/Anya-Gubskay/Shop-bot/internal/session"
	"github.com/Anya-Gubskay/Shop-bot/internal/util"
	"github.com/Anya-Gubskay/Shop-bot/internal/worker"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting shop bot")

	if cfg.Observ.JaegerEndpoint != "" {
		tp, err := util.InitTracer("shop-bot", cfg.Observ.JaegerEndpoint)
		if err != nil {
			log.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down tracer: %v", err)
			}
		}()
	}

	var catalogStore catalog.Store
	if cfg.Storage.DatabaseURL != "" {
		pg, err := catalog.NewPGStore(cfg.Storage.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open catalog database: %v", err)
		}
		defer pg.Close()
		catalogStore = pg
		log.Println("Catalog: Postgres")
	} else {
		fs, err := catalog.NewFileStore(cfg.Storage.DataFile)
		if err != nil {
			log.Fatalf("Failed to open catalog file: %v", err)
		}
		catalogStore = fs
		log.Printf("Catalog: file %s", cfg.Storage.DataFile)
	}

	var carts cart.Ledger
	if cfg.Redis.Addr != "" {
		rl, err := cart.NewRedisLedger(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rl.Close()
		carts = rl
		log.Println("Carts: Redis")
	} else {
		carts = cart.NewMemoryLedger()
		log.Println("Carts: in-memory")
	}

	var producer *broker.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicShop)
		defer producer.Close()
		log.Println("Kafka producer initialized")
	}
	events := broker.NewEventPublisher(producer)

	tg, err := gateway.NewTelegram(cfg.Telegram.Token, cfg.Storage.ImagesDir)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram gateway: %v", err)
	}

	sessions := session.NewStore()
	orderNotifier := notifier.New(tg, cfg.Telegram.AdminID, events)
	dialogService := dialog.NewService(catalogStore, carts, sessions, tg, tg, orderNotifier, events, cfg.Telegram.AdminID)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	dispatcher := worker.NewDispatcher(dialogService)
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		if err := dispatcher.Start(workerCtx, tg.Updates(workerCtx)); err != nil && err != context.Canceled {
			log.Printf("Dispatcher error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(catalogStore)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.OpsPort),
		Handler: router,
	}

	go func() {
		log.Printf("Starting ops server on port %s", cfg.Server.OpsPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start ops server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ops server forced to shutdown: %v", err)
	}

	workerCancel()
	<-dispatcherDone
	dispatcher.Stop()

	log.Println("Shop bot exited")
}
