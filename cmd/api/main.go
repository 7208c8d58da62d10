package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/froakietcg/backend/internal/checkout"
	"github.com/froakietcg/backend/internal/config"
	"github.com/froakietcg/backend/internal/events"
	"github.com/froakietcg/backend/internal/httpx"
	kafkax "github.com/froakietcg/backend/internal/kafka"
	"github.com/froakietcg/backend/internal/payments"
	"github.com/froakietcg/backend/internal/postgres"
	"github.com/froakietcg/backend/internal/razorpay"
	"github.com/froakietcg/backend/internal/redisx"
	"github.com/froakietcg/backend/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers
	prodCreated := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024)
	prodCreated.Start(ctx)
	prodCaptured := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicPaymentCaptured, 1024)
	prodCaptured.Start(ctx)

	// Services
	repo := &store.Repo{DB: db}
	provider := razorpay.New(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	checkoutSvc := &checkout.Service{
		Store:     repo,
		Provider:  provider,
		Producer:  prodCreated,
		StoreName: cfg.StoreName,
		Service:   cfg.ServiceName,
	}
	verifier := &payments.Verifier{
		Store:    repo,
		Secret:   cfg.RazorpayKeySecret,
		Producer: prodCaptured,
		Service:  cfg.ServiceName,
	}

	router := httpx.NewRouter()
	sh := &httpx.StoreHandler{
		Catalog:   repo,
		Orders:    repo,
		Checkout:  checkoutSvc,
		Verifier:  verifier,
		Redis:     rdb,
		StoreName: cfg.StoreName,
	}
	sh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prodCreated.Close()
	prodCaptured.Close()
	cancel()
	prodCreated.WaitClosed()
	prodCaptured.WaitClosed()
}
