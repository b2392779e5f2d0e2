package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Divyam-11/ExamJudge/internal/auditlog"
	auditrepo "github.com/Divyam-11/ExamJudge/internal/auditlog/repository"
	"github.com/Divyam-11/ExamJudge/internal/broadcast"
	"github.com/Divyam-11/ExamJudge/internal/config"
	"github.com/Divyam-11/ExamJudge/internal/db"
	"github.com/Divyam-11/ExamJudge/internal/firehose"
	"github.com/Divyam-11/ExamJudge/internal/gateway"
	"github.com/Divyam-11/ExamJudge/internal/observe"
	obsotel "github.com/Divyam-11/ExamJudge/internal/observe/otel"
	"github.com/Divyam-11/ExamJudge/internal/presence"
	roomrepo "github.com/Divyam-11/ExamJudge/internal/room/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	providers, err := obsotel.NewProviders(ctx, cfg.OTLPEndpoint, "examjudge-server", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("observe: %v", err)
	}
	providers.SetGlobal()

	operator := obsotel.NewEmitter(providers.LoggerProvider)
	metrics, err := observe.NewMetrics(providers.MeterProvider)
	if err != nil {
		log.Fatalf("observe: metrics: %v", err)
	}

	var (
		rooms roomrepo.Repository
		audit auditrepo.Repository
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer conn.Close()
		rooms = roomrepo.NewPostgresRepository(conn)
		audit = auditrepo.NewPostgresRepository(conn)
		log.Println("server: using Postgres stores")
	} else {
		rooms = roomrepo.NewMemoryRepository()
		audit = auditrepo.NewMemoryRepository()
		log.Println("server: DATABASE_URL not set, using in-memory stores (audit trail is not durable)")
	}

	hub := broadcast.NewHub(cfg.SubscriberQueue, func(roomID, subscriberID string) {
		metrics.SubscribersDropped.Add(context.Background(), 1)
		log.Printf("server: dropped slow subscriber %s in room %s", subscriberID, roomID)
	})
	registry := presence.NewRegistry(hub, auditlog.NewConnectionLogger(audit))

	producer, err := firehose.NewKafkaProducer(cfg.AlertKafkaBrokersList(), cfg.AlertKafkaTopic)
	if err != nil {
		log.Fatalf("firehose: %v", err)
	}
	var alertFirehose firehose.Producer
	if producer != nil {
		alertFirehose = producer
		defer producer.Close()
		log.Printf("server: alert firehose enabled on topic %s", cfg.AlertKafkaTopic)
	}

	gw := gateway.New(gateway.Deps{
		Rooms:    rooms,
		Audit:    audit,
		Registry: registry,
		Hub:      hub,
		Firehose: alertFirehose,
		Operator: operator,
		Metrics:  metrics,
		Tracer:   providers.TracerProvider.Tracer("examjudge.gateway"),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           gw.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server: listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("server: shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: shutdown: %v", err)
	}

	// Let in-flight operator emits and firehose writes settle before the
	// exporters are torn down.
	time.Sleep(observe.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: observe shutdown: %v", err)
	}
	log.Println("server: stopped")
}
