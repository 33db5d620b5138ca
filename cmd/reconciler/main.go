// Command reconciler consumes exchange-engine events from Kafka and applies
// them as idempotent state transitions onto the local ledger entities.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/vndex/engine-reconciler/internal/audit"
	"github.com/vndex/engine-reconciler/internal/config"
	"github.com/vndex/engine-reconciler/internal/database"
	"github.com/vndex/engine-reconciler/internal/fiat"
	"github.com/vndex/engine-reconciler/internal/messaging"
	"github.com/vndex/engine-reconciler/internal/reconcile"
	"github.com/vndex/engine-reconciler/internal/server"
	"github.com/vndex/engine-reconciler/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment as-is")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connect to postgres", zap.Error(err))
	}

	tp, err := newTracerProvider()
	if err != nil {
		zapLogger.Fatal("init tracing", zap.Error(err))
	}
	otel.SetTracerProvider(tp)

	dispatcher := reconcile.New(db, zapLogger, audit.NewZapSink(zapLogger), fiat.NewService(zapLogger), &cfg.Fees)
	consumer := messaging.NewConsumer(cfg.Kafka, db, dispatcher, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.Start(ctx)

	if err := server.Run(ctx, cfg.Server, server.New(zapLogger, db), zapLogger); err != nil {
		zapLogger.Error("ops server stopped", zap.Error(err))
	}

	if err := consumer.Close(); err != nil {
		zapLogger.Error("consumer shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		zapLogger.Error("tracer shutdown", zap.Error(err))
	}
	zapLogger.Info("reconciler stopped")
}

func newTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
}
