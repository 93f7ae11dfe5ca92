package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/reconcile"
	"resume-builder/internal/shared/config"
)

const (
	defaultVisibilitySeconds  = 120
	defaultWorkerConcurrency  = 4
	defaultShutdownTimeoutSec = 30
)

// runner is implemented by both queue consumers.
type runner interface {
	Run(ctx context.Context) error
}

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	consumer, err := newConsumer(ctx, cfg, app.Reconciler)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("reconcile worker started transport=%s", cfg.AlertTransport)
	if err := consumer.Run(ctx); err != nil {
		log.Fatalf("worker stopped: %v", err)
	}
}

func newConsumer(ctx context.Context, cfg config.Config, processor *reconcile.Processor) (runner, error) {
	concurrency := envInt("WORKER_CONCURRENCY", defaultWorkerConcurrency)
	switch cfg.AlertTransport {
	case "sqs":
		if strings.TrimSpace(cfg.SQSQueueURL) == "" {
			return nil, fmt.Errorf("ALERT_SQS_QUEUE_URL is required")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return &reconcile.SQSPoller{
			Client:            sqs.NewFromConfig(awsCfg),
			QueueURL:          cfg.SQSQueueURL,
			Processor:         processor,
			Concurrency:       concurrency,
			VisibilitySeconds: int32(envInt("SQS_VISIBILITY_TIMEOUT_SECONDS", defaultVisibilitySeconds)),
			ShutdownTimeout:   time.Duration(envInt("SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second,
		}, nil
	case "amqp":
		return &reconcile.AMQPConsumer{
			URL:       cfg.AMQPURL,
			Queue:     cfg.AMQPQueue,
			Processor: processor,
			Prefetch:  concurrency,
		}, nil
	default:
		return nil, fmt.Errorf("ALERT_TRANSPORT=%s has no queue to consume; use sqs or amqp", cfg.AlertTransport)
	}
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
