package main

import (
	"fmt"
	"log"

	"reportsvc/internal/auth"
	"reportsvc/internal/config"
	"reportsvc/internal/handler"
	"reportsvc/internal/payment/yookassa"
	"reportsvc/internal/pricing"
	sqsqueue "reportsvc/internal/queue/sqs"
	"reportsvc/internal/repository/postgres"
	"reportsvc/internal/router"
	"reportsvc/internal/service"
	s3storage "reportsvc/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	reportRepo := postgres.NewReportRepo(db)
	promoRepo := postgres.NewPromocodeRepo(db)

	// Initialize external collaborators
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	parseQueue, err := sqsqueue.NewSQSQueue(&cfg.Queue)
	if err != nil {
		return fmt.Errorf("failed to initialize SQS queue: %w", err)
	}
	gateway := yookassa.NewClient(&cfg.Payment)
	identity := auth.NewClient(&cfg.Auth)

	// Initialize pricing engine
	strategies, err := pricing.ParseConfig(cfg.Pricing.StrategiesJSON)
	if err != nil {
		return fmt.Errorf("failed to parse pricing config: %w", err)
	}
	pricer, err := pricing.New(strategies)
	if err != nil {
		return fmt.Errorf("failed to build pricing engine: %w", err)
	}

	// Initialize services
	reportSvc := service.NewReportService(
		reportRepo, s3Client, parseQueue, pricer, cfg.S3.Bucket, cfg.Upload)
	paymentSvc := service.NewPaymentService(reportRepo, promoRepo, gateway)

	// Initialize handlers
	reportH := handler.NewReportHandler(reportSvc)
	parsedH := handler.NewParsedHandler(reportSvc)
	paymentH := handler.NewPaymentHandler(paymentSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(identity, cfg.Server.RequestIDHeader,
		reportH, parsedH, paymentH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
