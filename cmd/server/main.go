package main

import (
	"fmt"
	"log"

	"jcwest/internal/config"
	"jcwest/internal/email/noop"
	"jcwest/internal/email/ses"
	"jcwest/internal/handler"
	"jcwest/internal/port"
	"jcwest/internal/repository/postgres"
	"jcwest/internal/router"
	"jcwest/internal/service"
	s3storage "jcwest/internal/storage/s3"
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
	planRepo := postgres.NewPlanFileRepo(db)
	estimateRepo := postgres.NewEstimateRunRepo(db)
	calibrationRepo := postgres.NewCalibrationRunRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email sender
	var emailSender port.EmailSender
	if cfg.Email.Provider == "ses" {
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		emailSender = noop.NewNoopSender()
	}

	// Initialize services
	fileSvc := service.NewFileService(planRepo, s3Client, &cfg.S3)
	takeoffSvc := service.NewTakeoffService(fileSvc, &cfg.Takeoff)
	estimateSvc := service.NewEstimateService(estimateRepo, calibrationRepo, s3Client, emailSender, &cfg.Pricing, &cfg.S3)
	calibrationSvc := service.NewCalibrationService(calibrationRepo, estimateRepo, fileSvc, &cfg.Quotes, &cfg.Calibration)

	// Initialize handlers
	takeoffH := handler.NewTakeoffHandler(takeoffSvc)
	estimateH := handler.NewEstimateHandler(estimateSvc)
	calibrationH := handler.NewCalibrationHandler(calibrationSvc)
	fileH := handler.NewFileHandler(fileSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, takeoffH, estimateH, calibrationH, fileH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
