package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"gate_access/internal/api"
	"gate_access/internal/api/handler"
	"gate_access/internal/api/middleware"
	"gate_access/internal/camera"
	"gate_access/internal/config"
	"gate_access/internal/iot"
	"gate_access/internal/repository/postgresql"
	"gate_access/internal/service"
	"gate_access/internal/vision"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func main() {
	cfg := config.Load()
	log.Println("Configuration loaded.")

	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connection established.")

	awsSDKCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalf("Could not load AWS SDK config: %v", err)
	}
	log.Println("AWS SDK config loaded for region:", cfg.AWSRegion)

	sqsClient := sqs.NewFromConfig(awsSDKCfg)
	iotDataPlaneClient := iotdataplane.NewFromConfig(awsSDKCfg, func(o *iotdataplane.Options) {
		if cfg.IoTMQTTEndpoint != "" {
			endpoint := cfg.IoTMQTTEndpoint
			if !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "http://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	rekognitionClient := rekognition.NewFromConfig(awsSDKCfg)

	// Repositories
	guardRepo := postgresql.NewPgGuardRepository(db)
	vehicleRepo := postgresql.NewPgVehicleRepository(db)
	approvalRepo := postgresql.NewPgApprovalRepository(db)
	sessionRepo := postgresql.NewPgAccessSessionRepository(db)

	// WebSocket manager for decision notifications
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket manager started.")

	// Recognition pipeline
	recognitionState := service.NewRecognitionState(func() camera.Device {
		return camera.NewFFmpegDevice(cfg.CameraDevice, cfg.CameraFPS, cfg.CameraWidth, cfg.CameraHeight)
	})
	cascadeClient := vision.NewCascadeClient(cfg.DetectorEndpoint)
	plateDetector := vision.NewPlateDetector(cascadeClient, vision.DetectorConfig{
		ScaleFactor:  cfg.PlateScaleFactor,
		MinNeighbors: cfg.PlateMinNeighbors,
		MinArea:      cfg.PlateMinArea,
	})
	plateExtractor, err := vision.NewPlateExtractor(vision.NewRekognitionReader(rekognitionClient), cfg.PlatePattern)
	if err != nil {
		log.Fatalf("Invalid plate pattern: %v", err)
	}
	framePipeline := service.NewFramePipeline(recognitionState, plateDetector, plateExtractor)

	// Services
	authService := service.NewAuthService(guardRepo, cfg.JWTSecret, cfg.JWTExpirationHours)
	gateService := service.NewGateService(iotDataPlaneClient, cfg)
	accessService := service.NewAccessService(vehicleRepo, approvalRepo, sessionRepo, gateService, webSocketManager)
	analyticsService := service.NewAnalyticsService(sessionRepo, cfg.ChartBucketHours)
	cameraEventService := service.NewCameraEventService(recognitionState, plateExtractor)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	// ANPR camera event consumer
	var wg sync.WaitGroup
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())

	if cfg.SQSEventQueueURL == "" {
		log.Println("WARNING: SQS_EVENT_QUEUE_URL not configured. ANPR event consumer will not run.")
	} else {
		sqsConsumer := iot.NewSQSConsumer(sqsClient, cfg, cameraEventService)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sqsConsumer.Start(consumerCtx)
			log.Println("SQS Consumer stopped.")
		}()
	}

	router := api.SetupRouter(authService, recognitionState, framePipeline, accessService, analyticsService, authMiddleware, webSocketManager)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancelConsumer()
	recognitionState.DisableCapture()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shut down: %v", err)
	}

	if cfg.SQSEventQueueURL != "" {
		done := make(chan struct{})
		go func() {
			defer close(done)
			wg.Wait()
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			log.Println("SQS consumer did not stop within the grace period.")
		}
	}

	log.Println("Server stopped.")
}
