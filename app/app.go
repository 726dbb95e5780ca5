package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	httpadapter "transcription-service/ddd/adapter/http"
	application "transcription-service/ddd/application/app"
	"transcription-service/ddd/domain/gateway"
	"transcription-service/ddd/domain/service"
	"transcription-service/ddd/infrastructure/database/dao"
	"transcription-service/ddd/infrastructure/database/persistence"
	"transcription-service/ddd/infrastructure/locker"
	"transcription-service/ddd/infrastructure/notify"
	"transcription-service/ddd/infrastructure/progress"
	"transcription-service/ddd/infrastructure/queue"
	"transcription-service/ddd/infrastructure/splitter"
	"transcription-service/ddd/infrastructure/storage"
	"transcription-service/ddd/infrastructure/transcriber"
	"transcription-service/ddd/infrastructure/worker"
	"transcription-service/internal/resource"
	"transcription-service/pkg/config"
	"transcription-service/pkg/kafka"
	"transcription-service/pkg/logger"
	"transcription-service/pkg/redisclient"
)

// Run boots the service: config, logger, resources, explicit wiring of the
// pipeline, worker pool and HTTP server, then blocks until shutdown.
func Run() {
	fmt.Println("[STARTUP] Starting transcription service...")

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)
	logger.Infof("Transcription service starting config=%s", cfgPath)

	// fail at startup when the media toolkit is absent
	if _, err := exec.LookPath(cfg.Splitter.FFmpegPath); err != nil {
		logger.Fatal(fmt.Sprintf("ffmpeg binary not found, install it or set splitter.ffmpeg_path binary=%s error=%s", cfg.Splitter.FFmpegPath, err.Error()))
	}
	if _, err := exec.LookPath(cfg.Splitter.FFprobePath); err != nil {
		logger.Fatal(fmt.Sprintf("ffprobe binary not found, install it or set splitter.ffprobe_path binary=%s error=%s", cfg.Splitter.FFprobePath, err.Error()))
	}

	// external resources
	dbResource, err := resource.NewDatabaseResource(cfg.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to initialize database error=%v", err))
	}
	defer dbResource.Close()

	minioResource, err := resource.NewMinioResource(cfg.Minio)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to initialize object storage error=%v", err))
	}
	defer minioResource.Close()

	// single-flight lock: redis across processes when enabled, in-memory otherwise
	var jobLocker gateway.JobLocker
	var redisCli *redisclient.Client
	if cfg.Redis.Enabled {
		redisCli, err = redisclient.New(cfg.Redis)
		if err != nil {
			logger.Fatal(fmt.Sprintf("Failed to connect redis error=%v", err))
		}
		defer redisCli.Close()
		jobLocker = locker.NewRedisLocker(redisCli.Raw(), cfg.Redis.LockTTL)
		logger.Infof("Using redis job locker ttl=%s", cfg.Redis.LockTTL)
	} else {
		jobLocker = locker.NewMemoryLocker()
	}

	// downstream analysis handoff
	var analysisGateway gateway.AnalysisGateway
	if cfg.Kafka.Enabled {
		kafkaClient := kafka.New(cfg.Kafka)
		defer kafkaClient.Close()
		analysisGateway = notify.NewKafkaNotifier(kafkaClient, cfg.Kafka.TranscriptTopic)
	} else {
		analysisGateway = notify.NewLogNotifier()
	}

	// persistence
	mediaDAO := dao.NewMediaItemDAO(dbResource.GetDB())
	mediaRepo := persistence.NewMediaRepository(mediaDAO)

	// domain pipeline
	storageGateway := storage.NewMinioStorage(minioResource)
	chunkPlanner := service.NewChunkPlanner(cfg.Planner)
	blobLocator := service.NewBlobLocator(storageGateway, chunkPlanner, service.DefaultKeyStrategies(), cfg.Splitter.TempDir)
	mediaSplitter := splitter.NewFFmpegSplitter(cfg.Splitter)
	healthGate := transcriber.NewHealthGate(cfg.Transcribe.FailureThreshold, cfg.Transcribe.Cooldown)
	transcribeClient := transcriber.NewClient(cfg.Transcribe, healthGate)
	assembler := service.NewTranscriptAssembler(cfg.Transcribe.MinTranscriptLen)
	progressSink := progress.NewDBSink(mediaRepo)

	pipeline := service.NewTranscriptionPipeline(
		blobLocator,
		chunkPlanner,
		mediaSplitter,
		transcribeClient,
		assembler,
		mediaRepo,
		progressSink,
		analysisGateway,
		cfg.Splitter.TempDir,
	)

	// worker pool
	var jobQueue queue.JobQueue
	if cfg.Worker.PriorityQueue {
		jobQueue = queue.NewPriorityJobQueue(cfg.Worker.QueueCapacity)
	} else {
		jobQueue = queue.NewMemoryJobQueue(cfg.Worker.QueueCapacity)
	}
	dispatcher := worker.NewDispatcher(jobQueue, pipeline, jobLocker, cfg.Worker.WorkerCount)
	if err := dispatcher.Start(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start dispatcher error=%v", err))
	}

	// application + HTTP adapter
	transcriptionApp := application.NewTranscriptionApp(mediaRepo, dispatcher)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()
	router := httpadapter.NewRouter(transcriptionApp, dispatcher)
	router.SetupMiddleware(engine)
	router.SetupRoutes(engine)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Failed to start HTTP server error=%v", err))
		}
	}()
	logger.Infof("HTTP server started addr=%s", server.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownGracePeriod)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server forced to close error=%v", err)
	}

	if err := jobQueue.Close(); err != nil {
		logger.Errorf("Close job queue error=%v", err)
	}
	if err := dispatcher.Stop(); err != nil {
		logger.Errorf("Stop dispatcher error=%v", err)
	}

	logger.Infof("Transcription service exited safely")
	logService.Close()
}

// resolveConfigPath picks the config file, honoring CONFIG_PATH and CONFIG_ENV.
func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("CONFIG_ENV")))
	if env == "" {
		env = "dev"
	}

	switch env {
	case "prod", "production":
		return "configs/config.prod.yaml"
	case "dev", "development":
		return "configs/config.dev.yaml"
	default:
		return fmt.Sprintf("configs/config.%s.yaml", env)
	}
}
