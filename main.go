package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/troshov/PP-KT-liver/internal/auth"
	"github.com/troshov/PP-KT-liver/internal/config"
	"github.com/troshov/PP-KT-liver/internal/handlers"
	"github.com/troshov/PP-KT-liver/internal/logging"
	"github.com/troshov/PP-KT-liver/internal/modelloader"
	"github.com/troshov/PP-KT-liver/internal/repository"
	"github.com/troshov/PP-KT-liver/internal/segmentation"
	"github.com/troshov/PP-KT-liver/internal/storage"
	"github.com/troshov/PP-KT-liver/internal/usecase"
)

func main() {
	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session, err := modelloader.Load(ctx, modelloader.Config{
		Backend:           cfg.Model.Backend,
		ModelPath:         cfg.Model.Path,
		SharedLibraryPath: cfg.Model.SharedLibraryPath,
		Address:           cfg.Model.Address,
		InputName:         cfg.Model.InputName,
		OutputName:        cfg.Model.OutputName,
	}, logger)
	if err != nil {
		logger.Fatal("failed to load model", zap.Error(err))
	}
	defer session.Close()

	db := initDatabase(ctx, cfg.Database.DSN, logger)
	repo := repository.NewSegmentationRepository(db, logger)
	if err := repo.AutoMigrate(ctx); err != nil {
		logger.Fatal("auto migrate failed", zap.Error(err))
	}

	redisCtx, redisCancel := context.WithTimeout(ctx, 5*time.Second)
	defer redisCancel()
	redisClient := initRedis(redisCtx, cfg.Redis.Addr, logger)
	defer redisClient.Close()

	store, err := storage.New(ctx, logger, storage.Options{
		Backend:  cfg.Storage.Backend,
		Root:     cfg.Storage.Root,
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.Storage.Region,
		Prefix:   cfg.Storage.Prefix,
		Endpoint: cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal("failed to open artifact storage", zap.Error(err))
	}
	defer func() {
		if err := storage.Close(store); err != nil {
			logger.Warn("failed to close artifact storage", zap.Error(err))
		}
	}()

	pipeline := segmentation.NewPipeline(session, segmentation.Options{
		InputSide:        cfg.Pipeline.InputSide,
		Threshold:        cfg.Pipeline.Threshold,
		SliceIndex:       cfg.Pipeline.SliceIndex,
		SliceThicknessMM: cfg.Pipeline.SliceThicknessMM,
	})

	uc := usecase.NewSegmentationUseCase(repo, usecase.NewRedisCache(redisClient), store, pipeline, usecase.Config{
		UploadDir:   cfg.Uploads.Dir,
		KeepUploads: cfg.Uploads.Keep,
		ResultTTL:   cfg.Redis.ResultTTL,
		ModelName:   session.Describe(),
	}, logger)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: newRouter(cfg, uc),
	}

	logger.Info("liver segmentation API listening", zap.String("addr", cfg.Server.Addr))
	if err := serveHTTPServer(server, cfg.Server.ShutdownTimeout, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newRouter(cfg *config.Config, svc handlers.Service) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	r.Use(handlers.CORSMiddleware(cfg.Server.AllowedOrigins))

	var middlewares []gin.HandlerFunc
	if cfg.Auth.JWTSecret != "" {
		middlewares = append(middlewares, auth.JWTMiddleware(cfg.Auth.JWTSecret, cfg.Auth.JWTAudience))
	}
	handlers.RegisterRoutes(r, svc, handlers.Options{MaxUploadBytes: cfg.Server.MaxUploadBytes}, middlewares...)
	return r
}

func initDatabase(ctx context.Context, dsn string, zapLogger *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		zapLogger.Fatal("failed to access db handle", zap.Error(err))
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		zapLogger.Fatal("database ping failed", zap.Error(err))
	}

	return db
}

func initRedis(ctx context.Context, addr string, zapLogger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	return client
}

func serveHTTPServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	return serveHTTPServerWithOptions(server, shutdownTimeout, logger, nil, nil)
}

func serveHTTPServerWithOptions(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	var (
		sigCh       <-chan os.Signal
		stopSignals func()
	)

	if signalCh != nil {
		sigCh = signalCh
		stopSignals = func() {}
	} else {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		sigCh = ch
		stopSignals = func() {
			signal.Stop(ch)
		}
	}
	defer stopSignals()

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-sigCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
