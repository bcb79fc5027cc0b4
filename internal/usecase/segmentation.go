package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/troshov/PP-KT-liver/internal/logging"
	"github.com/troshov/PP-KT-liver/internal/repository"
	"github.com/troshov/PP-KT-liver/internal/segmentation"
	"github.com/troshov/PP-KT-liver/internal/storage"
)

const processingMarker = "processing"

// ErrProcessing is returned while a result is still being computed.
var ErrProcessing = errors.New("result is still processing")

// ResultRepository defines the persistence operations needed by the use case.
type ResultRepository interface {
	SaveResult(ctx context.Context, result *repository.SegmentationResult) error
	FindByResultID(ctx context.Context, resultID string) (*repository.SegmentationResult, error)
	FindDuplicatesByHash(ctx context.Context, hash, excludeResultID string) ([]*repository.SegmentationResult, error)
	AggregateMetrics(ctx context.Context) (*repository.MetricsAggregation, error)
}

// Segmenter runs the core pipeline on a staged file.
type Segmenter interface {
	Run(ctx context.Context, path string) (*segmentation.Result, error)
	Options() segmentation.Options
}

// Config holds use case settings.
type Config struct {
	UploadDir   string
	KeepUploads bool
	ResultTTL   time.Duration
	// ModelName is reported by the health endpoint.
	ModelName string
}

// SegmentationUseCase encapsulates the upload, segment and persist flow.
type SegmentationUseCase struct {
	repo           ResultRepository
	cache          Cache
	store          storage.Store
	segmenter      Segmenter
	cfg            Config
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	now            func() time.Time
	newID          func() string
}

// Output is the response record of a successful upload.
type Output struct {
	ResultID    string               `json:"result_id"`
	Status      string               `json:"status"`
	MaskURL     string               `json:"mask_url"`
	OriginalURL string               `json:"original_url"`
	Metrics     segmentation.Metrics `json:"metrics"`
	Timestamp   string               `json:"timestamp"`
}

// ResultRecord is the stored view of one result, as cached and served.
type ResultRecord struct {
	ResultID            string               `json:"result_id"`
	UserID              string               `json:"user_id,omitempty"`
	Filename            string               `json:"filename"`
	SHA1Hash            string               `json:"sha1_hash"`
	Metrics             segmentation.Metrics `json:"metrics"`
	Height              int                  `json:"height"`
	Width               int                  `json:"width"`
	Threshold           float64              `json:"threshold"`
	ProcessingLatencyMs int64                `json:"processing_latency_ms"`
	MaskURL             string               `json:"mask_url"`
	OriginalURL         string               `json:"original_url"`
	CreatedAt           time.Time            `json:"created_at"`
}

// DuplicateReport lists earlier results computed from the same upload content.
type DuplicateReport struct {
	Result     *ResultRecord   `json:"result"`
	Duplicates []*ResultRecord `json:"duplicates"`
}

// NewSegmentationUseCase constructs a new use case instance.
func NewSegmentationUseCase(repo ResultRepository, cache Cache, store storage.Store, segmenter Segmenter, cfg Config, logger *zap.Logger) *SegmentationUseCase {
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &SegmentationUseCase{
		repo:           repo,
		cache:          cache,
		store:          store,
		segmenter:      segmenter,
		cfg:            cfg,
		logger:         logger.Named("segmentation_usecase"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
		now:            time.Now,
		newID:          func() string { return uuid.NewString()[:8] },
	}
}

// ModelName describes the loaded model.
func (uc *SegmentationUseCase) ModelName() string {
	return uc.cfg.ModelName
}

// Segment stages the upload, runs the pipeline and persists artifacts and
// the record. On failure nothing is left in storage or the database.
func (uc *SegmentationUseCase) Segment(ctx context.Context, userID, filename string, content io.Reader) (*Output, error) {
	resultID := uc.newID()
	opLogger := logging.WithOperation(uc.logger, "usecase.segment", resultID)
	cacheKey := resultCacheKey(resultID)

	if err := uc.withRedisRetry(ctx, resultID, "cache.set.processing", func() error {
		return uc.cache.Set(ctx, cacheKey, processingMarker, time.Minute)
	}); err != nil {
		opLogger.Error("failed to set processing flag", zap.Error(err))
		return nil, err
	}

	output, err := uc.segment(ctx, opLogger, resultID, userID, filename, content)
	if err != nil {
		if delErr := uc.cache.Del(context.WithoutCancel(ctx), cacheKey); delErr != nil {
			opLogger.Warn("failed to clear processing flag", zap.Error(delErr))
		}
		return nil, err
	}
	return output, nil
}

func (uc *SegmentationUseCase) segment(ctx context.Context, opLogger *zap.Logger, resultID, userID, filename string, content io.Reader) (*Output, error) {
	started := uc.now()

	path, hash, err := uc.stageUpload(resultID, filename, content)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.stage_upload", resultID, err)
		opLogger.Error("failed to stage upload", zap.Error(wrapped))
		return nil, wrapped
	}
	if !uc.cfg.KeepUploads {
		defer func() {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				opLogger.Warn("failed to remove staged upload", zap.Error(err))
			}
		}()
	}

	result, err := uc.segmenter.Run(ctx, path)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.run_pipeline", resultID, err)
		opLogger.Error("segmentation failed", zap.Error(wrapped))
		return nil, wrapped
	}
	opLogger.Debug("pipeline finished",
		zap.Duration("elapsed", uc.now().Sub(started)),
		zap.Int("area_pixels", result.Metrics.AreaPixels),
	)

	artifacts, err := storage.SaveArtifacts(ctx, uc.store, resultID,
		segmentation.MaskImage(result.Mask),
		segmentation.SliceImage(result.Slice),
	)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.save_artifacts", resultID, err)
		opLogger.Error("failed to save artifacts", zap.Error(wrapped))
		return nil, wrapped
	}

	createdAt := uc.now()
	record := &repository.SegmentationResult{
		ResultID:            resultID,
		UserID:              userID,
		Filename:            filepath.Base(filename),
		SHA1Hash:            hash,
		AreaPixels:          result.Metrics.AreaPixels,
		VolumeMM3:           result.Metrics.VolumeMM3,
		VolumeML:            result.Metrics.VolumeML,
		Height:              result.Mask.Height,
		Width:               result.Mask.Width,
		Threshold:           uc.segmenter.Options().Threshold,
		ProcessingLatencyMs: createdAt.Sub(started).Milliseconds(),
		MaskKey:             artifacts.MaskKey,
		OriginalKey:         artifacts.OriginalKey,
		CreatedAt:           createdAt.UTC(),
	}
	if err := uc.repo.SaveResult(ctx, record); err != nil {
		if delErr := storage.DeleteArtifacts(context.WithoutCancel(ctx), uc.store, resultID); delErr != nil {
			opLogger.Warn("failed to remove artifacts", zap.Error(delErr))
		}
		wrapped := logging.NewOperationError("usecase.save_result", resultID, err)
		opLogger.Error("failed to persist segmentation result", zap.Error(wrapped))
		return nil, wrapped
	}

	// The record is persisted; a cache failure only costs a database read later.
	if serialized, err := json.Marshal(recordFromModel(record)); err != nil {
		opLogger.Warn("failed to serialize segmentation result", zap.Error(err))
	} else if err := uc.withRedisRetry(ctx, resultID, "cache.set.result", func() error {
		return uc.cache.Set(ctx, resultCacheKey(resultID), string(serialized), uc.cfg.ResultTTL)
	}); err != nil {
		opLogger.Warn("failed to cache segmentation result", zap.Error(err))
	}

	opLogger.Info("segmentation completed",
		zap.Int("area_pixels", record.AreaPixels),
		zap.Float64("volume_ml", record.VolumeML),
		zap.Int64("latency_ms", record.ProcessingLatencyMs),
	)

	return &Output{
		ResultID:    resultID,
		Status:      "success",
		MaskURL:     artifactURL(resultID, storage.MaskFile),
		OriginalURL: artifactURL(resultID, storage.OriginalFile),
		Metrics:     result.Metrics,
		Timestamp:   createdAt.Format(time.RFC3339Nano),
	}, nil
}

// stageUpload writes content to <upload dir>/<result id><ext> and returns the
// path and the SHA-1 of the content.
func (uc *SegmentationUseCase) stageUpload(resultID, filename string, content io.Reader) (string, string, error) {
	if err := os.MkdirAll(uc.cfg.UploadDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	path := filepath.Join(uc.cfg.UploadDir, resultID+uploadExt(filename))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", "", err
	}

	h := sha1.New()
	_, err = io.Copy(f, io.TeeReader(content, h))
	if errClose := f.Close(); err == nil {
		err = errClose
	}
	if err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("failed to write upload: %w", err)
	}
	return path, hex.EncodeToString(h.Sum(nil)), nil
}

// uploadExt keeps the client extension when it is a plain short suffix.
func uploadExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// GetResult returns the cached record or loads it from the database.
func (uc *SegmentationUseCase) GetResult(ctx context.Context, resultID string) (*ResultRecord, error) {
	opLogger := logging.WithOperation(uc.logger, "usecase.get_result", resultID)
	cached, err := uc.withRedisGet(ctx, resultID, "cache.get.result", resultCacheKey(resultID))
	switch {
	case err == nil && cached == processingMarker:
		return nil, logging.NewOperationError("usecase.get_result", resultID, ErrProcessing)
	case err == nil:
		var record ResultRecord
		decodeErr := json.Unmarshal([]byte(cached), &record)
		if decodeErr == nil {
			return &record, nil
		}
		opLogger.Warn("failed to decode cached result", zap.Error(decodeErr))
	case !errors.Is(err, redis.Nil):
		opLogger.Warn("failed to read cache", zap.Error(err))
	}

	stored, err := uc.repo.FindByResultID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	return recordFromModel(stored), nil
}

// GetDuplicateReport lists earlier results for the same upload content.
func (uc *SegmentationUseCase) GetDuplicateReport(ctx context.Context, resultID string) (*DuplicateReport, error) {
	stored, err := uc.repo.FindByResultID(ctx, resultID)
	if err != nil {
		return nil, err
	}

	duplicates, err := uc.repo.FindDuplicatesByHash(ctx, stored.SHA1Hash, stored.ResultID)
	if err != nil {
		return nil, err
	}

	report := &DuplicateReport{
		Result:     recordFromModel(stored),
		Duplicates: make([]*ResultRecord, 0, len(duplicates)),
	}
	for _, d := range duplicates {
		report.Duplicates = append(report.Duplicates, recordFromModel(d))
	}
	return report, nil
}

// OpenArtifact returns a stored PNG of resultID; storage.ErrNotFound when absent.
func (uc *SegmentationUseCase) OpenArtifact(ctx context.Context, resultID, file string) (*storage.File, error) {
	return storage.Open(ctx, uc.store, resultID, file)
}

func recordFromModel(m *repository.SegmentationResult) *ResultRecord {
	return &ResultRecord{
		ResultID: m.ResultID,
		UserID:   m.UserID,
		Filename: m.Filename,
		SHA1Hash: m.SHA1Hash,
		Metrics: segmentation.Metrics{
			AreaPixels: m.AreaPixels,
			VolumeMM3:  m.VolumeMM3,
			VolumeML:   m.VolumeML,
		},
		Height:              m.Height,
		Width:               m.Width,
		Threshold:           m.Threshold,
		ProcessingLatencyMs: m.ProcessingLatencyMs,
		MaskURL:             artifactURL(m.ResultID, storage.MaskFile),
		OriginalURL:         artifactURL(m.ResultID, storage.OriginalFile),
		CreatedAt:           m.CreatedAt,
	}
}

func artifactURL(resultID, file string) string {
	return "/results/" + resultID + "/" + file
}

func (uc *SegmentationUseCase) withRedisRetry(ctx context.Context, resultID, operation string, fn func() error) error {
	if uc.retryAttempts <= 1 {
		err := fn()
		return logging.NewOperationError(operation, resultID, err)
	}

	backoff := uc.initialBackoff
	opLogger := logging.WithOperation(uc.logger, operation, resultID)
	var err error
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, resultID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= uc.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("redis operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}
		if errors.Is(err, redis.Nil) {
			return logging.NewOperationError(operation, resultID, err)
		}

		if !isTransientError(err) || attempt == uc.retryAttempts-1 {
			opLogger.Error("redis operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, resultID, err)
		}

		opLogger.Warn("transient redis error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, resultID, err)
}

func (uc *SegmentationUseCase) withRedisGet(ctx context.Context, resultID, operation, cacheKey string) (string, error) {
	var result string
	err := uc.withRedisRetry(ctx, resultID, operation, func() error {
		value, err := uc.cache.Get(ctx, cacheKey)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}

	return false
}
