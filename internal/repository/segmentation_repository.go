package repository

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/troshov/PP-KT-liver/internal/logging"
)

// SegmentationResult represents one persisted segmentation run.
type SegmentationResult struct {
	ID                  uint      `gorm:"primaryKey"`
	ResultID            string    `gorm:"column:result_id;uniqueIndex;size:64"`
	UserID              string    `gorm:"column:user_id;size:64;index"`
	Filename            string    `gorm:"column:filename;size:255"`
	SHA1Hash            string    `gorm:"column:sha1_hash;size:40;index"`
	AreaPixels          int       `gorm:"column:area_pixels"`
	VolumeMM3           float64   `gorm:"column:volume_mm3"`
	VolumeML            float64   `gorm:"column:volume_ml"`
	Height              int       `gorm:"column:height"`
	Width               int       `gorm:"column:width"`
	Threshold           float64   `gorm:"column:threshold"`
	ProcessingLatencyMs int64     `gorm:"column:processing_latency_ms"`
	MaskKey             string    `gorm:"column:mask_key;size:255"`
	OriginalKey         string    `gorm:"column:original_key;size:255"`
	CreatedAt           time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (SegmentationResult) TableName() string {
	return "segmentation_results"
}

// MetricsAggregation holds aggregate values over all stored results.
type MetricsAggregation struct {
	TotalCount                 int64
	AverageAreaPixels          float64
	AverageVolumeML            float64
	AverageProcessingLatencyMs float64
}

// SegmentationRepository provides persistence APIs for segmentation results.
type SegmentationRepository struct {
	db             *gorm.DB
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewSegmentationRepository creates a new repository instance.
func NewSegmentationRepository(db *gorm.DB, logger *zap.Logger) *SegmentationRepository {
	return &SegmentationRepository{
		db:             db,
		logger:         logger.Named("segmentation_repository"),
		retryAttempts:  3,
		initialBackoff: 100 * time.Millisecond,
		maxBackoff:     2 * time.Second,
	}
}

// AutoMigrate ensures the schema is available.
func (r *SegmentationRepository) AutoMigrate(ctx context.Context) error {
	return r.executeWithRetry(ctx, "repository.auto_migrate", "", func() error {
		return r.db.WithContext(ctx).AutoMigrate(&SegmentationResult{})
	})
}

// SaveResult persists a segmentation result.
func (r *SegmentationRepository) SaveResult(ctx context.Context, result *SegmentationResult) error {
	return r.executeWithRetry(ctx, "repository.save_result", result.ResultID, func() error {
		return r.db.WithContext(ctx).Create(result).Error
	})
}

// FindByResultID retrieves a result; gorm.ErrRecordNotFound when absent.
func (r *SegmentationRepository) FindByResultID(ctx context.Context, resultID string) (*SegmentationResult, error) {
	var result SegmentationResult
	err := r.executeWithRetry(ctx, "repository.find_by_result_id", resultID, func() error {
		return r.db.WithContext(ctx).First(&result, "result_id = ?", resultID).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FindDuplicatesByHash returns other results for the same upload content,
// oldest first.
func (r *SegmentationRepository) FindDuplicatesByHash(ctx context.Context, hash, excludeResultID string) ([]*SegmentationResult, error) {
	var results []*SegmentationResult
	err := r.executeWithRetry(ctx, "repository.find_duplicates", excludeResultID, func() error {
		return r.db.WithContext(ctx).
			Where("sha1_hash = ? AND result_id <> ?", hash, excludeResultID).
			Order("created_at ASC").
			Find(&results).Error
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// AggregateMetrics computes counts and averages over every stored result.
func (r *SegmentationRepository) AggregateMetrics(ctx context.Context) (*MetricsAggregation, error) {
	var row struct {
		TotalCount                 int64
		AverageAreaPixels          float64
		AverageVolumeML            float64
		AverageProcessingLatencyMs float64
	}
	err := r.executeWithRetry(ctx, "repository.aggregate_metrics", "", func() error {
		return r.db.WithContext(ctx).
			Model(&SegmentationResult{}).
			Select("COUNT(*) AS total_count, " +
				"COALESCE(AVG(area_pixels), 0) AS average_area_pixels, " +
				"COALESCE(AVG(volume_ml), 0) AS average_volume_ml, " +
				"COALESCE(AVG(processing_latency_ms), 0) AS average_processing_latency_ms").
			Scan(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &MetricsAggregation{
		TotalCount:                 row.TotalCount,
		AverageAreaPixels:          row.AverageAreaPixels,
		AverageVolumeML:            row.AverageVolumeML,
		AverageProcessingLatencyMs: row.AverageProcessingLatencyMs,
	}, nil
}

func (r *SegmentationRepository) executeWithRetry(ctx context.Context, operation, resultID string, fn func() error) error {
	attempts := r.retryAttempts
	if attempts < 1 {
		attempts = 1
	}
	opLogger := logging.WithOperation(r.logger, operation, resultID)

	backoff := r.initialBackoff
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, resultID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= r.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("database operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return logging.NewOperationError(operation, resultID, err)
		}
		if !isTransientError(err) || attempt == attempts-1 {
			opLogger.Error("database operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, resultID, err)
		}
		opLogger.Warn("transient database error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, resultID, err)
}

func isTransientError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var temporary interface{ Temporary() bool }
	return errors.As(err, &temporary) && temporary.Temporary()
}
