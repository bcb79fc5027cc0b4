package usecase

import (
	"context"

	"github.com/troshov/PP-KT-liver/internal/logging"
)

// MetricsSummary represents aggregated segmentation insights.
type MetricsSummary struct {
	TotalResults               int64   `json:"total_results"`
	AverageAreaPixels          float64 `json:"average_area_pixels"`
	AverageVolumeML            float64 `json:"average_volume_ml"`
	AverageProcessingLatencyMs float64 `json:"average_processing_latency_ms"`
}

// GetMetricsSummary aggregates metrics from persisted results.
func (uc *SegmentationUseCase) GetMetricsSummary(ctx context.Context) (*MetricsSummary, error) {
	aggregation, err := uc.repo.AggregateMetrics(ctx)
	if err != nil {
		return nil, logging.NewOperationError("usecase.metrics_summary", "", err)
	}

	return &MetricsSummary{
		TotalResults:               aggregation.TotalCount,
		AverageAreaPixels:          aggregation.AverageAreaPixels,
		AverageVolumeML:            aggregation.AverageVolumeML,
		AverageProcessingLatencyMs: aggregation.AverageProcessingLatencyMs,
	}, nil
}
