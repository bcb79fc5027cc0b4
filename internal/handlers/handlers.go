package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/troshov/PP-KT-liver/internal/auth"
	"github.com/troshov/PP-KT-liver/internal/segmentation"
	"github.com/troshov/PP-KT-liver/internal/storage"
	"github.com/troshov/PP-KT-liver/internal/usecase"
)

// MaxUploadSize is the default upload limit in bytes.
const MaxUploadSize = 64 << 20

// Service is the use case surface the routes depend on.
type Service interface {
	Segment(ctx context.Context, userID, filename string, content io.Reader) (*usecase.Output, error)
	GetResult(ctx context.Context, resultID string) (*usecase.ResultRecord, error)
	GetDuplicateReport(ctx context.Context, resultID string) (*usecase.DuplicateReport, error)
	GetMetricsSummary(ctx context.Context) (*usecase.MetricsSummary, error)
	OpenArtifact(ctx context.Context, resultID, file string) (*storage.File, error)
	ModelName() string
}

// Options tune the routes.
type Options struct {
	MaxUploadBytes int64
}

var allowedUploadTypes = []string{
	"application/dicom",
	"image/png",
	"image/jpeg",
	"image/tiff",
}

// RegisterRoutes wires the HTTP handlers to the Gin router. Middlewares
// guard the API routes; health and artifact images stay public.
func RegisterRoutes(router *gin.Engine, svc Service, opts Options, middlewares ...gin.HandlerFunc) {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = MaxUploadSize
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "model": svc.ModelName()})
	})

	router.GET("/results/:id/mask.png", artifactHandler(svc, storage.MaskFile, "Mask not found"))
	router.GET("/results/:id/original.png", artifactHandler(svc, storage.OriginalFile, "Original image not found"))

	api := router.Group("/", middlewares...)

	api.POST("/upload", func(c *gin.Context) {
		if c.Request.ContentLength > opts.MaxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, opts.MaxUploadBytes)

		file, err := c.FormFile("file")
		if err != nil {
			if isTooLarge(err) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if file.Size > opts.MaxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open file"})
			return
		}
		defer src.Close()

		mtype, err := mimetype.DetectReader(src)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read file"})
			return
		}
		if !acceptedUpload(mtype, file.Filename) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported file type " + mtype.String()})
			return
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
			return
		}

		userID, _ := auth.GetUserID(c.Request.Context())
		out, err := svc.Segment(c.Request.Context(), userID, file.Filename, src)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	api.GET("/results/:id", func(c *gin.Context) {
		record, err := svc.GetResult(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	})

	api.GET("/results/:id/duplicates", func(c *gin.Context) {
		report, err := svc.GetDuplicateReport(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	})

	api.GET("/metrics/summary", func(c *gin.Context) {
		summary, err := svc.GetMetricsSummary(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	})
}

func artifactHandler(svc Service, name, notFound string) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := svc.OpenArtifact(c.Request.Context(), c.Param("id"), name)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": notFound})
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}
		defer file.Reader.Close()
		c.DataFromReader(http.StatusOK, file.Size, "image/png", file.Reader, nil)
	}
}

// writeError maps pipeline and lookup failures to HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrProcessing):
		c.JSON(http.StatusAccepted, gin.H{"status": "processing"})
	case errors.Is(err, segmentation.ErrDecode):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, segmentation.ErrInference):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func acceptedUpload(mtype *mimetype.MIME, filename string) bool {
	for _, allowed := range allowedUploadTypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	// DICOM files without the 128 byte preamble are not recognised by sniffing.
	return mtype.Is("application/octet-stream") && strings.EqualFold(filepath.Ext(filename), ".dcm")
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
