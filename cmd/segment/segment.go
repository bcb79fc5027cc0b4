// Command segment runs the liver segmentation pipeline on one local file and
// writes the mask, the normalized slice and the metrics.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/akamensky/argparse"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/troshov/PP-KT-liver/internal/logging"
	"github.com/troshov/PP-KT-liver/internal/modelloader"
	"github.com/troshov/PP-KT-liver/internal/segmentation"
	"github.com/troshov/PP-KT-liver/internal/storage"
)

type report struct {
	ResultID  string               `json:"result_id"`
	Input     string               `json:"input"`
	Height    int                  `json:"height"`
	Width     int                  `json:"width"`
	Metrics   segmentation.Metrics `json:"metrics"`
	MaskPath  string               `json:"mask_path"`
	ImagePath string               `json:"original_path"`
	Timestamp string               `json:"timestamp"`
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// validateThreshold accepts probabilities strictly between 0 and 1.
func validateThreshold(args []string) error {
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return err
	}
	if v <= 0 || v >= 1 {
		return fmt.Errorf("threshold must be in (0, 1), got %v", v)
	}
	return nil
}

func validatePositive(args []string) error {
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("value must be positive, got %v", v)
	}
	return nil
}

func validateSliceIndex(args []string) error {
	v, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("slice index must not be negative, got %d", v)
	}
	return nil
}

func main() {
	parser := argparse.NewParser("segment", "Segment the liver on one CT slice")
	input := parser.String("i", "input", &argparse.Options{Help: "DICOM or image file", Required: true})
	outDir := parser.String("o", "output", &argparse.Options{Help: "Output root; artifacts go under <root>/results/<id>", Default: "."})
	backend := parser.Selector("b", "backend", []string{modelloader.BackendONNX, modelloader.BackendGRPC}, &argparse.Options{Help: "Model backend", Default: modelloader.BackendONNX})
	modelPath := parser.String("m", "model", &argparse.Options{Help: "Path to ONNX model", Default: "weights/liver_model.onnx"})
	ortLib := parser.String("", "ortlib", &argparse.Options{Help: "Path to the ONNX Runtime shared library"})
	address := parser.String("a", "address", &argparse.Options{Help: "Model server address for the grpc backend"})
	threshold := parser.Float("t", "threshold", &argparse.Options{Help: "Foreground probability threshold in (0, 1)", Default: segmentation.DefaultThreshold, Validate: validateThreshold})
	sliceIndex := parser.Int("s", "slice", &argparse.Options{Help: "Slice (frame) index in multi-frame files", Default: 0, Validate: validateSliceIndex})
	thickness := parser.Float("", "thickness", &argparse.Options{Help: "Slice thickness in mm", Default: segmentation.DefaultSliceThicknessMM, Validate: validatePositive})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "Debug logging"})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(logging.Options{Level: level})
	check(err)
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	session, err := modelloader.Load(ctx, modelloader.Config{
		Backend:           *backend,
		ModelPath:         *modelPath,
		SharedLibraryPath: *ortLib,
		Address:           *address,
	}, logger)
	check(err)
	defer session.Close()

	pipeline := segmentation.NewPipeline(session, segmentation.Options{
		Threshold:        *threshold,
		SliceIndex:       *sliceIndex,
		SliceThicknessMM: *thickness,
	})
	result, err := pipeline.Run(ctx, *input)
	check(err)

	store, err := storage.NewStorageFS(logger, *outDir)
	check(err)
	resultID := uuid.NewString()[:8]
	artifacts, err := storage.SaveArtifacts(ctx, store, resultID,
		segmentation.MaskImage(result.Mask),
		segmentation.SliceImage(result.Slice),
	)
	check(err)
	logger.Debug("artifacts written", zap.String("result_id", resultID), zap.String("dir", store.Root))

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	check(encoder.Encode(report{
		ResultID:  resultID,
		Input:     *input,
		Height:    result.Mask.Height,
		Width:     result.Mask.Width,
		Metrics:   result.Metrics,
		MaskPath:  filepath.Join(store.Root, filepath.FromSlash(artifacts.MaskKey)),
		ImagePath: filepath.Join(store.Root, filepath.FromSlash(artifacts.OriginalKey)),
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}
