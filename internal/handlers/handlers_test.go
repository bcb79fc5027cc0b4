package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/troshov/PP-KT-liver/internal/auth"
	"github.com/troshov/PP-KT-liver/internal/logging"
	"github.com/troshov/PP-KT-liver/internal/segmentation"
	"github.com/troshov/PP-KT-liver/internal/storage"
	"github.com/troshov/PP-KT-liver/internal/usecase"
)

const testJWTSecret = "test-secret"

type stubService struct {
	segmentErr  error
	gotUserID   string
	gotFilename string
	gotContent  []byte
	resultErr   error
	artifacts   map[string][]byte
}

func (s *stubService) Segment(ctx context.Context, userID, filename string, content io.Reader) (*usecase.Output, error) {
	s.gotUserID = userID
	s.gotFilename = filename
	s.gotContent, _ = io.ReadAll(content)
	if s.segmentErr != nil {
		return nil, s.segmentErr
	}
	return &usecase.Output{
		ResultID:    "ab12cd34",
		Status:      "success",
		MaskURL:     "/results/ab12cd34/mask.png",
		OriginalURL: "/results/ab12cd34/original.png",
		Metrics:     segmentation.Metrics{AreaPixels: 100, VolumeMM3: 200, VolumeML: 0.2},
		Timestamp:   time.Now().Format(time.RFC3339Nano),
	}, nil
}

func (s *stubService) GetResult(ctx context.Context, resultID string) (*usecase.ResultRecord, error) {
	if s.resultErr != nil {
		return nil, s.resultErr
	}
	return &usecase.ResultRecord{ResultID: resultID}, nil
}

func (s *stubService) GetDuplicateReport(ctx context.Context, resultID string) (*usecase.DuplicateReport, error) {
	if s.resultErr != nil {
		return nil, s.resultErr
	}
	return &usecase.DuplicateReport{Result: &usecase.ResultRecord{ResultID: resultID}}, nil
}

func (s *stubService) GetMetricsSummary(ctx context.Context) (*usecase.MetricsSummary, error) {
	return &usecase.MetricsSummary{TotalResults: 2}, nil
}

func (s *stubService) OpenArtifact(ctx context.Context, resultID, file string) (*storage.File, error) {
	data, ok := s.artifacts[resultID+"/"+file]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, file)
	}
	return &storage.File{Reader: io.NopCloser(bytes.NewReader(data)), Size: int64(len(data))}, nil
}

func (s *stubService) ModelName() string { return "stub model" }

func newTestRouter(svc Service, middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.MaxMultipartMemory = MaxUploadSize
	router.Use(CORSMiddleware([]string{"*"}))
	RegisterRoutes(router, svc, Options{}, middlewares...)
	return router
}

func TestUploadRejectsLargeUpload(t *testing.T) {
	router := newTestRouter(&stubService{}, auth.JWTMiddleware(testJWTSecret, ""))

	token := buildTestToken(t, "user-123")
	body, contentType := buildMultipartBody(t, "scan.png", "image/png", bytes.Repeat([]byte("a"), MaxUploadSize+1))

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status %d, got %d", http.StatusRequestEntityTooLarge, resp.Code)
	}
}

func TestUploadRejectsUnsupportedContentType(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc, auth.JWTMiddleware(testJWTSecret, ""))

	token := buildTestToken(t, "user-123")
	body, contentType := buildMultipartBody(t, "notes.txt", "text/plain", []byte("hello"))

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status %d, got %d", http.StatusUnsupportedMediaType, resp.Code)
	}
	if svc.gotFilename != "" {
		t.Fatal("use case must not be called for rejected uploads")
	}
}

func TestUploadRequiresToken(t *testing.T) {
	router := newTestRouter(&stubService{}, auth.JWTMiddleware(testJWTSecret, ""))
	body, contentType := buildMultipartBody(t, "scan.png", "image/png", pngBytes(t))

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.Code)
	}
}

func TestUploadSegmentsPNG(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc, auth.JWTMiddleware(testJWTSecret, ""))
	payload := pngBytes(t)

	body, contentType := buildMultipartBody(t, "slice.png", "image/png", payload)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+buildTestToken(t, "user-123"))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.Code, resp.Body.String())
	}
	if svc.gotUserID != "user-123" || svc.gotFilename != "slice.png" {
		t.Fatalf("unexpected use case input: user=%q file=%q", svc.gotUserID, svc.gotFilename)
	}
	if !bytes.Equal(svc.gotContent, payload) {
		t.Fatal("use case must receive the full upload after sniffing")
	}

	var out map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	for _, key := range []string{"result_id", "status", "mask_url", "original_url", "metrics", "timestamp"} {
		if _, ok := out[key]; !ok {
			t.Fatalf("response is missing %q: %s", key, resp.Body.String())
		}
	}
	metrics := out["metrics"].(map[string]interface{})
	if metrics["area_pixels"].(float64) != 100 {
		t.Fatalf("unexpected metrics: %v", metrics)
	}
}

func TestUploadAcceptsHeaderlessDICOMByExtension(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc)

	body, contentType := buildMultipartBody(t, "scan.dcm", "application/octet-stream", []byte{0x08, 0x00, 0x05, 0x00, 0x43, 0x53, 0x0a, 0x00, 0x00, 0x01, 0xff, 0xfe})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.Code, resp.Body.String())
	}
}

func TestUploadMapsPipelineErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{logging.NewOperationError("usecase.run_pipeline", "x", fmt.Errorf("%w: bad header", segmentation.ErrDecode)), http.StatusUnprocessableEntity},
		{logging.NewOperationError("usecase.run_pipeline", "x", fmt.Errorf("%w: timeout", segmentation.ErrInference)), http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		router := newTestRouter(&stubService{segmentErr: tc.err})
		body, contentType := buildMultipartBody(t, "slice.png", "image/png", pngBytes(t))
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)

		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != tc.code {
			t.Fatalf("%v: expected status %d, got %d", tc.err, tc.code, resp.Code)
		}
	}
}

func TestUploadRequiresFile(t *testing.T) {
	router := newTestRouter(&stubService{})
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(""))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.Code)
	}
}

func TestArtifactRoutes(t *testing.T) {
	payload := pngBytes(t)
	router := newTestRouter(&stubService{artifacts: map[string][]byte{"ab12cd34/mask.png": payload}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/results/ab12cd34/mask.png", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.Code)
	}
	if resp.Header().Get("Content-Type") != "image/png" || !bytes.Equal(resp.Body.Bytes(), payload) {
		t.Fatal("unexpected mask response")
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/results/ab12cd34/original.png", nil))
	if resp.Code != http.StatusNotFound || !strings.Contains(resp.Body.String(), "Original image not found") {
		t.Fatalf("expected 404 Original image not found, got %d %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/results/unknown/mask.png", nil))
	if resp.Code != http.StatusNotFound || !strings.Contains(resp.Body.String(), "Mask not found") {
		t.Fatalf("expected 404 Mask not found, got %d %s", resp.Code, resp.Body.String())
	}
}

func TestResultRoutes(t *testing.T) {
	router := newTestRouter(&stubService{})
	for _, path := range []string{"/results/ab12cd34", "/results/ab12cd34/duplicates", "/metrics/summary"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusOK, resp.Code)
		}
	}

	tests := []struct {
		err  error
		code int
	}{
		{logging.NewOperationError("repository.find_by_result_id", "x", gorm.ErrRecordNotFound), http.StatusNotFound},
		{logging.NewOperationError("usecase.get_result", "x", usecase.ErrProcessing), http.StatusAccepted},
	}
	for _, tc := range tests {
		router := newTestRouter(&stubService{resultErr: tc.err})
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/results/x", nil))
		if resp.Code != tc.code {
			t.Fatalf("%v: expected status %d, got %d", tc.err, tc.code, resp.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubService{}, auth.JWTMiddleware(testJWTSecret, ""))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != "healthy" || body["model"] != "stub model" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, resp.Code)
	}
	if resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected allow origin %q", resp.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORSRestrictedOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"https://viewer.example"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for origin, want := range map[string]string{
		"https://viewer.example": "https://viewer.example",
		"https://evil.example":   "",
	} {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", origin)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if got := resp.Header().Get("Access-Control-Allow-Origin"); got != want {
			t.Fatalf("origin %s: expected %q, got %q", origin, want, got)
		}
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func buildMultipartBody(t *testing.T, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("failed to write payload: %v", err)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

func buildTestToken(t *testing.T, subject string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}
