// Package config loads service settings from a YAML file, an optional .env
// file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server struct {
		Addr            string        `yaml:"addr" validate:"required"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout" validate:"gt=0"`
		MaxUploadBytes  int64         `yaml:"maxUploadBytes" validate:"gt=0"`
		AllowedOrigins  []string      `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Model struct {
		// Backend is "onnx" for in-process inference or "grpc" for a remote model server.
		Backend           string `yaml:"backend" validate:"oneof=onnx grpc"`
		Path              string `yaml:"path" validate:"required_if=Backend onnx"`
		SharedLibraryPath string `yaml:"sharedLibraryPath"`
		Address           string `yaml:"address" validate:"required_if=Backend grpc"`
		InputName         string `yaml:"inputName"`
		OutputName        string `yaml:"outputName"`
	} `yaml:"model"`

	Pipeline struct {
		InputSide        int     `yaml:"inputSide" validate:"gt=0"`
		Threshold        float64 `yaml:"threshold" validate:"gt=0,lt=1"`
		SliceIndex       int     `yaml:"sliceIndex" validate:"gte=0"`
		SliceThicknessMM float64 `yaml:"sliceThicknessMM" validate:"gt=0"`
	} `yaml:"pipeline"`

	Storage struct {
		Backend  string `yaml:"backend" validate:"oneof=fs s3 gcs"`
		Root     string `yaml:"root" validate:"required_if=Backend fs"`
		Bucket   string `yaml:"bucket" validate:"required_unless=Backend fs"`
		Region   string `yaml:"region"`
		Prefix   string `yaml:"prefix"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"storage"`

	Uploads struct {
		Dir  string `yaml:"dir" validate:"required"`
		Keep bool   `yaml:"keep"`
	} `yaml:"uploads"`

	Database struct {
		DSN string `yaml:"dsn" validate:"required"`
	} `yaml:"database"`

	Redis struct {
		Addr      string        `yaml:"addr" validate:"required"`
		ResultTTL time.Duration `yaml:"resultTTL" validate:"gt=0"`
	} `yaml:"redis"`

	Auth struct {
		// JWTSecret enables bearer authentication on the API when set.
		JWTSecret   string `yaml:"jwtSecret"`
		JWTAudience string `yaml:"jwtAudience"`
	} `yaml:"auth"`

	Log struct {
		Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"maxSizeMB"`
		MaxBackups int    `yaml:"maxBackups"`
		MaxAgeDays int    `yaml:"maxAgeDays"`
	} `yaml:"log"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Addr = ":8080"
	cfg.Server.ShutdownTimeout = 15 * time.Second
	cfg.Server.MaxUploadBytes = 64 << 20
	cfg.Server.AllowedOrigins = []string{"*"}

	cfg.Model.Backend = "onnx"
	cfg.Model.Path = "weights/liver_model.onnx"

	cfg.Pipeline.InputSide = 256
	cfg.Pipeline.Threshold = 0.5
	cfg.Pipeline.SliceThicknessMM = 2.0

	cfg.Storage.Backend = "fs"
	cfg.Storage.Root = "."

	cfg.Uploads.Dir = "uploads"

	cfg.Database.DSN = "host=postgres user=postgres password=postgres dbname=liverseg port=5432 sslmode=disable"

	cfg.Redis.Addr = "redis:6379"
	cfg.Redis.ResultTTL = 24 * time.Hour

	cfg.Log.Level = "info"
	cfg.Log.MaxSizeMB = 100
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 7

	return cfg
}

// Load reads configPath (defaults apply when it does not exist), loads
// .env files when present, applies environment overrides and validates.
func Load(configPath string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("error reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", f, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "HTTP_ADDR")
	setString(&c.Model.Backend, "MODEL_BACKEND")
	setString(&c.Model.Path, "MODEL_PATH")
	setString(&c.Model.SharedLibraryPath, "ONNXRUNTIME_LIB")
	setString(&c.Model.Address, "INFERENCE_ADDR")
	setString(&c.Database.DSN, "DATABASE_DSN")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.JWTAudience, "JWT_AUDIENCE")
	setString(&c.Storage.Backend, "STORAGE_BACKEND")
	setString(&c.Storage.Root, "STORAGE_ROOT")
	setString(&c.Storage.Bucket, "STORAGE_BUCKET")
	setString(&c.Storage.Region, "AWS_REGION")
	setString(&c.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&c.Uploads.Dir, "UPLOAD_DIR")
	setString(&c.Log.File, "LOG_FILE")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("SEGMENTATION_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SEGMENTATION_THRESHOLD: %w", err)
		}
		c.Pipeline.Threshold = f
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Save writes the configuration as YAML.
func Save(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
