package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port     string   `env:"PORT" envDefault:"3000"`
	LogLevel int      `env:"LOG_LEVEL" envDefault:"0"`
	Database Database `envPrefix:"DATABASE_"`
	JWT      JWT      `envPrefix:"JWT_"`
	Pictures Pictures `envPrefix:"PICTURES_"`
	Storage  Storage  `envPrefix:"STORAGE_"`
}

type Database struct {
	URL    string `env:"URL,required"`
	LogSQL bool   `env:"LOG_SQL" envDefault:"false"`
}

type JWT struct {
	Secret   string        `env:"SECRET,required"`
	Duration time.Duration `env:"DURATION" envDefault:"24h"`
	Issuer   string        `env:"ISSUER" envDefault:"pic-profile-maker"`
}

// Pictures configures the picture orchestrator. TemporaryRetention is how long
// preview artifacts live before the processor removes them.
type Pictures struct {
	ResourcesDir       string        `env:"RESOURCES_DIR" envDefault:"resources"`
	WorkDir            string        `env:"WORK_DIR"`
	TemporaryRetention time.Duration `env:"TEMPORARY_RETENTION" envDefault:"5s"`
	Blur               int           `env:"BLUR" envDefault:"30"`
	MaxUploadBytes     int           `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

// Storage selects an optional object-storage mirror for durable pictures.
// Backend is one of "", "gcs" or "minio".
type Storage struct {
	Backend string `env:"BACKEND"`
	GCS     GCS    `envPrefix:"GCS_"`
	MinIO   MinIO  `envPrefix:"MINIO_"`
}

type GCS struct {
	ProjectID string `env:"PROJECT_ID"`
	Bucket    string `env:"BUCKET"`
}

type MinIO struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"pictures"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
