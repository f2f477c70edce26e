package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sstent/ridecoach/internal/models"
)

type Config struct {
	HTTPAddr     string `mapstructure:"HTTP_ADDR"`
	DataDir      string `mapstructure:"DATA_DIR"`
	DBPath       string `mapstructure:"DB_PATH"`
	InboxDir     string `mapstructure:"INBOX_DIR"`
	SyncSchedule string `mapstructure:"SYNC_SCHEDULE"`
	SyncUserID   int64  `mapstructure:"SYNC_USER_ID"`

	GradientThreshold float64 `mapstructure:"CLIMB_GRADIENT_THRESHOLD"`
	MinClimbDistance  float64 `mapstructure:"MIN_CLIMB_DISTANCE_METERS"`
	MinClimbElevation float64 `mapstructure:"MIN_CLIMB_ELEVATION_METERS"`
	SteepThreshold    float64 `mapstructure:"STEEP_GRADIENT_THRESHOLD"`
	FlatSpeedKmh      float64 `mapstructure:"FLAT_SPEED_KMH"`
	ClimbSpeedKmh     float64 `mapstructure:"CLIMB_SPEED_KMH"`
	SteepSpeedKmh     float64 `mapstructure:"STEEP_CLIMB_SPEED_KMH"`
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only. A value that
// does not convert to its field's type is an error.
func FromEnv() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8888")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DB_PATH", "")
	v.SetDefault("INBOX_DIR", "")
	v.SetDefault("SYNC_SCHEDULE", "@hourly")
	v.SetDefault("SYNC_USER_ID", 1)

	d := models.DefaultThresholds()
	v.SetDefault("CLIMB_GRADIENT_THRESHOLD", d.GradientThreshold)
	v.SetDefault("MIN_CLIMB_DISTANCE_METERS", d.MinClimbDistance)
	v.SetDefault("MIN_CLIMB_ELEVATION_METERS", d.MinClimbElevation)
	v.SetDefault("STEEP_GRADIENT_THRESHOLD", d.SteepThreshold)
	v.SetDefault("FLAT_SPEED_KMH", d.FlatSpeedKmh)
	v.SetDefault("CLIMB_SPEED_KMH", d.ClimbSpeedKmh)
	v.SetDefault("STEEP_CLIMB_SPEED_KMH", d.SteepSpeedKmh)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "ridecoach.db")
	}
	if cfg.InboxDir == "" {
		cfg.InboxDir = filepath.Join(cfg.DataDir, "inbox")
	}
	return cfg, nil
}

// Thresholds returns the analysis thresholds, defaults filled in for any
// value that was set to zero or below.
func (c Config) Thresholds() models.Thresholds {
	return models.Thresholds{
		GradientThreshold: c.GradientThreshold,
		MinClimbDistance:  c.MinClimbDistance,
		MinClimbElevation: c.MinClimbElevation,
		SteepThreshold:    c.SteepThreshold,
		FlatSpeedKmh:      c.FlatSpeedKmh,
		ClimbSpeedKmh:     c.ClimbSpeedKmh,
		SteepSpeedKmh:     c.SteepSpeedKmh,
	}.WithDefaults()
}
