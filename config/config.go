// Package config holds the immutable runtime configuration consumed by a
// capture session.
package config

import (
	"encoding/json"
	"image"
	"os"
	"time"
)

// Config holds runtime parameters for the motion pipeline and its side
// effects. Fields may be loaded from a JSON file and overridden by
// command-line flags; once a session starts the values are treated as
// immutable for its duration.
type Config struct {
	// Pipeline parameters
	Threshold  int `json:"threshold"`
	BlurKernel int `json:"blur_kernel"`

	// Blob size bounds
	MinBlobWidth  int `json:"min_blob_width"`
	MinBlobHeight int `json:"min_blob_height"`
	MaxBlobWidth  int `json:"max_blob_width"`
	MaxBlobHeight int `json:"max_blob_height"`

	// Region of interest; all zero means full frame
	RegionX      int `json:"region_x"`
	RegionY      int `json:"region_y"`
	RegionWidth  int `json:"region_width"`
	RegionHeight int `json:"region_height"`

	// Temporal behavior, in milliseconds
	GracePeriodMS          int `json:"grace_period_ms"`
	AlertCooldownMS        int `json:"alert_cooldown_ms"`
	SnapshotCooldownMS     int `json:"snapshot_cooldown_ms"`
	NotificationCooldownMS int `json:"notification_cooldown_ms"`

	// Side-effect channels
	EnableAlert       bool   `json:"enable_alert"`
	EnableSnapshot    bool   `json:"enable_snapshot"`
	EnableLog         bool   `json:"enable_log"`
	LogPath           string `json:"log_path"`
	SnapshotDir       string `json:"snapshot_dir"`
	SnapshotThumbnail bool   `json:"snapshot_thumbnail"`

	// Capture
	CameraDevice int `json:"camera_device"`
}

// DefaultConfig returns a Config populated with the reference defaults.
func DefaultConfig() *Config {
	return &Config{
		Threshold:              15,
		BlurKernel:             0,
		MinBlobWidth:           20,
		MinBlobHeight:          20,
		MaxBlobWidth:           500,
		MaxBlobHeight:          500,
		GracePeriodMS:          500,
		AlertCooldownMS:        5000,
		SnapshotCooldownMS:     3000,
		NotificationCooldownMS: 300000,
		EnableAlert:            true,
		EnableSnapshot:         true,
		EnableLog:              true,
		LogPath:                "motion.log",
		SnapshotDir:            "snapshots",
		CameraDevice:           0,
	}
}

// Validate clamps values to safe ranges.
func (c *Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 255 {
		c.Threshold = 15
	}
	if c.BlurKernel < 0 {
		c.BlurKernel = 0
	}
	if c.MinBlobWidth <= 0 {
		c.MinBlobWidth = 20
	}
	if c.MinBlobHeight <= 0 {
		c.MinBlobHeight = 20
	}
	if c.MaxBlobWidth < c.MinBlobWidth {
		c.MaxBlobWidth = 500
	}
	if c.MaxBlobHeight < c.MinBlobHeight {
		c.MaxBlobHeight = 500
	}
	if c.GracePeriodMS <= 0 {
		c.GracePeriodMS = 500
	}
	if c.AlertCooldownMS <= 0 {
		c.AlertCooldownMS = 5000
	}
	if c.SnapshotCooldownMS <= 0 {
		c.SnapshotCooldownMS = 3000
	}
	if c.NotificationCooldownMS <= 0 {
		c.NotificationCooldownMS = 300000
	}
	if c.RegionWidth < 0 {
		c.RegionWidth = 0
	}
	if c.RegionHeight < 0 {
		c.RegionHeight = 0
	}
	return nil
}

// Region returns the configured region of interest as a rectangle; the zero
// rectangle means full-frame processing.
func (c *Config) Region() image.Rectangle {
	if c.RegionWidth == 0 || c.RegionHeight == 0 {
		return image.Rectangle{}
	}
	return image.Rect(c.RegionX, c.RegionY, c.RegionX+c.RegionWidth, c.RegionY+c.RegionHeight)
}

// GracePeriod returns the grace window as a duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodMS) * time.Millisecond
}

// AlertCooldown returns the alert channel cooldown as a duration.
func (c *Config) AlertCooldown() time.Duration {
	return time.Duration(c.AlertCooldownMS) * time.Millisecond
}

// SnapshotCooldown returns the snapshot channel cooldown as a duration.
func (c *Config) SnapshotCooldown() time.Duration {
	return time.Duration(c.SnapshotCooldownMS) * time.Millisecond
}

// NotificationCooldown returns the critical-failure notification cooldown.
func (c *Config) NotificationCooldown() time.Duration {
	return time.Duration(c.NotificationCooldownMS) * time.Millisecond
}

// Load reads configuration from the given JSON file path. A missing file
// yields DefaultConfig(); a malformed file returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return cfg, err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
