package config

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 15, cfg.Threshold)
	assert.Equal(t, image.Rectangle{}, cfg.Region())
	assert.Equal(t, 500*time.Millisecond, cfg.GracePeriod())
	assert.Equal(t, 5*time.Second, cfg.AlertCooldown())
	assert.Equal(t, 3*time.Second, cfg.SnapshotCooldown())
	assert.Equal(t, 5*time.Minute, cfg.NotificationCooldown())
}

func TestValidateClampsOutOfRangeValues(t *testing.T) {
	cfg := &Config{
		Threshold:     300,
		MinBlobWidth:  -5,
		MinBlobHeight: 0,
		MaxBlobWidth:  1, // below min: reset
		GracePeriodMS: -100,
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15, cfg.Threshold)
	assert.Equal(t, 20, cfg.MinBlobWidth)
	assert.Equal(t, 20, cfg.MinBlobHeight)
	assert.Equal(t, 500, cfg.MaxBlobWidth)
	assert.Equal(t, 500, cfg.GracePeriodMS)
}

func TestRegion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RegionX, cfg.RegionY = 100, 50
	cfg.RegionWidth, cfg.RegionHeight = 200, 150
	assert.Equal(t, image.Rect(100, 50, 300, 200), cfg.Region())

	cfg.RegionWidth = 0
	assert.Equal(t, image.Rectangle{}, cfg.Region(), "zero width means full frame")
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Threshold = 25
	cfg.RegionX, cfg.RegionY = 10, 20
	cfg.RegionWidth, cfg.RegionHeight = 100, 80
	cfg.EnableAlert = false
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMalformedFileReturnsDefaultsWithError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.NotNil(t, cfg)
}
