package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/helixml/scanout/api/pkg/kms"
	"github.com/helixml/scanout/api/pkg/producer"
	"github.com/helixml/scanout/api/pkg/renderer"
)

type PresenterConfig struct {
	DRM      DRM
	Producer Producer

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// DRM is the display side. The yaml keys match the [drm] group of the
// compositor's configuration file.
type DRM struct {
	// Device is a card node path; empty picks the first usable node in DeviceDir.
	Device    string `envconfig:"DRM_DEVICE" yaml:"device"`
	DeviceDir string `envconfig:"DRM_DEVICE_DIR" default:"/dev/dri" yaml:"device-dir"`
	// WaitForDevice blocks until a card node appears instead of failing.
	WaitForDevice bool `envconfig:"DRM_WAIT_FOR_DEVICE" default:"false" yaml:"wait-for-device"`
	OpenAttempts  uint `envconfig:"DRM_OPEN_ATTEMPTS" default:"5" yaml:"open-attempts"`

	// A lease socket takes precedence over opening the device directly.
	LeaseSocket string `envconfig:"DRM_LEASE_SOCKET" yaml:"lease-socket"`
	LeaseWidth  uint32 `envconfig:"DRM_LEASE_WIDTH" default:"1920" yaml:"lease-width"`
	LeaseHeight uint32 `envconfig:"DRM_LEASE_HEIGHT" default:"1080" yaml:"lease-height"`

	Renderer                 string        `envconfig:"DRM_RENDERER" default:"modeset" yaml:"renderer"`
	Rotation                 int           `envconfig:"DRM_ROTATION" default:"0" yaml:"rotation"`
	DisableAtomicModesetting bool          `envconfig:"DRM_DISABLE_ATOMIC_MODESETTING" default:"false" yaml:"disable-atomic-modesetting"`
	VideoMode                string        `envconfig:"DRM_VIDEO_MODE" yaml:"video-mode"`
	ModeMax                  string        `envconfig:"DRM_MODE_MAX" yaml:"mode-max"`
	DeviceScaleFactor        float64       `envconfig:"DRM_DEVICE_SCALE_FACTOR" default:"1" yaml:"device-scale-factor"`
	FlipDrainTimeout         time.Duration `envconfig:"DRM_FLIP_DRAIN_TIMEOUT" default:"1s" yaml:"flip-drain-timeout"`
}

// Producer configures the built-in test pattern.
type Producer struct {
	Kind    string `envconfig:"PRODUCER_KIND" default:"shm" yaml:"kind"`
	Buffers int    `envconfig:"PRODUCER_BUFFERS" default:"3" yaml:"buffers"`
	// Frames stops after this many frames; zero runs until interrupted.
	Frames int `envconfig:"PRODUCER_FRAMES" default:"0" yaml:"frames"`
}

func LoadPresenterConfig() (PresenterConfig, error) {
	var cfg PresenterConfig
	err := envconfig.Process("", &cfg)
	if err != nil {
		return PresenterConfig{}, err
	}
	return cfg, nil
}

// LoadFile overlays the drm and producer sections of a YAML file. Keys the file
// does not set keep their current values.
func (c *PresenterConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return c.ApplyYAML(data)
}

func (c *PresenterConfig) ApplyYAML(data []byte) error {
	file := struct {
		DRM      *DRM      `yaml:"drm"`
		Producer *Producer `yaml:"producer"`
	}{
		DRM:      &c.DRM,
		Producer: &c.Producer,
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (c *PresenterConfig) Validate() error {
	if _, err := renderer.ParseKind(c.DRM.Renderer); err != nil {
		return err
	}
	if _, err := renderer.ParseRotation(c.DRM.Rotation); err != nil {
		return err
	}
	if _, err := kms.ParseModeMax(c.DRM.ModeMax); err != nil {
		return err
	}
	if c.DRM.DeviceScaleFactor <= 0 {
		return fmt.Errorf("device scale factor must be positive, got %g", c.DRM.DeviceScaleFactor)
	}
	if c.DRM.LeaseSocket != "" && (c.DRM.LeaseWidth == 0 || c.DRM.LeaseHeight == 0) {
		return fmt.Errorf("lease size %dx%d is invalid", c.DRM.LeaseWidth, c.DRM.LeaseHeight)
	}
	if _, err := producer.ParseKind(c.Producer.Kind); err != nil {
		return err
	}
	if c.Producer.Buffers < 1 {
		return fmt.Errorf("producer needs at least one buffer, got %d", c.Producer.Buffers)
	}
	if c.Producer.Frames < 0 {
		return fmt.Errorf("frame count must not be negative, got %d", c.Producer.Frames)
	}
	return nil
}

// TargetOptions converts the selection settings for kms.SelectTarget. Call
// Validate first.
func (c *PresenterConfig) TargetOptions() kms.Options {
	modeMax, _ := kms.ParseModeMax(c.DRM.ModeMax)
	return kms.Options{
		DisableAtomic: c.DRM.DisableAtomicModesetting,
		VideoMode:     c.DRM.VideoMode,
		ModeMax:       modeMax,
	}
}
