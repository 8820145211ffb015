package kinetic

import (
	"fmt"
	"math"
	"os"

	"github.com/akmonengine/kinetic/actor"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSleepLinearVelocity  = 0.15
	DefaultSleepAngularVelocity = 0.14
	DefaultSleepFrames          = 20
	DefaultMaxAngularVelocity   = 7.0
	DEFAULT_WORKERS             = 1
)

// Config holds the world-wide settings. Bodies created with negative sleep
// thresholds, a negative wake counter or no angular limit use these values.
type Config struct {
	Gravity              mgl64.Vec3 `yaml:"gravity"`
	SleepLinearVelocity  float64    `yaml:"sleep_linear_velocity"`
	SleepAngularVelocity float64    `yaml:"sleep_angular_velocity"`
	SleepFrames          int        `yaml:"sleep_frames"`
	MaxAngularVelocity   float64    `yaml:"max_angular_velocity"`
	Workers              int        `yaml:"workers"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:              mgl64.Vec3{0, -9.81, 0},
		SleepLinearVelocity:  DefaultSleepLinearVelocity,
		SleepAngularVelocity: DefaultSleepAngularVelocity,
		SleepFrames:          DefaultSleepFrames,
		MaxAngularVelocity:   DefaultMaxAngularVelocity,
		Workers:              DEFAULT_WORKERS,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	for i, g := range c.Gravity {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return fmt.Errorf("gravity[%d] is not finite", i)
		}
	}
	if c.SleepLinearVelocity < 0 || c.SleepAngularVelocity < 0 {
		return fmt.Errorf("sleep thresholds must be non-negative")
	}
	if c.SleepFrames < 0 {
		return fmt.Errorf("sleep frames %d must be non-negative", c.SleepFrames)
	}
	if !(c.MaxAngularVelocity > 0) {
		return fmt.Errorf("max angular velocity %v must be positive", c.MaxAngularVelocity)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d must be non-negative", c.Workers)
	}
	return nil
}

func (c Config) settings() actor.Settings {
	return actor.Settings{
		SleepLinearVelocity:  c.SleepLinearVelocity,
		SleepAngularVelocity: c.SleepAngularVelocity,
		SleepFrames:          c.SleepFrames,
		MaxAngularVelocity:   c.MaxAngularVelocity,
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
