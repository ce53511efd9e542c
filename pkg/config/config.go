// Package config loads the daemon configuration from a YAML file.
// Every field has a built-in default; a missing file yields the default
// configuration, and zero values in a present file fall back per field.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/modecontrol/mced/pkg/ledpattern"
)

// Config is the daemon configuration.
type Config struct {
	// BlankingPauseSeconds is the fixed blanking pause lease duration.
	BlankingPauseSeconds int `yaml:"blanking_pause_seconds"`

	// PolicyLingerSeconds is the blanking policy linger window.
	PolicyLingerSeconds int `yaml:"policy_linger_seconds"`

	// KeepalivePeriodSeconds is the advertised CPU keepalive period.
	KeepalivePeriodSeconds int `yaml:"keepalive_period_seconds"`

	// KeepaliveWakeupClient is the bus identity allowed to deposit
	// wakeup credits. Empty rejects all wakeup requests.
	KeepaliveWakeupClient string `yaml:"keepalive_wakeup_client"`

	// ActivityCallbackCapacity bounds the activity callback registry.
	ActivityCallbackCapacity int `yaml:"activity_callback_capacity"`

	// InactivityTimeoutSeconds is the quiet period before the system is
	// considered inactive.
	InactivityTimeoutSeconds int `yaml:"inactivity_timeout_seconds"`

	// SweepIntervalSeconds is the lease expiry sweep resolution.
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`

	// StateFile is where the radio/LED state survives restarts.
	StateFile string `yaml:"state_file"`

	// EventLogFile enables the CBOR event log when non-empty.
	EventLogFile string `yaml:"event_log_file"`

	// LEDPatterns defines the known patterns, their priorities and
	// privilege flags.
	LEDPatterns []ledpattern.Pattern `yaml:"led_patterns"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BlankingPauseSeconds:     60,
		PolicyLingerSeconds:      5,
		KeepalivePeriodSeconds:   60,
		ActivityCallbackCapacity: 16,
		InactivityTimeoutSeconds: 30,
		SweepIntervalSeconds:     1,
		StateFile:                "/var/lib/mced/state.json",
		LEDPatterns: []ledpattern.Pattern{
			{Name: "PatternPowerOn", Priority: 90, Privileged: true},
			{Name: "PatternPowerOff", Priority: 89, Privileged: true},
			{Name: "PatternCommunicationCall", Priority: 60},
			{Name: "PatternCommunicationSMS", Priority: 50},
			{Name: "PatternCommunicationEmail", Priority: 40},
			{Name: "PatternBatteryCharging", Priority: 20},
			{Name: "PatternBatteryFull", Priority: 10},
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error; zero values fall back per field.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.BlankingPauseSeconds <= 0 {
		c.BlankingPauseSeconds = def.BlankingPauseSeconds
	}
	if c.PolicyLingerSeconds <= 0 {
		c.PolicyLingerSeconds = def.PolicyLingerSeconds
	}
	if c.KeepalivePeriodSeconds <= 0 {
		c.KeepalivePeriodSeconds = def.KeepalivePeriodSeconds
	}
	if c.ActivityCallbackCapacity <= 0 {
		c.ActivityCallbackCapacity = def.ActivityCallbackCapacity
	}
	if c.InactivityTimeoutSeconds <= 0 {
		c.InactivityTimeoutSeconds = def.InactivityTimeoutSeconds
	}
	if c.SweepIntervalSeconds <= 0 {
		c.SweepIntervalSeconds = def.SweepIntervalSeconds
	}
	if c.StateFile == "" {
		c.StateFile = def.StateFile
	}
	if len(c.LEDPatterns) == 0 {
		c.LEDPatterns = def.LEDPatterns
	}
}

// BlankingPause returns the pause lease duration.
func (c Config) BlankingPause() time.Duration {
	return time.Duration(c.BlankingPauseSeconds) * time.Second
}

// PolicyLinger returns the policy linger window.
func (c Config) PolicyLinger() time.Duration {
	return time.Duration(c.PolicyLingerSeconds) * time.Second
}

// KeepalivePeriod returns the advertised keepalive period.
func (c Config) KeepalivePeriod() time.Duration {
	return time.Duration(c.KeepalivePeriodSeconds) * time.Second
}

// InactivityTimeout returns the inactivity quiet period.
func (c Config) InactivityTimeout() time.Duration {
	return time.Duration(c.InactivityTimeoutSeconds) * time.Second
}

// SweepInterval returns the sweep ticker resolution.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
