package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// defaultConfigPath is the default filename for persisted configuration.
const defaultConfigPath = "nodehal.json"

// defaultConfig returns the configuration written when no file exists yet.
// The values describe a Raspberry Pi with an ADS1115 on the demand line and
// an MPU-6050 on the first I2C bus.
func defaultConfig() Config {
	return Config{
		GrantPin:       "GPIO17",
		DemandChannel:  0,
		ADCBits:        10,
		ADCFullScaleMV: 5000,
		I2CBus:         "",
		SensorAddress:  mpuAddress,
		PollIntervalMS: 50,
		HTTPPort:       8080,
		LogFile:        "events.log",
		LogLevel:       "info",
		Notifiers:      []NotifierConfig{{Type: "log"}},
	}
}

// Validate checks the values the hardware layer depends on.
func (c Config) Validate() error {
	var errs []error
	if c.GrantPin == "" {
		errs = append(errs, errors.New("grant_pin is required"))
	}
	if c.ADCBits < 1 || c.ADCBits > 24 {
		errs = append(errs, fmt.Errorf("adc_bits %d out of range 1..24", c.ADCBits))
	}
	if c.ADCFullScaleMV <= 0 {
		errs = append(errs, fmt.Errorf("adc_full_scale_mv must be positive, got %d", c.ADCFullScaleMV))
	}
	if c.SensorAddress > 0x7F {
		errs = append(errs, fmt.Errorf("sensor_address %#x is not a 7-bit address", c.SensorAddress))
	}
	if c.PollIntervalMS <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval_ms must be positive, got %d", c.PollIntervalMS))
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("http_port %d out of range", c.HTTPPort))
	}
	if (c.StatusUser == "") != (c.StatusPasswordHash == "") {
		errs = append(errs, errors.New("status_user and status_password_hash must be set together"))
	}
	return errors.Join(errs...)
}

// ConfigManager wraps the loaded configuration and a mutex for concurrent
// access.
type ConfigManager struct {
	path   string
	mu     sync.RWMutex
	cfg    Config
	loaded bool
}

// NewConfigManager returns a manager for the file at path.  An empty path
// means defaultConfigPath.
func NewConfigManager(path string) *ConfigManager {
	if path == "" {
		path = defaultConfigPath
	}
	return &ConfigManager{path: path}
}

// Load reads configuration from disk.  If the file does not exist the
// default configuration is persisted and used.
func (cm *ConfigManager) Load() error {
	cm.mu.Lock()
	if cm.loaded {
		cm.mu.Unlock()
		return nil
	}
	data, err := os.ReadFile(cm.path)
	if err != nil {
		if os.IsNotExist(err) {
			cm.cfg = defaultConfig()
			cm.loaded = true
			// Save takes the read lock.
			cm.mu.Unlock()
			return cm.Save()
		}
		cm.mu.Unlock()
		return fmt.Errorf("unable to read config: %w", err)
	}
	// Missing keys keep their defaults.
	cfg := defaultConfig()
	cfg.Notifiers = nil
	if err := json.Unmarshal(data, &cfg); err != nil {
		cm.mu.Unlock()
		return fmt.Errorf("invalid %s: %w", cm.path, err)
	}
	if err := cfg.Validate(); err != nil {
		cm.mu.Unlock()
		return fmt.Errorf("invalid %s: %w", cm.path, err)
	}
	cm.cfg = cfg
	cm.loaded = true
	cm.mu.Unlock()
	return nil
}

// Save writes the configuration to disk via a temporary file and rename.
func (cm *ConfigManager) Save() error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	bytes, err := json.MarshalIndent(cm.cfg, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := cm.path + ".tmp"
	if err := os.WriteFile(tmpPath, bytes, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, cm.path)
}

// Get returns a copy of the current configuration.
func (cm *ConfigManager) Get() Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.cfg
}

// Update applies fn to the configuration under the write lock, validates the
// result and persists it.  The updater must not keep the pointer.
func (cm *ConfigManager) Update(fn func(*Config) error) error {
	cm.mu.Lock()
	next := cm.cfg
	if err := fn(&next); err != nil {
		cm.mu.Unlock()
		return err
	}
	if err := next.Validate(); err != nil {
		cm.mu.Unlock()
		return err
	}
	cm.cfg = next
	cm.mu.Unlock()
	return cm.Save()
}
