// Package config loads and validates the adapter core's configuration:
// logging, the tunable constants that govern timers/queues/buffer sizes,
// and the static subscription registry's on-disk override, via viper +
// mapstructure + validator. With a config file, an environment variable
// (MGMTD_BE_*) overrides the file for the keys the file sets, and fields
// left unset take the compiled-in defaults; with no file, the compiled-in
// defaults are returned and the environment is not read.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mgmtd/beadapter/internal/bytesize"
)

// Config is the adapter core's complete configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Tunables TunablesConfig `mapstructure:"tunables" yaml:"tunables"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`
}

// LoggingConfig controls internal/logger's behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TunablesConfig holds every tunable constant the adapter core needs:
// per-adapter socket buffer sizes, queue caps, max message length, and the
// three named retry/backoff delays.
type TunablesConfig struct {
	// SendBufferSize/RecvBufferSize are the per-adapter socket send/receive
	// buffer sizes. They are validated here only: beadapter.Create does not
	// apply them to the connection.
	SendBufferSize bytesize.ByteSize `mapstructure:"send_buffer_size" validate:"gt=0" yaml:"send_buffer_size"`
	RecvBufferSize bytesize.ByteSize `mapstructure:"recv_buffer_size" validate:"gt=0" yaml:"recv_buffer_size"`

	// OutboundHighWaterMark is the queued-outbound-byte level above which
	// the framer reports writes-off. InboundQueueCap, OutboundQueueCap and
	// OutboundLowWaterMark are validated (the low-water mark must be below
	// the high-water mark) but are not passed to the framer, which enforces
	// no queue caps and no low-water mark.
	InboundQueueCap       int `mapstructure:"inbound_queue_cap" validate:"gt=0" yaml:"inbound_queue_cap"`
	OutboundQueueCap      int `mapstructure:"outbound_queue_cap" validate:"gt=0" yaml:"outbound_queue_cap"`
	OutboundHighWaterMark int `mapstructure:"outbound_high_water_mark" validate:"gt=0" yaml:"outbound_high_water_mark"`
	OutboundLowWaterMark  int `mapstructure:"outbound_low_water_mark" validate:"gt=0,ltfield=OutboundHighWaterMark" yaml:"outbound_low_water_mark"`

	// MaxMessageLen bounds a single decoded frame's payload size.
	MaxMessageLen bytesize.ByteSize `mapstructure:"max_message_len" validate:"gt=0" yaml:"max_message_len"`

	// ReadChunkSize is how many bytes the framer tries to read per CONN_READ.
	ReadChunkSize bytesize.ByteSize `mapstructure:"read_chunk_size" validate:"gt=0" yaml:"read_chunk_size"`

	// ConnInitRetryDelay/ProcMsgDelay/WritesOnDelay are the three named
	// fixed delays the event handlers reschedule on.
	ConnInitRetryDelay time.Duration `mapstructure:"conn_init_retry_delay" validate:"gt=0" yaml:"conn_init_retry_delay"`
	ProcMsgDelay       time.Duration `mapstructure:"proc_msg_delay" validate:"gt=0" yaml:"proc_msg_delay"`
	WritesOnDelay      time.Duration `mapstructure:"writes_on_delay" validate:"gt=0" yaml:"writes_on_delay"`

	// ProcMsgBatchCap bounds how many frames PROC_MSG decodes per turn.
	ProcMsgBatchCap int `mapstructure:"proc_msg_batch_cap" validate:"gt=0" yaml:"proc_msg_batch_cap"`

	// SyncBatchSize bounds how many change-set items go into one
	// CFG_DATA_REQ batch during the initial config-sync drain.
	SyncBatchSize int `mapstructure:"sync_batch_size" validate:"gt=0" yaml:"sync_batch_size"`
}

// MetricsConfig holds the metrics setting. Enabled is loaded and saved but
// not read by the adapter core: whether counters are collected depends
// only on whether beadapter.Deps.Metrics is set.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// RegistryConfig points at an optional on-disk override of the static
// subscription registry; when Path is empty, the compiled-in seed entries
// (internal/subscr.SeedEntries) are used.
type RegistryConfig struct {
	Path        string `mapstructure:"path" yaml:"path,omitempty"`
	MaxPatterns int    `mapstructure:"max_patterns" validate:"gte=0" yaml:"max_patterns"`
}

// Load loads configuration from file, environment, and defaults. When a
// config file is found, an environment variable overrides the file's value
// for any key the file sets, and zero fields are then filled by
// ApplyDefaults. When no file is found, GetDefaultConfig is returned as is
// and environment variables are not consulted.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, returning an actionable error pointing at
// the default config path when none was found and none was specified.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf(
				"no configuration file found at default location: %s\n\n"+
					"create one, or pass --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML with owner-only permissions.
func SaveConfig(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write file: %w", err)
	}
	return nil
}

// Validate runs struct-tag validation over cfg using go-playground/validator.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("MGMTD_BE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: read file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mgmtd-beadapterd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mgmtd-beadapterd")
}

// GetDefaultConfigPath returns the default config.yaml location.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir exposes the resolved config directory (for an init-style
// command, should one be added to the operator CLI later).
func GetConfigDir() string {
	return getConfigDir()
}
