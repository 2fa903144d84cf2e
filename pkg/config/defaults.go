package config

import (
	"strings"
	"time"

	"github.com/mgmtd/beadapter/internal/bytesize"
)

// ApplyDefaults fills in any zero-valued fields left unset by the file/env
// layers.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTunablesDefaults(&cfg.Tunables)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTunablesDefaults(cfg *TunablesConfig) {
	if cfg.SendBufferSize == 0 {
		cfg.SendBufferSize = bytesize.ByteSize(64 << 10)
	}
	if cfg.RecvBufferSize == 0 {
		cfg.RecvBufferSize = bytesize.ByteSize(64 << 10)
	}
	if cfg.InboundQueueCap == 0 {
		cfg.InboundQueueCap = 256
	}
	if cfg.OutboundQueueCap == 0 {
		cfg.OutboundQueueCap = 256
	}
	if cfg.OutboundHighWaterMark == 0 {
		cfg.OutboundHighWaterMark = 1 << 20
	}
	if cfg.OutboundLowWaterMark == 0 {
		cfg.OutboundLowWaterMark = 256 << 10
	}
	if cfg.MaxMessageLen == 0 {
		cfg.MaxMessageLen = bytesize.ByteSize((1 << 20) + (1 << 18))
	}
	if cfg.ReadChunkSize == 0 {
		cfg.ReadChunkSize = bytesize.ByteSize(4 << 10)
	}
	if cfg.ConnInitRetryDelay == 0 {
		cfg.ConnInitRetryDelay = 500 * time.Millisecond
	}
	if cfg.ProcMsgDelay == 0 {
		cfg.ProcMsgDelay = 10 * time.Millisecond
	}
	if cfg.WritesOnDelay == 0 {
		cfg.WritesOnDelay = 100 * time.Millisecond
	}
	if cfg.ProcMsgBatchCap == 0 {
		cfg.ProcMsgBatchCap = 32
	}
	if cfg.SyncBatchSize == 0 {
		cfg.SyncBatchSize = 64
	}
}

// GetDefaultConfig returns a fully-defaulted Config, used when no config
// file is found — the system boots with zero configuration required.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
