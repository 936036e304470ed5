package arcinfo

import (
	"io"
	"log/slog"

	"arcinfo/telemetry"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config is a struct type that holds all config options of an accessor
type Config struct {
	// chunkSize is the size of chunks used when streaming a range to a
	// destination file
	chunkSize int64

	// logger stream for analysis
	logger *slog.Logger

	// maxBufferSize is the maximum number of bytes retained from an
	// in-memory buffer; larger buffers are truncated
	maxBufferSize int64

	// telemetryHook is a function pointer to consume telemetry data after
	// finished analysis
	telemetryHook telemetry.Hook
}

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style
func NewConfig(opts ...ConfigOption) *Config {
	const (
		chunkSize     = 4096
		maxBufferSize = 1 << 20 // 1 MiB
	)

	config := &Config{
		chunkSize:     chunkSize,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBufferSize: maxBufferSize,
		telemetryHook: telemetry.NoopHook,
	}

	// Loop over each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithChunkSize options pattern function to set the chunk size used by
// [Reader.SaveRange]
func WithChunkSize(size int64) ConfigOption {
	return func(c *Config) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithLogger options pattern function to set the logger
func WithLogger(logger *slog.Logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxBufferSize options pattern function to set the maximum buffer size
func WithMaxBufferSize(size int64) ConfigOption {
	return func(c *Config) {
		if size > 0 {
			c.maxBufferSize = size
		}
	}
}

// WithTelemetryHook options pattern function to set the telemetry hook
func WithTelemetryHook(hook telemetry.Hook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}

// ChunkSize returns the chunk size used when streaming a range to disk
func (c *Config) ChunkSize() int64 {
	return c.chunkSize
}

// Logger returns the logger
func (c *Config) Logger() *slog.Logger {
	return c.logger
}

// MaxBufferSize returns the maximum buffer size
func (c *Config) MaxBufferSize() int64 {
	return c.maxBufferSize
}

// TelemetryHook returns the telemetry hook
func (c *Config) TelemetryHook() telemetry.Hook {
	return c.telemetryHook
}
