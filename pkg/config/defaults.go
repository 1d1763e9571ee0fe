package config

import "time"

// Visualizer defaults.
const (
	DefaultAlgorithm   = "bubble"
	DefaultSize        = 50
	DefaultSpeed       = 50
	DefaultSettleDelay = 20 * time.Millisecond
)

// Server defaults.
const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 8080
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 15 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Observability defaults.
const (
	DefaultServiceName     = "sortviz"
	DefaultShutdownTimeout = 5 * time.Second
)
