package config

import "time"

// Backend origins
const (
	ProductionBaseURL  = "https://x402chainpay.onrender.com"
	DevelopmentBaseURL = "http://localhost:3001"
)

const ModeProduction = "production"

// Stub server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Telemetry flush timeout on exit
const TelemetryShutdownTimeout = 5 * time.Second
