package config

import (
	"fmt"
	"time"
)

// Transports.
const (
	TransportGRPC = "grpc"
	TransportHTTP = "http"
)

// Config holds runtime settings for the gophauth CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gRPC endpoint.
//   - HTTPEndpointURL: base URL of the HTTP endpoint.
//   - Transport: which of the two the client talks to.
//   - StoragePath: SQLite file holding the renewal credential between runs.
//   - RenewTimeout: upper bound of one credential renewal.
//   - RequestTimeout: upper bound of one user-initiated call.
type Config struct {
	ServerEndpointAddr string
	HTTPEndpointURL    string
	Transport          string
	StoragePath        string
	RenewTimeout       time.Duration
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.HTTPEndpointURL = "http://127.0.0.1:8080"
	c.Transport = TransportGRPC
	c.StoragePath = "gophauth.db"
	c.RenewTimeout = 10 * time.Second
	c.RequestTimeout = 15 * time.Second
}

// Validate reports settings the client cannot start with.
func (c *Config) Validate() error {
	if c.Transport != TransportGRPC && c.Transport != TransportHTTP {
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.RenewTimeout <= 0 || c.RequestTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
