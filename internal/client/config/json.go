package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the client configuration.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	HTTPEndpointURL    string         `json:"http_endpoint_url"`
	Transport          string         `json:"transport"`
	StoragePath        string         `json:"storage_path"`
	RenewTimeout       timex.Duration `json:"renew_timeout"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays the JSON file named by -c/-config onto config. Fields
// absent from the file are left alone; a bad file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.ServerEndpointAddr != "" {
		config.ServerEndpointAddr = c.ServerEndpointAddr
	}
	if c.HTTPEndpointURL != "" {
		config.HTTPEndpointURL = c.HTTPEndpointURL
	}
	if c.Transport != "" {
		config.Transport = c.Transport
	}
	if c.StoragePath != "" {
		config.StoragePath = c.StoragePath
	}
	if c.RenewTimeout.Duration != 0 {
		config.RenewTimeout = c.RenewTimeout.Duration
	}
	if c.RequestTimeout.Duration != 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
}
