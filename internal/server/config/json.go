package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept both strings such as "15m" and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	RegistryBackend              string         `json:"registry_backend"`
	RedisAddr                    string         `json:"redis_addr"`
	AccessSecretKey              string         `json:"access_secret_key"`
	RenewalSecretKey             string         `json:"renewal_secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RenewalTokenValidityDuration timex.Duration `json:"renewal_token_validity_duration"`
	ClockSkew                    timex.Duration `json:"clock_skew"`
	PurgeInterval                timex.Duration `json:"purge_interval"`
	SeedDemoUsers                *bool          `json:"seed_demo_users"`
}

// parseJson overlays the JSON file named by -c/-config onto config.
// Fields absent from the file keep their current value. An unreadable or
// malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RegistryBackend, c.RegistryBackend)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.AccessSecretKey, c.AccessSecretKey)
	setString(&config.RenewalSecretKey, c.RenewalSecretKey)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RenewalTokenValidityDuration.Duration != 0 {
		config.RenewalTokenValidityDuration = c.RenewalTokenValidityDuration.Duration
	}
	if c.ClockSkew.Duration != 0 {
		config.ClockSkew = c.ClockSkew.Duration
	}
	if c.PurgeInterval.Duration != 0 {
		config.PurgeInterval = c.PurgeInterval.Duration
	}
	if c.SeedDemoUsers != nil {
		config.SeedDemoUsers = *c.SeedDemoUsers
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
