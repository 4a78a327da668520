package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP bind address, empty disables the gateway
//	-d string   PostgreSQL DSN
//	-b string   registry backend: memory, redis or postgres
//	-r string   redis address
//	-s string   access credential key
//	-n string   renewal credential key
//	-t int      access credential validity, minutes
//	-x int      renewal credential validity, minutes
//	-l int      clock skew leeway, seconds
//	-i int      purge interval, minutes
//	-seed       seed demo users
//
// Durations are given as integers and converted to time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-w", "-d", "-b", "-r", "-s", "-n", "-t", "-x", "-l", "-i"},
		"-seed")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port to run server")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RegistryBackend, "b", config.RegistryBackend, "registry backend (memory|redis|postgres)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.AccessSecretKey, "s", config.AccessSecretKey, "access credential secret key")
	fs.StringVar(&config.RenewalSecretKey, "n", config.RenewalSecretKey, "renewal credential secret key")

	accessValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	renewalValidity := fs.Int("x", int(config.RenewalTokenValidityDuration.Minutes()), "renewal_token_validity_duration (in minutes)")
	clockSkew := fs.Int("l", int(config.ClockSkew.Seconds()), "clock skew leeway (in seconds)")
	purgeInterval := fs.Int("i", int(config.PurgeInterval.Minutes()), "purge interval (in minutes)")

	fs.BoolVar(&config.SeedDemoUsers, "seed", config.SeedDemoUsers, "seed demo users")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessValidity) * time.Minute
	config.RenewalTokenValidityDuration = time.Duration(*renewalValidity) * time.Minute
	config.ClockSkew = time.Duration(*clockSkew) * time.Second
	config.PurgeInterval = time.Duration(*purgeInterval) * time.Minute
}
