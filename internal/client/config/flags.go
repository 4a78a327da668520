package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates Config fields from command-line flags, see the
// package documentation for the list.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-m", "-f", "-r", "-q"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the gRPC server")
	fs.StringVar(&cfg.HTTPEndpointURL, "u", cfg.HTTPEndpointURL, "base URL of the HTTP server")
	fs.StringVar(&cfg.Transport, "m", cfg.Transport, "transport (grpc|http)")
	fs.StringVar(&cfg.StoragePath, "f", cfg.StoragePath, "local storage file")

	renewTimeout := fs.Int("r", int(cfg.RenewTimeout.Seconds()), "renewal timeout (in seconds)")
	requestTimeout := fs.Int("q", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RenewTimeout = time.Duration(*renewTimeout) * time.Second
	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
