// Package config loads runtime configuration for the gophauth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the gRPC endpoint
//	-u string   base URL of the HTTP endpoint
//	-m string   transport, grpc or http
//	-f string   path of the local SQLite store
//	-r int      renewal timeout (seconds)
//	-q int      request timeout (seconds)
//
// # JSON schema
//
// Durations accept strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "http_endpoint_url": "http://127.0.0.1:8080",
//	  "transport": "grpc",
//	  "storage_path": "gophauth.db",
//	  "renew_timeout": "10s",
//	  "request_timeout": "15s"
//	}
package config
