// Package client contains the client-side building blocks for gophauth.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): Login,
//     Profile, Logout, Ping.
//  2. Two implementations. GRPCClient injects the access credential through
//     a unary interceptor; HTTPClient does it with a refresher.Transport.
//     Both hand renewal to a refresher.Coordinator, so expired access
//     credentials are renewed once per burst and the call is re-sent.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Wire failures are mapped to the sentinels of internal/common plus
// ErrUnavailable. A session that can no longer be renewed is reported as
// an error matching both common.ErrUnauthenticated and
// refresher.ErrSessionExpired.
package client
