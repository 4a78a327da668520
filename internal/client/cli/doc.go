// Package cli provides the interactive gophauth command-line client.
//
// It wires configuration, the local SQLite store, the chosen transport and
// an interactive REPL. A session signed in during an earlier run is picked
// up from the store, so "profile" works right after a restart.
//
// Commands:
//   - login / logout
//   - profile (renews the access credential transparently when needed)
//   - status
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
