package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores a stored session, starts the connectivity watcher and runs
// the REPL until the user leaves.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to gophauth CLI (type 'help' for commands)")

	if err := a.restoreSession(ctx); err != nil {
		a.logger.Warn(ctx, "cannot read local session", "error", err)
	}
	a.checkOnline(ctx)

	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}
