// Command routesync maintains the database-backed slug routes.
//
// Usage:
//
//	routesync discover            # declared route descriptors
//	routesync rebuild [-o json]   # regenerate records, print the table
//	routesync migrate [--print]   # create tables
//	routesync locales             # enabled locales
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanizio/dbroute/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCmd(commands.DefaultDeps()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
