// Command injweave weaves injection calls into Go packages before they are
// built.
//
//	injweave [flags] [patterns...]
//
// Patterns default to ./... in types mode and . in syntax mode. The exit
// status is 1 when weaving fails and 2 on usage errors.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
