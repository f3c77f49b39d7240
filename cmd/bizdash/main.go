// Command bizdash serves the business dashboard and offers helpers for
// ranges, formatting and widget manifests.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type Globals struct {
	Config string `short:"c" type:"path" env:"BIZDASH_CONFIG" help:"Path to a YAML configuration file."`
}

type cli struct {
	Globals

	Serve  serveCmd  `cmd:"" help:"Serve the dashboard pages, API and event streams."`
	Range  rangeCmd  `cmd:"" help:"Resolve a date-range selector into ISO boundaries."`
	Format formatCmd `cmd:"" help:"Format a value the way dashboard cards do."`
	Widget widgetCmd `cmd:"" help:"Widget manifest tooling."`
}

type widgetCmd struct {
	Scaffold scaffoldCmd `cmd:"" help:"Scaffold a widget definition, provider stub, and manifest entry."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var c cli
	kctx := kong.Parse(&c,
		kong.Name("bizdash"),
		kong.Description("Business analytics dashboard."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&c.Globals)
	kctx.FatalIfErrorf(err)
}
