package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type Globals struct {
	Config    string `short:"c" type:"path" help:"Path to the backoffice YAML config file." env:"RECLIQ_CONFIG"`
	LogLevel  string `help:"Override logging.level." placeholder:"LEVEL"`
	LogFormat string `help:"Override logging.format (json|console)." placeholder:"FORMAT"`
}

type cli struct {
	Globals

	Serve  serveCmd  `cmd:"" help:"Run the backoffice HTTP server."`
	Tables tablesCmd `cmd:"" help:"List registered tables or write them as a manifest."`
	Page   pageCmd   `cmd:"" help:"Print one page of a table."`
	Export exportCmd `cmd:"" help:"Export a table as CSV or PDF."`
	SeedDB seedDBCmd `cmd:"" name:"seed-db" help:"Create and seed a SQLite database with sample records."`
}

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app cli
	ctx := kong.Parse(&app,
		kong.Name("backofficectl"),
		kong.Description("Operations backoffice for the Recliq recycling platform."),
		kong.UsageOnError(),
		kong.BindTo(runCtx, (*context.Context)(nil)),
	)
	err := ctx.Run(&app.Globals)
	ctx.FatalIfErrorf(err)
}
