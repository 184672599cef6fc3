package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/recliq/go-backoffice/components/backoffice"
	"github.com/recliq/go-backoffice/components/backoffice/commands"
	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

type exportCmd struct {
	Table  string            `required:"" help:"Table code to export."`
	Format string            `default:"csv" enum:"csv,pdf" help:"Export format (csv|pdf)."`
	Search string            `help:"Case-insensitive search over searchable columns."`
	Filter map[string]string `help:"Exact-match filter, e.g. --filter status=failed."`
	Sort   string            `help:"Sort option key."`
	Out    string            `type:"path" help:"Output file or directory (defaults to <table>-<date>.<format> in the working directory)."`

	out io.Writer `kong:"-"`
}

func (cmd *exportCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	format, err := backoffice.ParseExportFormat(cmd.Format)
	if err != nil {
		return err
	}
	path := cmd.Out
	if path == "" {
		path = a.service.ExportFilename(cmd.Table, format)
	} else if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, a.service.ExportFilename(cmd.Table, format))
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("backofficectl: create %s: %w", path, err)
	}
	defer file.Close()

	var info backoffice.ExportInfo
	export := commands.NewExportTableCommand(a.service, a.recorder)
	err = export.Execute(ctx, commands.ExportTableInput{
		Viewer: cliViewer,
		Table:  cmd.Table,
		Query: tableview.Query{
			Search:  cmd.Search,
			Filters: cmd.Filter,
			Sort:    cmd.Sort,
			Page:    1,
		},
		Format: format,
		Writer: file,
		Info:   &info,
	})
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}
	fmt.Fprintf(writerOr(cmd.out), "✓ Exported %d %s rows to %s\n", info.Rows, info.Table, path)
	return nil
}
