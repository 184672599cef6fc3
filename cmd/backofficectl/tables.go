package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/recliq/go-backoffice/components/backoffice"
)

type tablesCmd struct {
	Manifest string `type:"path" help:"Write the registered tables as a YAML manifest to this path instead of listing them."`

	out io.Writer `kong:"-"`
}

func (cmd *tablesCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	out := writerOr(cmd.out)
	if cmd.Manifest != "" {
		return writeManifestFile(cmd.Manifest, backoffice.ManifestFromRegistry(a.registry), out)
	}
	for _, desc := range a.service.Tables(ctx, cliViewer) {
		actions := make([]string, 0, len(desc.Actions))
		for _, action := range desc.Actions {
			actions = append(actions, action.Name)
		}
		fmt.Fprintf(out, "%-14s %-20s %-11s page=%-3d sort=%-16s actions=%s\n",
			desc.Code, desc.Name, desc.Category, desc.PageSize, desc.DefaultSort, strings.Join(actions, ","))
	}
	return nil
}

func writeManifestFile(path string, doc *backoffice.TableManifestDocument, out io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("backofficectl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("backofficectl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	if err := backoffice.WriteManifest(file, doc); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Wrote %d tables to %s\n", len(doc.Tables), path)
	return nil
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
