package main

import (
	"context"
	"fmt"
	"io"

	"github.com/recliq/go-backoffice/pkg/recordsource/gormsource"
)

type seedDBCmd struct {
	SQLite string `name:"sqlite" required:"" type:"path" help:"SQLite database file to create or update."`

	out io.Writer `kong:"-"`
}

func (cmd *seedDBCmd) Run(ctx context.Context, _ *Globals) error {
	db, err := openSQLite(cmd.SQLite)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := gormsource.Seed(ctx, db); err != nil {
		return err
	}
	fmt.Fprintf(writerOr(cmd.out), "✓ Seeded sample records into %s\n", cmd.SQLite)
	return nil
}
