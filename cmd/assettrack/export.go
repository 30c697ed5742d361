package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/erazemk/assettrack/internal/report"
)

// export writes the department's catalog as CSV to path, or to out when
// path is empty.
func export(ctx context.Context, a *app, username, path string, out io.Writer) error {
	dept, err := a.department(ctx, username)
	if err != nil {
		return err
	}
	assets, err := a.catalog.List(ctx, dept.ID)
	if err != nil {
		return err
	}

	if path == "" {
		return report.WriteCSV(out, assets)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := report.WriteCSV(f, assets); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
