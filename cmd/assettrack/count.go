package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/erazemk/assettrack/internal/model"
)

type countOptions struct {
	username string
	name     string
	resume   int64
}

// count runs one inventory session fed by a keyboard-wedge reader: every
// line on in is one scanned code. A blank line or end of input finishes the
// session and prints the reconciliation.
func count(ctx context.Context, a *app, opts countOptions, in io.Reader, out io.Writer) error {
	dept, err := a.department(ctx, opts.username)
	if err != nil {
		return err
	}

	op := a.inventory.NewOperator(dept.ID)
	var session *model.InventorySession
	if opts.resume > 0 {
		session, err = op.Resume(ctx, opts.resume)
	} else {
		session, err = op.Start(ctx, opts.name)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Session %d %q in %s. Scan tags, empty line to finish.\n", session.ID, session.Name, dept.Name)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		code := strings.TrimRight(scanner.Text(), "\r\n")
		if code == "" {
			break
		}
		if _, err := op.Scan(ctx, code); err != nil {
			fmt.Fprintf(out, "  %s: %v\n", code, err)
			continue
		}
		fmt.Fprintf(out, "  %s\n", code)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading scans: %w", err)
	}

	result, err := op.Finish(ctx)
	if err != nil {
		return err
	}
	printResult(out, result)
	return nil
}

func printResult(out io.Writer, result model.Result) {
	unmatched := result.Unmatched()
	fmt.Fprintf(out, "\nFound %d, missing %d, unmatched %d (%d scans)\n",
		len(result.Found), len(result.Missing), len(unmatched), len(result.Scanned))
	for _, a := range result.Found {
		fmt.Fprintf(out, "  found    %-20s %s\n", a.RFIDCode, a.Name)
	}
	for _, a := range result.Missing {
		fmt.Fprintf(out, "  missing  %-20s %s (%s)\n", a.RFIDCode, a.Name, a.Location)
	}
	for _, code := range unmatched {
		fmt.Fprintf(out, "  unknown  %s\n", code)
	}
}
