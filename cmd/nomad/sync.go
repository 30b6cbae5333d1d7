package main

import (
	"fmt"
	"io"

	"github.com/git-nomad/git-nomad/internal/engine"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Publish local branches and pull in every host's published branches",
	Long: `Sync publishes every local branch under this host's namespace on the
remote, removes this host's stale publications for branches deleted
locally, and mirrors the union of every host's published refs into
refs/nomad/* in this clone.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	d, err := setupDeps(ctx)
	if err != nil {
		return err
	}

	var report *engine.SyncReport
	err = d.reporter.Step(fmt.Sprintf("syncing as %s/%s with %s", d.id.User, d.id.Host, d.id.Remote), func() error {
		r, serr := d.engine.Sync(ctx, d.id)
		if serr != nil {
			return serr
		}
		report = r
		return nil
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	for _, warning := range report.Warnings {
		d.reporter.Warn(warning)
	}

	return d.reporter.Out(func(w io.Writer) error {
		return writeByHostReport(w, report.ByHost, fmt.Sprintf("published %d branch(es), pruned %d stale", len(report.Pushed), len(report.Deleted)))
	})
}
