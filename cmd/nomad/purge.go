package main

import (
	"fmt"
	"io"

	"github.com/git-nomad/git-nomad/internal/engine"
	"github.com/spf13/cobra"
)

var (
	purgeAll   bool
	purgeHosts []string
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove published branches from the remote and local mirror",
	Long: `Purge removes published refs from the remote first, then removes the
corresponding local mirror refs. Exactly one of --all or --host must be
given.`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeAll, "all", false, "remove every published ref for this user")
	purgeCmd.Flags().StringSliceVar(&purgeHosts, "host", nil, "remove published refs for these hosts only")
}

func runPurge(cmd *cobra.Command, args []string) error {
	if purgeAll == (len(purgeHosts) > 0) {
		return fmt.Errorf("purge requires exactly one of --all or --host")
	}

	ctx, cancel := setupSignalHandler()
	defer cancel()

	d, err := setupDeps(ctx)
	if err != nil {
		return err
	}

	opts := engine.PurgeOptions{All: purgeAll, Hosts: purgeHosts}

	var report *engine.PurgeReport
	err = d.reporter.Step("purging published branches", func() error {
		r, perr := d.engine.Purge(ctx, d.id, opts)
		if perr != nil {
			return perr
		}
		report = r
		return nil
	})
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	for _, warning := range report.Warnings {
		d.reporter.Warn(warning)
	}

	return d.reporter.Out(func(w io.Writer) error {
		if _, werr := fmt.Fprintf(w, "purged %d ref(s)\n", len(report.Deleted)); werr != nil {
			return werr
		}
		for _, ref := range report.Deleted {
			if _, werr := fmt.Fprintf(w, "  %s/%s\t%s\n", ref.Host, ref.Branch, ref.Commit); werr != nil {
				return werr
			}
		}
		return nil
	})
}
