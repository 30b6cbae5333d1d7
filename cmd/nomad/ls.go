package main

import (
	"fmt"
	"io"

	"github.com/git-nomad/git-nomad/internal/engine"
	"github.com/spf13/cobra"
)

var (
	lsFetch     bool
	lsHosts     []string
	lsBranches  []string
	lsHead      bool
	lsPrintSelf bool
	lsPrint     string
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List branches published by every host",
	Long: `Ls lists every nomad-published ref visible in this clone's refs/nomad/*
mirror, grouped by host, optionally refreshing the mirror first and
filtering by host, branch, or the branch currently checked out. The
current host's own refs are omitted unless --print-self is given.`,
	RunE: runLs,
}

func init() {
	lsCmd.Flags().BoolVar(&lsFetch, "fetch", false, "refresh the local mirror before listing")
	lsCmd.Flags().StringSliceVar(&lsHosts, "host", nil, "only list refs published by these hosts")
	lsCmd.Flags().StringSliceVar(&lsBranches, "branch", nil, "only list refs for these branches")
	lsCmd.Flags().BoolVar(&lsHead, "head", false, "only list refs for the currently checked out branch")
	lsCmd.Flags().BoolVar(&lsPrintSelf, "print-self", false, "include the current host's own published refs")
	lsCmd.Flags().StringVar(&lsPrint, "print", "grouped", "output format: ref, commit, or grouped")
}

func runLs(cmd *cobra.Command, args []string) error {
	switch lsPrint {
	case "ref", "commit", "grouped":
	default:
		return fmt.Errorf("invalid --print value %q: must be one of ref, commit, grouped", lsPrint)
	}

	ctx, cancel := setupSignalHandler()
	defer cancel()

	d, err := setupDeps(ctx)
	if err != nil {
		return err
	}

	opts := engine.ListOptions{
		Fetch:     lsFetch,
		Hosts:     lsHosts,
		Branches:  lsBranches,
		Head:      lsHead,
		PrintSelf: lsPrintSelf,
	}

	var report *engine.ListReport
	err = d.reporter.Step("listing published branches", func() error {
		r, lerr := d.engine.List(ctx, d.id, opts)
		if lerr != nil {
			return lerr
		}
		report = r
		return nil
	})
	if err != nil {
		return fmt.Errorf("ls failed: %w", err)
	}

	for _, warning := range report.Warnings {
		d.reporter.Warn(warning)
	}

	return d.reporter.Out(func(w io.Writer) error {
		switch lsPrint {
		case "ref":
			return writeRefLines(w, report.ByHost)
		case "commit":
			return writeCommitLines(w, report.ByHost)
		default:
			return writeByHostReport(w, report.ByHost, fmt.Sprintf("%d host(s) publishing", len(report.ByHost)))
		}
	})
}
