package main

import (
	"context"
	"fmt"
	"os"

	"github.com/git-nomad/git-nomad/internal/config"
	"github.com/git-nomad/git-nomad/internal/engine"
	"github.com/git-nomad/git-nomad/internal/gitcli"
	"github.com/git-nomad/git-nomad/internal/progress"
)

// deps bundles everything a subcommand needs: a resolved identity, the
// engine built on a real git invoker, and a progress reporter.
type deps struct {
	id       engine.Identity
	engine   *engine.Engine
	reporter *progress.TerminalReporter
}

// setupDeps resolves configuration and wires the git invoker, reconciliation
// engine, and progress reporter shared by every subcommand.
func setupDeps(ctx context.Context) (*deps, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining working directory: %w", err)
	}

	client := gitcli.NewShellClient(wd)
	if flagGit != "" {
		client.GitBinary = flagGit
	}

	flags := config.Flags{User: flagUser, Host: flagHost, Remote: flagRemote}
	id, err := config.Resolve(ctx, flags, config.EnvironFromOS(), client)
	if err != nil {
		return nil, err
	}

	logger := setupLogger()
	reporter := progress.NewTerminalReporter(os.Stdout, os.Stderr, flagQuiet)

	return &deps{
		id:       id,
		engine:   engine.New(client, logger),
		reporter: reporter,
	}, nil
}
