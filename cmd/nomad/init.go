package main

import (
	"fmt"
	"os"

	"github.com/git-nomad/git-nomad/internal/config"
	"github.com/git-nomad/git-nomad/internal/gitcli"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Persist resolved user, host, and remote into local git config",
	Long: `Init resolves user, host, and remote exactly as sync/ls/purge would and
writes them into this clone's local git config, so later invocations
don't need to repeat flags or environment variables. Existing values are
left untouched unless --force is given.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing persisted values")
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining working directory: %w", err)
	}

	client := gitcli.NewShellClient(wd)
	if flagGit != "" {
		client.GitBinary = flagGit
	}

	flags := config.Flags{User: flagUser, Host: flagHost, Remote: flagRemote}
	id, err := config.Resolve(ctx, flags, config.EnvironFromOS(), client)
	if err != nil {
		return err
	}

	if err := config.Init(ctx, client, id, initForce); err != nil {
		return fmt.Errorf("init failed: %w", err)
	}

	cmd.Printf("persisted user=%s host=%s remote=%s\n", id.User, id.Host, id.Remote)
	return nil
}
